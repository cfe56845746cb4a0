package storage

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

var (
	// ErrNotReady - хранилище закрыто
	ErrNotReady = errors.New("storage is not ready")
	// ErrSeedMismatch - кэш создан для мира с другим сидом
	ErrSeedMismatch = errors.New("seed mismatch")
)

const (
	keyWorldID = "meta:world_id"
	keySeed    = "meta:seed"
)

// WorldStorage - постоянный кэш сгенерированных блоков на BadgerDB.
// Каждый блок хранится отдельной записью.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	worldID uuid.UUID
	codec   *blockCodec
	log     *logging.Logger
}

// Open открывает хранилище в каталоге path. Пустой path - БД в памяти.
// При первом открытии миру присваивается UUID.
func Open(path string) (*WorldStorage, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	codec, err := newBlockCodec()
	if err != nil {
		db.Close()
		return nil, err
	}

	ws := &WorldStorage{
		db:      db,
		dbPath:  path,
		isReady: true,
		codec:   codec,
		log:     logging.GetStorageLogger(),
	}
	if err := ws.initWorldID(); err != nil {
		ws.Close()
		return nil, err
	}
	ws.log.Info("Хранилище мира %s открыто (%q)", ws.worldID, path)
	return ws, nil
}

func (ws *WorldStorage) initWorldID() error {
	return ws.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyWorldID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			ws.worldID = uuid.New()
			return txn.Set([]byte(keyWorldID), []byte(ws.worldID.String()))
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err := uuid.ParseBytes(val)
			if err != nil {
				return fmt.Errorf("world id %q: %w", val, err)
			}
			ws.worldID = id
			return nil
		})
	})
}

// WorldID возвращает идентификатор мира
func (ws *WorldStorage) WorldID() uuid.UUID {
	return ws.worldID
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.codec.close()
	return ws.db.Close()
}

// CheckSeed сверяет сид мира с записанным в кэше. Если сида ещё нет,
// записывает его.
func (ws *WorldStorage) CheckSeed(seed uint64) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrNotReady
	}

	return ws.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySeed))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set([]byte(keySeed), []byte(strconv.FormatUint(seed, 10)))
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored, err := strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("stored seed %q: %w", val, err)
			}
			if stored != seed {
				return fmt.Errorf("cache seed %d, world seed %d: %w", stored, seed, ErrSeedMismatch)
			}
			return nil
		})
	})
}

func blockKey(pos vec.Vec3) []byte {
	return []byte(fmt.Sprintf("block:%d:%d:%d", pos.X, pos.Y, pos.Z))
}

// SaveBlock сохраняет содержимое блока
func (ws *WorldStorage) SaveBlock(b *voxel.Block) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrNotReady
	}

	data := ws.codec.encode(b)

	err := ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blockKey(b.Pos), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения блока %v в BadgerDB: %w", b.Pos, err)
	}
	return nil
}

// LoadBlock читает блок; false, если его нет в кэше
func (ws *WorldStorage) LoadBlock(pos vec.Vec3) (*voxel.Block, bool, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, false, ErrNotReady
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(pos))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения блока %v из BadgerDB: %w", pos, err)
	}

	b, err := ws.codec.decode(pos, data)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
