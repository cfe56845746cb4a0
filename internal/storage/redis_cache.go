package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/voxel-core/internal/logging"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// ColdStorage - постоянное хранилище блоков за горячим кэшем
type ColdStorage interface {
	LoadBlock(pos vec.Vec3) (*voxel.Block, bool, error)
	SaveBlock(b *voxel.Block) error
}

// RedisConfig содержит настройки Redis кэша
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheStats - счётчики горячего кэша
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	ColdHits int64   `json:"cold_hits"`
	HitRatio float64 `json:"hit_ratio"`
}

// RedisCache - горячий кэш блоков в Redis с read-through в ColdStorage.
// Запись идёт в оба уровня синхронно.
type RedisCache struct {
	client *redis.Client
	config RedisConfig
	cold   ColdStorage
	codec  *blockCodec
	log    *logging.Logger

	hits     int64
	misses   int64
	coldHits int64
}

// NewRedisCache подключается к Redis. cold может быть nil.
func NewRedisCache(config RedisConfig, cold ColdStorage) (*RedisCache, error) {
	if config.Prefix == "" {
		config.Prefix = "vcore"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	codec, err := newBlockCodec()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	log := logging.GetStorageLogger()
	log.Info("Redis кэш подключён: %s (cold storage: %v)", config.Addr, cold != nil)
	return &RedisCache{
		client: rdb,
		config: config,
		cold:   cold,
		codec:  codec,
		log:    log,
	}, nil
}

func (r *RedisCache) key(pos vec.Vec3) string {
	return fmt.Sprintf("%s:block:%d:%d:%d", r.config.Prefix, pos.X, pos.Y, pos.Z)
}

// LoadBlock читает блок из Redis, при промахе из ColdStorage
func (r *RedisCache) LoadBlock(pos vec.Vec3) (*voxel.Block, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key(pos)).Bytes()
	if err == nil {
		atomic.AddInt64(&r.hits, 1)
		b, err := r.codec.decode(pos, data)
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}
	atomic.AddInt64(&r.misses, 1)
	if !errors.Is(err, redis.Nil) {
		return nil, false, fmt.Errorf("redis get %v: %w", pos, err)
	}

	if r.cold == nil {
		return nil, false, nil
	}
	b, ok, err := r.cold.LoadBlock(pos)
	if err != nil || !ok {
		return nil, false, err
	}
	atomic.AddInt64(&r.coldHits, 1)

	// Прогреваем кэш для следующих запросов
	if err := r.client.Set(ctx, r.key(pos), r.codec.encode(b), r.config.TTL).Err(); err != nil {
		r.log.Debug("Не удалось прогреть кэш для %v: %v", pos, err)
	}
	return b, true, nil
}

// SaveBlock пишет блок в Redis и в ColdStorage
func (r *RedisCache) SaveBlock(b *voxel.Block) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(b.Pos), r.codec.encode(b), r.config.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %v: %w", b.Pos, err)
	}
	if r.cold != nil {
		return r.cold.SaveBlock(b)
	}
	return nil
}

// Stats возвращает счётчики кэша
func (r *RedisCache) Stats() CacheStats {
	s := CacheStats{
		Hits:     atomic.LoadInt64(&r.hits),
		Misses:   atomic.LoadInt64(&r.misses),
		ColdHits: atomic.LoadInt64(&r.coldHits),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// Close закрывает соединение с Redis. ColdStorage закрывает владелец.
func (r *RedisCache) Close() error {
	r.codec.close()
	return r.client.Close()
}
