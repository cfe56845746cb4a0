package noise

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/annel0/voxel-core/internal/vec"
)

// Hash2D - решёточный шум в диапазоне [-1, 1]: значение зависит
// только от целой точки и сида
func Hash2D(x, y int, seed int64) float64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(y)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(seed))
	h := xxhash.Sum64(buf[:])
	return 1.0 - float64(h&0x7fffffff)/float64(0x40000000)
}

// BlockSeed выводит сид для позиции из мирового сида
func BlockSeed(seed uint64, pos vec.Vec3) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(pos.X)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(pos.Y)))
	binary.LittleEndian.PutUint64(buf[24:], uint64(int64(pos.Z)))
	return xxhash.Sum64(buf[:])
}
