package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

func setupRedis(t *testing.T, cold ColdStorage) *RedisCache {
	t.Helper()
	rc, err := NewRedisCache(RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "vcore-test-" + uuid.NewString(),
		TTL:    time.Minute,
	}, cold)
	if err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	t.Cleanup(func() { rc.Close() })
	return rc
}

func TestRedisCacheRoundTrip(t *testing.T) {
	rc := setupRedis(t, nil)

	b := voxel.NewBlock(vec.Vec3{X: 1, Y: 2, Z: 3})
	b.Qubes[0] = voxel.Qube{Content: 7}
	require.NoError(t, rc.SaveBlock(b))

	got, ok, err := rc.LoadBlock(b.Pos)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.Qubes, got.Qubes)

	_, ok, err = rc.LoadBlock(vec.Vec3{})
	require.NoError(t, err)
	assert.False(t, ok)

	stats := rc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisCacheReadThrough(t *testing.T) {
	cold := setupTestStorage(t, "")
	b := voxel.NewBlock(vec.Vec3{Z: -1})
	require.NoError(t, cold.SaveBlock(b))

	rc := setupRedis(t, cold)

	_, ok, err := rc.LoadBlock(b.Pos)
	require.NoError(t, err)
	require.True(t, ok, "промах Redis читается из холодного хранилища")
	assert.Equal(t, int64(1), rc.Stats().ColdHits)

	_, ok, err = rc.LoadBlock(b.Pos)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), rc.Stats().Hits, "второй запрос попадает в прогретый кэш")
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, err := newBlockCodec()
	require.NoError(t, err)
	defer codec.close()

	_, err = codec.decode(vec.Vec3{}, []byte("not zstd"))
	assert.ErrorIs(t, err, ErrCorruptBlock)

	short := codec.enc.EncodeAll([]byte{1, 2, 3}, nil)
	_, err = codec.decode(vec.Vec3{}, short)
	assert.ErrorIs(t, err, ErrCorruptBlock)
}
