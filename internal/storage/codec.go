package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// ErrCorruptBlock - запись блока не декодируется
var ErrCorruptBlock = errors.New("corrupt block record")

const (
	qubeBytes  = 4
	blockBytes = voxel.BlockVolume * qubeBytes
)

// blockCodec сжимает ячейки блока zstd. Формат ячейки: content (uint16 LE),
// light, param. Позиция блока в запись не входит, она хранится в ключе.
// Encoder и Decoder безопасны для параллельных EncodeAll/DecodeAll.
type blockCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newBlockCodec() (*blockCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &blockCodec{enc: enc, dec: dec}, nil
}

func (c *blockCodec) close() {
	c.enc.Close()
	c.dec.Close()
}

func (c *blockCodec) encode(b *voxel.Block) []byte {
	raw := make([]byte, blockBytes)
	for i, q := range b.Qubes {
		off := i * qubeBytes
		binary.LittleEndian.PutUint16(raw[off:], uint16(q.Content))
		raw[off+2] = q.Light
		raw[off+3] = q.Param
	}
	return c.enc.EncodeAll(raw, nil)
}

func (c *blockCodec) decode(pos vec.Vec3, data []byte) (*voxel.Block, error) {
	raw, err := c.dec.DecodeAll(data, make([]byte, 0, blockBytes))
	if err != nil {
		return nil, fmt.Errorf("block %v: %w: %v", pos, ErrCorruptBlock, err)
	}
	if len(raw) != blockBytes {
		return nil, fmt.Errorf("block %v has %d bytes: %w", pos, len(raw), ErrCorruptBlock)
	}

	b := &voxel.Block{Pos: pos}
	for i := range b.Qubes {
		off := i * qubeBytes
		b.Qubes[i] = voxel.Qube{
			Content: voxel.Content(binary.LittleEndian.Uint16(raw[off:])),
			Light:   raw[off+2],
			Param:   raw[off+3],
		}
	}
	return b, nil
}
