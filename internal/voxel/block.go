package voxel

import (
	"fmt"

	"github.com/annel0/voxel-core/internal/vec"
)

const (
	// BlockSize - длина ребра блока в ячейках
	BlockSize = 16
	// BlockVolume - число ячеек в блоке
	BlockVolume = BlockSize * BlockSize * BlockSize
)

// Block - куб BlockSize³ ячеек. После публикации в хранилище не изменяется.
type Block struct {
	Pos   vec.Vec3
	Qubes [BlockVolume]Qube
}

// NewBlock создаёт блок, все ячейки которого «не заданы»
func NewBlock(pos vec.Vec3) *Block {
	b := &Block{Pos: pos}
	for i := range b.Qubes {
		b.Qubes[i] = IgnoreQube
	}
	return b
}

// InBlock проверяет, что относительная позиция лежит внутри блока
func InBlock(rel vec.Vec3) bool {
	return rel.X >= 0 && rel.X < BlockSize &&
		rel.Y >= 0 && rel.Y < BlockSize &&
		rel.Z >= 0 && rel.Z < BlockSize
}

// IndexUnsafe - индекс без проверки границ
func IndexUnsafe(rel vec.Vec3) int {
	return rel.X + BlockSize*(rel.Y+BlockSize*rel.Z)
}

// Index возвращает индекс ячейки или ErrOutOfRange
func Index(rel vec.Vec3) (int, error) {
	if !InBlock(rel) {
		return 0, fmt.Errorf("qube %v outside block: %w", rel, ErrOutOfRange)
	}
	return IndexUnsafe(rel), nil
}

// Split разбивает глобальную координату ячейки на позицию блока и
// относительную позицию внутри него (деление с округлением вниз)
func Split(pos vec.Vec3) (block, rel vec.Vec3) {
	return pos.DivRem(BlockSize)
}

// GetR читает ячейку по относительной позиции
func (b *Block) GetR(rel vec.Vec3) (Qube, error) {
	i, err := Index(rel)
	if err != nil {
		return Qube{}, err
	}
	return b.Qubes[i], nil
}

// GetRW возвращает указатель на ячейку для записи
func (b *Block) GetRW(rel vec.Vec3) (*Qube, error) {
	i, err := Index(rel)
	if err != nil {
		return nil, err
	}
	return &b.Qubes[i], nil
}

// At - быстрый доступ без проверки для горячих циклов
func (b *Block) At(rel vec.Vec3) Qube {
	return b.Qubes[IndexUnsafe(rel)]
}
