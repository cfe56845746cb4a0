package voxel

import (
	"fmt"

	"github.com/annel0/voxel-core/internal/vec"
)

// BlockResolver возвращает блок для позиции, если он есть
type BlockResolver func(pos vec.Vec3) (*Block, bool)

// VManip - окно только для чтения над уже существующими блоками.
// Блоки не принадлежат окну.
type VManip struct {
	window
	blocks []*Block
}

// NewVManip сразу резолвит блоки для всех позиций в [a, b]
func NewVManip(a, b vec.Vec3, resolve BlockResolver) *VManip {
	vm := &VManip{window: newWindow(a, b)}
	vm.blocks = make([]*Block, vm.bsize.Volume())
	for pos := range vec.Box(a, b) {
		if blk, ok := resolve(pos); ok {
			vm.blocks[vm.indexUnsafe(pos)] = blk
		}
	}
	return vm
}

// Block возвращает блок окна
func (vm *VManip) Block(vblock vec.Vec3) (*Block, error) {
	i, ok := vm.index(vblock)
	if !ok {
		return nil, fmt.Errorf("block %v outside VManip: %w", vblock, ErrOutOfRange)
	}
	blk := vm.blocks[i]
	if blk == nil {
		return nil, fmt.Errorf("block %v: %w", vblock, ErrBlockMissing)
	}
	return blk, nil
}

// Get читает ячейку по глобальной координате
func (vm *VManip) Get(pos vec.Vec3) (Qube, error) {
	vblock, rel := Split(pos)
	blk, err := vm.Block(vblock)
	if err != nil {
		return Qube{}, err
	}
	return blk.At(rel), nil
}
