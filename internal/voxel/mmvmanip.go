package voxel

import (
	"fmt"

	"github.com/annel0/voxel-core/internal/vec"
)

// MMVManip - окно из свежевыделенных блоков, которыми оно владеет.
// Используется генератором как черновик; готовые блоки забираются TakeBlock.
type MMVManip struct {
	window
	blocks []*Block

	// MinEdge, MaxEdge - границы окна в ячейках (включительно)
	MinEdge vec.Vec3
	MaxEdge vec.Vec3
}

// NewMMVManip выделяет по блоку на каждую позицию в [a, b]
func NewMMVManip(a, b vec.Vec3) *MMVManip {
	vm := &MMVManip{
		window:  newWindow(a, b),
		MinEdge: a.Mul(BlockSize),
		MaxEdge: b.Mul(BlockSize).Add(vec.Splat(BlockSize - 1)),
	}
	vm.blocks = make([]*Block, vm.bsize.Volume())
	for pos := range vec.Box(a, b) {
		vm.blocks[vm.indexUnsafe(pos)] = NewBlock(pos)
	}
	return vm
}

// InArea проверяет, лежит ли ячейка внутри окна
func (vm *MMVManip) InArea(pos vec.Vec3) bool {
	vblock, _ := Split(pos)
	return vm.InManip(vblock)
}

// Block возвращает блок окна
func (vm *MMVManip) Block(vblock vec.Vec3) (*Block, error) {
	i, ok := vm.index(vblock)
	if !ok {
		return nil, fmt.Errorf("block %v outside MMVManip: %w", vblock, ErrOutOfRange)
	}
	blk := vm.blocks[i]
	if blk == nil {
		return nil, fmt.Errorf("block %v: %w", vblock, ErrBlockTaken)
	}
	return blk, nil
}

// TakeBlock передаёт владение блоком вызывающему. Повторный вызов
// для той же позиции возвращает ErrBlockTaken.
func (vm *MMVManip) TakeBlock(vblock vec.Vec3) (*Block, error) {
	blk, err := vm.Block(vblock)
	if err != nil {
		return nil, err
	}
	vm.blocks[vm.indexUnsafe(vblock)] = nil
	return blk, nil
}

// GetR читает ячейку по глобальной координате
func (vm *MMVManip) GetR(pos vec.Vec3) (Qube, error) {
	vblock, rel := Split(pos)
	blk, err := vm.Block(vblock)
	if err != nil {
		return Qube{}, err
	}
	return blk.At(rel), nil
}

// GetRW возвращает указатель на ячейку для записи
func (vm *MMVManip) GetRW(pos vec.Vec3) (*Qube, error) {
	vblock, rel := Split(pos)
	blk, err := vm.Block(vblock)
	if err != nil {
		return nil, err
	}
	return &blk.Qubes[IndexUnsafe(rel)], nil
}

// Set записывает ячейку
func (vm *MMVManip) Set(pos vec.Vec3, q Qube) error {
	p, err := vm.GetRW(pos)
	if err != nil {
		return err
	}
	*p = q
	return nil
}

// GetIgn читает ячейку, возвращая IgnoreQube вместо ошибки за пределами окна
func (vm *MMVManip) GetIgn(pos vec.Vec3) Qube {
	q, err := vm.GetR(pos)
	if err != nil {
		return IgnoreQube
	}
	return q
}
