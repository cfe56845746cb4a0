package voxel

import "errors"

var (
	// ErrOutOfRange - координата вне блока, окна или слайса
	ErrOutOfRange = errors.New("coordinates out of range")
	// ErrBlockTaken - блок уже забрали из MMVManip
	ErrBlockTaken = errors.New("block already taken")
	// ErrBlockMissing - резолвер не вернул блок для позиции окна
	ErrBlockMissing = errors.New("block missing in window")
)
