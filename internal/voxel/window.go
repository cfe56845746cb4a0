package voxel

import "github.com/annel0/voxel-core/internal/vec"

// window - прямоугольная область блоков [start, start+size)
type window struct {
	bstart vec.Vec3
	bsize  vec.Vec3
}

func newWindow(a, b vec.Vec3) window {
	return window{bstart: a, bsize: b.Sub(a).Add(vec.Splat(1))}
}

// InManip проверяет, лежит ли блок внутри окна
func (w window) InManip(vblock vec.Vec3) bool {
	r := vblock.Sub(w.bstart)
	return r.X >= 0 && r.X < w.bsize.X &&
		r.Y >= 0 && r.Y < w.bsize.Y &&
		r.Z >= 0 && r.Z < w.bsize.Z
}

func (w window) indexUnsafe(vblock vec.Vec3) int {
	r := vblock.Sub(w.bstart)
	return r.X + w.bsize.X*(r.Y+w.bsize.Y*r.Z)
}

func (w window) index(vblock vec.Vec3) (int, bool) {
	if !w.InManip(vblock) {
		return 0, false
	}
	return w.indexUnsafe(vblock), true
}

// Min - первый блок окна
func (w window) Min() vec.Vec3 { return w.bstart }

// Max - последний блок окна (включительно)
func (w window) Max() vec.Vec3 { return w.bstart.Add(w.bsize).Sub(vec.Splat(1)) }
