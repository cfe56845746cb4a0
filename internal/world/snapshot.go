package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-core/internal/mesh"
	"github.com/annel0/voxel-core/internal/meshgen"
	"github.com/annel0/voxel-core/internal/vec"
	"github.com/annel0/voxel-core/internal/voxel"
)

// MeshRef - меш блока на выбранном уровне детализации
type MeshRef struct {
	Pos   vec.Vec3
	Level int
	Mesh  *mesh.Mesh
}

// GetMeshes ждёт мьютекс и возвращает меши всех замешенных блоков.
// Уровень выбирается по расстоянию от eye до центра блока.
func (m *Map) GetMeshes(eye mgl32.Vec3, ref float64) []MeshRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendMeshesLocked(nil, eye, ref)
}

// TryGetMeshes - неблокирующий вариант GetMeshes. Если мьютекс занят,
// возвращает dst без изменений и false.
func (m *Map) TryGetMeshes(dst []MeshRef, eye mgl32.Vec3, ref float64) ([]MeshRef, bool) {
	if !m.mu.TryLock() {
		return dst, false
	}
	defer m.mu.Unlock()
	return m.appendMeshesLocked(dst[:0], eye, ref), true
}

func (m *Map) appendMeshesLocked(dst []MeshRef, eye mgl32.Vec3, ref float64) []MeshRef {
	const half = voxel.BlockSize / 2
	for pos, e := range m.data {
		if e.Meshes[0] == nil {
			continue
		}
		c := pos.Mul(voxel.BlockSize).Add(vec.Splat(half))
		center := mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
		level := meshgen.SelectLevel(float64(center.Sub(eye).Len()), ref)

		msh := e.Meshes[level]
		if msh == nil {
			m.log.Warn("у блока %v нет уровня %d, беру уровень 0", pos, level)
			level, msh = 0, e.Meshes[0]
		}
		dst = append(dst, MeshRef{Pos: pos, Level: level, Mesh: msh})
	}
	return dst
}
