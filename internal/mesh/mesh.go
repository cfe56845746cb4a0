package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-core/internal/voxel"
)

// VerticesPerQuad - вершин на одну грань
const VerticesPerQuad = 4

// Vertex - вершина грани
type Vertex struct {
	Position   mgl32.Vec3
	Brightness float32
	Color      mgl32.Vec3
	// Type - идентификатор материала грани
	Type uint32
	UV   mgl32.Vec2
}

// Mesh - набор осевых четырёхугольников, по четыре вершины на каждый
type Mesh struct {
	Vertices []Vertex
}

// New создаёт пустой меш с запасом под quads граней
func New(quads int) *Mesh {
	return &Mesh{Vertices: make([]Vertex, 0, quads*VerticesPerQuad)}
}

// AddQuad добавляет грань
func (m *Mesh) AddQuad(q [VerticesPerQuad]Vertex) {
	m.Vertices = append(m.Vertices, q[:]...)
}

// Empty - нет ни одной грани
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Vertices) == 0
}

// QuadCount возвращает число граней
func (m *Mesh) QuadCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices) / VerticesPerQuad
}

// Materials считает грани по материалам
func (m *Mesh) Materials() map[voxel.Content]int {
	res := make(map[voxel.Content]int)
	if m == nil {
		return res
	}
	for i := 0; i < len(m.Vertices); i += VerticesPerQuad {
		res[voxel.Content(m.Vertices[i].Type)]++
	}
	return res
}

// Bounds возвращает ограничивающий параллелепипед вершин
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if m.Empty() {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v.Position[k] < min[k] {
				min[k] = v.Position[k]
			}
			if v.Position[k] > max[k] {
				max[k] = v.Position[k]
			}
		}
	}
	return min, max
}
