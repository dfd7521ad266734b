package render

import "github.com/chewxy/math32"

// Mesh is interleaved vertex data (position XYZ, texcoord UV) with triangle
// indices.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexStride is the number of floats per vertex in Mesh.Vertices.
const VertexStride = 5

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / VertexStride
}

// SphereGeometry builds a UV sphere. Longitude runs with U and latitude with V;
// V=1 is the north pole. Pole rows emit a single triangle per segment.
func SphereGeometry(radius float32, widthSegments, heightSegments int) Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	var m Mesh
	grid := make([][]uint32, 0, heightSegments+1)
	var index uint32

	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		theta := v * math32.Pi
		row := make([]uint32, 0, widthSegments+1)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi

			x := -radius * math32.Cos(phi) * math32.Sin(theta)
			y := radius * math32.Cos(theta)
			z := radius * math32.Sin(phi) * math32.Sin(theta)

			m.Vertices = append(m.Vertices, x, y, z, u, 1-v)
			row = append(row, index)
			index++
		}
		grid = append(grid, row)
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			if iy != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}

	return m
}
