package geometry

import (
	"math"
	"math/rand"
)

// Attribute names used by the built-in shapes.
const (
	AttribPosition = "i_Position"
	AttribNormal   = "i_Normal"
	AttribTexCoord = "i_TexCoord"
)

// NewQuad returns a unit quad in the XY plane spanning [-1, 1] with texture coordinates,
// drawn as two triangles. Drawn with an identity view it covers the whole viewport.
func NewQuad() *Mesh {
	layout := []Attribute{{AttribPosition, 3}, {AttribTexCoord, 2}}
	vertices := []float32{
		-1, -1, 0, 0, 0,
		1, -1, 0, 1, 0,
		1, 1, 0, 1, 1,
		-1, 1, 0, 0, 1,
	}
	return NewMesh(layout, vertices, []uint16{0, 1, 2, 0, 2, 3})
}

// NewCube returns a unit cube centered at the origin with per-face normals, drawn as
// triangles. With wireframe set it instead holds the 8 corners and the 24 indices of its
// 12 edges, drawn as lines.
func NewCube(wireframe bool) *Mesh {
	if wireframe {
		corners := make([]float32, 0, 24)
		for i := 0; i < 8; i++ {
			corners = append(corners,
				float32(i&1)-0.5,
				float32(i>>1&1)-0.5,
				float32(i>>2&1)-0.5,
			)
		}
		edges := []uint16{
			0, 1, 2, 3, 4, 5, 6, 7, // along X
			0, 2, 1, 3, 4, 6, 5, 7, // along Y
			0, 4, 1, 5, 2, 6, 3, 7, // along Z
		}
		return NewMesh([]Attribute{{AttribPosition, 3}}, corners, edges)
	}

	faces := []struct {
		normal [3]float32
		u, v   [3]float32
	}{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]float32, 0, 6*4*6)
	indices := make([]uint16, 0, 36)
	for f, face := range faces {
		for _, c := range corners {
			for k := 0; k < 3; k++ {
				vertices = append(vertices, 0.5*(face.normal[k]+c[0]*face.u[k]+c[1]*face.v[k]))
			}
			vertices = append(vertices, face.normal[:]...)
		}
		base := uint16(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh([]Attribute{{AttribPosition, 3}, {AttribNormal, 3}}, vertices, indices)
}

// NewPointCloud returns n points uniformly distributed in the unit cube [0, 1)^3.
func NewPointCloud(n int, seed int64) *Mesh {
	rng := rand.New(rand.NewSource(seed))
	vertices := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		vertices = append(vertices, rng.Float32(), rng.Float32(), rng.Float32())
	}
	return NewMesh([]Attribute{{AttribPosition, 3}}, vertices, nil)
}

// NewPointSphere returns n points uniformly distributed on the unit sphere.
func NewPointSphere(n int, seed int64) *Mesh {
	rng := rand.New(rand.NewSource(seed))
	vertices := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		z := 2*rng.Float64() - 1
		phi := 2 * math.Pi * rng.Float64()
		r := math.Sqrt(1 - z*z)
		vertices = append(vertices, float32(r*math.Cos(phi)), float32(r*math.Sin(phi)), float32(z))
	}
	return NewMesh([]Attribute{{AttribPosition, 3}}, vertices, nil)
}
