package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Octahedron returns a welded octahedron with vertices at distance radius
// from the origin along each axis.
func Octahedron(radius float64) Mesh {
	px, nx := r3.Vec{X: radius}, r3.Vec{X: -radius}
	py, ny := r3.Vec{Y: radius}, r3.Vec{Y: -radius}
	pz, nz := r3.Vec{Z: radius}, r3.Vec{Z: -radius}
	m := FromTriangles([]Triangle{
		{px, py, pz}, {py, nx, pz}, {nx, ny, pz}, {ny, px, pz},
		{py, px, nz}, {nx, py, nz}, {ny, nx, nz}, {px, ny, nz},
	})
	return m.Weld()
}

// Plane returns a welded square grid of side size in the XY plane, centered at
// the origin, with n by n cells of two triangles each. Normals point along +Z.
func Plane(size float64, n int) Mesh {
	n = max(n, 1)
	at := func(i, j int) r3.Vec {
		step := size / float64(n)
		return r3.Vec{X: float64(i)*step - size/2, Y: float64(j)*step - size/2}
	}
	triangles := make([]Triangle, 0, 2*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p00, p10, p11, p01 := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			triangles = append(triangles, Triangle{p00, p10, p11}, Triangle{p00, p11, p01})
		}
	}
	m := FromTriangles(triangles)
	return m.Weld()
}
