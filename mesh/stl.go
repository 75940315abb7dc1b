package mesh

import (
	"errors"
	"io"
	"os"

	"github.com/soypat/arp/internal/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadSTL reads a binary STL model as an unwelded mesh. Mismatches between
// stored and calculated normals are not reported; vertex normals are always
// calculated from the winding.
func ReadSTL(r io.Reader) (Mesh, error) {
	records, err := stl.Read(r)
	if err != nil && !errors.Is(err, stl.ErrNormalMismatch) {
		return Mesh{}, err
	}
	triangles := make([]Triangle, len(records))
	for i, rec := range records {
		for j := range rec.V {
			triangles[i][j] = r3From3F32(rec.V[j])
		}
	}
	return FromTriangles(triangles), nil
}

// LoadSTL reads a binary STL file from disk.
func LoadSTL(path string) (Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Mesh{}, err
	}
	defer fp.Close()
	return ReadSTL(fp)
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}
