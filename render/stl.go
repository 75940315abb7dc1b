package render

import (
	"errors"
	"io"
	"os"

	"github.com/soypat/arp/internal/stl"
	"github.com/soypat/glgl/math/ms3"
)

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, model []ms3.Triangle) (int, error) {
	records := make([]stl.Triangle, len(model))
	for i := range model {
		records[i] = toSTL(model[i])
	}
	return stl.Write(w, records)
}

// CreateSTL streams the triangles of r into a binary STL file at path.
func CreateSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	// Header is written once the triangle count is known.
	_, err = file.Seek(stl.HeaderSize, io.SeekStart)
	if err != nil {
		return err
	}
	const trianglesInBuffer = 1 << 10
	var (
		buf   [trianglesInBuffer]ms3.Triangle
		b     [stl.TriangleSize * trianglesInBuffer]byte
		count uint32
	)
	for {
		nt, rerr := r.ReadTriangles(buf[:])
		for i := range buf[:nt] {
			toSTL(buf[i]).Put(b[i*stl.TriangleSize:])
		}
		if _, err = file.Write(b[:nt*stl.TriangleSize]); err != nil {
			return err
		}
		count += uint32(nt)
		if rerr == io.EOF {
			break
		} else if rerr != nil {
			return rerr
		}
	}
	if count == 0 {
		return errors.New("render: no triangles to write")
	}
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	var header [stl.HeaderSize]byte
	stl.Header{Count: count}.Put(header[:])
	_, err = file.Write(header[:])
	return err
}

func toSTL(t ms3.Triangle) stl.Triangle {
	d := stl.Triangle{
		V: [3][3]float32{
			{t[0].X, t[0].Y, t[0].Z},
			{t[1].X, t[1].Y, t[1].Z},
			{t[2].X, t[2].Y, t[2].Z},
		},
	}
	d.Normal = d.NormalFromVertices()
	return d
}
