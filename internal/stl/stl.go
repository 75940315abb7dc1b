// Package stl implements the binary STL triangle codec shared by the mesh
// reader and the tessellation writer.
package stl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
)

const (
	HeaderSize   = 84
	TriangleSize = 50
)

var ErrNormalMismatch = errors.New("stl: triangle normal not approximately equal to normal calculated from vertices")

// Header is the STL file header.
type Header struct {
	_     [80]uint8
	Count uint32 // Number of triangles.
}

func (h Header) Put(b []byte) {
	_ = b[83] // early bounds check
	for i := range b[:80] {
		b[i] = 0
	}
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *Header) Get(b []byte) {
	_ = b[83]
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// Triangle is a triangle record within an STL file.
type Triangle struct {
	Normal [3]float32
	V      [3][3]float32
	_      uint16 // Attribute byte count, unused.
}

func (t Triangle) Put(b []byte) {
	_ = b[TriangleSize-1]
	put3F32(b, t.Normal)
	put3F32(b[12:], t.V[0])
	put3F32(b[24:], t.V[1])
	put3F32(b[36:], t.V[2])
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *Triangle) Get(b []byte) {
	_ = b[TriangleSize-1]
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.V[0])
	get3F32(b[24:], &t.V[1])
	get3F32(b[36:], &t.V[2])
}

// Validate checks for non-finite values, degenerate triangles and normals
// not matching the vertex winding. ErrNormalMismatch is informational for
// high resolution models and callers may choose to ignore it.
func (t Triangle) Validate() error {
	const (
		epsilon = 1e-12
		normTol = 5e-2
	)
	if bad3F32(t.Normal) {
		return errors.New("stl: inf/NaN triangle normal")
	}
	if bad3F32(t.V[0]) || bad3F32(t.V[1]) || bad3F32(t.V[2]) {
		return errors.New("stl: inf/NaN triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errors.New("stl: triangle is degenerate")
	}
	if t.Normal == ([3]float32{}) {
		return nil // Normal left for the reader to calculate.
	}
	calc := t.NormalFromVertices()
	neg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithin3F32(calc, t.Normal, normTol) && !equalWithin3F32(neg, t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

// NormalFromVertices returns the unit normal of the counter-clockwise winding.
func (t Triangle) NormalFromVertices() [3]float32 {
	e1 := sub3F32(t.V[1], t.V[0])
	e2 := sub3F32(t.V[2], t.V[0])
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}

func (t Triangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.V[0], t.V[1], tol) ||
		equalWithin3F32(t.V[1], t.V[2], tol) ||
		equalWithin3F32(t.V[2], t.V[0], tol)
}

// Write writes a full binary STL file containing triangles to w.
func Write(w io.Writer, triangles []Triangle) (int, error) {
	nt := int64(len(triangles)) // int64 so the check below works on 32 bit machines.
	if nt == 0 {
		return 0, errors.New("stl: empty triangle slice")
	} else if nt > math.MaxUint32 {
		return 0, errors.New("stl: amount of triangles exceeds STL design limits")
	}
	var buf [HeaderSize]byte
	Header{Count: uint32(nt)}.Put(buf[:])
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	}
	for i := range triangles {
		triangles[i].Put(buf[:TriangleSize])
		ngot, err := w.Write(buf[:TriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != TriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// Read reads a binary STL file. Normal mismatches are tolerated up to a limit
// and reported as ErrNormalMismatch alongside the triangles read.
func Read(r io.Reader) (output []Triangle, readErr error) {
	const maxMismatches = 10_000
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("stl: encountered EOF while reading header")
		}
		return nil, fmt.Errorf("stl: header read failed: %w", err)
	}
	var header Header
	header.Get(buf[:])
	if header.Count == 0 {
		return nil, errors.New("stl: header indicates 0 triangles present")
	}
	var (
		d              Triangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]Triangle, 0, min(int(header.Count), 1<<16))
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:TriangleSize]); err != nil {
			return nil, err
		}
		d.Get(buf[:TriangleSize])
		if err := d.Validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			if normMismatches > maxMismatches {
				return output, fmt.Errorf("stl: too many normal vector mismatches (%d)", normMismatches)
			}
			readErr = err
		}
		output = append(output, d)
	}
	return output, readErr
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func sub3F32(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}
