package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
)

// View configures the camera of a preview.
type View struct {
	// What position (point) to look at.
	LookAt ms3.Vec
	// Which way is up (direction).
	Up ms3.Vec
	// Where the camera is located (point).
	Eye       ms3.Vec
	Near, Far float64
	// Output size in pixels.
	Width, Height int
	// Supersampling factor. Zero means 1.
	Scale int
}

// DefaultView looks at the origin from (3,3,3) with Z up.
var DefaultView = View{
	Up:     ms3.Vec{Z: 1},
	Eye:    ms3.Vec{X: 3, Y: 3, Z: 3},
	Near:   1,
	Far:    10,
	Width:  768,
	Height: 432,
	Scale:  1,
}

// PreviewImage rasterizes model with a phong shader. The model is fitted in
// a bi-unit cube centered at the origin first. Triangles are flat shaded.
func PreviewImage(model []ms3.Triangle, view View) (image.Image, error) {
	triangles := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		triangles[i] = fauxgl.NewTriangleForPoints(fauxglV(t[0]), fauxglV(t[1]), fauxglV(t[2]))
	}
	return rasterize(triangles, view)
}

// PreviewShadedImage is like PreviewImage but shades with the per-corner
// normals of model, so merged normals render smooth across triangles.
func PreviewShadedImage(model []ShadedTriangle, view View) (image.Image, error) {
	triangles := make([]*fauxgl.Triangle, len(model))
	for i, st := range model {
		t := fauxgl.NewTriangleForPoints(fauxglV(st.Triangle[0]), fauxglV(st.Triangle[1]), fauxglV(st.Triangle[2]))
		t.V1.Normal = fauxglV(st.Normals[0])
		t.V2.Normal = fauxglV(st.Normals[1])
		t.V3.Normal = fauxglV(st.Normals[2])
		triangles[i] = t
	}
	return rasterize(triangles, view)
}

func rasterize(triangles []*fauxgl.Triangle, view View) (image.Image, error) {
	if len(triangles) == 0 {
		return nil, errors.New("render: empty model")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("render: invalid preview size")
	}
	const fovy = 30 // vertical field of view in degrees
	scale := max(view.Scale, 1)
	var (
		eye    = fauxglV(view.Eye)
		center = fauxglV(view.LookAt)
		up     = fauxglV(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	mesh := fauxgl.NewTriangleMesh(triangles)
	mesh.BiUnitCube()

	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		// Downsample for antialiasing.
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// Preview writes a PNG rendering of model to w.
func Preview(w io.Writer, model []ms3.Triangle, view View) error {
	img, err := PreviewImage(model, view)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// PreviewShaded writes a PNG rendering of model with smooth shading to w.
func PreviewShaded(w io.Writer, model []ShadedTriangle, view View) error {
	img, err := PreviewShadedImage(model, view)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func fauxglV(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}
