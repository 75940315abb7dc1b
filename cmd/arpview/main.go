package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/arp"
	"github.com/soypat/arp/glarp"
	"github.com/soypat/arp/mesh"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"gonum.org/v1/gonum/spatial/r3"
)

const helpBanner = `arpview draws meshes through adaptive refinement patterns.

Keys:
	1-9            select model
	arrows, PgUp/PgDn  move the eye
	+ -            change max depth
	m              toggle tag mode
	l              cycle uniform level
	w              toggle wireframe
	o              toggle original mesh

Flags:
`

var (
	depth   = flag.Int("depth", 4, "Initial max depth, clamped to [1,6]")
	verbose = flag.Bool("v", false, "Verbose logging")
	inputs  stlPaths
)

func init() {
	runtime.LockOSThread() // For GL.
	flag.Var(&inputs, "in", "Binary STL model, may be repeated. Models follow the built-in octahedron and plane")
}

// stlPaths is a repeatable string flag.
type stlPaths []string

func (p *stlPaths) String() string { return strings.Join(*p, ",") }

func (p *stlPaths) Set(s string) error {
	*p = append(*p, s)
	return nil
}

// model is a selectable mesh.
type model struct {
	name    string
	mesh    mesh.Mesh
	normals []ms3.Vec
	world   []ms3.Vec
}

func newModel(name string, m mesh.Mesh) (model, error) {
	if err := m.Validate(); err != nil {
		return model{}, fmt.Errorf("%s: %w", name, err)
	}
	var pl mesh.Placement
	return model{
		name:    name,
		mesh:    m,
		world:   pl.WorldPositions(nil, m),
		normals: pl.WorldNormals(nil, m),
	}, nil
}

// loadModels returns the built-in models followed by the STL files at paths.
func loadModels(paths []string) ([]model, error) {
	builtins := []struct {
		name string
		mesh mesh.Mesh
	}{
		{"octahedron", mesh.Octahedron(1)},
		{"plane", mesh.Plane(4, 8)},
	}
	var models []model
	for _, b := range builtins {
		md, err := newModel(b.name, b.mesh)
		if err != nil {
			return nil, err
		}
		models = append(models, md)
	}
	for _, path := range paths {
		m, err := mesh.LoadSTL(path)
		if err != nil {
			return nil, err
		}
		m.MergeNormals()
		md, err := newModel(path, m)
		if err != nil {
			return nil, err
		}
		models = append(models, md)
	}
	return models, nil
}

// fitCamera returns a look-at point at the center of m's bounds and an eye
// on the diagonal, one bounding box diagonal away from the center.
func fitCamera(m mesh.Mesh) (center, eye ms3.Vec) {
	bb := m.Bounds()
	c := r3.Scale(0.5, r3.Add(bb.Min, bb.Max))
	size := max(r3.Norm(r3.Sub(bb.Max, bb.Min)), 1e-3)
	e := r3.Add(c, r3.Scale(size, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})))
	return toMS3(c), toMS3(e)
}

func toMS3(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// viewer is the per-frame application state.
type viewer struct {
	store     *arp.Store
	buffers   *glarp.Buffers
	models    []model
	current   int
	tags      []int
	eye       ms3.Vec
	center    ms3.Vec
	cfg       arp.TagConfig
	wireframe bool
	original  bool
}

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBanner)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *verbose {
		arp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	models, err := loadModels(inputs)
	if err != nil {
		log.Fatal(err)
	}
	window, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "arpview",
		Version: [2]int{4, 6},
		Width:   1280,
		Height:  720,
	})
	if err != nil {
		log.Fatal("FAIL to start GLFW: ", err)
	}
	defer terminate()

	v, err := newViewer(arp.ClampDepth(*depth), models)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { v.buffers.Delete() }()
	window.SetKeyCallback(v.onKey)

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(1, 0.97, 0.89, 1)
	for !window.ShouldClose() {
		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		v.draw(float64(w) / float64(max(h, 1)))
		window.SwapBuffers()
		glfw.PollEvents()
	}
}

func newViewer(maxDepth int, models []model) (*viewer, error) {
	store, err := arp.NewStore(maxDepth)
	if err != nil {
		return nil, err
	}
	buffers, err := glarp.Upload(store.Load())
	if err != nil {
		return nil, err
	}
	v := &viewer{
		store:   store,
		buffers: buffers,
		models:  models,
		cfg: arp.TagConfig{
			Mode:         arp.TagDistance,
			MaxDepth:     maxDepth,
			UniformLevel: maxDepth - 1,
		},
	}
	v.selectModel(0)
	return v, nil
}

// selectModel makes the ith model current, fits the camera to it and
// retags its vertices.
func (v *viewer) selectModel(i int) {
	if i < 0 || i >= len(v.models) {
		return
	}
	v.current = i
	md := &v.models[i]
	v.center, v.eye = fitCamera(md.mesh)
	v.retag()
	log.Printf("model %d: %s (%d triangles)", i+1, md.name, md.mesh.NumTriangles())
}

// retag recomputes the vertex tags of the current model. Tags depend on the
// eye, the tag settings and the model, so it runs whenever one changes.
func (v *viewer) retag() {
	md := &v.models[v.current]
	v.tags = arp.AssignTags(v.tags, md.world, v.eye, v.cfg)
}

func (v *viewer) draw(aspect float64) {
	md := &v.models[v.current]
	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	v.buffers.Begin(glarp.Frame{
		ViewProj: glarp.ViewProj(v.eye, v.center, ms3.Vec{Z: 1}, 45, aspect, 0.01, 1000),
		Color:    ms3.Vec{X: 0.27, Y: 0.54, Z: 0.4},
	})
	tags := v.tags
	if v.original {
		tags = nil
	}
	v.buffers.DrawMesh(md.world, md.normals, md.mesh.Indices, tags)
	v.buffers.End()
}

// setDepth rebuilds the pattern table and uploads it. On failure the
// previous table and buffers stay in use.
func (v *viewer) setDepth(maxDepth int) {
	maxDepth = arp.ClampDepth(maxDepth)
	if err := v.store.Rebuild(maxDepth); err != nil {
		log.Println(err)
		return
	}
	tb := v.store.Load()
	if tb == v.buffers.Table() {
		return
	}
	buffers, err := glarp.Upload(tb)
	if err != nil {
		log.Println(err)
		return
	}
	v.buffers.Delete()
	v.buffers = buffers
	v.cfg.MaxDepth = maxDepth
	v.cfg.UniformLevel = min(v.cfg.UniformLevel, maxDepth-1)
	v.retag()
	log.Printf("max depth %d: %s", maxDepth, tb.Stats())
}

func (v *viewer) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	step := ms3.Norm(ms3.Sub(v.eye, v.center)) / 50
	moved := true
	switch key {
	case glfw.KeyLeft:
		v.eye.X -= step
	case glfw.KeyRight:
		v.eye.X += step
	case glfw.KeyUp:
		v.eye.Y += step
	case glfw.KeyDown:
		v.eye.Y -= step
	case glfw.KeyPageUp:
		v.eye.Z += step
	case glfw.KeyPageDown:
		v.eye.Z -= step
	default:
		moved = false
	}
	if moved {
		v.retag()
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyEqual, glfw.KeyKPAdd:
		v.setDepth(v.cfg.MaxDepth + 1)
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		v.setDepth(v.cfg.MaxDepth - 1)
	case glfw.KeyM:
		if v.cfg.Mode == arp.TagDistance {
			v.cfg.Mode = arp.TagUniform
		} else {
			v.cfg.Mode = arp.TagDistance
		}
		v.retag()
		log.Printf("tag mode %s", v.cfg.Mode)
	case glfw.KeyL:
		v.cfg.UniformLevel = (v.cfg.UniformLevel + 1) % v.cfg.MaxDepth
		v.retag()
		log.Printf("uniform level %d", v.cfg.UniformLevel)
	case glfw.KeyW:
		v.wireframe = !v.wireframe
	case glfw.KeyO:
		v.original = !v.original
	default:
		if key >= glfw.Key1 && key <= glfw.Key9 {
			v.selectModel(int(key - glfw.Key1))
		}
	}
}
