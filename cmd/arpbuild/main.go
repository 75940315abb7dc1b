package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soypat/arp"
	"github.com/soypat/arp/mesh"
	"github.com/soypat/arp/render"
	"github.com/soypat/glgl/math/ms3"
)

const helpBanner = `arpbuild precomputes adaptive refinement patterns and tessellates a mesh with them.

Usage:
	arpbuild [flags]

Flags:
`

var (
	depth   = flag.Int("depth", 4, "Max depth (levels per corner), clamped to [1,6]")
	mode    = flag.String("mode", "distance", "Tag mode: uniform or distance")
	level   = flag.Int("level", 2, "Tag used by every vertex in uniform mode")
	eyeFlag = flag.String("eye", "1.5,0,0", "Viewpoint for distance mode as x,y,z")
	input   = flag.String("in", "", "Binary STL model. Defaults to a unit octahedron")
	scale   = flag.Float64("scale", 1, "Scale applied to the model before tagging")
	stlOut  = flag.String("stl", "", "Write the tessellated model to this STL file")
	pngOut  = flag.String("png", "", "Write a preview of the tessellated model to this PNG file")
	verbose = flag.Bool("v", false, "Verbose logging")
)

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
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	tagMode, err := arp.ParseTagMode(*mode)
	if err != nil {
		return err
	}
	eye, err := parseVec(*eyeFlag)
	if err != nil {
		return fmt.Errorf("bad -eye: %w", err)
	}
	maxDepth := arp.ClampDepth(*depth)
	if maxDepth != *depth {
		log.Printf("depth %d clamped to %d", *depth, maxDepth)
	}

	start := time.Now()
	tb, err := arp.Build(maxDepth, arp.CanonicalTriangle)
	if err != nil {
		return err
	}
	log.Printf("built %s in %s", tb.Stats(), time.Since(start).Round(time.Microsecond))

	m, err := loadMesh(*input)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	place := mesh.Placement{Scale: *scale}
	world := place.WorldPositions(nil, m)
	tags := arp.AssignTags(nil, world, eye, arp.TagConfig{
		Mode:         tagMode,
		MaxDepth:     maxDepth,
		UniformLevel: *level,
	})
	log.Printf("mesh: %d triangles, %d vertices, tag histogram %v", m.NumTriangles(), len(world), histogram(tags, maxDepth))

	cfg := render.TessellatorConfig{
		Table:     tb,
		Canonical: arp.CanonicalTriangle,
		Positions: world,
		Indices:   m.Indices,
		Tags:      tags,
		Normals:   place.WorldNormals(nil, m),
	}
	if *stlOut != "" {
		ts, err := render.NewTessellator(cfg)
		if err != nil {
			return err
		}
		if err := render.CreateSTL(*stlOut, ts); err != nil {
			return err
		}
		log.Printf("wrote %s", *stlOut)
	}
	if *pngOut != "" {
		model, err := render.TessellateShaded(cfg)
		if err != nil {
			return err
		}
		fp, err := os.Create(*pngOut)
		if err != nil {
			return err
		}
		defer fp.Close()
		view := render.DefaultView
		view.Scale = 2
		if err := render.PreviewShaded(fp, model, view); err != nil {
			return err
		}
		log.Printf("wrote %s (%d triangles)", *pngOut, len(model))
	}
	return nil
}

func loadMesh(path string) (mesh.Mesh, error) {
	if path == "" {
		return mesh.Octahedron(1), nil
	}
	m, err := mesh.LoadSTL(path)
	if err != nil {
		return mesh.Mesh{}, err
	}
	// STL triangles do not share vertices: smooth the face normals across
	// coincident corners.
	m.MergeNormals()
	return m, nil
}

func parseVec(s string) (ms3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ms3.Vec{}, errors.New("want 3 comma separated components")
	}
	var f [3]float32
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return ms3.Vec{}, err
		}
		f[i] = float32(v)
	}
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
}

func histogram(tags []int, maxDepth int) []int {
	h := make([]int, maxDepth)
	for _, t := range tags {
		h[t]++
	}
	return h
}
