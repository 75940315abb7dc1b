// Package glarp uploads ARP pattern tables to OpenGL buffers and draws
// patterns onto mesh triangles. An OpenGL 4.3+ context must be current on
// the calling goroutine's locked OS thread.
package glarp

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/fogleman/fauxgl"
	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/arp"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Uniform locations fixed by the shader's layout qualifiers.
const (
	locViewProj = 0
	locCorners  = 1 // 3 consecutive vec3: top, left, right.
	locColor    = 4
	locNormals  = 5 // 3 consecutive vec3 matching corners.
	locLight    = 8
)

// shaderSource maps pattern vertices, which are barycentric weights over
// the canonical unit axes (right, top, left), onto the triangle corners.
const shaderSource = `
#shader vertex
#version 430
layout(location = 0) in vec3 bary;
layout(location = 0) uniform mat4 viewProj;
layout(location = 1) uniform vec3 corners[3];
layout(location = 5) uniform vec3 normals[3];
out vec3 vBary;
out vec3 vNormal;
void main() {
	vec3 p = bary.y*corners[0] + bary.z*corners[1] + bary.x*corners[2];
	vNormal = bary.y*normals[0] + bary.z*normals[1] + bary.x*normals[2];
	vBary = bary;
	gl_Position = viewProj * vec4(p, 1.0);
}
#shader fragment
#version 430
in vec3 vBary;
in vec3 vNormal;
layout(location = 4) uniform vec3 color;
layout(location = 8) uniform vec3 light;
out vec4 fragColor;
void main() {
	// Darken pattern edges to make the tessellation visible.
	float edge = min(min(vBary.x, vBary.y), vBary.z);
	float shade = mix(0.6, 1.0, smoothstep(0.0, 0.02, edge));
	float diffuse = abs(dot(normalize(vNormal), light));
	fragColor = vec4(color*shade*(0.3+0.7*diffuse), 1.0);
}
`

// Buffers holds a pattern table uploaded to the GPU.
type Buffers struct {
	prog  glgl.Program
	vao   uint32
	vbo   uint32
	ebo   uint32
	table *arp.Table
}

// Upload compiles the pattern program and uploads the packed vertex and
// index buffers of tb. tb must have been built from arp.CanonicalTriangle.
func Upload(tb *arp.Table) (*Buffers, error) {
	if tb == nil {
		return nil, errors.New("glarp: nil table")
	}
	src, err := glgl.ParseCombined(strings.NewReader(shaderSource))
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(src)
	if err != nil {
		return nil, fmt.Errorf("glarp: compiling pattern program: %w", err)
	}
	b := &Buffers{prog: prog, table: tb}
	verts := tb.Vertices()
	indices := tb.Indices()

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*int(unsafe.Sizeof(ms3.Vec{})), gl.Ptr(verts), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, int32(unsafe.Sizeof(ms3.Vec{})), gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindVertexArray(0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		b.Delete()
		return nil, fmt.Errorf("glarp: uploading buffers: GL error 0x%x", code)
	}
	arp.Logger().Debug("glarp: uploaded pattern buffers")
	return b, nil
}

// Table returns the table the buffers were uploaded from.
func (b *Buffers) Table() *arp.Table { return b.table }

// Frame holds the per-frame draw state.
type Frame struct {
	// ViewProj is the column-major view-projection matrix.
	ViewProj [16]float32
	Color    ms3.Vec
	// Light is the direction towards the light. Zero lights along the view axis.
	Light ms3.Vec
}

// ViewProj returns the column-major matrix of a perspective camera at eye
// looking at center. fovy is in degrees.
func ViewProj(eye, center, up ms3.Vec, fovy, aspect, near, far float64) [16]float32 {
	m := fauxgl.LookAt(fauxglV(eye), fauxglV(center), fauxglV(up)).Perspective(fovy, aspect, near, far)
	return [16]float32{
		float32(m.X00), float32(m.X10), float32(m.X20), float32(m.X30),
		float32(m.X01), float32(m.X11), float32(m.X21), float32(m.X31),
		float32(m.X02), float32(m.X12), float32(m.X22), float32(m.X32),
		float32(m.X03), float32(m.X13), float32(m.X23), float32(m.X33),
	}
}

func fauxglV(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}

// Begin binds the program and buffers and sets per-frame uniforms.
func (b *Buffers) Begin(f Frame) {
	b.prog.Bind()
	gl.BindVertexArray(b.vao)
	gl.UniformMatrix4fv(locViewProj, 1, false, &f.ViewProj[0])
	gl.Uniform3f(locColor, f.Color.X, f.Color.Y, f.Color.Z)
	light := f.Light
	if light == (ms3.Vec{}) {
		// Row 2 of the view-projection matrix is parallel to the view axis.
		light = ms3.Vec{X: f.ViewProj[2], Y: f.ViewProj[6], Z: f.ViewProj[10]}
	}
	light = ms3.Unit(light)
	gl.Uniform3f(locLight, light.X, light.Y, light.Z)
}

// Corner is a mesh triangle corner.
type Corner struct {
	Pos    ms3.Vec
	Normal ms3.Vec
	// Level is the corner's tag, a valid corner level of the table.
	Level int
}

// DrawTriangle draws the pattern selected by the corner levels onto the
// triangle (top, left, right). It must be called between Begin and End.
// Levels must be valid for the table, see arp.Table.Lookup.
func (b *Buffers) DrawTriangle(top, left, right Corner) {
	corners := [9]float32{
		top.Pos.X, top.Pos.Y, top.Pos.Z,
		left.Pos.X, left.Pos.Y, left.Pos.Z,
		right.Pos.X, right.Pos.Y, right.Pos.Z,
	}
	normals := [9]float32{
		top.Normal.X, top.Normal.Y, top.Normal.Z,
		left.Normal.X, left.Normal.Y, left.Normal.Z,
		right.Normal.X, right.Normal.Y, right.Normal.Z,
	}
	gl.Uniform3fv(locCorners, 3, &corners[0])
	gl.Uniform3fv(locNormals, 3, &normals[0])
	offset, count := b.table.Lookup(top.Level, left.Level, right.Level)
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(4*offset))
}

// DrawMesh draws every triangle of an indexed mesh using per-vertex tags.
// With nil normals triangles are flat shaded. With nil tags every triangle
// draws the level 0 pattern, which is the untessellated triangle.
func (b *Buffers) DrawMesh(positions, normals []ms3.Vec, indices []uint32, tags []int) {
	for i := 0; i+2 < len(indices); i += 3 {
		var c [3]Corner
		for j := range c {
			idx := indices[i+j]
			c[j].Pos = positions[idx]
			if normals != nil {
				c[j].Normal = normals[idx]
			}
			if tags != nil {
				c[j].Level = tags[idx]
			}
		}
		if normals == nil {
			face := faceNormal(c[0].Pos, c[1].Pos, c[2].Pos)
			c[0].Normal, c[1].Normal, c[2].Normal = face, face, face
		}
		b.DrawTriangle(c[0], c[1], c[2])
	}
}

func faceNormal(a, b, c ms3.Vec) ms3.Vec {
	n := ms3.Triangle{a, b, c}.Normal()
	if n == (ms3.Vec{}) {
		return n
	}
	return ms3.Unit(n)
}

// End unbinds the vertex array.
func (b *Buffers) End() {
	gl.BindVertexArray(0)
}

// Delete releases the GPU buffers and the pattern program. Calling Delete
// again is a no-op.
func (b *Buffers) Delete() {
	if b.prog != (glgl.Program{}) {
		b.prog.Delete()
		b.prog = glgl.Program{}
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	b.vao, b.vbo, b.ebo = 0, 0, 0
}
