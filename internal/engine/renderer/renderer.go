// Package renderer draws a render.Scene with OpenGL.
package renderer

import (
	"cmp"
	"fmt"
	"slices"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/internal/engine/shader"
	"github.com/Faultbox/panorama/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
}

// View is the camera state the renderer needs.
type View interface {
	ViewProjection() math.Mat4
	Right() math.Vec3
	Up() math.Vec3
}

type meshKey struct {
	radius                float32
	widthSegs, heightSegs int
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type textureKey struct {
	tex  *render.Texture
	wrap render.WrapMode
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	sphereProg *shader.Program
	markerProg *shader.Program

	meshes   map[meshKey]*gpuMesh
	quad     gpuMesh
	textures map[textureKey]uint32
	used     map[textureKey]bool
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config:   cfg,
		log:      log,
		meshes:   make(map[meshKey]*gpuMesh),
		textures: make(map[textureKey]uint32),
		used:     make(map[textureKey]bool),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// The viewer sits inside every sphere and everything is translucent,
	// so draw order replaces depth testing.
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)

	var err error
	if r.sphereProg, err = shader.New("sphere", sphereVertexShader, sphereFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.markerProg, err = shader.New("marker", markerVertexShader, markerFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.sphereProg.Require("uViewProj", "uModel", "uUVScale", "uOpacity"); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.markerProg.Require("uViewProj", "uCenter", "uRight", "uUp", "uSize", "uOpacity"); err != nil {
		r.Close()
		return nil, err
	}

	r.createQuad()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for k, m := range r.meshes {
		deleteMesh(m)
		delete(r.meshes, k)
	}
	deleteMesh(&r.quad)
	for k, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, k)
	}
	if r.sphereProg != nil {
		r.sphereProg.Delete()
	}
	if r.markerProg != nil {
		r.markerProg.Delete()
	}
}

// Resize sets the GL viewport to the drawable size in pixels.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Draw renders one frame of the scene.
func (r *Renderer) Draw(scene *render.Scene, view View) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	clear(r.used)

	viewProj := view.ViewProjection()
	r.drawSpheres(scene.Spheres(), &viewProj)
	r.drawMarkers(scene.Markers(), &viewProj, view.Right(), view.Up())

	r.pruneTextures()
}

// drawSpheres draws the most opaque sphere first so a fading sphere blends
// over the one that replaces it.
func (r *Renderer) drawSpheres(spheres []*render.Object, viewProj *math.Mat4) {
	slices.SortStableFunc(spheres, func(a, b *render.Object) int {
		return cmp.Compare(b.Opacity, a.Opacity)
	})

	r.sphereProg.Use()
	gl.UniformMatrix4fv(r.sphereProg.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform1i(r.sphereProg.Uniform("uTexture"), 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, o := range spheres {
		r.keep(o.Texture, o.Sphere.Wrap)
		if o.Opacity <= 0 || o.Scale <= 0 {
			continue
		}
		tex, ok := r.texture(o.Texture, o.Sphere.Wrap)
		if !ok {
			continue
		}
		mesh := r.sphereMesh(o.Sphere)
		model := math.Scale(o.Scale, o.Scale, o.Scale)

		gl.UniformMatrix4fv(r.sphereProg.Uniform("uModel"), 1, false, model.Ptr())
		gl.Uniform2f(r.sphereProg.Uniform("uUVScale"), o.Sphere.RepeatX, o.Sphere.RepeatY)
		gl.Uniform1f(r.sphereProg.Uniform("uOpacity"), o.Opacity)
		gl.BindTexture(gl.TEXTURE_2D, tex)

		gl.BindVertexArray(mesh.vao)
		gl.DrawElements(gl.TRIANGLES, mesh.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawMarkers(markers []*render.Object, viewProj *math.Mat4, right, up math.Vec3) {
	r.markerProg.Use()
	gl.UniformMatrix4fv(r.markerProg.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform3f(r.markerProg.Uniform("uRight"), right.X, right.Y, right.Z)
	gl.Uniform3f(r.markerProg.Uniform("uUp"), up.X, up.Y, up.Z)
	gl.Uniform1i(r.markerProg.Uniform("uTexture"), 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(r.quad.vao)

	for _, o := range markers {
		r.keep(o.Texture, render.WrapClamp)
		size := o.MarkerSize()
		if size <= 0 || o.Opacity <= 0 {
			continue
		}
		tex, ok := r.texture(o.Texture, render.WrapClamp)
		if !ok {
			continue
		}
		gl.Uniform3f(r.markerProg.Uniform("uCenter"), o.Position.X, o.Position.Y, o.Position.Z)
		gl.Uniform1f(r.markerProg.Uniform("uSize"), size)
		gl.Uniform1f(r.markerProg.Uniform("uOpacity"), o.Opacity)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.DrawElements(gl.TRIANGLES, r.quad.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// sphereMesh returns the GPU mesh for a sphere shape, building it on first use.
func (r *Renderer) sphereMesh(opts render.SphereOptions) *gpuMesh {
	key := meshKey{opts.Radius, opts.WidthSegments, opts.HeightSegments}
	if m, ok := r.meshes[key]; ok {
		return m
	}

	geo := render.SphereGeometry(opts.Radius, opts.WidthSegments, opts.HeightSegments)
	m := &gpuMesh{count: int32(len(geo.Indices))}
	stride := int32(render.VertexStride * 4)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(geo.Vertices)*4, gl.Ptr(geo.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geo.Indices)*4, gl.Ptr(geo.Indices), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// UV
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.meshes[key] = m
	r.log.Debug("sphere mesh uploaded",
		zap.Float32("radius", opts.Radius),
		zap.Int("vertices", geo.VertexCount()),
	)
	return m
}

func (r *Renderer) createQuad() {
	corners := []float32{
		-0.5, -0.5,
		0.5, -0.5,
		0.5, 0.5,
		-0.5, 0.5,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	q := &r.quad
	q.count = int32(len(indices))

	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)

	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, gl.Ptr(corners), gl.STATIC_DRAW)

	gl.GenBuffers(1, &q.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, q.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
}

func deleteMesh(m *gpuMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = gpuMesh{}
}

// keep marks a texture as in use this frame, drawn or not.
func (r *Renderer) keep(tex *render.Texture, wrap render.WrapMode) {
	if tex != nil {
		r.used[textureKey{tex, wrap}] = true
	}
}

// texture returns the GPU texture for tex, uploading it on first use.
func (r *Renderer) texture(tex *render.Texture, wrap render.WrapMode) (uint32, bool) {
	if tex == nil || tex.Image == nil {
		return 0, false
	}
	key := textureKey{tex, wrap}
	if id, ok := r.textures[key]; ok {
		return id, true
	}

	img := tex.Image
	w, h := tex.Size()
	if w == 0 || h == 0 {
		return 0, false
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	mode := int32(wrapMode(wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, mode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, mode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	pix := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y):]
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	r.textures[key] = id
	r.log.Debug("texture uploaded",
		zap.String("source", tex.Source),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return id, true
}

// pruneTextures frees GPU textures that no object drew this frame.
func (r *Renderer) pruneTextures() {
	for key, id := range r.textures {
		if r.used[key] {
			continue
		}
		gl.DeleteTextures(1, &id)
		delete(r.textures, key)
		r.log.Debug("texture released", zap.String("source", key.tex.Source))
	}
}

func wrapMode(w render.WrapMode) uint32 {
	switch w {
	case render.WrapRepeat:
		return gl.REPEAT
	case render.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
