package pano

import (
	"time"

	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/pkg/math"
)

// Engine is the rendering collaborator. *render.Scene implements it.
type Engine interface {
	CreateSphere(tex *render.Texture, opts render.SphereOptions) render.Handle
	CreateMarker(icon *render.Texture, pos math.Vec3, size float32) render.Handle
	Set(h render.Handle, prop render.Property, value float32)
	Add(h render.Handle)
	// Remove takes the object out of the scene and releases it. It must be a
	// no-op for handles that are already gone.
	Remove(h render.Handle)
	// Animate eases prop to `to` over duration, then calls done.
	Animate(h render.Handle, prop render.Property, to float32, duration time.Duration, done func())
	// Raycast returns the candidates hit by a ray from the camera through
	// ndc, nearest first.
	Raycast(ndc math.Vec2, cam render.Projector, candidates []render.Handle) []render.Hit
}

// AssetLoader resolves a panorama path to a texture. *assets.Manager
// implements it.
type AssetLoader interface {
	LoadTexture(path string) (*render.Texture, error)
}

var _ Engine = (*render.Scene)(nil)
