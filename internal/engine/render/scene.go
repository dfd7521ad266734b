package render

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/picking"
	"github.com/Faultbox/panorama/internal/engine/tween"
	"github.com/Faultbox/panorama/pkg/math"
)

// Projector provides the matrix used to unproject pointer positions.
type Projector interface {
	InverseViewProjection() math.Mat4
}

type animKey struct {
	handle Handle
	prop   Property
}

// Scene owns render objects and animates their properties. It must only be
// used from the render thread.
type Scene struct {
	objects  map[Handle]*Object
	drawList []Handle // insertion order of objects in the scene
	next     Handle
	animator *tween.Animator
	log      *zap.Logger
}

// NewScene creates an empty scene. animator may be shared with other users;
// nil creates a linear one.
func NewScene(animator *tween.Animator, log *zap.Logger) *Scene {
	if animator == nil {
		animator = tween.New(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		objects:  make(map[Handle]*Object),
		animator: animator,
		log:      log,
	}
}

func (s *Scene) create(o *Object) Handle {
	s.next++
	o.Handle = s.next
	s.objects[o.Handle] = o
	s.log.Debug("render object created",
		zap.Uint32("handle", uint32(o.Handle)),
		zap.Stringer("kind", o.Kind),
	)
	return o.Handle
}

// CreateSphere creates a fully opaque panorama sphere. It is not drawn until Add.
func (s *Scene) CreateSphere(tex *Texture, opts SphereOptions) Handle {
	return s.create(&Object{
		Kind:    KindSphere,
		Texture: tex,
		Sphere:  opts,
		Opacity: 1,
		Scale:   1,
	})
}

// CreateMarker creates a billboard marker at pos with the given edge length.
func (s *Scene) CreateMarker(icon *Texture, pos math.Vec3, size float32) Handle {
	return s.create(&Object{
		Kind:     KindMarker,
		Texture:  icon,
		Position: pos,
		Size:     size,
		Opacity:  1,
		Scale:    1,
	})
}

// Add puts an object into the scene. Unknown handles are ignored.
func (s *Scene) Add(h Handle) {
	o, ok := s.objects[h]
	if !ok || o.inScene {
		return
	}
	o.inScene = true
	s.drawList = append(s.drawList, h)
}

// Remove takes an object out of the scene and releases it. Running
// animations on it complete immediately. Removing an unknown or already
// removed handle is a no-op.
func (s *Scene) Remove(h Handle) {
	o, ok := s.objects[h]
	if !ok {
		return
	}
	delete(s.objects, h)
	if o.inScene {
		o.inScene = false
		s.drawList = slices.DeleteFunc(s.drawList, func(x Handle) bool { return x == h })
	}
	s.animator.Cancel(animKey{h, PropertyOpacity})
	s.animator.Cancel(animKey{h, PropertyScale})
	s.log.Debug("render object released", zap.Uint32("handle", uint32(h)))
}

// Object returns the object for h.
func (s *Scene) Object(h Handle) (*Object, bool) {
	o, ok := s.objects[h]
	return o, ok
}

// Len returns the number of live objects, in the scene or not.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Set assigns a property directly, stopping any animation on it.
func (s *Scene) Set(h Handle, prop Property, value float32) {
	o, ok := s.objects[h]
	if !ok {
		return
	}
	s.animator.Cancel(animKey{h, prop})
	o.set(prop, value)
}

func (o *Object) set(prop Property, value float32) {
	switch prop {
	case PropertyOpacity:
		o.Opacity = value
	case PropertyScale:
		o.Scale = value
	}
}

func (o *Object) get(prop Property) float32 {
	if prop == PropertyScale {
		return o.Scale
	}
	return o.Opacity
}

// Animate eases prop from its current value to `to` over duration and calls
// done when it gets there. An unknown handle completes immediately.
func (s *Scene) Animate(h Handle, prop Property, to float32, duration time.Duration, done func()) {
	o, ok := s.objects[h]
	if !ok {
		if done != nil {
			done()
		}
		return
	}
	s.animator.Start(animKey{h, prop}, o.get(prop), to, duration, func(v float32) { o.set(prop, v) }, done)
}

// Update advances running animations. Called once per frame.
func (s *Scene) Update(dt time.Duration) {
	s.animator.Update(dt)
}

// Animating reports whether any animation is running.
func (s *Scene) Animating() bool {
	return s.animator.Len() > 0
}

// Spheres returns the spheres in the scene in draw order.
func (s *Scene) Spheres() []*Object {
	return s.inScene(KindSphere)
}

// Markers returns the markers in the scene in draw order.
func (s *Scene) Markers() []*Object {
	return s.inScene(KindMarker)
}

func (s *Scene) inScene(kind Kind) []*Object {
	var out []*Object
	for _, h := range s.drawList {
		if o := s.objects[h]; o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// Raycast casts a ray from the camera through ndc and tests it against the
// candidate markers that are in the scene. Hits are sorted nearest first.
// Markers are treated as camera-independent cubes of their scaled size.
func (s *Scene) Raycast(ndc math.Vec2, cam Projector, candidates []Handle) []Hit {
	ray := picking.RayFromNDC(ndc, cam.InverseViewProjection())

	var hits []Hit
	for _, h := range candidates {
		o, ok := s.objects[h]
		if !ok || !o.inScene || o.Kind != KindMarker || o.MarkerSize() == 0 {
			continue
		}
		t, hit := ray.IntersectAABB(picking.BoundsAround(o.Position, o.MarkerSize()))
		if !hit {
			continue
		}
		hits = append(hits, Hit{Handle: h, Distance: t, Point: ray.At(t)})
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	return hits
}
