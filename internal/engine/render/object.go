// Package render keeps the engine-side representation of what is on screen:
// panorama spheres, hotspot markers and their animated properties.
//
// Scene is plain Go and holds no GPU state; the OpenGL renderer draws it.
package render

import (
	"image"

	"github.com/Faultbox/panorama/pkg/math"
)

// Handle identifies a render object. The zero Handle means "absent".
type Handle uint32

// Kind is the type of render object.
type Kind int

const (
	KindSphere Kind = iota
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Property is an animatable numeric property of a render object.
type Property int

const (
	PropertyOpacity Property = iota
	PropertyScale
)

func (p Property) String() string {
	if p == PropertyScale {
		return "scale"
	}
	return "opacity"
}

// WrapMode controls texture addressing outside [0, 1].
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// Texture is a decoded image ready for upload. The renderer owns the GPU copy.
type Texture struct {
	Source string
	Image  *image.RGBA
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// SphereOptions describes a panorama sphere mesh and how its texture is mapped.
type SphereOptions struct {
	Radius         float32
	WidthSegments  int
	HeightSegments int
	Wrap           WrapMode
	RepeatX        float32
	RepeatY        float32
}

// DefaultSphereOptions returns a 50 unit sphere with the texture mirrored
// horizontally, so the image reads correctly from inside.
func DefaultSphereOptions() SphereOptions {
	return SphereOptions{
		Radius:         50,
		WidthSegments:  32,
		HeightSegments: 32,
		Wrap:           WrapRepeat,
		RepeatX:        -1,
		RepeatY:        1,
	}
}

// Object is a sphere or marker known to a Scene.
type Object struct {
	Handle  Handle
	Kind    Kind
	Texture *Texture

	// Sphere only
	Sphere SphereOptions

	// Marker only
	Position math.Vec3
	Size     float32

	Opacity float32
	Scale   float32

	inScene bool
}

// InScene reports whether the object is currently drawn.
func (o *Object) InScene() bool {
	return o.inScene
}

// MarkerSize returns the marker's edge length after scaling.
func (o *Object) MarkerSize() float32 {
	return o.Size * o.Scale
}

// Hit is a raycast result.
type Hit struct {
	Handle   Handle
	Distance float32
	Point    math.Vec3
}
