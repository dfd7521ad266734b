// Package picking provides ray casting from screen coordinates.
package picking

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/panorama/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// ScreenToNDC converts pixel coordinates to normalized device coordinates.
// Y is flipped so that +1 is the top of the viewport.
func ScreenToNDC(screenX, screenY, viewportW, viewportH float32) math.Vec2 {
	return math.Vec2{
		X: 2*screenX/viewportW - 1,
		Y: 1 - 2*screenY/viewportH,
	}
}

// RayFromNDC unprojects a point in normalized device coordinates into a
// world-space ray starting on the near plane.
// invViewProj is the inverse of the view-projection matrix.
func RayFromNDC(ndc math.Vec2, invViewProj math.Mat4) Ray {
	nearWorld := unproject(invViewProj, math.Vec4{ndc.X, ndc.Y, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndc.X, ndc.Y, 1, 1})

	return Ray{
		Origin:    nearWorld,
		Direction: farWorld.Sub(nearWorld).Normalize(),
	}
}

func unproject(inv math.Mat4, p math.Vec4) math.Vec3 {
	w := inv.MulVec4(p)
	if w[3] != 0 {
		return math.Vec3{X: w[0] / w[3], Y: w[1] / w[3], Z: w[2] / w[3]}
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			// Parallel to this slab: the origin must already be inside it.
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// BoundsAround returns a cube of the given edge length centered on p.
func BoundsAround(p math.Vec3, size float32) AABB {
	half := math32.Abs(size) / 2
	ext := math.Vec3{X: half, Y: half, Z: half}
	return AABB{Min: p.Sub(ext), Max: p.Add(ext)}
}
