package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the threshold under which two float32 values are considered equal.
const Epsilon = float32(1e-5)

var (
	// WorldUp is the up axis of world space.
	WorldUp = mgl32.Vec3{0, 1, 0}
	// WorldForward is the forward axis of world space.
	WorldForward = mgl32.Vec3{0, 0, 1}
)

// ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= Epsilon
}

// Vec3ApproxEq determines whether every component of two vectors is within 1e-5 of the other.
func Vec3ApproxEq(a, b mgl32.Vec3) bool {
	return ApproxEq(a[0], b[0]) && ApproxEq(a[1], b[1]) && ApproxEq(a[2], b[2])
}

// Vec3HzDistSqr returns the squared horizontal distance in a vector.
func Vec3HzDistSqr(vec3 mgl32.Vec3) float32 {
	return vec3.X()*vec3.X() + vec3.Z()*vec3.Z()
}

// ProjectOnPlane projects v onto the plane with the given normal. The normal does not need to be
// normalized, but a zero normal returns v unchanged.
func ProjectOnPlane(v, normal mgl32.Vec3) mgl32.Vec3 {
	lenSqr := normal.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return v
	}
	return v.Sub(normal.Mul(v.Dot(normal) / lenSqr))
}

// SignedAngle returns the angle in radians needed to rotate from onto to around axis, using the
// right-hand rule. The result is in the range [-pi, pi].
func SignedAngle(from, to, axis mgl32.Vec3) float32 {
	return math32.Atan2(from.Cross(to).Dot(axis.Normalize()), from.Dot(to))
}

// RotateAbout rotates point around pivot by the rotation q.
func RotateAbout(point, pivot mgl32.Vec3, q mgl32.Quat) mgl32.Vec3 {
	return pivot.Add(q.Rotate(point.Sub(pivot)))
}

// IsZero returns true if every component of the vector is within 1e-5 of zero.
func IsZero(v mgl32.Vec3) bool {
	return Vec3ApproxEq(v, mgl32.Vec3{})
}
