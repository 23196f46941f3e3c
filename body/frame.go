package body

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/omath"
)

// Frame is the transform of the tracked space a user moves around in. Position, Rotation and Scale
// place the frame in world space. EyePos and EyeRotation hold the tracked eye (head) pose relative to
// the frame, which the tracking system updates and locomotion never writes.
type Frame struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	// Scale is a uniform scale applied to everything inside the frame. It must stay above zero.
	Scale float32

	EyePos      mgl32.Vec3
	EyeRotation mgl32.Quat
}

// NewFrame returns a frame at the world origin with an identity rotation, a scale of 1 and the eye
// placed eyeHeight above the frame origin.
func NewFrame(eyeHeight float32) *Frame {
	return &Frame{
		Rotation:    mgl32.QuatIdent(),
		Scale:       1,
		EyePos:      mgl32.Vec3{0, eyeHeight, 0},
		EyeRotation: mgl32.QuatIdent(),
	}
}

// Up returns the up axis of the frame in world space.
func (f *Frame) Up() mgl32.Vec3 {
	return f.Rotation.Rotate(omath.WorldUp).Normalize()
}

// Forward returns the forward axis of the frame in world space.
func (f *Frame) Forward() mgl32.Vec3 {
	return f.Rotation.Rotate(omath.WorldForward).Normalize()
}

// TransformPoint converts a point in frame space to world space.
func (f *Frame) TransformPoint(local mgl32.Vec3) mgl32.Vec3 {
	return f.Position.Add(f.Rotation.Rotate(local.Mul(f.Scale)))
}

// InverseTransformPoint converts a point in world space to frame space.
func (f *Frame) InverseTransformPoint(world mgl32.Vec3) mgl32.Vec3 {
	local := f.Rotation.Inverse().Rotate(world.Sub(f.Position))
	if f.Scale == 0 {
		return local
	}
	return local.Mul(1 / f.Scale)
}

// EyeWorldPosition returns the position of the tracked eye in world space.
func (f *Frame) EyeWorldPosition() mgl32.Vec3 {
	return f.TransformPoint(f.EyePos)
}

// EyeForward returns the direction the tracked eye is looking in, in world space.
func (f *Frame) EyeForward() mgl32.Vec3 {
	return f.Rotation.Mul(f.EyeRotation).Rotate(omath.WorldForward).Normalize()
}

// EyeHeight returns the height of the tracked eye above the frame origin, in world units.
func (f *Frame) EyeHeight() float32 {
	return f.EyePos.Y() * f.Scale
}

// RotateAround rotates the frame by q around a pivot in world space.
func (f *Frame) RotateAround(pivot mgl32.Vec3, q mgl32.Quat) {
	f.Position = omath.RotateAbout(f.Position, pivot, q)
	f.Rotation = q.Mul(f.Rotation).Normalize()
}
