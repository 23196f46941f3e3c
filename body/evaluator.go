package body

import "github.com/go-gl/mathgl/mgl32"

// PositionEvaluator computes where the user's body is grounded inside a frame. Implementations must be
// pure: the result may only depend on the state of the frame passed.
type PositionEvaluator interface {
	// GroundLocalPosition returns the grounded body position in frame space.
	GroundLocalPosition(f *Frame) mgl32.Vec3
}

// PositionEvaluatorFunc is a function that implements PositionEvaluator.
type PositionEvaluatorFunc func(f *Frame) mgl32.Vec3

// GroundLocalPosition ...
func (fn PositionEvaluatorFunc) GroundLocalPosition(f *Frame) mgl32.Vec3 {
	return fn(f)
}

// UnderEyeEvaluator grounds the body directly under the tracked eye, on the floor of the frame. It is
// the evaluator used when none is configured.
type UnderEyeEvaluator struct{}

// GroundLocalPosition ...
func (UnderEyeEvaluator) GroundLocalPosition(f *Frame) mgl32.Vec3 {
	return mgl32.Vec3{f.EyePos.X(), 0, f.EyePos.Z()}
}

// OriginEvaluator grounds the body at the frame origin regardless of where the eye is.
type OriginEvaluator struct{}

// GroundLocalPosition ...
func (OriginEvaluator) GroundLocalPosition(*Frame) mgl32.Vec3 {
	return mgl32.Vec3{}
}
