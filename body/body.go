// Package body holds the movable body that locomotion mutates: the frame being moved, the strategy
// that decides where the user is standing in it, and the optional collision-aware mover.
package body

import "github.com/go-gl/mathgl/mgl32"

// MovableBody binds a Frame to the strategies used to move it. It has no behaviour of its own beyond
// delegating to those strategies.
type MovableBody struct {
	frame       *Frame
	evaluator   PositionEvaluator
	manipulator ConstrainedManipulator
}

// New returns a MovableBody for the frame passed. If evaluator is nil, an UnderEyeEvaluator is used.
func New(frame *Frame, evaluator PositionEvaluator) *MovableBody {
	if evaluator == nil {
		evaluator = UnderEyeEvaluator{}
	}
	return &MovableBody{frame: frame, evaluator: evaluator}
}

// Frame returns the frame moved by the body.
func (b *MovableBody) Frame() *Frame {
	return b.frame
}

// Evaluator returns the position evaluator of the body.
func (b *MovableBody) Evaluator() PositionEvaluator {
	return b.evaluator
}

// SetEvaluator swaps the position evaluator of the body. Passing nil restores the UnderEyeEvaluator.
func (b *MovableBody) SetEvaluator(evaluator PositionEvaluator) {
	if evaluator == nil {
		evaluator = UnderEyeEvaluator{}
	}
	b.evaluator = evaluator
}

// GetBodyGroundLocalPosition returns the grounded body position in frame space.
func (b *MovableBody) GetBodyGroundLocalPosition() mgl32.Vec3 {
	return b.evaluator.GroundLocalPosition(b.frame)
}

// GetBodyGroundPosition returns the grounded body position in world space.
func (b *MovableBody) GetBodyGroundPosition() mgl32.Vec3 {
	return b.frame.TransformPoint(b.GetBodyGroundLocalPosition())
}

// ConstrainedManipulator returns the manipulator linked to the body, or nil if none is linked.
func (b *MovableBody) ConstrainedManipulator() ConstrainedManipulator {
	return b.manipulator
}

// LinkConstrainedManipulator links m to the body. Any manipulator already linked to the body is
// unlinked first, and m is unlinked from whatever body it was linked to before.
func (b *MovableBody) LinkConstrainedManipulator(m ConstrainedManipulator) {
	if m == nil {
		b.UnlinkConstrainedManipulator()
		return
	}
	if b.manipulator == m {
		return
	}
	if b.manipulator != nil {
		b.UnlinkConstrainedManipulator()
	}
	if prev := m.LinkedBody(); prev != nil {
		prev.UnlinkConstrainedManipulator()
	}
	b.manipulator = m
	m.OnLinkedToBody(b)
}

// UnlinkConstrainedManipulator unlinks the manipulator currently linked to the body, if any.
func (b *MovableBody) UnlinkConstrainedManipulator() {
	m := b.manipulator
	if m == nil {
		return
	}
	b.manipulator = nil
	m.OnUnlinkedFromBody()
}
