package body

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// CollisionFlags describe which parts of a constrained body were blocked during a move.
type CollisionFlags uint8

const (
	// CollisionSides is set when horizontal motion was blocked.
	CollisionSides CollisionFlags = 1 << iota
	// CollisionAbove is set when upward motion was blocked.
	CollisionAbove
	// CollisionBelow is set when downward motion was blocked.
	CollisionBelow

	CollisionNone CollisionFlags = 0
)

// Has returns true if all the flags passed are set.
func (f CollisionFlags) Has(flags CollisionFlags) bool {
	return f&flags == flags
}

// String ...
func (f CollisionFlags) String() string {
	if f == CollisionNone {
		return "none"
	}
	var parts []string
	if f.Has(CollisionSides) {
		parts = append(parts, "sides")
	}
	if f.Has(CollisionAbove) {
		parts = append(parts, "above")
	}
	if f.Has(CollisionBelow) {
		parts = append(parts, "below")
	}
	return strings.Join(parts, "|")
}

// ConstrainedManipulator moves a body subject to collision. A manipulator is linked to at most one
// MovableBody at a time, and linking always goes through MovableBody.LinkConstrainedManipulator.
type ConstrainedManipulator interface {
	// LinkedBody returns the body the manipulator is linked to, or nil.
	LinkedBody() *MovableBody
	// LastCollisionFlags returns the flags reported by the most recent MoveBody call.
	LastCollisionFlags() CollisionFlags
	// Grounded returns true if the body was grounded after the most recent MoveBody call.
	Grounded() bool

	// OnLinkedToBody is called by the body once it has linked the manipulator.
	OnLinkedToBody(b *MovableBody)
	// OnUnlinkedFromBody is called by the body once it has unlinked the manipulator.
	OnUnlinkedFromBody()

	// MoveBody attempts to displace the linked body by motion and returns the directions that were
	// blocked. Calling MoveBody while unlinked does nothing and returns CollisionNone.
	MoveBody(motion mgl32.Vec3) CollisionFlags
}

// ManipulatorBase implements the linking and result bookkeeping of a ConstrainedManipulator. It is
// meant to be embedded by implementations, which only need to provide MoveBody.
type ManipulatorBase struct {
	linked   *MovableBody
	flags    CollisionFlags
	grounded bool
}

// LinkedBody ...
func (m *ManipulatorBase) LinkedBody() *MovableBody {
	return m.linked
}

// LastCollisionFlags ...
func (m *ManipulatorBase) LastCollisionFlags() CollisionFlags {
	return m.flags
}

// Grounded ...
func (m *ManipulatorBase) Grounded() bool {
	return m.grounded
}

// OnLinkedToBody ...
func (m *ManipulatorBase) OnLinkedToBody(b *MovableBody) {
	m.linked = b
}

// OnUnlinkedFromBody ...
func (m *ManipulatorBase) OnUnlinkedFromBody() {
	m.linked = nil
}

// SetCollisionResult stores the outcome of a move so it can be read back through LastCollisionFlags
// and Grounded.
func (m *ManipulatorBase) SetCollisionResult(flags CollisionFlags, grounded bool) {
	m.flags = flags
	m.grounded = grounded
}
