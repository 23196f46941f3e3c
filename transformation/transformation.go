// Package transformation implements the deferred changes that locomotion applies to a movable body.
// The set of transformations is closed: every kind is a variant of Transformation, and Apply
// dispatches on the variant. Use Delegate for anything the fixed kinds do not cover.
package transformation

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/omath"
)

// Transformation is a change to apply to a movable body. Only the types in this package implement it.
type Transformation interface {
	isTransformation()
}

// Translate displaces the body by a world space vector. If the body has a constrained manipulator
// linked, the manipulator performs the move so it is subject to collision.
type Translate struct {
	Displacement mgl32.Vec3
}

// MatchGroundPosition moves the frame so that the body ground position ends up at Target. The move
// is not subject to collision.
type MatchGroundPosition struct {
	Target mgl32.Vec3
}

// AlignUp rotates the frame about its origin so that its up axis matches Up.
type AlignUp struct {
	Up mgl32.Vec3
}

// RotateAboutUp rotates the frame by Angle degrees about its up axis, pivoting on the body ground
// position. Positive angles turn forward towards the right.
type RotateAboutUp struct {
	Angle float32
}

// AlignForward rotates the frame about its up axis, pivoting on the body ground position, so that
// the eye's forward direction projected onto the horizontal plane of the frame matches Forward
// projected onto the same plane.
type AlignForward struct {
	Forward mgl32.Vec3
}

// Scale sets the uniform scale of the frame while keeping the body ground position fixed in world
// space. Non-positive scales are ignored.
type Scale struct {
	Scale float32
}

// Delegate runs an arbitrary function against the body.
type Delegate struct {
	Fn func(b *body.MovableBody)
}

func (Translate) isTransformation()           {}
func (MatchGroundPosition) isTransformation() {}
func (AlignUp) isTransformation()             {}
func (RotateAboutUp) isTransformation()       {}
func (AlignForward) isTransformation()        {}
func (Scale) isTransformation()               {}
func (Delegate) isTransformation()            {}

// Apply applies the transformation t to the body b. The result only depends on t and the current
// state of b.
func Apply(t Transformation, b *body.MovableBody) {
	switch t := t.(type) {
	case Translate:
		translate(b, t.Displacement)
	case MatchGroundPosition:
		f := b.Frame()
		f.Position = f.Position.Add(t.Target.Sub(b.GetBodyGroundPosition()))
	case AlignUp:
		alignUp(b.Frame(), t.Up)
	case RotateAboutUp:
		if t.Angle == 0 {
			return
		}
		f := b.Frame()
		f.RotateAround(b.GetBodyGroundPosition(), mgl32.QuatRotate(mgl32.DegToRad(t.Angle), f.Up()))
	case AlignForward:
		alignForward(b, t.Forward)
	case Scale:
		scale(b, t.Scale)
	case Delegate:
		if t.Fn != nil {
			t.Fn(b)
		}
	}
}

// Kind returns a short name for the variant of t, used as a metric label and in logs.
func Kind(t Transformation) string {
	switch t.(type) {
	case Translate:
		return "translate"
	case MatchGroundPosition:
		return "match_ground_position"
	case AlignUp:
		return "align_up"
	case RotateAboutUp:
		return "rotate_about_up"
	case AlignForward:
		return "align_forward"
	case Scale:
		return "scale"
	case Delegate:
		return "delegate"
	default:
		return "unknown"
	}
}

func translate(b *body.MovableBody, displacement mgl32.Vec3) {
	if m := b.ConstrainedManipulator(); m != nil {
		m.MoveBody(displacement)
		return
	}
	f := b.Frame()
	f.Position = f.Position.Add(displacement)
}

func alignUp(f *body.Frame, up mgl32.Vec3) {
	if omath.IsZero(up) {
		return
	}
	f.Rotation = mgl32.QuatBetweenVectors(f.Up(), up.Normalize()).Mul(f.Rotation).Normalize()
}

func alignForward(b *body.MovableBody, forward mgl32.Vec3) {
	f := b.Frame()
	up := f.Up()
	current := omath.ProjectOnPlane(f.EyeForward(), up)
	target := omath.ProjectOnPlane(forward, up)
	if omath.IsZero(current) || omath.IsZero(target) {
		return
	}
	angle := omath.SignedAngle(current, target, up)
	if angle == 0 {
		return
	}
	f.RotateAround(b.GetBodyGroundPosition(), mgl32.QuatRotate(angle, up))
}

func scale(b *body.MovableBody, s float32) {
	if s <= 0 {
		return
	}
	f := b.Frame()
	before := b.GetBodyGroundPosition()
	f.Scale = s
	after := b.GetBodyGroundPosition()
	f.Position = f.Position.Add(before.Sub(after))
}
