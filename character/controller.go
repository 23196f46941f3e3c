// Package character implements a constrained manipulator that moves a body like a character
// controller: the body is approximated by an upright box standing on its ground position, which is
// swept through the world one axis at a time and may step up onto low obstacles.
package character

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/omath"
)

const (
	DefaultRadius     = 0.3
	DefaultStepOffset = 0.5
	DefaultMinHeight  = 0.5
	DefaultSkinWidth  = 0.01

	// collisionThreshold is the difference between the requested and travelled motion on an axis
	// above which the axis is considered blocked.
	collisionThreshold = 1e-5
)

// Controller is a body.ConstrainedManipulator that resolves motion against the boxes of a World.
// The collision box is rebuilt before every move so that its base sits on the ground position of the
// linked body and its height follows the tracked eye height.
type Controller struct {
	body.ManipulatorBase

	// World is queried for collision boxes. A nil World lets the body move freely.
	World World

	// Radius is the half-width of the collision box, before the frame scale is applied.
	Radius float32
	// StepOffset is the highest obstacle the controller may step onto while grounded. Zero disables
	// stepping.
	StepOffset float32
	// MinHeight is the lowest the collision box may get, however low the eye is tracked.
	MinHeight float32
	// SkinWidth is how far below the box the ground is searched for after a move.
	SkinWidth float32
}

// New returns a Controller moving through w with the default dimensions.
func New(w World) *Controller {
	return &Controller{
		World:      w,
		Radius:     DefaultRadius,
		StepOffset: DefaultStepOffset,
		MinHeight:  DefaultMinHeight,
		SkinWidth:  DefaultSkinWidth,
	}
}

// CollisionBox returns the collision box of the linked body at its current pose, or false if no body
// is linked.
func (c *Controller) CollisionBox() (cube.BBox, bool) {
	b := c.LinkedBody()
	if b == nil {
		return cube.BBox{}, false
	}
	return c.collisionBox(b), true
}

// MoveBody ...
func (c *Controller) MoveBody(motion mgl32.Vec3) body.CollisionFlags {
	b := c.LinkedBody()
	if b == nil {
		return body.CollisionNone
	}
	f := b.Frame()
	bb := c.collisionBox(b)

	boxes := c.nearby(bb.Extend(motion))
	resolved, moved := sweep(boxes, bb, motion)

	blockedSideways := math32.Abs(motion.X()-resolved.X()) >= collisionThreshold ||
		math32.Abs(motion.Z()-resolved.Z()) >= collisionThreshold
	if blockedSideways && c.StepOffset > 0 && c.Grounded() {
		if stepped, stepBB, ok := c.tryStep(bb, motion); ok && omath.Vec3HzDistSqr(resolved) < omath.Vec3HzDistSqr(stepped) {
			resolved, moved = stepped, stepBB
		}
	}
	f.Position = f.Position.Add(resolved)

	var flags body.CollisionFlags
	if math32.Abs(motion.X()-resolved.X()) >= collisionThreshold || math32.Abs(motion.Z()-resolved.Z()) >= collisionThreshold {
		flags |= body.CollisionSides
	}
	yClipped := math32.Abs(motion.Y()-resolved.Y()) >= collisionThreshold
	if yClipped && motion.Y() > 0 {
		flags |= body.CollisionAbove
	}
	if yClipped && motion.Y() < 0 {
		flags |= body.CollisionBelow
	}

	c.SetCollisionResult(flags, flags.Has(body.CollisionBelow) || c.groundBelow(moved))
	return flags
}

// tryStep attempts motion after lifting bb by the step offset, then lowers it back onto whatever it
// lands on. The step is rejected if the resulting box penetrates the world.
func (c *Controller) tryStep(bb cube.BBox, motion mgl32.Vec3) (mgl32.Vec3, cube.BBox, bool) {
	lift := mgl32.Vec3{0, c.StepOffset, 0}
	hz := mgl32.Vec3{motion.X(), 0, motion.Z()}
	boxes := c.nearby(bb.Extend(hz).Extend(lift))

	up, stepBB := sweep(boxes, bb, lift)
	across, stepBB := sweep(boxes, stepBB, hz)
	down, stepBB := sweep(boxes, stepBB, up.Mul(-1))

	if overlapsAny(c.nearby(stepBB), stepBB) {
		return mgl32.Vec3{}, bb, false
	}
	return up.Add(across).Add(down), stepBB, true
}

// groundBelow returns true if there is ground within the skin width below bb.
func (c *Controller) groundBelow(bb cube.BBox) bool {
	if c.SkinWidth <= 0 {
		return false
	}
	down := mgl32.Vec3{0, -c.SkinWidth, 0}
	travelled, _ := sweep(c.nearby(bb.Extend(down)), bb, down)
	return travelled.Y() > down.Y()
}

// collisionBox builds the box standing on the ground position of b.
func (c *Controller) collisionBox(b *body.MovableBody) cube.BBox {
	f := b.Frame()
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}
	r := c.Radius * scale
	h := math32.Max(f.EyeHeight(), c.MinHeight*scale)

	g := b.GetBodyGroundPosition()
	return cube.Box(g.X()-r, g.Y(), g.Z()-r, g.X()+r, g.Y()+h, g.Z()+r)
}

func (c *Controller) nearby(bb cube.BBox) []cube.BBox {
	if c.World == nil {
		return nil
	}
	return c.World.GetNearbyBBoxes(bb)
}
