package character

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// overlapEpsilon is the depth under which two boxes are considered to be touching rather than
// overlapping.
const overlapEpsilon = 1e-6

// clipAxis returns how far moving can travel along axis, up to d, before it hits stationary. Only
// boxes that overlap moving on the other two axes, and lie ahead of it on axis, clip the motion.
func clipAxis(stationary, moving cube.BBox, axis int, d float32) float32 {
	if d == 0 || hasZeroVolume(stationary) {
		return d
	}
	smin, smax := stationary.Min(), stationary.Max()
	mmin, mmax := moving.Min(), moving.Max()
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if mmax[i]-smin[i] <= overlapEpsilon || smax[i]-mmin[i] <= overlapEpsilon {
			return d
		}
	}

	if d > 0 && mmax[axis] <= smin[axis]+overlapEpsilon {
		return math32.Min(d, math32.Max(smin[axis]-mmax[axis], 0))
	}
	if d < 0 && mmin[axis] >= smax[axis]-overlapEpsilon {
		return math32.Max(d, math32.Min(smax[axis]-mmin[axis], 0))
	}
	return d
}

// sweep moves bb by motion through boxes, one axis at a time in the order Y, X, Z. It returns the
// displacement that could be travelled and the box at its final position.
func sweep(boxes []cube.BBox, bb cube.BBox, motion mgl32.Vec3) (mgl32.Vec3, cube.BBox) {
	var resolved mgl32.Vec3
	for _, axis := range [3]int{1, 0, 2} {
		d := motion[axis]
		for i := len(boxes) - 1; i >= 0; i-- {
			d = clipAxis(boxes[i], bb, axis, d)
		}
		var delta mgl32.Vec3
		delta[axis] = d
		bb = bb.Translate(delta)
		resolved[axis] = d
	}
	return resolved, bb
}

// overlapsAny returns true if bb penetrates any of the boxes passed.
func overlapsAny(boxes []cube.BBox, bb cube.BBox) bool {
	bmin, bmax := bb.Min(), bb.Max()
outer:
	for _, box := range boxes {
		smin, smax := box.Min(), box.Max()
		for i := 0; i < 3; i++ {
			if bmax[i]-smin[i] <= overlapEpsilon || smax[i]-bmin[i] <= overlapEpsilon {
				continue outer
			}
		}
		return true
	}
	return false
}

func hasZeroVolume(bb cube.BBox) bool {
	return bb.Min() == bb.Max()
}
