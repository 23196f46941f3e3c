package character

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
)

// World is the collision geometry a Controller moves through.
type World interface {
	// GetNearbyBBoxes returns every collision box that intersects or touches bb.
	GetNearbyBBoxes(bb cube.BBox) []cube.BBox
}

// queryGrowth is how far StaticWorld grows a query box, so that boxes resting against it are found.
const queryGrowth = 1e-3

// StaticWorld is a World made of a fixed list of boxes. It is not safe for concurrent modification.
type StaticWorld struct {
	boxes []cube.BBox
}

// NewStaticWorld returns a StaticWorld holding the boxes passed.
func NewStaticWorld(boxes ...cube.BBox) *StaticWorld {
	return &StaticWorld{boxes: boxes}
}

// AddBox adds a collision box to the world.
func (w *StaticWorld) AddBox(bb cube.BBox) {
	w.boxes = append(w.boxes, bb)
}

// Boxes returns all boxes in the world.
func (w *StaticWorld) Boxes() []cube.BBox {
	return w.boxes
}

// GetNearbyBBoxes ...
func (w *StaticWorld) GetNearbyBBoxes(bb cube.BBox) []cube.BBox {
	query := bb.Grow(queryGrowth)
	var list []cube.BBox
	for _, box := range w.boxes {
		if touches(query, box) {
			list = append(list, box)
		}
	}
	return list
}

// Raycast traces a ray from start to end and returns the point where it first enters a box.
func (w *StaticWorld) Raycast(start, end mgl32.Vec3) (mgl32.Vec3, bool) {
	var (
		hit     mgl32.Vec3
		found   bool
		minDist float32
	)
	for _, box := range w.boxes {
		result, ok := trace.BBoxIntercept(box, start, end)
		if !ok {
			continue
		}
		pos := result.Position()
		if dist := pos.Sub(start).LenSqr(); !found || dist < minDist {
			hit, minDist, found = pos, dist, true
		}
	}
	return hit, found
}

// touches returns true if a and b overlap or share a face.
func touches(a, b cube.BBox) bool {
	amin, amax := a.Min(), a.Max()
	bmin, bmax := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if amax[i] < bmin[i] || amin[i] > bmax[i] {
			return false
		}
	}
	return true
}
