// Package obstacles answers whether the character's trajectory runs into
// anything.
package obstacles

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Obstacles are columns, so their vertical extent is just large enough to
// contain any terrain.
const columnHeight = 1e4

// Box is the footprint of an obstacle on the ground plane.
type Box struct {
	MinX float64
	MinZ float64
	MaxX float64
	MaxZ float64
}

func (b Box) String() string {
	return fmt.Sprintf("Box{x=%.2f..%.2f z=%.2f..%.2f}", b.MinX, b.MaxX, b.MinZ, b.MaxZ)
}

func (b Box) bbox() cube.BBox {
	return cube.Box(
		float32(b.MinX), -columnHeight, float32(b.MinZ),
		float32(b.MaxX), columnHeight, float32(b.MaxZ),
	)
}

// World is a static set of obstacles.
type World struct {
	boxes []cube.BBox
}

func New(boxes ...Box) *World {
	w := &World{}
	for _, b := range boxes {
		w.Add(b)
	}
	return w
}

func (w *World) Add(b Box) {
	w.boxes = append(w.boxes, b.bbox())
}

func (w *World) Len() int {
	return len(w.boxes)
}

// ProjectIfBlocked returns the first point at which the segment from one
// point to the other enters an obstacle, or the destination (exactly as
// given) if it doesn't. A segment which starts inside an obstacle is blocked
// at its start.
func (w *World) ProjectIfBlocked(from, to mgl64.Vec3) mgl64.Vec3 {
	f, t := vec32(from), vec32(to)

	var hit mgl32.Vec3
	best := float32(math32.MaxFloat32)

	for _, bb := range w.boxes {
		if bb.Vec3Within(f) {
			return from
		}

		res, ok := trace.BBoxIntercept(bb, f, t)
		if !ok {
			continue
		}

		if d := res.Position().Sub(f).Len(); d < best {
			best = d
			hit = res.Position()
		}
	}

	if best == math32.MaxFloat32 {
		return to
	}

	return mgl64.Vec3{float64(hit.X()), float64(hit.Y()), float64(hit.Z())}
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}
