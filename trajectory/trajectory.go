// Package trajectory implements the rolling window of past, present, and
// predicted future root positions which the motion model is conditioned on.
package trajectory

import (
	"fmt"
	"math"

	"github.com/adammck/biped/gait"
	"github.com/adammck/biped/math3d"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

const (

	// Bias exponents of the future prediction blend. Direction converges on the
	// target faster than position, so the character turns before it speeds up.
	biasPosition  = 0.75
	biasDirection = 1.25
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "trajectory",
})

// Terrain returns the height of the ground at a point on the ground plane.
type Terrain interface {
	Height(x, z float64) float64
}

// Trajectory is a fixed-length window of points in temporal order: index zero
// is the oldest past point, RootIndex is the present, and the last index is the
// furthest prediction. The shape never changes after construction.
type Trajectory struct {
	shape   Shape
	points  []Point
	terrain Terrain

	// The root frame as it was before the most recent shift. Joint positions
	// and velocities from the last frame were recorded relative to it.
	previous math3d.Frame
}

// New returns an uninitialized trajectory with the given shape. Terrain may be
// nil, in which case heights are taken from the positions as given.
func New(shape Shape, terrain Terrain) (*Trajectory, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	return &Trajectory{
		shape:   shape,
		points:  make([]Point, shape.Len()),
		terrain: terrain,
	}, nil
}

// Initialize fills the whole window with a character standing still at pos,
// facing dir.
func (t *Trajectory) Initialize(pos mgl64.Vec3, dir mgl64.Vec3) {
	d := math3d.SafeNormalize(math3d.Ground(dir))
	if d == math3d.ZeroVector3 {
		d = math3d.Forward
	}

	for i := range t.points {
		t.points[i] = Point{Direction: d}
		t.SetPosition(i, pos)
	}

	t.previous = t.points[t.RootIndex()].Frame()
	log.Debugf("initialized %d points at %v", len(t.points), t.previous)
}

func (t *Trajectory) Shape() Shape {
	return t.shape
}

func (t *Trajectory) Len() int {
	return len(t.points)
}

func (t *Trajectory) RootIndex() int {
	return t.shape.RootIndex()
}

func (t *Trajectory) RootSampleIndex() int {
	return t.shape.RootSampleIndex()
}

func (t *Trajectory) Density() int {
	return t.shape.Density
}

func (t *Trajectory) Samples() int {
	return t.shape.Samples
}

func (t *Trajectory) Width() float64 {
	return t.shape.Width
}

// Point returns a copy of the point at index i.
func (t *Trajectory) Point(i int) Point {
	return t.points[i]
}

// Points returns a copy of every point in the window.
func (t *Trajectory) Points() []Point {
	pp := make([]Point, len(t.points))
	copy(pp, t.points)
	return pp
}

// Root returns a copy of the present point.
func (t *Trajectory) Root() Point {
	return t.points[t.RootIndex()]
}

// Previous returns the root frame as it was before the last call to ShiftPast.
func (t *Trajectory) Previous() math3d.Frame {
	return t.previous
}

// SampleIndex returns the point index of sample s.
func (t *Trajectory) SampleIndex(s int) int {
	if s < 0 || s >= t.shape.Samples {
		panic(fmt.Sprintf("sample index %d out of range [0, %d)", s, t.shape.Samples))
	}

	return t.shape.Density * s
}

// SampledPoint returns a copy of sample s.
func (t *Trajectory) SampledPoint(s int) Point {
	return t.points[t.SampleIndex(s)]
}

// SetPosition moves point i to p. If the trajectory has terrain, the height of
// the point is resampled and the position is dropped onto the ground.
func (t *Trajectory) SetPosition(i int, p mgl64.Vec3) {
	if t.terrain != nil {
		h := t.terrain.Height(p.X(), p.Z())
		p = mgl64.Vec3{p.X(), h, p.Z()}
	}

	t.points[i].Position = p
	t.points[i].Height = p.Y()
}

// SetDirection points i along the ground projection of d. Zero vectors leave
// the direction unchanged.
func (t *Trajectory) SetDirection(i int, d mgl64.Vec3) {
	n := math3d.SafeNormalize(math3d.Ground(d))
	if n == math3d.ZeroVector3 {
		return
	}

	t.points[i].Direction = n
}

// SetGait replaces the gait weights of point i.
func (t *Trajectory) SetGait(i int, g gait.Vector) {
	t.points[i].Gait = g
}

// Project returns a probe point offset laterally from point i by the given
// distance (positive is to the right), dropped onto the terrain.
func (t *Trajectory) Project(i int, offset float64) mgl64.Vec3 {
	p := t.points[i]
	v := p.Position.Add(p.Frame().Right().Mul(offset))

	if t.terrain != nil {
		return mgl64.Vec3{v.X(), t.terrain.Height(v.X(), v.Z()), v.Z()}
	}

	return mgl64.Vec3{v.X(), p.Height, v.Z()}
}

// ShiftPast ages every past point by one slot: the oldest is discarded, and
// the point before the root becomes a copy of the root. The root and future
// points are not touched. The root frame is snapshotted (see Previous) first.
func (t *Trajectory) ShiftPast() {
	t.previous = t.Root().Frame()

	for i := 0; i < t.RootIndex(); i++ {
		t.points[i] = t.points[i+1]
	}
}

// PredictFuture recomputes the future points by blending the existing shape of
// the trajectory toward a straight extrapolation of the target velocity, and
// their directions toward the target direction. Points near the root mostly
// keep their previous shape; the last point is pure extrapolation. The gait of
// the root is copied onto every future point.
func (t *Trajectory) PredictFuture(targetVelocity mgl64.Vec3, targetDirection mgl64.Vec3) {
	root := t.RootIndex()
	future := float64(t.shape.Future)
	step := targetVelocity.Mul(1 / future)

	blended := make([]mgl64.Vec3, len(t.points))
	blended[root] = t.points[root].Position

	for i := root + 1; i < len(t.points); i++ {
		r := float64(i-root) / future
		scalePos := 1 - math.Pow(1-r, biasPosition)
		scaleDir := 1 - math.Pow(1-r, biasDirection)

		delta := t.points[i].Position.Sub(t.points[i-1].Position)
		blended[i] = blended[i-1].Add(math3d.Lerp(delta, step, scalePos))

		t.SetDirection(i, math3d.Lerp(t.points[i].Direction, targetDirection, scaleDir))
		t.points[i].Gait = t.points[root].Gait
	}

	for i := root + 1; i < len(t.points); i++ {
		t.SetPosition(i, blended[i])
	}
}
