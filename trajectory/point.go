package trajectory

import (
	"fmt"

	"github.com/adammck/biped/gait"
	"github.com/adammck/biped/math3d"
	"github.com/go-gl/mathgl/mgl64"
)

// Point is a single sample of the trajectory window.
type Point struct {
	Position mgl64.Vec3

	// Facing direction, projected onto the ground and normalized.
	Direction mgl64.Vec3

	Gait gait.Vector

	// Height of the terrain under the point.
	Height float64
}

func (p Point) String() string {
	return fmt.Sprintf("Point{pos=%v dir=%v h=%.2f %s}", p.Position, p.Direction, p.Height, p.Gait)
}

// Frame returns the coordinate frame at the point, facing along its direction.
func (p Point) Frame() math3d.Frame {
	return math3d.MakeFrame(p.Position, p.Direction)
}
