package trajectory

import (
	"github.com/adammck/biped/math3d"
	"github.com/go-gl/mathgl/mgl64"
)

// Distance kept between a corrected trajectory point and whatever blocked it.
const collisionSafety = 0.5

// Obstacles answers whether the straight segment between two points is
// blocked. ProjectIfBlocked returns to unchanged when the segment is clear,
// or some other point (typically where it was blocked) otherwise.
type Obstacles interface {
	ProjectIfBlocked(from, to mgl64.Vec3) mgl64.Vec3
}

// ApplyCollisionCorrection walks the window from index from to the end, and
// pulls back any point whose step from its predecessor would pass through an
// obstacle. Unblocked points are left exactly as they were. A nil obstacle
// query does nothing.
func (t *Trajectory) ApplyCollisionCorrection(from int, obstacles Obstacles) {
	if obstacles == nil {
		return
	}

	if from < 1 {
		from = 1
	}

	for i := from; i < len(t.points); i++ {
		prev := t.points[i-1].Position
		cur := t.points[i].Position

		test := prev.Add(math3d.SafeNormalize(cur.Sub(prev)).Mul(collisionSafety))
		if obstacles.ProjectIfBlocked(prev, test) == test {
			continue
		}

		corrected := test.Add(math3d.SafeNormalize(prev.Sub(test)).Mul(collisionSafety))
		log.Debugf("point %d blocked at %v, corrected to %v", i, cur, corrected)
		t.SetPosition(i, corrected)
	}
}
