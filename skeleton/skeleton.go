// Package skeleton holds the joint state of a character, in world space.
package skeleton

import (
	"fmt"

	"github.com/adammck/biped/math3d"
	"github.com/go-gl/mathgl/mgl64"
)

// Joint is the world position of one joint, and the world direction it moved
// in (scaled by distance) during the last frame.
type Joint struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

func (j Joint) String() string {
	return fmt.Sprintf("Joint{pos=%v vel=%v}", j.Position, j.Velocity)
}

// Skeleton is a fixed-size, ordered set of joints. The order matches the
// joint order of the motion model, and never changes.
type Skeleton struct {
	Joints []Joint
}

// New returns a skeleton with n joints, all at the origin.
func New(n int) *Skeleton {
	return &Skeleton{
		Joints: make([]Joint, n),
	}
}

func (s *Skeleton) Len() int {
	return len(s.Joints)
}

// Place moves every joint to the same world position, with zero velocity.
func (s *Skeleton) Place(p mgl64.Vec3) {
	for i := range s.Joints {
		s.Joints[i] = Joint{Position: p}
	}
}

// Positions returns a copy of the joint positions.
func (s *Skeleton) Positions() []mgl64.Vec3 {
	pp := make([]mgl64.Vec3, len(s.Joints))
	for i, j := range s.Joints {
		pp[i] = j.Position
	}
	return pp
}

// Sink receives the pose of every synthesized frame. The root is written
// first, then every joint in order.
type Sink interface {
	SetRoot(f math3d.Frame)
	SetJoint(i int, p mgl64.Vec3)
}

// Write sends the root frame and every joint position to each of the sinks.
func (s *Skeleton) Write(root math3d.Frame, sinks ...Sink) {
	for _, sink := range sinks {
		sink.SetRoot(root)
		for i, j := range s.Joints {
			sink.SetJoint(i, j.Position)
		}
	}
}
