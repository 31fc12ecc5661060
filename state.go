package biped

import (
	"github.com/adammck/biped/gait"
	"github.com/adammck/biped/math3d"
	"github.com/adammck/biped/skeleton"
	"github.com/adammck/biped/trajectory"
	"github.com/go-gl/mathgl/mgl64"
)

// State is shared between components for the duration of the program.
type State struct {

	// Incremented at the start of every tick.
	Frame uint64

	// Components can set this to true to indicate that the biped should shut
	// down.
	Shutdown bool

	// Set to return the character to where it started. Cleared by whichever
	// component does so.
	Reset bool

	// The most recently synthesized frame. Nil until the first one. Readers
	// must not modify it; a new one is published every frame.
	Snapshot *Snapshot
}

// Snapshot is a read-only copy of everything interesting about one frame, for
// visualizers, recorders, and the like.
type Snapshot struct {
	Frame uint64

	Root  math3d.Frame
	Phase float64
	Gait  gait.Vector

	TargetDirection mgl64.Vec3
	TargetVelocity  mgl64.Vec3

	Trajectory []trajectory.Point
	Joints     []skeleton.Joint
}
