package math3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a coordinate frame on the ground plane: a position, and a heading
// (rotation around the Y axis, in radians). The height of the position is
// carried through transformations untouched; only the heading rotates.
//
// Frames are values. Take a new one rather than mutating an old one.
type Frame struct {
	Position mgl64.Vec3
	Heading  float64
}

// MakeFrame returns a frame at pos, facing along the ground projection of dir.
func MakeFrame(pos mgl64.Vec3, dir mgl64.Vec3) Frame {
	return Frame{
		Position: pos,
		Heading:  Heading(dir),
	}
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{x=%+07.2f y=%+07.2f z=%+07.2f, h=%+07.2f}", f.Position.X(), f.Position.Y(), f.Position.Z(), f.Heading)
}

// Rotation returns the orientation of the frame as a quaternion around the
// world up axis.
func (f Frame) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(f.Heading, Up)
}

// Direction returns the unit vector which the frame is facing.
func (f Frame) Direction() mgl64.Vec3 {
	return DirectionFromHeading(f.Heading)
}

// Right returns the unit vector pointing to the right of the frame, on the
// ground plane.
func (f Frame) Right() mgl64.Vec3 {
	return f.Rotation().Rotate(mgl64.Vec3{1, 0, 0})
}

// RelativePositionTo expresses the world position p relative to this frame.
func (f Frame) RelativePositionTo(p mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation().Conjugate().Rotate(p.Sub(f.Position))
}

// RelativePositionFrom is the inverse of RelativePositionTo: it converts the
// position p, relative to this frame, back into the world space.
func (f Frame) RelativePositionFrom(p mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation().Rotate(p).Add(f.Position)
}

// RelativeDirectionTo expresses the world direction d relative to this frame.
// Directions are not translated.
func (f Frame) RelativeDirectionTo(d mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation().Conjugate().Rotate(d)
}

// RelativeDirectionFrom converts the direction d, relative to this frame, back
// into the world space.
func (f Frame) RelativeDirectionFrom(d mgl64.Vec3) mgl64.Vec3 {
	return f.Rotation().Rotate(d)
}

// Add composes two frames: ff is interpreted relative to f, and the result is
// in the same space as f.
func (f Frame) Add(ff Frame) Frame {
	return Frame{
		Position: f.RelativePositionFrom(ff.Position),
		Heading:  f.Heading + ff.Heading,
	}
}
