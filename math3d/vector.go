package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ZeroVector3 = mgl64.Vec3{}
	Up          = mgl64.Vec3{0, 1, 0}
	Forward     = mgl64.Vec3{0, 0, 1}
)

// Ground projects v onto the ground plane by discarding its Y component.
func Ground(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// SafeNormalize returns the unit vector in the direction of v, or the zero
// vector if v has no length. mgl64's Normalize divides by zero in that case.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return ZeroVector3
	}

	return v.Mul(1 / l)
}

// Lerp returns the linear interpolation between a and b by t, which is not
// clamped.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Heading returns the rotation (in radians) around the Y axis which points the
// forward (+Z) axis along the ground projection of dir. Zero vectors face
// forward.
func Heading(dir mgl64.Vec3) float64 {
	if dir.X() == 0 && dir.Z() == 0 {
		return 0
	}

	return math.Atan2(dir.X(), dir.Z())
}

// DirectionFromHeading is the inverse of Heading: a unit vector on the ground
// plane.
func DirectionFromHeading(h float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(h), 0, math.Cos(h)}
}

// RotateY rotates v by the given angle (in radians) around the world up axis.
func RotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	return mgl64.QuatRotate(angle, Up).Rotate(v)
}
