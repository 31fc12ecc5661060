package utils

import (
	"math"
)

func Deg(rads float64) float64 {
	return rads / (math.Pi / 180)
}

func Rad(degrees float64) float64 {
	return (math.Pi / 180) * degrees
}

// Repeat wraps x into [0, length). Unlike math.Mod, negative values wrap
// around to the top of the range rather than staying negative.
func Repeat(x, length float64) float64 {
	r := x - math.Floor(x/length)*length

	// Floating point can land exactly on the upper bound for tiny negative
	// inputs, which would break the half-open range.
	if r >= length {
		return 0
	}

	return r
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Lerp returns the linear interpolation between a and b by t, which is
// clamped to [0, 1]. The result never leaves the range spanned by a and b, not
// even by an ulp, and t=0 and t=1 return a and b exactly.
func Lerp(a, b, t float64) float64 {
	t = Clamp(t, 0, 1)
	return Clamp((1-t)*a+t*b, math.Min(a, b), math.Max(a, b))
}
