package trajectory

import (
	"errors"
	"fmt"
)

// ErrInvalidShape is returned when the dimensions of a trajectory window are
// inconsistent with each other.
var ErrInvalidShape = errors.New("invalid trajectory shape")

// Shape describes the layout of a trajectory window. The window contains Past
// points, the root (present) point, and Future points, in that order. Every
// Density'th point (starting at zero) is a sample, which is what the network
// sees; there are Samples of them, and together they span the whole window
// but for the final stride.
type Shape struct {
	Past    int
	Future  int
	Density int
	Samples int

	// Lateral distance between the left and right terrain probes.
	Width float64
}

// DefaultShape is the window which the published models were trained with:
// one second either side of the present at 60fps, sampled every ten frames.
func DefaultShape() Shape {
	return Shape{
		Past:    60,
		Future:  60,
		Density: 10,
		Samples: 12,
		Width:   0.5,
	}
}

// Len returns the total number of points in the window.
func (s Shape) Len() int {
	return s.Past + 1 + s.Future
}

// RootIndex returns the index of the present point.
func (s Shape) RootIndex() int {
	return s.Past
}

// RootSampleIndex returns the index of the sample which coincides with the
// present point.
func (s Shape) RootSampleIndex() int {
	return s.Past / s.Density
}

// FutureSamples returns the number of samples from the root (inclusive) to the
// end of the sampled window.
func (s Shape) FutureSamples() int {
	return s.Samples - s.RootSampleIndex()
}

// Validate returns an error wrapping ErrInvalidShape if the window cannot be
// sampled consistently.
func (s Shape) Validate() error {
	switch {
	case s.Past <= 0 || s.Future <= 0:
		return fmt.Errorf("%w: need past and future points, got past=%d future=%d", ErrInvalidShape, s.Past, s.Future)

	case s.Density <= 0 || s.Samples <= 0:
		return fmt.Errorf("%w: need positive density and samples, got density=%d samples=%d", ErrInvalidShape, s.Density, s.Samples)

	case s.Past%s.Density != 0:
		return fmt.Errorf("%w: root index %d is not a multiple of density %d", ErrInvalidShape, s.Past, s.Density)

	case s.Samples*s.Density > s.Past+s.Future:
		return fmt.Errorf("%w: %d samples at density %d overrun the %d point window", ErrInvalidShape, s.Samples, s.Density, s.Len())

	// The last sample must be within one stride of the end, or the points
	// past it have nothing to be decoded from.
	case s.Samples*s.Density < s.Past+s.Future:
		return fmt.Errorf("%w: %d samples at density %d stop short of the future window", ErrInvalidShape, s.Samples, s.Density)

	case s.RootSampleIndex() >= s.Samples:
		return fmt.Errorf("%w: root sample %d is outside %d samples", ErrInvalidShape, s.RootSampleIndex(), s.Samples)

	case s.Width < 0:
		return fmt.Errorf("%w: negative width %v", ErrInvalidShape, s.Width)
	}

	return nil
}
