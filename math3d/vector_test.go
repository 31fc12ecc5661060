package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestGround(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{1, 0, 3}, Ground(mgl64.Vec3{1, 2, 3}))
}

func TestSafeNormalize(t *testing.T) {
	type eg struct {
		in  mgl64.Vec3
		out mgl64.Vec3
	}

	examples := []eg{
		{mgl64.Vec3{0, 0, 0}, ZeroVector3},
		{mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0.5773502691896258, 0.5773502691896258, 0.5773502691896258}},
		{mgl64.Vec3{2, 2, 2}, mgl64.Vec3{0.5773502691896258, 0.5773502691896258, 0.5773502691896258}},
		{mgl64.Vec3{0, 0, -4}, mgl64.Vec3{0, 0, -1}},
	}

	for i, x := range examples {
		act := SafeNormalize(x.in)
		for j := 0; j < 3; j++ {
			assert.InDelta(t, x.out[j], act[j], 1e-12, "example %d[%d]", i+1, j)
		}
	}
}

func TestLerp(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{2, 4, 6}

	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, Lerp(a, b, 0.5))
}

func TestHeading(t *testing.T) {
	type eg struct {
		dir mgl64.Vec3
		exp float64
	}

	examples := []eg{
		{mgl64.Vec3{0, 0, 1}, 0},
		{mgl64.Vec3{1, 0, 0}, math.Pi / 2},
		{mgl64.Vec3{0, 0, -1}, math.Pi},
		{mgl64.Vec3{-1, 0, 0}, -math.Pi / 2},
		{mgl64.Vec3{0, 5, 0}, 0},
	}

	for i, x := range examples {
		assert.InDelta(t, x.exp, Heading(x.dir), 1e-12, "example %d", i+1)
	}
}

func TestDirectionFromHeading(t *testing.T) {
	for _, h := range []float64{0, 0.3, math.Pi / 2, 2.5, -1.2} {
		d := DirectionFromHeading(h)
		assert.InDelta(t, 1.0, d.Len(), 1e-12)
		assert.InDelta(t, h, Heading(d), 1e-12)
	}
}

func TestRotateY(t *testing.T) {
	v := RotateY(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	assert.InDelta(t, 1.0, v.X(), 1e-9)
	assert.InDelta(t, 0.0, v.Y(), 1e-9)
	assert.InDelta(t, 0.0, v.Z(), 1e-9)
}
