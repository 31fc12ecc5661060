package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegRad(t *testing.T) {
	assert.InDelta(t, math.Pi, Rad(180), 1e-12)
	assert.InDelta(t, 90.0, Deg(math.Pi/2), 1e-12)
	assert.InDelta(t, 37.5, Deg(Rad(37.5)), 1e-12)
}

func TestRepeat(t *testing.T) {
	type eg struct {
		x, length, exp float64
	}

	examples := []eg{
		{0, 10, 0},
		{3, 10, 3},
		{10, 10, 0},
		{13, 10, 3},
		{-1, 10, 9},
		{-10, 10, 0},
		{2 * math.Pi, 2 * math.Pi, 0},
		{7, 2 * math.Pi, 7 - 2*math.Pi},
	}

	for i, x := range examples {
		act := Repeat(x.x, x.length)
		assert.InDelta(t, x.exp, act, 1e-9, "example %d", i+1)
		assert.True(t, act >= 0 && act < x.length, "example %d out of range: %v", i+1, act)
	}
}

func TestRepeatTinyNegative(t *testing.T) {
	act := Repeat(-1e-18, 2*math.Pi)
	assert.True(t, act >= 0 && act < 2*math.Pi)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 2.0, Lerp(2, 8, 0))
	assert.Equal(t, 8.0, Lerp(2, 8, 1))
	assert.Equal(t, 5.0, Lerp(2, 8, 0.5))
}

func TestLerpNeverOvershoots(t *testing.T) {
	for _, x := range []float64{0.01, 0.1, 0.25, 0.3, 0.7, 0.99} {
		assert.LessOrEqual(t, Lerp(1, 1, x), 1.0)
		assert.LessOrEqual(t, Lerp(0.3, 1, x), 1.0)
		assert.GreaterOrEqual(t, Lerp(0, 0.3, x), 0.0)
	}

	assert.Equal(t, 8.0, Lerp(2, 8, 3))
	assert.Equal(t, 2.0, Lerp(2, 8, -1))
}
