package intent

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FakeIntent returns the same intent every frame.
type FakeIntent struct {
	turn   float64
	move   mgl64.Vec2
	jog    float64
	crouch float64
}

func New(turn float64, move mgl64.Vec2, jog, crouch float64) *FakeIntent {
	return &FakeIntent{turn, move, jog, crouch}
}

// Idle returns an intent which never asks for anything.
func Idle() *FakeIntent {
	return &FakeIntent{}
}

// Forward returns an intent to walk straight ahead at full speed.
func Forward() *FakeIntent {
	return &FakeIntent{move: mgl64.Vec2{0, 1}}
}

func (i FakeIntent) Turn() float64 {
	return i.turn
}

func (i FakeIntent) Move() mgl64.Vec2 {
	return i.move
}

func (i FakeIntent) Jog() float64 {
	return i.jog
}

func (i FakeIntent) Crouch() float64 {
	return i.crouch
}
