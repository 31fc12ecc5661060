// Package gait holds the per-sample blend weights over the locomotion styles
// which the motion model was trained on.
package gait

import (
	"fmt"

	"github.com/adammck/biped/utils"
)

// Count is the number of styles in a Vector, and so the number of gait inputs
// per trajectory sample.
const Count = 6

// Vector is a set of blend weights. Each is expected to be in [0, 1], but
// nothing forces them to sum to one; callers which want a coherent blend must
// provide coherent targets.
type Vector struct {
	Stand  float64
	Walk   float64
	Jog    float64
	Crouch float64
	Jump   float64
	Bump   float64
}

func (v Vector) String() string {
	return fmt.Sprintf("Gait{stand=%.2f walk=%.2f jog=%.2f crouch=%.2f jump=%.2f bump=%.2f}", v.Stand, v.Walk, v.Jog, v.Crouch, v.Jump, v.Bump)
}

// Blend moves every weight toward the corresponding weight in target, by the
// given rate. This is an exponential low-pass: applied every frame with a
// constant target, each weight converges geometrically. With a rate in [0, 1]
// the result never leaves the range spanned by the two inputs.
func (v Vector) Blend(target Vector, rate float64) Vector {
	return Vector{
		Stand:  utils.Lerp(v.Stand, target.Stand, rate),
		Walk:   utils.Lerp(v.Walk, target.Walk, rate),
		Jog:    utils.Lerp(v.Jog, target.Jog, rate),
		Crouch: utils.Lerp(v.Crouch, target.Crouch, rate),
		Jump:   utils.Lerp(v.Jump, target.Jump, rate),
		Bump:   utils.Lerp(v.Bump, target.Bump, rate),
	}
}

// Array returns the weights in the order the network expects them.
func (v Vector) Array() [Count]float64 {
	return [Count]float64{v.Stand, v.Walk, v.Jog, v.Crouch, v.Jump, v.Bump}
}
