package controller

import (
	"io"
	"math"
	"time"

	"github.com/adammck/biped"
	"github.com/adammck/biped/utils"
	"github.com/adammck/sixaxis"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

const (

	// Stick deflections (as a fraction of full scale) smaller than this are
	// ignored, since the sticks never quite center.
	deadzone = 0.08
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "controller",
})

// Pad is the state of the gamepad at one instant, normalized. Sticks are in
// [-1, 1], with positive X to the right and positive Y toward the player.
// Triggers are in [0, 1].
type Pad struct {
	LeftX  float64
	LeftY  float64
	RightX float64
	L2     float64
	R2     float64
	Start  bool
	Select bool
}

// Controller is an intent source driven by a sixaxis gamepad. The left stick
// moves, the right stick turns, R2 jogs, L2 crouches, SELECT resets, and START
// shuts down.
type Controller struct {
	sa    *sixaxis.SA
	start Latch
	reset Latch

	turn   float64
	move   mgl64.Vec2
	jog    float64
	crouch float64
}

func New(r io.Reader) *Controller {
	return &Controller{
		sa: sixaxis.New(r),
	}
}

func (c *Controller) Boot() error {
	log.Infof("reading gamepad")
	go c.sa.Run()
	return nil
}

// Tick samples the gamepad. The intent doesn't change between ticks, so it
// should be ticked before whatever reads it.
func (c *Controller) Tick(now time.Time, state *biped.State) error {
	c.Apply(Pad{
		LeftX:  float64(c.sa.LeftStick.X) / 127.0,
		LeftY:  float64(c.sa.LeftStick.Y) / 127.0,
		RightX: float64(c.sa.RightStick.X) / 127.0,
		L2:     float64(c.sa.L2) / 255.0,
		R2:     float64(c.sa.R2) / 255.0,
		Start:  c.sa.Start,
		Select: c.sa.Select,
	}, state)

	return nil
}

// Apply updates the intent from the given pad state.
func (c *Controller) Apply(p Pad, state *biped.State) {
	c.turn = utils.Clamp(dead(p.RightX), -1, 1)

	m := mgl64.Vec2{dead(p.LeftX), -dead(p.LeftY)}
	if l := m.Len(); l > 1 {
		m = m.Mul(1 / l)
	}
	c.move = m

	c.jog = utils.Clamp(p.R2, 0, 1)
	c.crouch = utils.Clamp(p.L2, 0, 1)

	// At any time, pressing start shuts down.
	if c.start.Run(p.Start) {
		log.Infof("pressed START, shutting down")
		state.Shutdown = true
	}

	if c.reset.Run(p.Select) {
		log.Infof("pressed SELECT, resetting")
		state.Reset = true
	}
}

func (c *Controller) Turn() float64 {
	return c.turn
}

func (c *Controller) Move() mgl64.Vec2 {
	return c.move
}

func (c *Controller) Jog() float64 {
	return c.jog
}

func (c *Controller) Crouch() float64 {
	return c.crouch
}

func dead(v float64) float64 {
	if math.Abs(v) < deadzone {
		return 0
	}

	return v
}
