package motion

import (
	"fmt"

	"github.com/adammck/biped/trajectory"
	"github.com/adammck/biped/utils"
)

// Config holds the tunables of the motion loop.
type Config struct {

	// Rate at which the target direction and velocity follow the intent.
	TargetBlending float64

	// Rate at which the root gait follows its target.
	GaitTransition float64

	// How much of the network's predicted future is blended into the
	// geometric extrapolation each frame.
	TrajectoryCorrection float64

	// Scale between world units and the units the network was trained with.
	UnitScale float64

	// The turn (in radians) applied to the target direction at full turn
	// intent.
	TurnAngle float64

	// Number of joints in the skeleton.
	Joints int

	Shape trajectory.Shape
}

// DefaultConfig returns the configuration which the published models expect.
func DefaultConfig() Config {
	return Config{
		TargetBlending:       0.25,
		GaitTransition:       0.25,
		TrajectoryCorrection: 0.75,
		UnitScale:            100,
		TurnAngle:            utils.Rad(60),
		Joints:               31,
		Shape:                trajectory.DefaultShape(),
	}
}

func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"target blending":       c.TargetBlending,
		"gait transition":       c.GaitTransition,
		"trajectory correction": c.TrajectoryCorrection,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
		}
	}

	if c.UnitScale <= 0 {
		return fmt.Errorf("unit scale must be positive, got %v", c.UnitScale)
	}

	if c.Joints <= 0 {
		return fmt.Errorf("need at least one joint, got %d", c.Joints)
	}

	return c.Shape.Validate()
}
