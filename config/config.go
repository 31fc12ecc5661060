// Package config loads the settings of the biped binary.
package config

import (
	"fmt"

	"github.com/adammck/biped/components/motion"
	"github.com/adammck/biped/obstacles"
	"github.com/adammck/biped/trajectory"
	"github.com/adammck/biped/utils"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	FPS      int    `mapstructure:"fps"`

	Model struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"model"`

	Motion struct {
		TargetBlending       float64 `mapstructure:"targetBlending"`
		GaitTransition       float64 `mapstructure:"gaitTransition"`
		TrajectoryCorrection float64 `mapstructure:"trajectoryCorrection"`
		UnitScale            float64 `mapstructure:"unitScale"`
		TurnAngle            float64 `mapstructure:"turnAngle"` // degrees
		Joints               int     `mapstructure:"joints"`
	} `mapstructure:"motion"`

	Trajectory struct {
		Past    int     `mapstructure:"past"`
		Future  int     `mapstructure:"future"`
		Density int     `mapstructure:"density"`
		Samples int     `mapstructure:"samples"`
		Width   float64 `mapstructure:"width"`
	} `mapstructure:"trajectory"`

	Terrain struct {
		Kind      string  `mapstructure:"kind"`
		Height    float64 `mapstructure:"height"`
		Amplitude float64 `mapstructure:"amplitude"`
		Frequency float64 `mapstructure:"frequency"`
		Seed      int64   `mapstructure:"seed"`
	} `mapstructure:"terrain"`

	Obstacles []obstacles.Box `mapstructure:"obstacles"`

	Controller struct {
		Device string `mapstructure:"device"`
	} `mapstructure:"controller"`

	Stream struct {
		Port string `mapstructure:"port"`
		Baud int    `mapstructure:"baud"`
	} `mapstructure:"stream"`

	Recorder struct {
		Path      string `mapstructure:"path"`
		Character string `mapstructure:"character"`
	} `mapstructure:"recorder"`
}

func setDefaults(v *viper.Viper) {
	def := motion.DefaultConfig()

	v.SetDefault("logLevel", "info")
	v.SetDefault("fps", 60)
	v.SetDefault("model.dir", "")

	v.SetDefault("motion.targetBlending", def.TargetBlending)
	v.SetDefault("motion.gaitTransition", def.GaitTransition)
	v.SetDefault("motion.trajectoryCorrection", def.TrajectoryCorrection)
	v.SetDefault("motion.unitScale", def.UnitScale)
	v.SetDefault("motion.turnAngle", utils.Deg(def.TurnAngle))
	v.SetDefault("motion.joints", def.Joints)

	v.SetDefault("trajectory.past", def.Shape.Past)
	v.SetDefault("trajectory.future", def.Shape.Future)
	v.SetDefault("trajectory.density", def.Shape.Density)
	v.SetDefault("trajectory.samples", def.Shape.Samples)
	v.SetDefault("trajectory.width", def.Shape.Width)

	v.SetDefault("terrain.kind", "flat")
	v.SetDefault("terrain.height", 0.0)
	v.SetDefault("terrain.amplitude", 0.3)
	v.SetDefault("terrain.frequency", 0.1)
	v.SetDefault("terrain.seed", 1)

	v.SetDefault("controller.device", "")

	v.SetDefault("stream.port", "")
	v.SetDefault("stream.baud", 115200)

	v.SetDefault("recorder.path", "")
	v.SetDefault("recorder.character", "biped")
}

// Load reads the config file at path from the given filesystem, over the
// defaults. An empty path returns the defaults.
func Load(fs afero.Fs, path string) (Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	if c.FPS <= 0 {
		return Config{}, fmt.Errorf("fps must be positive, got %d", c.FPS)
	}

	return c, nil
}

// MotionConfig returns the configuration of the motion loop.
func (c Config) MotionConfig() motion.Config {
	return motion.Config{
		TargetBlending:       c.Motion.TargetBlending,
		GaitTransition:       c.Motion.GaitTransition,
		TrajectoryCorrection: c.Motion.TrajectoryCorrection,
		UnitScale:            c.Motion.UnitScale,
		TurnAngle:            utils.Rad(c.Motion.TurnAngle),
		Joints:               c.Motion.Joints,
		Shape: trajectory.Shape{
			Past:    c.Trajectory.Past,
			Future:  c.Trajectory.Future,
			Density: c.Trajectory.Density,
			Samples: c.Trajectory.Samples,
			Width:   c.Trajectory.Width,
		},
	}
}
