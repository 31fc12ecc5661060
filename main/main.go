package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adammck/biped"
	"github.com/adammck/biped/components/controller"
	"github.com/adammck/biped/components/motion"
	"github.com/adammck/biped/components/recorder"
	"github.com/adammck/biped/components/stream"
	"github.com/adammck/biped/config"
	"github.com/adammck/biped/obstacles"
	"github.com/adammck/biped/pfnn"
	"github.com/adammck/biped/terrain"
	"github.com/adammck/biped/trajectory"
	"github.com/jacobsa/go-serial/serial"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	configPath = flag.String("config", "", "path to the config file")
	debug      = flag.Bool("debug", false, "log every frame")
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

func main() {
	flag.Parse()

	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, *configPath)
	if err != nil {
		log.Fatalf("error loading config: %s", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("bad log level: %s", err)
	}
	logrus.SetLevel(level)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Without a model the character stands still, so a missing one isn't
	// fatal.
	var params *pfnn.Parameters
	if cfg.Model.Dir != "" {
		params, err = pfnn.Load(fs, cfg.Model.Dir)
		if err != nil {
			log.Errorf("error loading model, motion disabled: %s", err)
			params = nil
		}
	} else {
		log.Warn("no model dir configured, motion disabled")
	}

	b := biped.NewBiped()
	opts := []motion.Option{
		motion.WithName(cfg.Recorder.Character),
		motion.WithTerrain(newTerrain(cfg)),
	}

	if len(cfg.Obstacles) > 0 {
		opts = append(opts, motion.WithObstacles(obstacles.New(cfg.Obstacles...)))
	}

	if cfg.Controller.Device != "" {
		log.Infof("opening controller: %s", cfg.Controller.Device)
		f, err := os.Open(cfg.Controller.Device)
		if err != nil {
			log.Fatalf("error opening controller: %s", err)
		}
		defer f.Close()

		c := controller.New(f)
		b.Add(c)
		opts = append(opts, motion.WithIntent(c))
	}

	// Sinks are written by motion, then ticked after it.
	var sinks []biped.Component
	if cfg.Stream.Port != "" {
		log.Infof("opening serial port: %s", cfg.Stream.Port)
		port, err := serial.Open(serial.OpenOptions{
			PortName:              cfg.Stream.Port,
			BaudRate:              uint(cfg.Stream.Baud),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       0,
			InterCharacterTimeout: 100,
		})
		if err != nil {
			log.Fatalf("error opening serial port: %s", err)
		}
		defer port.Close()

		s := stream.New(port)
		opts = append(opts, motion.WithSinks(s))
		sinks = append(sinks, s)
	}

	m, err := motion.New(cfg.MotionConfig(), pfnn.New(params), opts...)
	if err != nil {
		log.Fatalf("error creating motion controller: %s", err)
	}
	b.Add(m)

	for _, s := range sinks {
		b.Add(s)
	}

	if cfg.Recorder.Path != "" {
		r, err := recorder.Open(cfg.Recorder.Path, cfg.Recorder.Character)
		if err != nil {
			log.Fatalf("error opening recorder: %s", err)
		}
		defer r.Close()
		b.Add(r)
	}

	log.Info("booting components")
	if err := b.Boot(); err != nil {
		log.Fatalf("error while booting: %s", err)
	}

	// Catch both SIGINT (ctrl+c) and SIGTERM (kill/systemd).
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	t := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer t.Stop()

	log.Infof("starting loop at %d fps", cfg.FPS)
	run(b, t.C, sig)

	if s := b.State.Snapshot; s != nil {
		log.Infof("stopped at frame %d, root=%s", s.Frame, s.Root)
	}
}

// run ticks b until something requests a shutdown. Signals are handled on the
// same goroutine as ticks, so nothing else touches the state.
func run(b *biped.Biped, ticks <-chan time.Time, sig <-chan os.Signal) {
	for !b.State.Shutdown {
		select {
		case <-sig:
			log.Info("caught signal, shutting down")
			b.State.Shutdown = true

		case now := <-ticks:
			if err := b.Tick(now); err != nil {
				log.Errorf("error in frame %d: %s", b.State.Frame, err)
			}
		}
	}
}

func newTerrain(cfg config.Config) trajectory.Terrain {
	switch cfg.Terrain.Kind {
	case "perlin":
		return terrain.NewPerlin(cfg.Terrain.Amplitude, cfg.Terrain.Frequency, cfg.Terrain.Seed)
	case "flat", "":
		return terrain.Flat{Y: cfg.Terrain.Height}
	default:
		log.Fatalf("unknown terrain kind: %s", cfg.Terrain.Kind)
		return nil
	}
}
