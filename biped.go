package biped

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "biped",
})

type Biped struct {
	Components []Component
	State      *State
}

// Component is anything which runs once per frame. Components are ticked in
// the order they were added, so a component which reads the snapshot should
// be added after the one which writes it.
type Component interface {
	Boot() error
	Tick(now time.Time, state *State) error
}

// NewBiped creates a new Biped with no components.
func NewBiped() *Biped {
	return &Biped{
		Components: []Component{},
		State:      &State{},
	}
}

// Add registers a component to receive ticks every frame.
func (b *Biped) Add(c Component) {
	b.Components = append(b.Components, c)
}

// Boot calls Boot on each component.
func (b *Biped) Boot() error {
	for _, c := range b.Components {
		err := c.Boot()
		if err != nil {
			return fmt.Errorf("booting %T: %w", c, err)
		}
	}

	return nil
}

// Tick calls Tick on each component, stopping at the first error. The frame
// counter is advanced whether or not anything fails.
func (b *Biped) Tick(now time.Time) error {
	b.State.Frame++

	for _, c := range b.Components {
		err := c.Tick(now, b.State)
		if err != nil {
			return fmt.Errorf("ticking %T: %w", c, err)
		}
	}

	log.Debugf("tick %d", b.State.Frame)
	return nil
}
