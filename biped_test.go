package biped

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	boots  int
	ticks  int
	err    error
	frames []uint64
}

func (c *counter) Boot() error {
	c.boots++
	return c.err
}

func (c *counter) Tick(now time.Time, state *State) error {
	c.ticks++
	c.frames = append(c.frames, state.Frame)
	return c.err
}

func TestTickOrder(t *testing.T) {
	b := NewBiped()
	a, z := &counter{}, &counter{}
	b.Add(a)
	b.Add(z)

	assert.NoError(t, b.Boot())
	assert.NoError(t, b.Tick(time.Now()))
	assert.NoError(t, b.Tick(time.Now()))

	assert.Equal(t, []uint64{1, 2}, a.frames)
	assert.Equal(t, []uint64{1, 2}, z.frames)
	assert.Equal(t, 1, a.boots)
}

func TestTickStopsAtError(t *testing.T) {
	b := NewBiped()
	boom := errors.New("boom")
	a, z := &counter{err: boom}, &counter{}
	b.Add(a)
	b.Add(z)

	assert.ErrorIs(t, b.Boot(), boom)
	assert.Equal(t, 0, z.boots)

	assert.ErrorIs(t, b.Tick(time.Now()), boom)
	assert.Equal(t, 0, z.ticks)
	assert.Equal(t, uint64(1), b.State.Frame)
}
