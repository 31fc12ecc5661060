package motion

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/adammck/biped"
	"github.com/adammck/biped/fake/intent"
	"github.com/adammck/biped/math3d"
	"github.com/adammck/biped/pfnn"
	"github.com/adammck/biped/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// scripted is a predictor whose outputs are fixed up front, and which keeps
// every input it was given.
type scripted struct {
	in     []float64
	out    []float64
	phases []float64
}

func newScripted(l Layout) *scripted {
	return &scripted{
		in:  make([]float64, l.InputSize()),
		out: make([]float64, l.OutputSize()),
	}
}

func (s *scripted) Ready() bool     { return true }
func (s *scripted) InputSize() int  { return len(s.in) }
func (s *scripted) OutputSize() int { return len(s.out) }

func (s *scripted) SetInput(i int, v float64) {
	s.in[i] = v
}

func (s *scripted) Predict(phase float64) error {
	s.phases = append(s.phases, phase)
	return nil
}

func (s *scripted) Output(i int) float64 {
	return s.out[i]
}

func (s *scripted) set(b Block, r, c int, v float64) {
	s.out[b.Index(r, c)] = v
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Joints = 3
	return cfg
}

// walker predicts steady forward motion at unit speed, consistent with the
// trajectory extrapolation.
func walker(cfg Config) *scripted {
	l := NewLayout(cfg.Shape, cfg.Joints)
	s := newScripted(l)
	us := cfg.UnitScale
	step := 1 / float64(cfg.Shape.Future)

	s.set(l.RootVelocity, 0, 1, step*us)
	s.set(l.PhaseDelta, 0, 0, 0.02)

	for k := 0; k < l.FuturePositions.Cols; k++ {
		s.set(l.FuturePositions, axisZ, k, float64(k*cfg.Shape.Density)*step*us)
		s.set(l.FutureDirections, axisZ, k, 1)
	}

	for j := 0; j < cfg.Joints; j++ {
		s.set(l.OutJointPositions, j, 1, float64(j)*40)
		s.set(l.OutJointVelocities, j, 2, step*us)
	}

	return s
}

// fidget predicts root motion which a standing character must suppress.
func fidget(cfg Config) *scripted {
	l := NewLayout(cfg.Shape, cfg.Joints)
	s := newScripted(l)
	s.set(l.RootVelocity, 0, 0, 5)
	s.set(l.RootVelocity, 0, 1, 5)
	s.set(l.RootAngular, 0, 0, 0.1)
	s.set(l.PhaseDelta, 0, 0, 0.05)
	return s
}

func TestStandAmount(t *testing.T) {
	assert.Equal(t, 1.0, StandAmount(0))
	assert.Equal(t, 0.0, StandAmount(1))
	assert.InDelta(t, math.Pow(0.5, 0.25), StandAmount(0.5), 1e-12)
	assert.Equal(t, 0.0, StandAmount(1.0000001))
}

func TestGaitTarget(t *testing.T) {
	g := GaitTarget(0, 0.7, 0.3)
	assert.Equal(t, 1.0, g.Stand)
	assert.Equal(t, 0.0, g.Walk)
	assert.Equal(t, 0.0, g.Jog)
	assert.Equal(t, 0.3, g.Crouch)

	g = GaitTarget(0.05, 0, 0)
	assert.InDelta(t, 0.5, g.Stand, 1e-12)

	g = GaitTarget(1, 0.25, 0)
	assert.Equal(t, 0.0, g.Stand)
	assert.Equal(t, 0.75, g.Walk)
	assert.Equal(t, 0.25, g.Jog)
	assert.Equal(t, 0.0, g.Jump)
}

func TestAdvancePhase(t *testing.T) {
	type eg struct {
		phase, stand, delta float64
		exp                 float64
	}

	for i, eg := range []eg{
		{0, 1, 0.25, math.Pi / 2},
		{0, 0, 0.25, 0.1 * math.Pi / 2},
		{3 * math.Pi / 2, 1, 0.5, math.Pi / 2},
		{0.1, 1, -0.1, 0.1 - 0.2*math.Pi + 2*math.Pi},
	} {
		got := AdvancePhase(eg.phase, eg.stand, eg.delta)
		assert.InDelta(t, eg.exp, got, 1e-9, "example %d", i+1)
		assert.Equal(t, got, AdvancePhase(eg.phase, eg.stand, eg.delta))
	}
}

func TestAdvancePhaseStaysInRange(t *testing.T) {
	phase := 0.0
	for i := 0; i < 1000; i++ {
		delta := math.Sin(float64(i)) * 3
		phase = AdvancePhase(phase, float64(i%10)/10, delta)
		assert.GreaterOrEqual(t, phase, 0.0)
		assert.Less(t, phase, 2*math.Pi)
	}
}

func TestNotReady(t *testing.T) {
	c, err := New(testConfig(), pfnn.New(nil), WithIntent(intent.Forward()))
	require.NoError(t, err)
	assert.False(t, c.Ready())

	before := c.Trajectory().Points()
	state := &biped.State{}

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Tick(time.Now(), state))
	}

	assert.Nil(t, state.Snapshot)
	assert.Equal(t, before, c.Trajectory().Points())
	assert.Equal(t, 0.0, c.Phase())
}

func TestLayoutMismatch(t *testing.T) {
	cfg := testConfig()
	s := walker(cfg)
	s.in = s.in[:len(s.in)-1]

	_, err := New(cfg, s)
	assert.ErrorIs(t, err, ErrLayoutMismatch)

	// Predictors trained with joint rotations are fine.
	s = walker(cfg)
	s.out = append(s.out, make([]float64, 3*cfg.Joints)...)
	_, err = New(cfg, s)
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.GaitTransition = 1.5
	_, err := New(cfg, walker(testConfig()))
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Shape.Density = 7
	_, err = New(cfg, pfnn.New(nil))
	assert.Error(t, err)
}

func TestIdleCharacterStands(t *testing.T) {
	cfg := testConfig()
	c, err := New(cfg, fidget(cfg), WithIntent(intent.Idle()))
	require.NoError(t, err)

	prev := c.Trajectory().Root().Position
	for i := 0; i < 100; i++ {
		ok, err := c.Step()
		require.NoError(t, err)
		require.True(t, ok)

		pos := c.Trajectory().Root().Position
		if i >= 90 {
			assert.Less(t, pos.Sub(prev).Len(), 0.01, "frame %d", i+1)
		}
		prev = pos
	}

	assert.InDelta(t, 1.0, c.Trajectory().Root().Gait.Stand, 1e-6)
	assert.Equal(t, 0.0, c.Trajectory().Root().Gait.Walk)
}

func TestWalkingForward(t *testing.T) {
	cfg := testConfig()
	c, err := New(cfg, walker(cfg), WithIntent(intent.Forward()))
	require.NoError(t, err)

	last := 0.0
	for i := 0; i < 200; i++ {
		ok, err := c.Step()
		require.NoError(t, err)
		require.True(t, ok)

		g := c.Trajectory().Root().Gait
		sum := g.Walk + g.Jog
		assert.GreaterOrEqual(t, sum, last, "frame %d", i+1)
		last = sum

		assert.GreaterOrEqual(t, c.Phase(), 0.0)
		assert.Less(t, c.Phase(), 2*math.Pi)
	}

	assert.InDelta(t, 1.0, last, 1e-6)
	assert.InDelta(t, 1.0, c.TargetVelocity().Len(), 1e-6)

	// Samples from the root onwards are spaced by the distance covered over
	// one sample interval at the target speed.
	tr := c.Trajectory()
	exp := c.TargetVelocity().Len() / float64(cfg.Shape.Future) * float64(cfg.Shape.Density)
	for s := tr.RootSampleIndex(); s < tr.Samples()-1; s++ {
		d := tr.SampledPoint(s + 1).Position.Sub(tr.SampledPoint(s).Position)
		assert.InDelta(t, exp, d.Len(), 1e-3, "sample %d", s)
		assert.Greater(t, d.Z(), 0.0)
	}

	// Walked forwards at one unit per second.
	assert.InDelta(t, 200.0/60, tr.Root().Position.Z(), 0.05)
	assert.InDelta(t, 0.0, tr.Root().Position.X(), 1e-9)
}

func TestJointsEncodedRelativeToPreviousRoot(t *testing.T) {
	cfg := testConfig()
	s := walker(cfg)
	c, err := New(cfg, s, WithIntent(intent.Forward()))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}

	// Joints from the last frame were decoded relative to the root as it was
	// at the start of that frame, which is not the present root.
	prev := c.Trajectory().Previous()
	present := c.Trajectory().Root().Frame()
	require.NotEqual(t, prev, present)
	joints := c.Skeleton().Positions()

	_, err = c.Step()
	require.NoError(t, err)

	l := c.Layout()
	for j, p := range joints {
		rel := prev.RelativePositionTo(p)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, cfg.UnitScale*rel[k], s.in[l.InJointPositions.Index(j, k)], 1e-9, "joint %d axis %d", j, k)
		}
	}

	assert.Equal(t, present, c.Trajectory().Previous())
}

func TestJointDecode(t *testing.T) {
	cfg := testConfig()
	s := walker(cfg)
	c, err := New(cfg, s)
	require.NoError(t, err)

	current := c.Trajectory().Root().Frame()
	old := c.Skeleton().Positions()

	_, err = c.Step()
	require.NoError(t, err)

	step := 1 / float64(cfg.Shape.Future)
	for j, joint := range c.Skeleton().Joints {
		vel := mgl64.Vec3{0, 0, step}
		pos := mgl64.Vec3{0, float64(j) * 0.4, 0}
		exp := current.RelativePositionFrom(math3d.Lerp(current.RelativePositionTo(old[j]).Add(vel), pos, 0.5))

		assert.InDelta(t, exp.X(), joint.Position.X(), 1e-9)
		assert.InDelta(t, exp.Y(), joint.Position.Y(), 1e-9)
		assert.InDelta(t, exp.Z(), joint.Position.Z(), 1e-9)
		assert.InDelta(t, step, joint.Velocity.Z(), 1e-9)
	}
}

func TestTurning(t *testing.T) {
	cfg := testConfig()
	c, err := New(cfg, walker(cfg), WithIntent(intent.New(1, mgl64.Vec2{0, 1}, 0, 0)))
	require.NoError(t, err)

	_, err = c.Step()
	require.NoError(t, err)

	// Turning right swings the target direction toward +X.
	assert.Greater(t, c.TargetDirection().X(), 0.0)
	assert.Greater(t, c.TargetVelocity().X(), 0.0)
}

type recorder struct {
	roots  []math3d.Frame
	joints int
}

func (r *recorder) SetRoot(f math3d.Frame) {
	r.roots = append(r.roots, f)
}

func (r *recorder) SetJoint(i int, p mgl64.Vec3) {
	r.joints++
}

func TestTickPublishes(t *testing.T) {
	cfg := testConfig()
	sink := &recorder{}
	start := math3d.Frame{Position: mgl64.Vec3{1, 0, 2}, Heading: utils.Rad(90)}

	c, err := New(cfg, walker(cfg), WithIntent(intent.Forward()), WithSinks(sink), WithStart(start), WithName("test"))
	require.NoError(t, err)
	require.NoError(t, c.Boot())

	b := biped.NewBiped()
	b.Add(c)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Tick(time.Now()))
	}

	snap := b.State.Snapshot
	require.NotNil(t, snap)
	assert.Equal(t, uint64(3), snap.Frame)
	assert.Len(t, snap.Joints, cfg.Joints)
	assert.Len(t, snap.Trajectory, cfg.Shape.Len())
	assert.Equal(t, c.Phase(), snap.Phase)

	assert.Len(t, sink.roots, 3)
	assert.Equal(t, 9, sink.joints)
	assert.Equal(t, snap.Root, sink.roots[2])

	// Started facing +X, so walks along it.
	assert.Greater(t, snap.Root.Position.X(), 1.0)
}

func TestWithConstantNetwork(t *testing.T) {
	cfg := testConfig()
	l := NewLayout(cfg.Shape, cfg.Joints)

	var layer pfnn.Layer
	for c := 0; c < pfnn.ControlPoints; c++ {
		layer.W[c] = mat.NewDense(l.OutputSize(), l.InputSize(), nil)
		layer.B[c] = mat.NewVecDense(l.OutputSize(), nil)
	}

	ones := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = 1
		}
		return v
	}

	ymean := fidget(cfg).out
	params, err := pfnn.NewParameters(make([]float64, l.InputSize()), ones(l.InputSize()), ymean, ones(l.OutputSize()), []pfnn.Layer{layer})
	require.NoError(t, err)

	c, err := New(cfg, pfnn.New(params), WithIntent(intent.Idle()))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		ok, err := c.Step()
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Greater(t, c.Phase(), 0.0)
	assert.Greater(t, c.Trajectory().Root().Gait.Stand, 0.99)
}

func TestTickResets(t *testing.T) {
	cfg := testConfig()
	start := math3d.Frame{Position: mgl64.Vec3{1, 0, 2}, Heading: utils.Rad(90)}

	c, err := New(cfg, walker(cfg), WithIntent(intent.Forward()), WithStart(start))
	require.NoError(t, err)

	b := biped.NewBiped()
	b.Add(c)

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Tick(time.Now()))
	}
	before := c.Trajectory().Root().Position.X()

	b.State.Reset = true
	require.NoError(t, b.Tick(time.Now()))

	assert.False(t, b.State.Reset)
	assert.Less(t, c.Trajectory().Root().Position.X(), before)
	assert.InDelta(t, 2.0, c.Trajectory().Root().Position.Z(), 1e-6)
}

// wavyParameters returns a two layer network whose weights are all different,
// so that every prediction reads all of them.
func wavyParameters(t *testing.T, cfg Config) *pfnn.Parameters {
	l := NewLayout(cfg.Shape, cfg.Joints)
	hidden := 16

	fill := func(rows, cols, seed int) *mat.Dense {
		m := mat.NewDense(rows, cols, nil)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				m.Set(r, c, 0.01*math.Sin(float64(seed+r*cols+c)))
			}
		}
		return m
	}

	var in, out pfnn.Layer
	for c := 0; c < pfnn.ControlPoints; c++ {
		in.W[c] = fill(hidden, l.InputSize(), c)
		in.B[c] = mat.NewVecDense(hidden, nil)
		out.W[c] = fill(l.OutputSize(), hidden, 100*c)
		out.B[c] = mat.NewVecDense(l.OutputSize(), nil)
	}

	std := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = 1
		}
		return v
	}

	params, err := pfnn.NewParameters(make([]float64, l.InputSize()), std(l.InputSize()), walker(cfg).out, std(l.OutputSize()), []pfnn.Layer{in, out})
	require.NoError(t, err)
	return params
}

func TestSharedParametersInParallel(t *testing.T) {
	cfg := testConfig()
	params := wavyParameters(t, cfg)

	const characters = 4
	controllers := make([]*Controller, characters)
	for i := range controllers {
		c, err := New(cfg, pfnn.New(params), WithIntent(intent.Forward()), WithName(fmt.Sprintf("char%d", i)))
		require.NoError(t, err)
		controllers[i] = c
	}

	errs := make([]error, characters)
	var wg sync.WaitGroup
	for i, c := range controllers {
		wg.Add(1)
		go func(i int, c *Controller) {
			defer wg.Done()
			for f := 0; f < 50; f++ {
				if _, err := c.Step(); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, c)
	}
	wg.Wait()

	for i := range controllers {
		require.NoError(t, errs[i], "character %d", i)
	}

	// Same model, same intent: every character ends up in the same place.
	want := controllers[0].Trajectory().Root()
	for _, c := range controllers[1:] {
		assert.Equal(t, want, c.Trajectory().Root())
		assert.Equal(t, controllers[0].Phase(), c.Phase())
	}
}

// slope rises toward +X.
type slope struct{}

func (slope) Height(x, z float64) float64 {
	return x
}

func TestHeightsProbeRightThenLeft(t *testing.T) {
	cfg := testConfig()
	s := walker(cfg)
	l := NewLayout(cfg.Shape, cfg.Joints)

	// Facing +Z, so the right is +X, which is uphill.
	c, err := New(cfg, s, WithTerrain(slope{}))
	require.NoError(t, err)

	_, err = c.Step()
	require.NoError(t, err)

	root := cfg.Shape.RootSampleIndex()
	half := cfg.Shape.Width / 2 * cfg.UnitScale
	assert.InDelta(t, half, s.in[l.Heights.Index(heightRight, root)], 1e-9)
	assert.InDelta(t, 0, s.in[l.Heights.Index(heightCenter, root)], 1e-9)
	assert.InDelta(t, -half, s.in[l.Heights.Index(heightLeft, root)], 1e-9)
}
