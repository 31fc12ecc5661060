// Package motion drives a character from an intent source, by conditioning a
// phase-functioned network on a trajectory window every frame and decoding its
// prediction into a new root frame, future trajectory, and joint pose.
package motion

import (
	"fmt"
	"math"
	"time"

	"github.com/adammck/biped"
	"github.com/adammck/biped/gait"
	"github.com/adammck/biped/math3d"
	"github.com/adammck/biped/skeleton"
	"github.com/adammck/biped/trajectory"
	"github.com/adammck/biped/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// Below this target speed, the character is (at least partly) standing.
const standThreshold = 0.1

var log = logrus.WithFields(logrus.Fields{
	"pkg": "motion",
})

// Intent is polled once per frame for what the character should be doing.
type Intent interface {

	// Turn returns the turn intent in [-1, 1]. Positive is clockwise, seen
	// from above.
	Turn() float64

	// Move returns the movement intent relative to the target direction, with
	// a magnitude no greater than one. X is to the right, Y is forwards.
	Move() mgl64.Vec2

	// Jog and Crouch return gait intents in [0, 1].
	Jog() float64
	Crouch() float64
}

// Predictor is the motion model. pfnn.Network is the canonical one.
type Predictor interface {
	Ready() bool
	InputSize() int
	OutputSize() int
	SetInput(i int, v float64)
	Predict(phase float64) error
	Output(i int) float64
}

// Controller owns the trajectory, skeleton, and phase of one character.
type Controller struct {
	cfg    Config
	layout Layout
	net    Predictor

	name      string
	intent    Intent
	obstacles trajectory.Obstacles
	terrain   trajectory.Terrain
	sinks     []skeleton.Sink
	start     math3d.Frame

	traj  *trajectory.Trajectory
	skel  *skeleton.Skeleton
	phase float64

	targetDirection mgl64.Vec3
	targetVelocity  mgl64.Vec3

	// Whether the layout has been checked against the predictor. Only ready
	// predictors have sizes to check.
	checked bool

	metrics *metrics
}

type Option func(*Controller)

// WithIntent sets the intent source. Without one, the character idles.
func WithIntent(i Intent) Option {
	return func(c *Controller) {
		c.intent = i
	}
}

// WithObstacles sets the query used to keep the trajectory out of obstacles.
func WithObstacles(o trajectory.Obstacles) Option {
	return func(c *Controller) {
		c.obstacles = o
	}
}

// WithTerrain sets the ground under the trajectory. Without one, the ground is
// wherever the root is.
func WithTerrain(t trajectory.Terrain) Option {
	return func(c *Controller) {
		c.terrain = t
	}
}

// WithSinks adds sinks to receive the pose of every synthesized frame.
func WithSinks(s ...skeleton.Sink) Option {
	return func(c *Controller) {
		c.sinks = append(c.sinks, s...)
	}
}

// WithStart sets the initial root frame. The default is the origin, facing
// forwards.
func WithStart(f math3d.Frame) Option {
	return func(c *Controller) {
		c.start = f
	}
}

// WithName sets the name which metrics are attributed to.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// New returns a controller with its trajectory and skeleton placed at the
// start frame. If the predictor is ready, its sizes must fit the layout
// implied by the config, or ErrLayoutMismatch is returned.
func New(cfg Config, net Predictor, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Controller{
		cfg:    cfg,
		layout: NewLayout(cfg.Shape, cfg.Joints),
		net:    net,
		name:   "default",
	}

	for _, o := range opts {
		o(c)
	}

	if err := c.check(); err != nil {
		return nil, err
	}

	traj, err := trajectory.New(cfg.Shape, c.terrain)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(c.name)
	if err != nil {
		return nil, err
	}

	c.traj = traj
	c.skel = skeleton.New(cfg.Joints)
	c.metrics = m
	c.Reset()

	return c, nil
}

func (c *Controller) check() error {
	if c.checked || !c.net.Ready() {
		return nil
	}

	if err := c.layout.Check(c.net.InputSize(), c.net.OutputSize()); err != nil {
		return err
	}

	c.checked = true
	return nil
}

// Reset returns the character to the start frame, standing still.
func (c *Controller) Reset() {
	dir := c.start.Direction()
	c.traj.Initialize(c.start.Position, dir)
	c.skel.Place(c.traj.Root().Position)
	c.targetDirection = dir
	c.targetVelocity = mgl64.Vec3{}
	c.phase = 0
}

func (c *Controller) Boot() error {
	log.Infof("booted %s at %s, ready=%v", c.name, c.traj.Root().Frame(), c.Ready())
	return nil
}

// Tick synthesizes one frame, and publishes a snapshot of it.
func (c *Controller) Tick(now time.Time, state *biped.State) error {
	if state.Reset {
		log.Infof("resetting %s", c.name)
		c.Reset()
		state.Reset = false
	}

	ok, err := c.Step()
	if err != nil {
		return err
	}

	if ok {
		state.Snapshot = c.Snapshot(state.Frame)
	}

	return nil
}

func (c *Controller) Ready() bool {
	return c.net.Ready()
}

func (c *Controller) Phase() float64 {
	return c.phase
}

func (c *Controller) Trajectory() *trajectory.Trajectory {
	return c.traj
}

func (c *Controller) Skeleton() *skeleton.Skeleton {
	return c.skel
}

func (c *Controller) Layout() Layout {
	return c.layout
}

func (c *Controller) TargetDirection() mgl64.Vec3 {
	return c.targetDirection
}

func (c *Controller) TargetVelocity() mgl64.Vec3 {
	return c.targetVelocity
}

// Snapshot returns a copy of the current state of the character.
func (c *Controller) Snapshot(frame uint64) *biped.Snapshot {
	joints := make([]skeleton.Joint, c.skel.Len())
	copy(joints, c.skel.Joints)

	return &biped.Snapshot{
		Frame:           frame,
		Root:            c.traj.Root().Frame(),
		Phase:           c.phase,
		Gait:            c.traj.Root().Gait,
		TargetDirection: c.targetDirection,
		TargetVelocity:  c.targetVelocity,
		Trajectory:      c.traj.Points(),
		Joints:          joints,
	}
}

// Step runs the whole motion loop once. If the predictor isn't ready, nothing
// changes and false is returned.
func (c *Controller) Step() (bool, error) {
	if !c.net.Ready() {
		c.metrics.skip()
		return false, nil
	}

	if err := c.check(); err != nil {
		return false, err
	}

	start := time.Now()
	root := c.traj.RootIndex()

	c.updateTarget()
	c.updateGait()

	c.traj.PredictFuture(c.targetVelocity, c.targetDirection)
	c.traj.ApplyCollisionCorrection(root+1, c.obstacles)

	current := c.traj.Root().Frame()
	c.encode(current)

	if err := c.net.Predict(c.phase); err != nil {
		return false, fmt.Errorf("predicting: %w", err)
	}

	c.traj.ShiftPast()

	stand := StandAmount(c.traj.Root().Gait.Stand)
	next := c.updateRoot(current, stand)
	c.updateFuture(next)
	c.traj.ApplyCollisionCorrection(root, c.obstacles)

	c.updateJoints(current)
	c.skel.Write(next, c.sinks...)

	c.phase = AdvancePhase(c.phase, stand, c.output(c.layout.PhaseDelta, 0, 0))

	c.metrics.synthesized(time.Since(start))
	log.Debugf("%s root=%s phase=%.3f %s", c.name, next, c.phase, c.traj.Root().Gait)
	return true, nil
}

func (c *Controller) updateTarget() {
	var turn float64
	var move mgl64.Vec2
	if c.intent != nil {
		turn = c.intent.Turn()
		move = c.intent.Move()
	}

	rootDir := c.traj.Root().Direction
	c.targetDirection = math3d.Lerp(c.targetDirection, math3d.RotateY(rootDir, turn*c.cfg.TurnAngle), c.cfg.TargetBlending)

	facing := math3d.MakeFrame(math3d.ZeroVector3, c.targetDirection)
	want := math3d.SafeNormalize(facing.RelativeDirectionFrom(mgl64.Vec3{move.X(), 0, move.Y()}))
	c.targetVelocity = math3d.Lerp(c.targetVelocity, want, c.cfg.TargetBlending)
}

func (c *Controller) updateGait() {
	var jog, crouch float64
	if c.intent != nil {
		jog = c.intent.Jog()
		crouch = c.intent.Crouch()
	}

	g := c.traj.Root().Gait
	target := GaitTarget(c.targetVelocity.Len(), jog, crouch)

	// Jumping is never driven; whatever the root had is kept.
	target.Jump = g.Jump

	c.traj.SetGait(c.traj.RootIndex(), g.Blend(target, c.cfg.GaitTransition))
}

// encode writes the trajectory relative to the current root frame, and the
// joints relative to the root frame they were recorded in, into the inputs.
func (c *Controller) encode(current math3d.Frame) {
	l := c.layout
	us := c.cfg.UnitScale
	half := c.traj.Width() / 2

	for s := 0; s < c.traj.Samples(); s++ {
		i := c.traj.SampleIndex(s)
		p := c.traj.Point(i)

		pos := current.RelativePositionTo(p.Position)
		dir := current.RelativeDirectionTo(p.Direction)
		c.net.SetInput(l.TrajectoryPositions.Index(axisX, s), us*pos.X())
		c.net.SetInput(l.TrajectoryPositions.Index(axisZ, s), us*pos.Z())
		c.net.SetInput(l.TrajectoryDirections.Index(axisX, s), dir.X())
		c.net.SetInput(l.TrajectoryDirections.Index(axisZ, s), dir.Z())

		for g, v := range p.Gait.Array() {
			c.net.SetInput(l.Gaits.Index(g, s), v)
		}

		y := current.Position.Y()
		c.net.SetInput(l.Heights.Index(heightRight, s), us*(c.traj.Project(i, half).Y()-y))
		c.net.SetInput(l.Heights.Index(heightCenter, s), us*(p.Height-y))
		c.net.SetInput(l.Heights.Index(heightLeft, s), us*(c.traj.Project(i, -half).Y()-y))
	}

	prev := c.traj.Previous()
	for j, joint := range c.skel.Joints {
		pos := prev.RelativePositionTo(joint.Position)
		vel := prev.RelativeDirectionTo(joint.Velocity)
		for k := 0; k < 3; k++ {
			c.net.SetInput(l.InJointPositions.Index(j, k), us*pos[k])
			c.net.SetInput(l.InJointVelocities.Index(j, k), us*vel[k])
		}
	}
}

func (c *Controller) output(b Block, r, col int) float64 {
	return c.net.Output(b.Index(r, col))
}

// updateRoot moves the root by the predicted displacement, damped by how much
// the character is standing, and returns its new frame. The future points
// are carried along by the same displacement.
func (c *Controller) updateRoot(current math3d.Frame, stand float64) math3d.Frame {
	l := c.layout
	us := c.cfg.UnitScale
	root := c.traj.RootIndex()

	disp := mgl64.Vec3{
		c.output(l.RootVelocity, 0, 0) / us,
		0,
		c.output(l.RootVelocity, 0, 1) / us,
	}.Mul(stand)

	moved := current.Add(math3d.Frame{
		Position: disp,
		Heading:  stand * -c.output(l.RootAngular, 0, 0),
	})

	// Setting the position re-samples the terrain, so read the frame back.
	c.traj.SetPosition(root, moved.Position)
	c.traj.SetDirection(root, moved.Direction())
	next := c.traj.Root().Frame()

	shift := next.RelativeDirectionFrom(disp)
	for i := root + 1; i < c.traj.Len(); i++ {
		c.traj.SetPosition(i, c.traj.Point(i).Position.Add(shift))
	}

	return next
}

// updateFuture blends the predicted future samples, interpolated up to the
// full resolution of the window, into the future points.
func (c *Controller) updateFuture(next math3d.Frame) {
	l := c.layout
	us := c.cfg.UnitScale
	root := c.traj.RootIndex()
	k := c.cfg.TrajectoryCorrection

	for i := root + 1; i < c.traj.Len(); i++ {
		lo, hi, m := l.FutureBracket(i-root, c.traj.Density())

		sample := func(b Block, axis int) float64 {
			return (1-m)*c.output(b, axis, lo) + m*c.output(b, axis, hi)
		}

		pos := next.RelativePositionFrom(mgl64.Vec3{sample(l.FuturePositions, axisX) / us, 0, sample(l.FuturePositions, axisZ) / us})
		dir := next.RelativeDirectionFrom(math3d.SafeNormalize(mgl64.Vec3{sample(l.FutureDirections, axisX), 0, sample(l.FutureDirections, axisZ)}))

		p := c.traj.Point(i)
		c.traj.SetPosition(i, math3d.Lerp(p.Position, pos, k))
		c.traj.SetDirection(i, math3d.Lerp(p.Direction, dir, k))
	}
}

// updateJoints decodes the joint positions and velocities, which are relative
// to the root frame as it was at the start of this frame.
func (c *Controller) updateJoints(current math3d.Frame) {
	l := c.layout
	us := c.cfg.UnitScale

	for j := range c.skel.Joints {
		var pos, vel mgl64.Vec3
		for k := 0; k < 3; k++ {
			pos[k] = c.output(l.OutJointPositions, j, k) / us
			vel[k] = c.output(l.OutJointVelocities, j, k) / us
		}

		old := current.RelativePositionTo(c.skel.Joints[j].Position)
		c.skel.Joints[j].Position = current.RelativePositionFrom(math3d.Lerp(old.Add(vel), pos, 0.5))
		c.skel.Joints[j].Velocity = current.RelativeDirectionFrom(vel)
	}
}

// GaitTarget returns the gait which the root should blend toward, given the
// target speed and the jog and crouch intents. Jump is never targeted.
func GaitTarget(speed, jog, crouch float64) gait.Vector {
	if speed < standThreshold {
		stand := 1 - utils.Clamp(speed/standThreshold, 0, 1)
		return gait.Vector{
			Stand:  stand,
			Crouch: crouch,
		}
	}

	stand := 1 - utils.Clamp(speed/standThreshold, 0, 1)
	return gait.Vector{
		Stand:  stand,
		Walk:   1 - jog,
		Jog:    jog,
		Crouch: crouch,
	}
}

// StandAmount returns the damping applied to root motion for the given stand
// weight: one when moving, falling to zero as the character fully stands.
func StandAmount(stand float64) float64 {
	return math.Pow(1-utils.Clamp(stand, 0, 1), 0.25)
}

// AdvancePhase returns the next phase, given the current one, the stand
// amount, and the phase delta predicted by the network. The phase advances at
// a tenth of the rate when fully standing. The result is in [0, 2pi).
func AdvancePhase(phase, stand, delta float64) float64 {
	return utils.Repeat(phase+(stand*0.9+0.1)*delta*2*math.Pi, 2*math.Pi)
}
