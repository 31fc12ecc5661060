package motion

import (
	"errors"
	"fmt"

	"github.com/adammck/biped/gait"
	"github.com/adammck/biped/trajectory"
)

// ErrLayoutMismatch is returned when a predictor's input or output size does
// not match the feature layout implied by the trajectory shape and skeleton.
var ErrLayoutMismatch = errors.New("feature layout mismatch")

// Block is a contiguous run of features, arranged as Rows rows of Cols
// entries each.
type Block struct {
	Offset int
	Rows   int
	Cols   int
}

func (b Block) Len() int {
	return b.Rows * b.Cols
}

// End returns the offset of the first feature after the block.
func (b Block) End() int {
	return b.Offset + b.Len()
}

// Index returns the feature index of column c of row r. Panics if either is
// outside the block.
func (b Block) Index(r, c int) int {
	if r < 0 || r >= b.Rows || c < 0 || c >= b.Cols {
		panic(fmt.Sprintf("index (%d, %d) outside %dx%d block", r, c, b.Rows, b.Cols))
	}

	return b.Offset + r*b.Cols + c
}

// Axis rows of the trajectory blocks.
const (
	axisX = 0
	axisZ = 1
)

// Rows of the height block: probes to the right of, under, and to the left of
// each sample.
const (
	heightRight  = 0
	heightCenter = 1
	heightLeft   = 2
)

// Layout names every block of the network's input and output vectors. Blocks
// are laid out back to back in the order below, which is the order the models
// were trained with.
type Layout struct {

	// Input. The trajectory blocks have one row per axis (or gait, or probe)
	// and one column per sample. The joint blocks have one row per joint and
	// one column per axis.
	TrajectoryPositions  Block
	TrajectoryDirections Block
	Gaits                Block
	InJointPositions     Block
	InJointVelocities    Block
	Heights              Block

	// Output. The future blocks have one row per axis, and one column per
	// sample from the root onwards.
	RootVelocity       Block
	RootAngular        Block
	PhaseDelta         Block
	Contacts           Block
	FuturePositions    Block
	FutureDirections   Block
	OutJointPositions  Block
	OutJointVelocities Block

	// Some models also predict a rotation per joint. It's accepted, and
	// ignored.
	OutJointRotations Block
}

// NewLayout returns the layout for a trajectory of the given shape and a
// skeleton of the given number of joints.
func NewLayout(shape trajectory.Shape, joints int) Layout {
	s := shape.Samples
	w := shape.FutureSamples()

	var l Layout
	l.TrajectoryPositions = Block{Offset: 0, Rows: 2, Cols: s}
	l.TrajectoryDirections = Block{Offset: l.TrajectoryPositions.End(), Rows: 2, Cols: s}
	l.Gaits = Block{Offset: l.TrajectoryDirections.End(), Rows: gait.Count, Cols: s}
	l.InJointPositions = Block{Offset: l.Gaits.End(), Rows: joints, Cols: 3}
	l.InJointVelocities = Block{Offset: l.InJointPositions.End(), Rows: joints, Cols: 3}
	l.Heights = Block{Offset: l.InJointVelocities.End(), Rows: 3, Cols: s}

	l.RootVelocity = Block{Offset: 0, Rows: 1, Cols: 2}
	l.RootAngular = Block{Offset: l.RootVelocity.End(), Rows: 1, Cols: 1}
	l.PhaseDelta = Block{Offset: l.RootAngular.End(), Rows: 1, Cols: 1}
	l.Contacts = Block{Offset: l.PhaseDelta.End(), Rows: 1, Cols: 4}
	l.FuturePositions = Block{Offset: l.Contacts.End(), Rows: 2, Cols: w}
	l.FutureDirections = Block{Offset: l.FuturePositions.End(), Rows: 2, Cols: w}
	l.OutJointPositions = Block{Offset: l.FutureDirections.End(), Rows: joints, Cols: 3}
	l.OutJointVelocities = Block{Offset: l.OutJointPositions.End(), Rows: joints, Cols: 3}
	l.OutJointRotations = Block{Offset: l.OutJointVelocities.End(), Rows: joints, Cols: 3}

	return l
}

func (l Layout) InputSize() int {
	return l.Heights.End()
}

// OutputSize returns the size of the output vector without joint rotations.
func (l Layout) OutputSize() int {
	return l.OutJointVelocities.End()
}

// Check returns an error wrapping ErrLayoutMismatch unless the given sizes fit
// the layout. The output may optionally include the joint rotation block.
func (l Layout) Check(inputSize, outputSize int) error {
	if inputSize != l.InputSize() {
		return fmt.Errorf("%w: predictor takes %d inputs, layout has %d", ErrLayoutMismatch, inputSize, l.InputSize())
	}

	if outputSize != l.OutputSize() && outputSize != l.OutJointRotations.End() {
		return fmt.Errorf("%w: predictor gives %d outputs, layout has %d or %d", ErrLayoutMismatch, outputSize, l.OutputSize(), l.OutJointRotations.End())
	}

	return nil
}

// FutureBracket returns the two future sample columns which bracket the
// trajectory point at the given offset from the root, and the fraction of the
// way from the first to the second. Points beyond the last predicted sample
// are clamped to it.
func (l Layout) FutureBracket(offset, density int) (int, int, float64) {
	lo := offset / density
	m := float64(offset%density) / float64(density)
	hi := lo + 1

	last := l.FuturePositions.Cols - 1
	if lo > last {
		lo = last
	}
	if hi > last {
		hi = last
	}

	return lo, hi, m
}
