package pfnn

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ControlPoints is the number of weight sets spaced around the phase cycle.
const ControlPoints = 4

// ErrInvalidParameters is returned when a parameter set is internally
// inconsistent. It's a configuration error; nothing can be predicted with it.
var ErrInvalidParameters = errors.New("invalid network parameters")

// Layer is one fully-connected layer of the network, with a weight matrix and
// bias vector for each control point. W has one row per output and one column
// per input.
type Layer struct {
	W [ControlPoints]*mat.Dense
	B [ControlPoints]*mat.VecDense
}

// Rows returns the number of outputs of the layer.
func (l Layer) Rows() int {
	r, _ := l.W[0].Dims()
	return r
}

// Cols returns the number of inputs of the layer.
func (l Layer) Cols() int {
	_, c := l.W[0].Dims()
	return c
}

// Parameters are the trained weights and normalization statistics of a phase-
// functioned network. They are never modified after construction, so one set
// can be shared between any number of Networks.
type Parameters struct {
	xmean []float64
	xstd  []float64
	ymean []float64
	ystd  []float64

	layers []Layer
}

// NewParameters validates and copies the given statistics and layers. Every
// control point of a layer must have the same shape, each layer must accept
// the output of the one before it, and the first and last layers must match
// the input and output statistics. Standard deviations must be non-zero.
func NewParameters(xmean, xstd, ymean, ystd []float64, layers []Layer) (*Parameters, error) {
	if len(xmean) == 0 || len(xmean) != len(xstd) {
		return nil, fmt.Errorf("%w: input mean/std sizes %d/%d", ErrInvalidParameters, len(xmean), len(xstd))
	}

	if len(ymean) == 0 || len(ymean) != len(ystd) {
		return nil, fmt.Errorf("%w: output mean/std sizes %d/%d", ErrInvalidParameters, len(ymean), len(ystd))
	}

	if err := checkStd("input", xstd); err != nil {
		return nil, err
	}

	if err := checkStd("output", ystd); err != nil {
		return nil, err
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidParameters)
	}

	p := &Parameters{
		xmean:  clone(xmean),
		xstd:   clone(xstd),
		ymean:  clone(ymean),
		ystd:   clone(ystd),
		layers: make([]Layer, len(layers)),
	}

	in := len(xmean)
	for l, layer := range layers {
		for c := 0; c < ControlPoints; c++ {
			if layer.W[c] == nil || layer.B[c] == nil {
				return nil, fmt.Errorf("%w: layer %d control point %d is missing", ErrInvalidParameters, l, c)
			}

			r, cols := layer.W[c].Dims()
			if cols != in {
				return nil, fmt.Errorf("%w: layer %d control point %d has %d inputs, want %d", ErrInvalidParameters, l, c, cols, in)
			}

			if r != layers[l].Rows() || layer.B[c].Len() != r {
				return nil, fmt.Errorf("%w: layer %d control point %d has shape %dx%d with %d biases", ErrInvalidParameters, l, c, r, cols, layer.B[c].Len())
			}

			// Copies are contiguous, so blending can walk the raw slices.
			p.layers[l].W[c] = mat.DenseCopyOf(layer.W[c])
			p.layers[l].B[c] = mat.VecDenseCopyOf(layer.B[c])
		}

		in = layer.Rows()
	}

	if in != len(ymean) {
		return nil, fmt.Errorf("%w: last layer has %d outputs, want %d", ErrInvalidParameters, in, len(ymean))
	}

	return p, nil
}

func checkStd(name string, std []float64) error {
	for i, v := range std {
		if v == 0 {
			return fmt.Errorf("%w: %s std %d is zero", ErrInvalidParameters, name, i)
		}
	}

	return nil
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

// InputSize returns the length of the input feature vector.
func (p *Parameters) InputSize() int {
	return len(p.xmean)
}

// OutputSize returns the length of the output vector.
func (p *Parameters) OutputSize() int {
	return len(p.ymean)
}

func (p *Parameters) String() string {
	hidden := make([]int, 0, len(p.layers)-1)
	for _, l := range p.layers[:len(p.layers)-1] {
		hidden = append(hidden, l.Rows())
	}

	return fmt.Sprintf("Parameters{in=%d hidden=%v out=%d}", p.InputSize(), hidden, p.OutputSize())
}
