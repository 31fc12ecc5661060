// Package pfnn implements the forward pass of a phase-functioned neural
// network: a small fully-connected network whose weights are themselves a
// cyclic function of the locomotion phase.
package pfnn

import (
	"errors"
	"fmt"
	"math"

	"github.com/adammck/biped/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// ErrNotReady is returned by Predict when the network has no parameters.
var ErrNotReady = errors.New("network has no parameters")

var log = logrus.WithFields(logrus.Fields{
	"pkg": "pfnn",
})

// Network holds the per-character buffers of a forward pass over a shared set
// of Parameters. It is not safe for concurrent use.
type Network struct {
	params *Parameters

	input  []float64
	output []float64

	// Scratch, reused by every prediction. One blended matrix, bias and
	// activation per layer.
	w []*mat.Dense
	b []*mat.VecDense
	h []*mat.VecDense
	x *mat.VecDense

	predicted bool
}

// New returns a network over the given parameters. A nil parameter set yields
// a network which is permanently not ready.
func New(params *Parameters) *Network {
	n := &Network{
		params: params,
	}

	if params == nil {
		log.Infof("no parameters, network is not ready")
		return n
	}

	n.input = make([]float64, params.InputSize())
	n.output = make([]float64, params.OutputSize())
	n.x = mat.NewVecDense(params.InputSize(), nil)

	for _, l := range params.layers {
		n.w = append(n.w, mat.NewDense(l.Rows(), l.Cols(), nil))
		n.b = append(n.b, mat.NewVecDense(l.Rows(), nil))
		n.h = append(n.h, mat.NewVecDense(l.Rows(), nil))
	}

	log.Debugf("new network: %s", params)
	return n
}

// Ready returns true if the network has parameters to predict with.
func (n *Network) Ready() bool {
	return n.params != nil
}

func (n *Network) InputSize() int {
	return len(n.input)
}

func (n *Network) OutputSize() int {
	return len(n.output)
}

// SetInput writes a single input feature. Panics if i is out of range, which
// includes every index on a network which is not ready.
func (n *Network) SetInput(i int, v float64) {
	if i < 0 || i >= len(n.input) {
		panic(fmt.Sprintf("input index %d out of range [0, %d)", i, len(n.input)))
	}

	n.input[i] = v
}

// Output returns the output at i from the most recent prediction. Panics if
// nothing has been predicted yet, or if i is out of range.
func (n *Network) Output(i int) float64 {
	if !n.predicted {
		panic("output read before predict")
	}

	if i < 0 || i >= len(n.output) {
		panic(fmt.Sprintf("output index %d out of range [0, %d)", i, len(n.output)))
	}

	return n.output[i]
}

// Predict runs the forward pass over the current inputs at the given phase
// (in radians; wrapped into [0, 2pi)), replacing the outputs. The inputs are
// not modified, so predicting twice at the same phase gives identical outputs.
func (n *Network) Predict(phase float64) error {
	if !n.Ready() {
		return ErrNotReady
	}

	idx, coef := controlWeights(phase)

	p := n.params
	for i, v := range n.input {
		n.x.SetVec(i, (v-p.xmean[i])/p.xstd[i])
	}

	var in mat.Vector = n.x
	last := len(p.layers) - 1

	for l, layer := range p.layers {
		blend(n.w[l].RawMatrix().Data, coef, idx, func(c int) []float64 { return layer.W[c].RawMatrix().Data })
		blend(n.b[l].RawVector().Data, coef, idx, func(c int) []float64 { return layer.B[c].RawVector().Data })

		h := n.h[l]
		h.MulVec(n.w[l], in)
		h.AddVec(h, n.b[l])

		if l != last {
			elu(h.RawVector().Data)
		}

		in = h
	}

	out := n.h[last].RawVector().Data
	for i := range n.output {
		n.output[i] = out[i]*p.ystd[i] + p.ymean[i]
	}

	n.predicted = true
	return nil
}

// controlWeights returns the four control point indices which bracket the
// phase, and their Catmull-Rom weights. The weights always sum to one, and
// the blend is continuous across the wrap from 2pi back to zero.
func controlWeights(phase float64) ([ControlPoints]int, [ControlPoints]float64) {
	ps := utils.Repeat(phase, 2*math.Pi) / (2 * math.Pi) * ControlPoints
	p1 := int(ps) % ControlPoints
	mu := ps - math.Floor(ps)

	idx := [ControlPoints]int{
		(p1 + ControlPoints - 1) % ControlPoints,
		p1,
		(p1 + 1) % ControlPoints,
		(p1 + 2) % ControlPoints,
	}

	mu2 := mu * mu
	mu3 := mu2 * mu

	coef := [ControlPoints]float64{
		-0.5*mu3 + mu2 - 0.5*mu,
		1.5*mu3 - 2.5*mu2 + 1,
		-1.5*mu3 + 2*mu2 + 0.5*mu,
		0.5*mu3 - 0.5*mu2,
	}

	return idx, coef
}

func blend(dst []float64, coef [ControlPoints]float64, idx [ControlPoints]int, src func(c int) []float64) {
	a, b, c, d := src(idx[0]), src(idx[1]), src(idx[2]), src(idx[3])
	for i := range dst {
		dst[i] = coef[0]*a[i] + coef[1]*b[i] + coef[2]*c[i] + coef[3]*d[i]
	}
}

func elu(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = math.Exp(x) - 1
		}
	}
}
