package pfnn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest within a parameter directory.
const ManifestFile = "pfnn.yaml"

// Manifest describes the shape of a parameter directory. The weights of the
// published models are exported at 50 phase positions, of which four are used
// as control points.
type Manifest struct {
	Input         int   `yaml:"input"`
	Output        int   `yaml:"output"`
	Hidden        []int `yaml:"hidden"`
	ControlPoints []int `yaml:"controlPoints,omitempty"`
}

// DefaultControlPoints are the file indices used when the manifest doesn't
// name any: evenly spaced around 50 exported phases.
var DefaultControlPoints = []int{0, 12, 25, 37}

// Load reads a parameter set from dir on the given filesystem. The directory
// holds the manifest, the normalization statistics (Xmean.bin, Xstd.bin,
// Ymean.bin, Ystd.bin) and the weights and biases of every layer at every
// control point (W<layer>_<NNN>.bin, b<layer>_<NNN>.bin). Every .bin file is a
// flat array of little-endian float32. Weights are stored row-major, one row
// per output.
func Load(fs afero.Fs, dir string) (*Parameters, error) {
	buf, err := afero.ReadFile(fs, filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	cps := m.ControlPoints
	if len(cps) == 0 {
		cps = DefaultControlPoints
	}

	if len(cps) != ControlPoints {
		return nil, fmt.Errorf("%w: manifest names %d control points, want %d", ErrInvalidParameters, len(cps), ControlPoints)
	}

	if m.Input <= 0 || m.Output <= 0 {
		return nil, fmt.Errorf("%w: manifest sizes in=%d out=%d", ErrInvalidParameters, m.Input, m.Output)
	}

	for _, h := range m.Hidden {
		if h <= 0 {
			return nil, fmt.Errorf("%w: manifest hidden sizes %v", ErrInvalidParameters, m.Hidden)
		}
	}

	r := reader{fs: fs, dir: dir}
	xmean := r.floats("Xmean.bin", m.Input)
	xstd := r.floats("Xstd.bin", m.Input)
	ymean := r.floats("Ymean.bin", m.Output)
	ystd := r.floats("Ystd.bin", m.Output)

	sizes := append(append([]int{m.Input}, m.Hidden...), m.Output)
	layers := make([]Layer, len(sizes)-1)

	for l := range layers {
		rows, cols := sizes[l+1], sizes[l]
		for c, n := range cps {
			w := r.floats(fmt.Sprintf("W%d_%03d.bin", l, n), rows*cols)
			b := r.floats(fmt.Sprintf("b%d_%03d.bin", l, n), rows)
			if r.err != nil {
				break
			}

			layers[l].W[c] = mat.NewDense(rows, cols, w)
			layers[l].B[c] = mat.NewVecDense(rows, b)
		}
	}

	if r.err != nil {
		return nil, r.err
	}

	p, err := NewParameters(xmean, xstd, ymean, ystd, layers)
	if err != nil {
		return nil, err
	}

	log.Infof("loaded %s from %s", p, dir)
	return p, nil
}

// Save writes p to dir on the given filesystem in the format which Load reads,
// using the control point indices 0 to 3.
func Save(fs afero.Fs, dir string, p *Parameters) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	m := Manifest{
		Input:         p.InputSize(),
		Output:        p.OutputSize(),
		ControlPoints: []int{0, 1, 2, 3},
	}

	for _, l := range p.layers[:len(p.layers)-1] {
		m.Hidden = append(m.Hidden, l.Rows())
	}

	buf, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, filepath.Join(dir, ManifestFile), buf, 0644); err != nil {
		return err
	}

	w := writer{fs: fs, dir: dir}
	w.floats("Xmean.bin", p.xmean)
	w.floats("Xstd.bin", p.xstd)
	w.floats("Ymean.bin", p.ymean)
	w.floats("Ystd.bin", p.ystd)

	for l, layer := range p.layers {
		for c := 0; c < ControlPoints; c++ {
			w.floats(fmt.Sprintf("W%d_%03d.bin", l, c), layer.W[c].RawMatrix().Data)
			w.floats(fmt.Sprintf("b%d_%03d.bin", l, c), layer.B[c].RawVector().Data)
		}
	}

	return w.err
}

// reader reads float32 blobs, stopping at the first error.
type reader struct {
	fs  afero.Fs
	dir string
	err error
}

func (r *reader) floats(name string, n int) []float64 {
	if r.err != nil {
		return nil
	}

	buf, err := afero.ReadFile(r.fs, filepath.Join(r.dir, name))
	if err != nil {
		r.err = fmt.Errorf("reading %s: %w", name, err)
		return nil
	}

	if len(buf) != n*4 {
		r.err = fmt.Errorf("%w: %s has %d bytes, want %d", ErrInvalidParameters, name, len(buf), n*4)
		return nil
	}

	f32 := make([]float32, n)
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, f32); err != nil {
		r.err = fmt.Errorf("decoding %s: %w", name, err)
		return nil
	}

	f64 := make([]float64, n)
	for i, v := range f32 {
		f64[i] = float64(v)
	}

	return f64
}

type writer struct {
	fs  afero.Fs
	dir string
	err error
}

func (w *writer) floats(name string, v []float64) {
	if w.err != nil {
		return
	}

	f32 := make([]float32, len(v))
	for i, x := range v {
		f32[i] = float32(x)
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, f32); err != nil {
		w.err = err
		return
	}

	w.err = afero.WriteFile(w.fs, filepath.Join(w.dir, name), buf.Bytes(), 0644)
}
