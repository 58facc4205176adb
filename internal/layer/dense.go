package layer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dense holds the parameters shared by every fully connected variant.
//
// The weight matrix is out x (in+1); column in holds the biases, so the
// flattened row-major layout is each unit's input weights followed by its bias.
type dense struct {
	out, in int
	w       *mat.Dense
	init    Initializer
}

func newDense(out int, init Initializer) (dense, error) {
	if out <= 0 {
		return dense{}, fmt.Errorf("%w: output dimension %d", ErrInvalidConfig, out)
	}
	if init == nil {
		return dense{}, fmt.Errorf("%w: nil initializer", ErrInvalidConfig)
	}
	return dense{out: out, init: init}, nil
}

// Initialize allocates the weights for inputDimension inputs.
func (d *dense) Initialize(inputDimension int) error {
	if d.w != nil {
		return ErrAlreadyInitialized
	}
	if inputDimension <= 0 {
		return fmt.Errorf("%w: input dimension %d", ErrInvalidConfig, inputDimension)
	}

	d.in = inputDimension
	d.w = mat.NewDense(d.out, d.in+1, nil)
	raw := d.w.RawMatrix()
	for i := 0; i < d.out; i++ {
		d.init.Weights(raw.Data[i*raw.Stride:i*raw.Stride+d.in], d.in)
	}
	return nil
}

// InputDimension returns the input width, or 0 before Initialize.
func (d *dense) InputDimension() int { return d.in }

// OutputDimension returns the number of units.
func (d *dense) OutputDimension() int { return d.out }

// ParameterCount returns out*(in+1), or 0 before Initialize.
func (d *dense) ParameterCount() int {
	if d.w == nil {
		return 0
	}
	return d.out * (d.in + 1)
}

// WeightedInput computes W*in + b.
func (d *dense) WeightedInput(in []float64) ([]float64, error) {
	if d.w == nil {
		return nil, ErrNotInitialized
	}
	if err := checkLength("input", in, d.in); err != nil {
		return nil, err
	}

	z := mat.NewVecDense(d.out, nil)
	z.MulVec(d.weights(), mat.NewVecDense(d.in, in))
	z.AddVec(z, d.w.ColView(d.in))

	out := z.RawVector().Data
	if err := checkFinite("weighted input", out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateParameters adds delta to the weights and biases in place.
func (d *dense) UpdateParameters(delta []float64) error {
	if d.w == nil {
		return ErrNotInitialized
	}
	if err := checkLength("parameter delta", delta, d.ParameterCount()); err != nil {
		return err
	}
	floats.Add(d.w.RawMatrix().Data, delta)
	return nil
}

// Parameters returns a copy of the flattened weights and biases.
func (d *dense) Parameters() []float64 {
	if d.w == nil {
		return nil
	}
	return append([]float64(nil), d.w.RawMatrix().Data...)
}

// SetParameters overwrites the weights and biases.
func (d *dense) SetParameters(p []float64) error {
	if d.w == nil {
		return ErrNotInitialized
	}
	if err := checkLength("parameters", p, d.ParameterCount()); err != nil {
		return err
	}
	copy(d.w.RawMatrix().Data, p)
	return nil
}

// IsBias reports whether flattened parameter i is a bias.
func (d *dense) IsBias(i int) bool {
	return i%(d.in+1) == d.in
}

// Weight returns the weight from input j to unit i.
func (d *dense) Weight(i, j int) float64 { return d.w.At(i, j) }

// Bias returns the bias of unit i.
func (d *dense) Bias(i int) float64 { return d.w.At(i, d.in) }

func (d *dense) weights() *mat.Dense {
	return d.w.Slice(0, d.out, 0, d.in).(*mat.Dense)
}

// gradient lays out delta (x) prev with delta as the bias column.
func (d *dense) gradient(delta, prev []float64) []float64 {
	g := mat.NewDense(d.out, d.in+1, nil)
	g.Slice(0, d.out, 0, d.in).(*mat.Dense).Outer(1, mat.NewVecDense(d.out, delta), mat.NewVecDense(d.in, prev))
	g.SetCol(d.in, delta)
	return g.RawMatrix().Data
}

// backward computes W^T * delta.
func (d *dense) backward(delta []float64) []float64 {
	v := mat.NewVecDense(d.in, nil)
	v.MulVec(d.weights().T(), mat.NewVecDense(d.out, delta))
	return v.RawVector().Data
}

func (d *dense) config(typ string) Config {
	return Config{
		Type:            typ,
		OutputDimension: d.out,
		InputDimension:  d.in,
		Params:          d.Parameters(),
	}
}
