package layer

import (
	"fmt"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
)

// FullyConnected is a hidden layer computing act(W*x + b).
type FullyConnected struct {
	dense
	act activations.Activation
}

// NewFullyConnected creates a hidden layer with out units.
func NewFullyConnected(out int, act activations.Activation, init Initializer) (*FullyConnected, error) {
	if act == nil {
		return nil, fmt.Errorf("%w: nil activation", ErrInvalidConfig)
	}
	d, err := newDense(out, init)
	if err != nil {
		return nil, err
	}
	return &FullyConnected{dense: d, act: act}, nil
}

// Activation returns the layer's activation function.
func (f *FullyConnected) Activation() activations.Activation { return f.act }

// Activate applies the activation element-wise.
func (f *FullyConnected) Activate(z []float64) ([]float64, error) {
	return activations.Apply(f.act, z), nil
}

// Feedforward returns act(W*in + b).
func (f *FullyConnected) Feedforward(in []float64) ([]float64, error) {
	return feedforward(f, in)
}

// ForwardProp returns the weighted input and activation for in.
func (f *FullyConnected) ForwardProp(in []float64) (*ForwardPropData, error) {
	return forwardProp(f, in)
}

// Backprop returns dC/dW and dC/db flattened in parameter order.
func (f *FullyConnected) Backprop(dCdA []float64, own, previous *ForwardPropData) ([]float64, error) {
	delta, err := f.delta(dCdA, own)
	if err != nil {
		return nil, err
	}
	if err := checkLength("previous activations", previous.Activations, f.in); err != nil {
		return nil, err
	}
	return f.gradient(delta, previous.Activations), nil
}

// BackpropagateDelCostOverDelActivations returns sum_i delta_i * W[i][j] for each input j.
func (f *FullyConnected) BackpropagateDelCostOverDelActivations(dCdA []float64, own *ForwardPropData) ([]float64, error) {
	delta, err := f.delta(dCdA, own)
	if err != nil {
		return nil, err
	}
	return f.backward(delta), nil
}

// Config describes the layer for persistence.
func (f *FullyConnected) Config() Config {
	c := f.config(TypeFullyConnected)
	c.Activation = f.act.String()
	return c
}

// delta computes dC/dz = dC/da * act'(z).
func (f *FullyConnected) delta(dCdA []float64, own *ForwardPropData) ([]float64, error) {
	if f.w == nil {
		return nil, ErrNotInitialized
	}
	if err := checkLength("dC/da", dCdA, f.out); err != nil {
		return nil, err
	}
	if err := checkLength("weighted inputs", own.WeightedInputs, f.out); err != nil {
		return nil, err
	}

	delta := make([]float64, f.out)
	for i, z := range own.WeightedInputs {
		delta[i] = dCdA[i] * f.act.Derivative(z)
	}
	return delta, nil
}
