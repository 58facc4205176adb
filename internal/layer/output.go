package layer

import (
	"fmt"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
)

// head is the part of an output layer shared by every activation.
type head struct {
	dense
	cost cost.Function
}

// CostFunction returns the cost the layer evaluates.
func (h *head) CostFunction() cost.Function { return h.cost }

// Cost returns the cost of a against y.
func (h *head) Cost(a, y []float64) (float64, error) {
	if err := checkLength("activations", a, h.out); err != nil {
		return 0, err
	}
	if err := checkLength("target", y, h.out); err != nil {
		return 0, err
	}
	return h.cost.Cost(a, y), nil
}

// Error returns dC/dz from the layer's forward data and the target.
func (h *head) Error(y []float64, own *ForwardPropData) ([]float64, error) {
	if err := checkLength("target", y, h.out); err != nil {
		return nil, err
	}
	if err := checkLength("activations", own.Activations, h.out); err != nil {
		return nil, err
	}
	return h.cost.Error(own.WeightedInputs, own.Activations, y), nil
}

// Backprop returns the parameter gradient for err given the previous activations.
func (h *head) Backprop(err []float64, previous *ForwardPropData) ([]float64, error) {
	if h.w == nil {
		return nil, ErrNotInitialized
	}
	if e := checkLength("error", err, h.out); e != nil {
		return nil, e
	}
	if e := checkLength("previous activations", previous.Activations, h.in); e != nil {
		return nil, e
	}
	return h.gradient(err, previous.Activations), nil
}

// BackpropagateErrorToActivation returns sum_i err_i * W[i][j] for each input j.
func (h *head) BackpropagateErrorToActivation(err []float64) ([]float64, error) {
	if h.w == nil {
		return nil, ErrNotInitialized
	}
	if e := checkLength("error", err, h.out); e != nil {
		return nil, e
	}
	return h.backward(err), nil
}

// Output is an output layer whose activation is fixed by its cost:
// sigmoid for cross-entropy, or any activation for quadratic cost.
type Output struct {
	head
	act activations.Activation
}

// NewOutput creates an output layer with out units.
func NewOutput(out int, c cost.Activated, init Initializer) (*Output, error) {
	if c == nil || c.Activation() == nil {
		return nil, fmt.Errorf("%w: nil cost or activation", ErrInvalidConfig)
	}
	d, err := newDense(out, init)
	if err != nil {
		return nil, err
	}
	return &Output{head: head{dense: d, cost: c}, act: c.Activation()}, nil
}

// Activate applies the cost's activation element-wise.
func (o *Output) Activate(z []float64) ([]float64, error) {
	return activations.Apply(o.act, z), nil
}

// Feedforward returns act(W*in + b).
func (o *Output) Feedforward(in []float64) ([]float64, error) {
	return feedforward(o, in)
}

// ForwardProp returns the weighted input and activation for in.
func (o *Output) ForwardProp(in []float64) (*ForwardPropData, error) {
	return forwardProp(o, in)
}

// Config describes the layer for persistence.
func (o *Output) Config() Config {
	c := o.config(TypeOutput)
	c.Activation = o.act.String()
	c.Cost = o.cost.String()
	return c
}
