package layer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
)

// Softmax is an output layer producing a probability distribution, trained
// with the log-likelihood cost.
type Softmax struct {
	head
}

// NewSoftmax creates a softmax output layer with out units.
func NewSoftmax(out int, init Initializer) (*Softmax, error) {
	d, err := newDense(out, init)
	if err != nil {
		return nil, err
	}
	return &Softmax{head: head{dense: d, cost: cost.LogLikelihood{}}}, nil
}

// Activate returns softmax(z). A NaN in the result is an error.
func (s *Softmax) Activate(z []float64) ([]float64, error) {
	a := activations.Softmax(z)
	if floats.HasNaN(a) {
		return nil, fmt.Errorf("%w: softmax of %v", ErrNumericalInstability, z)
	}
	return a, nil
}

// Feedforward returns softmax(W*in + b).
func (s *Softmax) Feedforward(in []float64) ([]float64, error) {
	return feedforward(s, in)
}

// ForwardProp returns the weighted input and activation for in.
func (s *Softmax) ForwardProp(in []float64) (*ForwardPropData, error) {
	return forwardProp(s, in)
}

// Config describes the layer for persistence.
func (s *Softmax) Config() Config {
	c := s.config(TypeSoftmax)
	c.Cost = s.cost.String()
	return c
}
