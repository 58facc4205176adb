// Package cost provides the per-sample cost functions used by output layers.
package cost

import (
	"fmt"
	"math"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
)

// Function is a cost paired with the error term it induces at the output layer.
type Function interface {
	// Cost computes the scalar cost of activations a against target y.
	Cost(a, y []float64) float64

	// Error computes dC/dz for weighted inputs z, activations a and target y.
	// It returns a new slice.
	Error(z, a, y []float64) []float64

	fmt.Stringer
}

// Activated is a cost that fixes the output layer's activation.
type Activated interface {
	Function
	Activation() activations.Activation
}

// Quadratic is the half squared error 0.5 * sum((a - y)^2).
type Quadratic struct {
	Act activations.Activation
}

// NewQuadratic returns a quadratic cost over act, defaulting to sigmoid.
func NewQuadratic(act activations.Activation) Quadratic {
	if act == nil {
		act = activations.Sigmoid{}
	}
	return Quadratic{Act: act}
}

// Cost computes 0.5 * sum((a - y)^2)
func (Quadratic) Cost(a, y []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - y[i]
		sum += diff * diff
	}
	return 0.5 * sum
}

// Error computes (a - y) * f'(z)
func (q Quadratic) Error(z, a, y []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] - y[i]) * q.Act.Derivative(z[i])
	}
	return out
}

// Activation returns the activation the cost was built with.
func (q Quadratic) Activation() activations.Activation { return q.Act }

func (Quadratic) String() string { return "quadratic" }

// CrossEntropy is the binary cross-entropy over sigmoid outputs.
type CrossEntropy struct{}

// Cost computes -sum(y*ln(a) + (1-y)*ln(1-a))
func (CrossEntropy) Cost(a, y []float64) float64 {
	var sum float64
	for i := range a {
		sum -= xlogy(y[i], a[i]) + xlogy(1-y[i], 1-a[i])
	}
	return sum
}

// Error computes a - y; the sigmoid derivative cancels.
func (CrossEntropy) Error(_, a, y []float64) []float64 {
	return diff(a, y)
}

// Activation returns sigmoid.
func (CrossEntropy) Activation() activations.Activation { return activations.Sigmoid{} }

func (CrossEntropy) String() string { return "crossentropy" }

// LogLikelihood is the cross-entropy of a softmax distribution, -sum(y*ln(a)).
type LogLikelihood struct{}

// Cost computes -sum(y*ln(a))
func (LogLikelihood) Cost(a, y []float64) float64 {
	var sum float64
	for i := range a {
		sum -= xlogy(y[i], a[i])
	}
	return sum
}

// Error computes a - y; the softmax Jacobian cancels for targets summing to one.
func (LogLikelihood) Error(_, a, y []float64) []float64 {
	return diff(a, y)
}

func (LogLikelihood) String() string { return "loglikelihood" }

// Lookup resolves a cost by name. The activation only applies to quadratic.
func Lookup(name string, act activations.Activation) (Function, error) {
	switch name {
	case "quadratic":
		return NewQuadratic(act), nil
	case "crossentropy":
		return CrossEntropy{}, nil
	case "loglikelihood":
		return LogLikelihood{}, nil
	}
	return nil, fmt.Errorf("unknown cost %q", name)
}

// xlogy returns x*ln(y), taking 0*ln(0) as 0.
func xlogy(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(y)
}

func diff(a, y []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - y[i]
	}
	return out
}
