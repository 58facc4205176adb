// Package opt provides optimization algorithms.
package opt

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidStep reports a step that cannot be applied.
var ErrInvalidStep = errors.New("invalid optimizer step")

// Parameterized is anything whose flattened parameters an optimizer can update.
type Parameterized interface {
	Parameters() []float64
	IsBias(i int) bool
	UpdateParameters(delta []float64) error
}

// Optimizer updates parameters from a gradient summed over a mini-batch.
type Optimizer interface {
	Step(p Parameterized, gradSum []float64, batchSize int) error
}

// Regularization selects the weight penalty applied by SGD.
type Regularization int

const (
	// None applies no penalty.
	None Regularization = iota
	// L1 shrinks weights by a constant step toward zero.
	L1
	// L2 decays weights in proportion to their size.
	L2
)

func (r Regularization) String() string {
	switch r {
	case L1:
		return "l1"
	case L2:
		return "l2"
	default:
		return "none"
	}
}

// ParseRegularization parses "none", "l1" or "l2", ignoring case.
func ParseRegularization(s string) (Regularization, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "l1":
		return L1, nil
	case "l2":
		return L2, nil
	}
	return None, fmt.Errorf("unknown regularization %q", s)
}

// Set implements flag.Value.
func (r *Regularization) Set(s string) error {
	v, err := ParseRegularization(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// SGD is mini-batch stochastic gradient descent with optional L1/L2 weight
// penalties. Penalties are normalized by the full training-set size and
// never touch bias terms.
type SGD struct {
	LearningRate       float64
	Regularization     Regularization
	RegularizationRate float64
	TrainingSetSize    int
}

// Validate checks the hyperparameters.
func (s SGD) Validate() error {
	if s.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate %v must be positive", ErrInvalidStep, s.LearningRate)
	}
	if s.RegularizationRate < 0 {
		return fmt.Errorf("%w: regularization rate %v is negative", ErrInvalidStep, s.RegularizationRate)
	}
	if s.Regularization != None && s.TrainingSetSize <= 0 {
		return fmt.Errorf("%w: regularization needs a positive training set size", ErrInvalidStep)
	}
	return nil
}

// Step applies one update to p.
func (s SGD) Step(p Parameterized, gradSum []float64, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidStep, batchSize)
	}
	params := p.Parameters()
	if len(gradSum) != len(params) {
		return fmt.Errorf("%w: gradient has length %d, want %d", ErrInvalidStep, len(gradSum), len(params))
	}
	return p.UpdateParameters(s.Delta(params, p.IsBias, gradSum, batchSize))
}

// Delta returns the amount to add to params:
//
//	-eta/m * grad                   (none)
//	-eta/m * grad - eta*lambda/n * w        (L2)
//	-eta/m * grad - eta*lambda/n * sign(w)  (L1)
//
// where m is batchSize and n the training-set size. Bias entries only get the
// gradient term.
func (s SGD) Delta(params []float64, isBias func(int) bool, gradSum []float64, batchSize int) []float64 {
	delta := make([]float64, len(gradSum))
	floats.ScaleTo(delta, -s.LearningRate/float64(batchSize), gradSum)

	if s.Regularization == None || s.RegularizationRate == 0 {
		return delta
	}

	decay := s.LearningRate * s.RegularizationRate / float64(s.TrainingSetSize)
	for i, w := range params {
		if isBias(i) {
			continue
		}
		switch s.Regularization {
		case L2:
			delta[i] -= decay * w
		case L1:
			delta[i] -= decay * sign(w)
		}
	}
	return delta
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
