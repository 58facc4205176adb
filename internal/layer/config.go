package layer

import (
	"fmt"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
)

// Layer type tags stored in Config.Type.
const (
	TypeFullyConnected = "fullyconnected"
	TypeOutput         = "output"
	TypeSoftmax        = "softmax"
	TypeConvolutional  = "convolutional"
)

// Config is a shape-tagged, serializable description of a layer and its
// parameters.
type Config struct {
	Type            string
	OutputDimension int
	InputDimension  int
	Activation      string
	Cost            string

	KernelCount  int
	KernelDepth  int
	KernelWidth  int
	KernelHeight int
	InputWidth   int
	InputHeight  int

	Params []float64
}

// FromConfig builds an uninitialized layer of the described type with
// zeroed weights. The caller initializes it and restores cfg.Params.
func FromConfig(cfg Config) (Layer, error) {
	switch cfg.Type {
	case TypeFullyConnected:
		act, err := activations.Lookup(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		l, err := NewFullyConnected(cfg.OutputDimension, act, Zero{})
		if err != nil {
			return nil, err
		}
		return l, nil

	case TypeOutput:
		act, err := activations.Lookup(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		fn, err := cost.Lookup(cfg.Cost, act)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c, ok := fn.(cost.Activated)
		if !ok {
			return nil, fmt.Errorf("%w: cost %q does not fix an activation", ErrInvalidConfig, cfg.Cost)
		}
		l, err := NewOutput(cfg.OutputDimension, c, Zero{})
		if err != nil {
			return nil, err
		}
		return l, nil

	case TypeSoftmax:
		l, err := NewSoftmax(cfg.OutputDimension, Zero{})
		if err != nil {
			return nil, err
		}
		return l, nil

	case TypeConvolutional:
		act, err := activations.Lookup(cfg.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		l, err := NewConvolutional(cfg.KernelCount, cfg.KernelDepth, cfg.KernelWidth, cfg.KernelHeight,
			cfg.InputWidth, cfg.InputHeight, act, Zero{})
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.Type)
}
