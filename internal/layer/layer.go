// Package layer provides neural network layer implementations.
package layer

// Layer is a neural network layer.
//
// A layer knows its output dimension at construction. Its input dimension
// and parameter storage are resolved by Initialize, which the network calls
// exactly once, in order, with the previous layer's output dimension.
type Layer interface {
	Initialize(inputDimension int) error
	InputDimension() int
	OutputDimension() int
	ParameterCount() int

	// WeightedInput computes the pre-activation vector for in.
	WeightedInput(in []float64) ([]float64, error)
	// Activate applies the layer's nonlinearity to a weighted input.
	Activate(z []float64) ([]float64, error)
	Feedforward(in []float64) ([]float64, error)
	// ForwardProp runs Feedforward and keeps both intermediate vectors.
	ForwardProp(in []float64) (*ForwardPropData, error)

	// UpdateParameters adds delta to the flattened parameters in place.
	UpdateParameters(delta []float64) error
	// Parameters returns a copy of the flattened parameters.
	Parameters() []float64
	SetParameters(p []float64) error
	// IsBias reports whether flattened parameter i is a bias term.
	IsBias(i int) bool

	Config() Config
}

// HiddenLayer is a layer that can sit between the input and the output layer.
type HiddenLayer interface {
	Layer

	// Backprop returns the parameter gradient given dC/da for this layer,
	// this layer's forward data and the previous layer's forward data.
	Backprop(dCdA []float64, own, previous *ForwardPropData) ([]float64, error)

	// BackpropagateDelCostOverDelActivations returns dC/da for the previous layer.
	BackpropagateDelCostOverDelActivations(dCdA []float64, own *ForwardPropData) ([]float64, error)
}

// OutputLayer is the final layer of a network. It owns the cost.
type OutputLayer interface {
	Layer

	// Cost returns the scalar cost of activations a against target y.
	Cost(a, y []float64) (float64, error)

	// Error returns dC/dz for this layer.
	Error(y []float64, own *ForwardPropData) ([]float64, error)

	// Backprop returns the parameter gradient for the given error.
	Backprop(err []float64, previous *ForwardPropData) ([]float64, error)

	// BackpropagateErrorToActivation returns dC/da for the previous layer.
	BackpropagateErrorToActivation(err []float64) ([]float64, error)
}

// ForwardPropData is one layer's forward pass over one sample.
type ForwardPropData struct {
	WeightedInputs []float64
	Activations    []float64
}

// InputForwardPropData wraps a raw input as the forward data of the
// layer before the first one.
func InputForwardPropData(input []float64) *ForwardPropData {
	return &ForwardPropData{Activations: input}
}

func forwardProp(l Layer, in []float64) (*ForwardPropData, error) {
	z, err := l.WeightedInput(in)
	if err != nil {
		return nil, err
	}
	a, err := l.Activate(z)
	if err != nil {
		return nil, err
	}
	return &ForwardPropData{WeightedInputs: z, Activations: a}, nil
}

func feedforward(l Layer, in []float64) ([]float64, error) {
	fp, err := forwardProp(l, in)
	if err != nil {
		return nil, err
	}
	return fp.Activations, nil
}
