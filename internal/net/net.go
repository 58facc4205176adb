// Package net provides core neural network types.
package net

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/parallel"
)

// Network is an ordered stack of hidden layers followed by one output layer.
type Network struct {
	inputDimension int
	hidden         []layer.HiddenLayer
	output         layer.OutputLayer
	layers         []layer.Layer

	stopped atomic.Bool
}

// New creates a network over inputs of length inputDimension and initializes
// every layer in order, each with the previous layer's output dimension.
func New(inputDimension int, output layer.OutputLayer, hidden ...layer.HiddenLayer) (*Network, error) {
	if inputDimension <= 0 {
		return nil, fmt.Errorf("%w: input dimension %d", ErrInvalidConfig, inputDimension)
	}
	if output == nil {
		return nil, fmt.Errorf("%w: missing output layer", ErrInvalidConfig)
	}

	n := &Network{
		inputDimension: inputDimension,
		hidden:         hidden,
		output:         output,
		layers:         make([]layer.Layer, 0, len(hidden)+1),
	}
	for i, h := range hidden {
		if h == nil {
			return nil, fmt.Errorf("%w: hidden layer %d is nil", ErrInvalidConfig, i)
		}
		n.layers = append(n.layers, h)
	}
	n.layers = append(n.layers, output)

	dim := inputDimension
	for i, l := range n.layers {
		if err := l.Initialize(dim); err != nil {
			return nil, fmt.Errorf("failed to initialize layer %d: %w", i, err)
		}
		dim = l.OutputDimension()
	}
	return n, nil
}

// InputDimension returns the length of accepted input vectors.
func (n *Network) InputDimension() int { return n.inputDimension }

// OutputDimension returns the length of the output layer's activation.
func (n *Network) OutputDimension() int { return n.output.OutputDimension() }

// Layers returns the network's layers, output layer last.
func (n *Network) Layers() []layer.Layer { return n.layers }

// Depth returns the number of layers including the output layer.
func (n *Network) Depth() int { return len(n.layers) }

// Feedforward returns the output layer's activation for input.
func (n *Network) Feedforward(input []float64) ([]float64, error) {
	if err := n.checkInput(input); err != nil {
		return nil, err
	}
	a := input
	for i, l := range n.layers {
		var err error
		if a, err = l.Feedforward(a); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return a, nil
}

// ForwardProp runs a forward sweep and returns every layer's forward data.
func (n *Network) ForwardProp(input []float64) ([]*layer.ForwardPropData, error) {
	if err := n.checkInput(input); err != nil {
		return nil, err
	}
	fps := make([]*layer.ForwardPropData, len(n.layers))
	a := input
	for i, l := range n.layers {
		fp, err := l.ForwardProp(a)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		fps[i] = fp
		a = fp.Activations
	}
	return fps, nil
}

// Cost returns the mean per-sample cost over samples.
func (n *Network) Cost(samples []TrainingSample) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyDataset
	}
	var total float64
	for i, s := range samples {
		a, err := n.Feedforward(s.Input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		c, err := n.output.Cost(a, s.Output)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += c
	}
	return total / float64(len(samples)), nil
}

// Validate counts the samples for which predicate(prediction, target) holds.
// A nil predicate means ArgMaxMatch.
func (n *Network) Validate(samples []TrainingSample, predicate func(prediction, target []float64) bool) (int, error) {
	if predicate == nil {
		predicate = ArgMaxMatch
	}
	correct := 0
	for i, s := range samples {
		a, err := n.Feedforward(s.Input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		if predicate(a, s.Output) {
			correct++
		}
	}
	return correct, nil
}

// Backpropagate returns the cost gradient for one sample, one slice per
// layer in the layout of that layer's Parameters.
func (n *Network) Backpropagate(sample TrainingSample) ([][]float64, error) {
	fps, err := n.ForwardProp(sample.Input)
	if err != nil {
		return nil, err
	}

	depth := len(n.layers)
	previous := func(i int) *layer.ForwardPropData {
		if i == 0 {
			return layer.InputForwardPropData(sample.Input)
		}
		return fps[i-1]
	}
	grad := make([][]float64, depth)

	outErr, err := n.output.Error(sample.Output, fps[depth-1])
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	if grad[depth-1], err = n.output.Backprop(outErr, previous(depth-1)); err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	if len(n.hidden) == 0 {
		return grad, nil
	}

	dCdA, err := n.output.BackpropagateErrorToActivation(outErr)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	for l := len(n.hidden) - 1; l >= 0; l-- {
		h := n.hidden[l]
		if grad[l], err = h.Backprop(dCdA, fps[l], previous(l)); err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		if l == 0 {
			break
		}
		if dCdA, err = h.BackpropagateDelCostOverDelActivations(dCdA, fps[l]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
	}
	return grad, nil
}

// BatchGradient returns the summed gradient over batch. Samples are
// backpropagated on up to workers goroutines (<= 0 means one per CPU) into
// private buffers, then reduced in batch order.
func (n *Network) BatchGradient(batch []TrainingSample, workers int) ([][]float64, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyDataset
	}

	grads := make([][][]float64, len(batch))
	err := parallel.Map(len(batch), func(i int) error {
		g, err := n.Backpropagate(batch[i])
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		grads[i] = g
		return nil
	}, parallel.Config{Workers: workers})
	if err != nil {
		return nil, err
	}

	sum := grads[0]
	for _, g := range grads[1:] {
		for l := range sum {
			floats.Add(sum[l], g[l])
		}
	}
	return sum, nil
}

// Stop asks a running SGD to return after the current epoch.
func (n *Network) Stop() { n.stopped.Store(true) }

func (n *Network) checkInput(input []float64) error {
	if len(input) != n.inputDimension {
		return fmt.Errorf("%w: input has length %d, network expects %d",
			ErrDimensionMismatch, len(input), n.inputDimension)
	}
	return nil
}
