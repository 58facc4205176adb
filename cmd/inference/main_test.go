package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/net"
)

// identity builds a 10-10 softmax network that favors the input's largest entry.
func identity(t *testing.T) *net.Network {
	t.Helper()
	out, err := layer.NewSoftmax(10, layer.Zero{})
	require.NoError(t, err)
	n, err := net.New(10, out)
	require.NoError(t, err)

	params := make([]float64, 10*11)
	for i := 0; i < 10; i++ {
		params[i*11+i] = 5
	}
	require.NoError(t, out.SetParameters(params))
	return n
}

func TestEvaluate(t *testing.T) {
	n := identity(t)
	samples := []net.TrainingSample{
		{Input: net.OneHot(3, 10), Output: net.OneHot(3, 10)},
		{Input: net.OneHot(7, 10), Output: net.OneHot(7, 10)},
		{Input: net.OneHot(1, 10), Output: net.OneHot(2, 10)},
	}

	r, err := evaluate(n, samples)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 2, r.Correct)
	assert.InDelta(t, 2.0/3, r.Accuracy(), 1e-12)
	assert.Equal(t, 1, r.Confusion[3][3])
	assert.Equal(t, 1, r.Confusion[2][1])
	c, err := n.Cost(samples)
	require.NoError(t, err)
	assert.InDelta(t, c, r.Cost, 1e-12)
	assert.Positive(t, r.Cost)

	var buf bytes.Buffer
	r.print(&buf)
	assert.Contains(t, buf.String(), "Accuracy: 2/3 (66.67%)")
	assert.Contains(t, buf.String(), "Cost: ")

	_, err = evaluate(n, []net.TrainingSample{{Input: []float64{1}, Output: net.OneHot(0, 10)}})
	assert.ErrorIs(t, err, net.ErrDimensionMismatch)
}

func TestDescribe(t *testing.T) {
	conv, err := layer.NewConvolutional(2, 1, 2, 2, 3, 3, activations.ReLU{}, layer.Zero{})
	require.NoError(t, err)
	hidden, err := layer.NewFullyConnected(4, activations.Tanh{}, layer.Zero{})
	require.NoError(t, err)
	out, err := layer.NewOutput(2, cost.CrossEntropy{}, layer.Zero{})
	require.NoError(t, err)
	n, err := net.New(9, out, conv, hidden)
	require.NoError(t, err)

	var buf bytes.Buffer
	describe(&buf, n)
	assert.Equal(t, "Network: 9 inputs, 3 layers\n"+
		"  0: convolutional 9 -> 8, 2 kernels, relu\n"+
		"  1: fully connected 8 -> 4, tanh\n"+
		"  2: output 4 -> 2, cost crossentropy\n\n", buf.String())

	buf.Reset()
	describe(&buf, identity(t))
	assert.Contains(t, buf.String(), "0: softmax 10 -> 10, cost loglikelihood")
}
