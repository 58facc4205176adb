package nndl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainSaveLoad(t *testing.T) {
	init := Gaussian(1)
	hidden, err := FullyConnected(4, Tanh, init)
	require.NoError(t, err)
	output, err := Output(2, CrossEntropy, init)
	require.NoError(t, err)
	n, err := New(2, output, hidden)
	require.NoError(t, err)

	data := []TrainingSample{
		{Input: []float64{0, 0}, Output: OneHot(0, 2)},
		{Input: []float64{0, 1}, Output: OneHot(1, 2)},
		{Input: []float64{1, 0}, Output: OneHot(1, 2)},
		{Input: []float64{1, 1}, Output: OneHot(0, 2)},
	}
	before, err := n.Cost(data)
	require.NoError(t, err)

	cfg := DefaultTrainConfig(7)
	cfg.Epochs, cfg.MiniBatchSize, cfg.LearningRate = 20, 4, 0.5
	cfg.Regularization, cfg.RegularizationRate = L2, 0.01
	var epochs int
	require.NoError(t, n.SGD(data, cfg, Hooks{Epoch: func(int) { epochs++ }}))
	assert.Equal(t, 20, epochs)

	// Full-batch gradient descent at a small rate lowers the cost.
	after, err := n.Cost(data)
	require.NoError(t, err)
	assert.Less(t, after, before)

	filename := filepath.Join(t.TempDir(), "xor.gob")
	require.NoError(t, n.Save(filename))
	loaded, err := Load(filename)
	require.NoError(t, err)
	for _, s := range data {
		want, err := n.Feedforward(s.Input)
		require.NoError(t, err)
		got, err := loaded.Feedforward(s.Input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestConstructorErrors(t *testing.T) {
	_, err := FullyConnected(0, Sigmoid, Gaussian(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Softmax(0, Gaussian(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Convolutional(1, 1, 6, 6, 5, 5, ReLU, Gaussian(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	out, err := Output(1, Quadratic(Sigmoid), Gaussian(1))
	require.NoError(t, err)
	n, err := New(3, out)
	require.NoError(t, err)
	_, err = n.Feedforward([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
