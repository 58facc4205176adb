package net

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
)

func newConvNetwork(t testing.TB, seed uint64) *Network {
	t.Helper()
	init := layer.NewGaussian(rand.NewSource(seed))
	conv, err := layer.NewConvolutional(3, 2, 3, 2, 5, 4, activations.ReLU{}, init)
	require.NoError(t, err)
	n, err := New(6, mustSoftmax(t, 4, init), mustFullyConnected(t, 40, activations.Tanh{}, init), conv)
	require.NoError(t, err)
	return n
}

func assertSameNetwork(t *testing.T, want, got *Network, inputs []TrainingSample) {
	t.Helper()
	require.Equal(t, want.Depth(), got.Depth())
	assert.Equal(t, want.InputDimension(), got.InputDimension())
	for i := range want.Layers() {
		assert.Equal(t, want.Layers()[i].Config(), got.Layers()[i].Config(), "layer %d", i)
	}
	for _, s := range inputs {
		a, err := want.Feedforward(s.Input)
		require.NoError(t, err)
		b, err := got.Feedforward(s.Input)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		n    *Network
		in   int
	}{
		{"mlp", newMLP(t, 70, 5, 4, 3), 5},
		{"conv", newConvNetwork(t, 71), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.n.Encode(&buf))

			got, err := Decode(&buf)
			require.NoError(t, err)
			assertSameNetwork(t, tt.n, got, randomSamples(newRand(72), 5, tt.in, 2))
		})
	}
}

func TestSaveLoad(t *testing.T) {
	n := newConvNetwork(t, 80)
	filename := filepath.Join(t.TempDir(), "net.gob")

	require.NoError(t, n.Save(filename))
	got, err := Load(filename)
	require.NoError(t, err)
	assertSameNetwork(t, n, got, randomSamples(newRand(81), 3, 6, 4))

	// A loaded network keeps training.
	data := randomSamples(newRand(82), 8, 6, 4)
	require.NoError(t, got.SGD(data, TrainConfig{Epochs: 1, MiniBatchSize: 4, LearningRate: 0.1, Rand: newRand(1)}))

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a network")))
	assert.Error(t, err)
}

func TestFromSnapshotErrors(t *testing.T) {
	base := newMLP(t, 90, 3, 4, 2).Snapshot()
	clone := func() Snapshot {
		s := base
		s.Layers = make([]layer.Config, len(base.Layers))
		for i, cfg := range base.Layers {
			cfg.Params = append([]float64(nil), cfg.Params...)
			s.Layers[i] = cfg
		}
		return s
	}

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		target error
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }, ErrUnsupported},
		{"no layers", func(s *Snapshot) { s.Layers = nil }, ErrInvalidConfig},
		{"unknown type", func(s *Snapshot) { s.Layers[0].Type = "recurrent" }, ErrUnsupported},
		{"hidden last", func(s *Snapshot) { s.Layers = s.Layers[:1] }, ErrInvalidConfig},
		{"output first", func(s *Snapshot) { s.Layers[0] = s.Layers[1] }, ErrInvalidConfig},
		{"input dimension", func(s *Snapshot) { s.InputDimension = 0 }, ErrInvalidConfig},
		{"recorded input", func(s *Snapshot) { s.Layers[1].InputDimension = 7 }, ErrInvalidConfig},
		{"params", func(s *Snapshot) { s.Layers[1].Params = s.Layers[1].Params[:2] }, ErrDimensionMismatch},
		{"activation", func(s *Snapshot) { s.Layers[0].Activation = "swish" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := clone()
			tt.mutate(&s)
			_, err := FromSnapshot(s)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	n, err := FromSnapshot(clone())
	require.NoError(t, err)
	assert.Equal(t, base, n.Snapshot())
}
