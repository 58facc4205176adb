package layer

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
)

func benchFullyConnected(b *testing.B, out, in int) *FullyConnected {
	b.Helper()
	f, err := NewFullyConnected(out, activations.Sigmoid{}, NewGaussian(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	if err := f.Initialize(in); err != nil {
		b.Fatal(err)
	}
	return f
}

// BenchmarkFullyConnectedForward benchmarks the forward pass of a 784->30 layer.
func BenchmarkFullyConnectedForward(b *testing.B) {
	f := benchFullyConnected(b, 30, 784)
	input := randomVector(rand.New(rand.NewSource(2)), 784)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.ForwardProp(input)
	}
}

// BenchmarkFullyConnectedBackward benchmarks the gradient and upstream pass.
func BenchmarkFullyConnectedBackward(b *testing.B) {
	f := benchFullyConnected(b, 30, 784)
	r := rand.New(rand.NewSource(2))
	input := randomVector(r, 784)
	dCdA := randomVector(r, 30)

	own, err := f.ForwardProp(input)
	if err != nil {
		b.Fatal(err)
	}
	prev := InputForwardPropData(input)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Backprop(dCdA, own, prev)
		_, _ = f.BackpropagateDelCostOverDelActivations(dCdA, own)
	}
}

// BenchmarkConvolutionalForward benchmarks 20 5x5 kernels over a 28x28 image.
func BenchmarkConvolutionalForward(b *testing.B) {
	c, err := NewConvolutional(20, 1, 5, 5, 28, 28, activations.ReLU{}, NewGaussian(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	if err := c.Initialize(784); err != nil {
		b.Fatal(err)
	}
	input := randomVector(rand.New(rand.NewSource(2)), 784)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.ForwardProp(input)
	}
}

// BenchmarkConvolutionalBackward benchmarks kernel gradients and the upstream pass.
func BenchmarkConvolutionalBackward(b *testing.B) {
	c, err := NewConvolutional(20, 1, 5, 5, 28, 28, activations.ReLU{}, NewGaussian(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	if err := c.Initialize(784); err != nil {
		b.Fatal(err)
	}
	r := rand.New(rand.NewSource(2))
	input := randomVector(r, 784)
	dCdA := randomVector(r, c.OutputDimension())

	own, err := c.ForwardProp(input)
	if err != nil {
		b.Fatal(err)
	}
	prev := InputForwardPropData(input)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Backprop(dCdA, own, prev)
		_, _ = c.BackpropagateDelCostOverDelActivations(dCdA, own)
	}
}
