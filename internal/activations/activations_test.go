package activations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// TestActivate tests every registered activation against its closed form.
func TestActivate(t *testing.T) {
	tests := []struct {
		act      Activation
		input    float64
		expected float64
	}{
		{Sigmoid{}, math.Inf(-1), 0},
		{Sigmoid{}, -1, 1 / (1 + math.E)},
		{Sigmoid{}, 0, 0.5},
		{Sigmoid{}, 5, 0.9933071490757153},
		{Sigmoid{}, math.Inf(1), 1},
		{Tanh{}, -2, math.Tanh(-2)},
		{Tanh{}, 0, 0},
		{Tanh{}, 0.5, math.Tanh(0.5)},
		{ReLU{}, -1, 0},
		{ReLU{}, 0, 0},
		{ReLU{}, 2.5, 2.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, tt.act.Activate(tt.input), 1e-12, "%s(%v)", tt.act, tt.input)
	}
}

// TestDerivative compares each derivative with a centered difference.
func TestDerivative(t *testing.T) {
	const h = 1e-6
	for _, act := range []Activation{Sigmoid{}, Tanh{}, ReLU{}} {
		for _, x := range []float64{-3, -0.7, 0.4, 2} {
			numeric := (act.Activate(x+h) - act.Activate(x-h)) / (2 * h)
			assert.InDelta(t, numeric, act.Derivative(x), 1e-6, "%s'(%v)", act, x)
		}
	}
}

// TestReLUDerivativeAtZero pins the subgradient choice at the kink.
func TestReLUDerivativeAtZero(t *testing.T) {
	assert.Equal(t, 0.0, ReLU{}.Derivative(0))
}

// TestLookup tests name resolution.
func TestLookup(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh", "relu"} {
		act, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, act.String())
	}

	_, err := Lookup("gelu")
	assert.Error(t, err)
}

// TestApply tests element-wise application.
func TestApply(t *testing.T) {
	z := []float64{-1, 0, 3}
	assert.Equal(t, []float64{0, 0, 3}, Apply(ReLU{}, z))
	assert.Equal(t, []float64{-1, 0, 3}, z)
}

// TestSoftmaxSumsToOne tests normalization for ordinary inputs.
func TestSoftmaxSumsToOne(t *testing.T) {
	inputs := [][]float64{
		{1, 2, 3},
		{-4, 0, 4, 0.5},
		{0},
		{7, 7, 7},
	}
	for _, z := range inputs {
		out := Softmax(z)
		require.Len(t, out, len(z))
		assert.InDelta(t, 1.0, floats.Sum(out), 1e-12)
		for _, v := range out {
			assert.True(t, v >= 0 && v <= 1)
		}
	}
}

// TestSoftmaxStability tests that large magnitudes do not overflow.
func TestSoftmaxStability(t *testing.T) {
	for _, z := range [][]float64{{1000, 1, 0}, {-1000, -1001, -999}, {1e300, -1e300}} {
		out := Softmax(z)
		assert.False(t, floats.HasNaN(out), "softmax(%v) = %v", z, out)
		assert.InDelta(t, 1.0, floats.Sum(out), 1e-12)
	}

	out := Softmax([]float64{1000, 1, 0})
	assert.InDelta(t, 1.0, out[0], 1e-12)
	assert.Equal(t, 0, floats.MaxIdx(out))
	// exp(-999) and exp(-1000) both underflow.
	assert.Equal(t, []float64{0, 0}, out[1:])

	out = Softmax([]float64{10, 1, 0})
	assert.Less(t, out[2], out[1])
	assert.Less(t, out[1], out[0])
	assert.Positive(t, out[2])
}

// TestSoftmaxMatchesNaive tests agreement with the unshifted formula where it is safe.
func TestSoftmaxMatchesNaive(t *testing.T) {
	z := []float64{0.3, -1.2, 2.0}
	sum := 0.0
	for _, v := range z {
		sum += math.Exp(v)
	}
	out := Softmax(z)
	for i, v := range z {
		assert.InDelta(t, math.Exp(v)/sum, out[i], 1e-12)
	}
}
