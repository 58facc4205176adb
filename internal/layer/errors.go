package layer

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig reports a layer that cannot be built or wired as declared.
	ErrInvalidConfig = errors.New("invalid layer configuration")

	// ErrDimensionMismatch reports a vector whose length disagrees with the layer.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNumericalInstability reports a NaN or infinite value in a forward pass.
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrNotInitialized reports use of a layer before Initialize.
	ErrNotInitialized = errors.New("layer not initialized")

	// ErrAlreadyInitialized reports a second call to Initialize.
	ErrAlreadyInitialized = errors.New("layer already initialized")

	// ErrUnsupported reports a layer type the engine cannot build.
	ErrUnsupported = errors.New("unsupported layer")
)

func checkLength(what string, v []float64, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: %s has length %d, want %d", ErrDimensionMismatch, what, len(v), want)
	}
	return nil
}

func checkFinite(what string, v []float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s[%d] is %v", ErrNumericalInstability, what, i, x)
		}
	}
	return nil
}
