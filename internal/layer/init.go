package layer

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer fills a layer's weights. Biases are always zero.
type Initializer interface {
	Weights(dst []float64, fanIn int)
}

// Gaussian draws weights from N(0, 1/fanIn).
type Gaussian struct {
	src rand.Source
}

// NewGaussian returns a Gaussian initializer drawing from src.
func NewGaussian(src rand.Source) Gaussian {
	return Gaussian{src: src}
}

// Weights fills dst with zero-mean normal samples of standard deviation 1/sqrt(fanIn).
func (g Gaussian) Weights(dst []float64, fanIn int) {
	dist := distuv.Normal{Mu: 0, Sigma: 1 / math.Sqrt(float64(fanIn)), Src: g.src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

// Zero leaves weights at zero. Layers rebuilt from a saved config use it
// before their parameters are restored.
type Zero struct{}

// Weights clears dst.
func (Zero) Weights(dst []float64, _ int) {
	for i := range dst {
		dst[i] = 0
	}
}
