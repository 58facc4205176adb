package layer

import "gonum.org/v1/gonum/floats"

// Kernel is one convolution filter and its bias.
//
// Weights are laid out depth-major then row-major: the weight at channel d,
// row y, column x is Weights[(d*Height+y)*Width+x].
type Kernel struct {
	Depth, Width, Height int
	Weights              []float64
	Bias                 float64
}

func newKernel(depth, width, height int) Kernel {
	return Kernel{
		Depth:   depth,
		Width:   width,
		Height:  height,
		Weights: make([]float64, depth*width*height),
	}
}

// row returns the weights of channel d, row y.
func (k *Kernel) row(d, y int) []float64 {
	off := (d*k.Height + y) * k.Width
	return k.Weights[off : off+k.Width]
}

// filter computes the kernel's weighted input with its top-left corner at (ox, oy).
func (k *Kernel) filter(in []float64, ox, oy, inputWidth, inputHeight int) float64 {
	sum := k.Bias
	for d := 0; d < k.Depth; d++ {
		for y := 0; y < k.Height; y++ {
			off := d*inputHeight*inputWidth + (oy+y)*inputWidth + ox
			sum += floats.Dot(k.row(d, y), in[off:off+k.Width])
		}
	}
	return sum
}
