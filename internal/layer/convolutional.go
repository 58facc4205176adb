package layer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
)

// Convolutional is a stride-1, unpadded convolutional hidden layer.
//
// Inputs and outputs are flattened channel-major then row-major: element
// (d, y, x) of a width w, height h volume is at d*h*w + y*w + x. Each kernel
// produces one output channel.
type Convolutional struct {
	kernels      []Kernel
	kernelCount  int
	kernelDepth  int
	kernelWidth  int
	kernelHeight int
	inputWidth   int
	inputHeight  int
	inputDepth   int

	act         activations.Activation
	init        Initializer
	initialized bool
}

// NewConvolutional creates a convolutional layer of kernelCount kernels of
// shape kernelDepth x kernelWidth x kernelHeight over an inputWidth x inputHeight image.
func NewConvolutional(kernelCount, kernelDepth, kernelWidth, kernelHeight, inputWidth, inputHeight int,
	act activations.Activation, init Initializer) (*Convolutional, error) {

	for _, v := range []int{kernelCount, kernelDepth, kernelWidth, kernelHeight, inputWidth, inputHeight} {
		if v <= 0 {
			return nil, fmt.Errorf("%w: convolution geometry must be positive", ErrInvalidConfig)
		}
	}
	if kernelWidth > inputWidth || kernelHeight > inputHeight {
		return nil, fmt.Errorf("%w: kernel %dx%d larger than input %dx%d",
			ErrInvalidConfig, kernelWidth, kernelHeight, inputWidth, inputHeight)
	}
	if act == nil || init == nil {
		return nil, fmt.Errorf("%w: nil activation or initializer", ErrInvalidConfig)
	}

	return &Convolutional{
		kernelCount:  kernelCount,
		kernelDepth:  kernelDepth,
		kernelWidth:  kernelWidth,
		kernelHeight: kernelHeight,
		inputWidth:   inputWidth,
		inputHeight:  inputHeight,
		act:          act,
		init:         init,
	}, nil
}

// Initialize resolves the input depth and draws the kernels. The input
// dimension must be a whole number of inputWidth x inputHeight planes equal
// to the kernel depth.
func (c *Convolutional) Initialize(inputDimension int) error {
	if c.initialized {
		return ErrAlreadyInitialized
	}
	plane := c.inputWidth * c.inputHeight
	if inputDimension <= 0 || inputDimension%plane != 0 {
		return fmt.Errorf("%w: input dimension %d is not a multiple of %dx%d",
			ErrInvalidConfig, inputDimension, c.inputWidth, c.inputHeight)
	}
	if depth := inputDimension / plane; depth != c.kernelDepth {
		return fmt.Errorf("%w: input depth %d does not match kernel depth %d",
			ErrInvalidConfig, depth, c.kernelDepth)
	}

	c.inputDepth = c.kernelDepth
	c.kernels = make([]Kernel, c.kernelCount)
	fanIn := c.kernelDepth * c.kernelWidth * c.kernelHeight
	for l := range c.kernels {
		c.kernels[l] = newKernel(c.kernelDepth, c.kernelWidth, c.kernelHeight)
		c.init.Weights(c.kernels[l].Weights, fanIn)
	}
	c.initialized = true
	return nil
}

// InputDimension returns depth*width*height of the input, or 0 before Initialize.
func (c *Convolutional) InputDimension() int {
	return c.inputDepth * c.inputWidth * c.inputHeight
}

// OutputWidth returns inputWidth - kernelWidth + 1.
func (c *Convolutional) OutputWidth() int { return c.inputWidth - c.kernelWidth + 1 }

// OutputHeight returns inputHeight - kernelHeight + 1.
func (c *Convolutional) OutputHeight() int { return c.inputHeight - c.kernelHeight + 1 }

// OutputDepth returns the kernel count.
func (c *Convolutional) OutputDepth() int { return c.kernelCount }

// OutputDimension returns OutputDepth * OutputWidth * OutputHeight.
func (c *Convolutional) OutputDimension() int {
	return c.OutputDepth() * c.OutputWidth() * c.OutputHeight()
}

// ParameterCount returns kernelCount * (kernelDepth*kernelWidth*kernelHeight + 1).
func (c *Convolutional) ParameterCount() int {
	return c.kernelCount * c.perKernel()
}

// Kernels returns the layer's kernels. They are shared with the layer.
func (c *Convolutional) Kernels() []Kernel { return c.kernels }

// Activation returns the layer's activation function.
func (c *Convolutional) Activation() activations.Activation { return c.act }

func (c *Convolutional) perKernel() int {
	return c.kernelDepth*c.kernelWidth*c.kernelHeight + 1
}

// WeightedInput slides every kernel over every valid position of in.
func (c *Convolutional) WeightedInput(in []float64) ([]float64, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	if err := checkLength("input", in, c.InputDimension()); err != nil {
		return nil, err
	}

	ow, oh := c.OutputWidth(), c.OutputHeight()
	z := make([]float64, c.OutputDimension())
	for l := range c.kernels {
		k := &c.kernels[l]
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				z[(l*oh+oy)*ow+ox] = k.filter(in, ox, oy, c.inputWidth, c.inputHeight)
			}
		}
	}
	if err := checkFinite("weighted input", z); err != nil {
		return nil, err
	}
	return z, nil
}

// Activate applies the activation element-wise.
func (c *Convolutional) Activate(z []float64) ([]float64, error) {
	return activations.Apply(c.act, z), nil
}

// Feedforward returns act(conv(in)).
func (c *Convolutional) Feedforward(in []float64) ([]float64, error) {
	return feedforward(c, in)
}

// ForwardProp returns the weighted input and activation for in.
func (c *Convolutional) ForwardProp(in []float64) (*ForwardPropData, error) {
	return forwardProp(c, in)
}

// Backprop accumulates each kernel's gradient over every output position it
// produced. The result holds each kernel's weights followed by its bias.
func (c *Convolutional) Backprop(dCdA []float64, own, previous *ForwardPropData) ([]float64, error) {
	delta, err := c.delta(dCdA, own)
	if err != nil {
		return nil, err
	}
	in := previous.Activations
	if err := checkLength("previous activations", in, c.InputDimension()); err != nil {
		return nil, err
	}

	ow, oh := c.OutputWidth(), c.OutputHeight()
	iw, ih := c.inputWidth, c.inputHeight
	kw, kh := c.kernelWidth, c.kernelHeight
	per := c.perKernel()
	grad := make([]float64, c.ParameterCount())

	for l := range c.kernels {
		g := grad[l*per : (l+1)*per]
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				dl := delta[(l*oh+oy)*ow+ox]
				if dl == 0 {
					continue
				}
				for d := 0; d < c.kernelDepth; d++ {
					for y := 0; y < kh; y++ {
						src := d*ih*iw + (oy+y)*iw + ox
						dst := (d*kh + y) * kw
						floats.AddScaled(g[dst:dst+kw], dl, in[src:src+kw])
					}
				}
				g[per-1] += dl
			}
		}
	}
	return grad, nil
}

// BackpropagateDelCostOverDelActivations correlates the output delta with
// the kernels, scattering it back onto the input positions each output read.
func (c *Convolutional) BackpropagateDelCostOverDelActivations(dCdA []float64, own *ForwardPropData) ([]float64, error) {
	delta, err := c.delta(dCdA, own)
	if err != nil {
		return nil, err
	}

	ow, oh := c.OutputWidth(), c.OutputHeight()
	iw, ih := c.inputWidth, c.inputHeight
	kw, kh := c.kernelWidth, c.kernelHeight
	out := make([]float64, c.InputDimension())

	for l := range c.kernels {
		k := &c.kernels[l]
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				dl := delta[(l*oh+oy)*ow+ox]
				if dl == 0 {
					continue
				}
				for d := 0; d < c.kernelDepth; d++ {
					for y := 0; y < kh; y++ {
						dst := d*ih*iw + (oy+y)*iw + ox
						floats.AddScaled(out[dst:dst+kw], dl, k.row(d, y))
					}
				}
			}
		}
	}
	return out, nil
}

// UpdateParameters adds delta to every kernel's weights and bias.
func (c *Convolutional) UpdateParameters(delta []float64) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if err := checkLength("parameter delta", delta, c.ParameterCount()); err != nil {
		return err
	}
	per := c.perKernel()
	for l := range c.kernels {
		seg := delta[l*per : (l+1)*per]
		floats.Add(c.kernels[l].Weights, seg[:per-1])
		c.kernels[l].Bias += seg[per-1]
	}
	return nil
}

// Parameters returns each kernel's weights followed by its bias.
func (c *Convolutional) Parameters() []float64 {
	if !c.initialized {
		return nil
	}
	p := make([]float64, 0, c.ParameterCount())
	for _, k := range c.kernels {
		p = append(p, k.Weights...)
		p = append(p, k.Bias)
	}
	return p
}

// SetParameters overwrites every kernel from the Parameters layout.
func (c *Convolutional) SetParameters(p []float64) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if err := checkLength("parameters", p, c.ParameterCount()); err != nil {
		return err
	}
	per := c.perKernel()
	for l := range c.kernels {
		seg := p[l*per : (l+1)*per]
		copy(c.kernels[l].Weights, seg[:per-1])
		c.kernels[l].Bias = seg[per-1]
	}
	return nil
}

// IsBias reports whether flattened parameter i is a kernel bias.
func (c *Convolutional) IsBias(i int) bool {
	per := c.perKernel()
	return i%per == per-1
}

// Config describes the layer for persistence.
func (c *Convolutional) Config() Config {
	return Config{
		Type:            TypeConvolutional,
		OutputDimension: c.OutputDimension(),
		InputDimension:  c.InputDimension(),
		Activation:      c.act.String(),
		KernelCount:     c.kernelCount,
		KernelDepth:     c.kernelDepth,
		KernelWidth:     c.kernelWidth,
		KernelHeight:    c.kernelHeight,
		InputWidth:      c.inputWidth,
		InputHeight:     c.inputHeight,
		Params:          c.Parameters(),
	}
}

func (c *Convolutional) delta(dCdA []float64, own *ForwardPropData) ([]float64, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	n := c.OutputDimension()
	if err := checkLength("dC/da", dCdA, n); err != nil {
		return nil, err
	}
	if err := checkLength("weighted inputs", own.WeightedInputs, n); err != nil {
		return nil, err
	}

	delta := make([]float64, n)
	for i, z := range own.WeightedInputs {
		delta[i] = dCdA[i] * c.act.Derivative(z)
	}
	return delta, nil
}
