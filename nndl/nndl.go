// Package nndl is the public entry point to the network trainer.
package nndl

import (
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/mnist"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/net"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/opt"
)

// Re-export common types and functions for easier access
type (
	Network        = net.Network
	TrainingSample = net.TrainingSample
	TrainConfig    = net.TrainConfig
	Snapshot       = net.Snapshot
	Layer          = layer.Layer
	HiddenLayer    = layer.HiddenLayer
	OutputLayer    = layer.OutputLayer
	Initializer    = layer.Initializer
	Activation     = activations.Activation
	Cost           = cost.Activated
	Regularization = opt.Regularization
	Callback       = net.Callback
	Hooks          = net.Hooks
)

// Errors
var (
	ErrInvalidConfig        = net.ErrInvalidConfig
	ErrDimensionMismatch    = net.ErrDimensionMismatch
	ErrNumericalInstability = net.ErrNumericalInstability
	ErrUnsupported          = net.ErrUnsupported
	ErrEmptyDataset         = net.ErrEmptyDataset
)

// Network creation
func New(inputDimension int, output OutputLayer, hidden ...HiddenLayer) (*Network, error) {
	return net.New(inputDimension, output, hidden...)
}

// Activations
var (
	Sigmoid = activations.Sigmoid{}
	Tanh    = activations.Tanh{}
	ReLU    = activations.ReLU{}
)

// Costs
var CrossEntropy = cost.CrossEntropy{}

func Quadratic(act Activation) Cost {
	return cost.NewQuadratic(act)
}

// Regularization
const (
	None = opt.None
	L1   = opt.L1
	L2   = opt.L2
)

// Initializers
func Gaussian(seed uint64) Initializer {
	return layer.NewGaussian(rand.NewSource(seed))
}

// Layers
func FullyConnected(out int, act Activation, init Initializer) (HiddenLayer, error) {
	l, err := layer.NewFullyConnected(out, act, init)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func Convolutional(kernels, kernelDepth, kernelWidth, kernelHeight, inputWidth, inputHeight int, act Activation, init Initializer) (HiddenLayer, error) {
	l, err := layer.NewConvolutional(kernels, kernelDepth, kernelWidth, kernelHeight, inputWidth, inputHeight, act, init)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func Output(out int, c Cost, init Initializer) (OutputLayer, error) {
	l, err := layer.NewOutput(out, c, init)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func Softmax(out int, init Initializer) (OutputLayer, error) {
	l, err := layer.NewSoftmax(out, init)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Training
func DefaultTrainConfig(seed uint64) TrainConfig {
	return net.DefaultTrainConfig(seed)
}

func OneHot(index, size int) []float64 {
	return net.OneHot(index, size)
}

func ArgMaxMatch(prediction, target []float64) bool {
	return net.ArgMaxMatch(prediction, target)
}

// Callbacks
func Logger(log *slog.Logger, test []TrainingSample) *net.Logger {
	return net.NewLogger(log, test)
}

func EarlyStopping(validation []TrainingSample, patience int, threshold float64) *net.EarlyStopping {
	return net.NewEarlyStopping(validation, patience, threshold)
}

func ModelCheckpoint(filename string, validation []TrainingSample) *net.ModelCheckpoint {
	return net.NewModelCheckpoint(filename, validation)
}

func CSVLogger(filename string, append bool, validation []TrainingSample) *net.CSVLogger {
	return net.NewCSVLogger(filename, append, validation)
}

// Data
func LoadMNIST(imagesPath, labelsPath string) ([]TrainingSample, error) {
	return mnist.Load(imagesPath, labelsPath)
}

// Network persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}

func FromSnapshot(s Snapshot) (*Network, error) {
	return net.FromSnapshot(s)
}
