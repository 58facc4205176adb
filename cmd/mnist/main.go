// mnist trains a feed-forward network on the MNIST digits.
//
// Usage:
//
//	mnist -train-images=train-images-idx3-ubyte.gz -train-labels=train-labels-idx1-ubyte.gz \
//	      -test-images=t10k-images-idx3-ubyte.gz -test-labels=t10k-labels-idx1-ubyte.gz \
//	      -hidden=30 -epochs=30 -batch=10 -eta=3
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/activations"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/cost"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/mnist"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/net"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/opt"
)

type options struct {
	trainImages, trainLabels string
	testImages, testLabels   string
	trainCSV, testCSV        string
	width, height            int

	hidden     string
	activation string
	conv       int
	kernel     int
	softmax    bool
	costName   string

	epochs    int
	batch     int
	eta       float64
	reg       opt.Regularization
	lambda    float64
	seed      uint64
	workers   int
	trainSize int
	patience  int

	load       string
	out        string
	checkpoint string
	csvLog     string
	verbose    bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("mnist", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&o.trainImages, "train-images", "", "IDX training images (.gz allowed)")
	fs.StringVar(&o.trainLabels, "train-labels", "", "IDX training labels (.gz allowed)")
	fs.StringVar(&o.testImages, "test-images", "", "IDX test images")
	fs.StringVar(&o.testLabels, "test-labels", "", "IDX test labels")
	fs.StringVar(&o.trainCSV, "train-csv", "", "CSV training data with header (label,pixels...), instead of IDX")
	fs.StringVar(&o.testCSV, "test-csv", "", "CSV test data with header")
	fs.IntVar(&o.width, "width", 28, "image width, used with -conv and CSV input")
	fs.IntVar(&o.height, "height", 28, "image height, used with -conv and CSV input")

	fs.StringVar(&o.hidden, "hidden", "30", "hidden layer sizes, e.g. \"100 30\" or \"100,30\"")
	fs.StringVar(&o.activation, "act", "sigmoid", "hidden activation: sigmoid, tanh, relu")
	fs.IntVar(&o.conv, "conv", 0, "number of kernels in a leading convolutional layer (0 disables)")
	fs.IntVar(&o.kernel, "kernel", 5, "convolution kernel width and height")
	fs.BoolVar(&o.softmax, "softmax", false, "use a softmax output layer with log-likelihood cost")
	fs.StringVar(&o.costName, "cost", "crossentropy", "sigmoid output cost: crossentropy, quadratic")

	fs.IntVar(&o.epochs, "epochs", 30, "number of training epochs")
	fs.IntVar(&o.batch, "batch", 10, "mini-batch size")
	fs.Float64Var(&o.eta, "eta", 3, "learning rate")
	fs.Var(&o.reg, "reg", "regularization: none, l1, l2")
	fs.Float64Var(&o.lambda, "lambda", 0, "regularization rate")
	fs.Uint64Var(&o.seed, "seed", 42, "random seed for initialization and shuffling")
	fs.IntVar(&o.workers, "workers", 0, "backpropagation workers per batch (0 = one per CPU)")
	fs.IntVar(&o.trainSize, "train-size", 50000, "training samples kept; the rest validate (0 keeps all)")
	fs.IntVar(&o.patience, "patience", 0, "stop after this many epochs without validation improvement (0 disables)")

	fs.StringVar(&o.load, "load", "", "continue training a saved network")
	fs.StringVar(&o.out, "out", "", "save the trained network here")
	fs.StringVar(&o.checkpoint, "checkpoint", "", "save the best network on the validation set here")
	fs.StringVar(&o.csvLog, "csv", "", "append per-epoch metrics to this CSV file")
	fs.BoolVar(&o.verbose, "v", false, "log every mini-batch")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// parseHidden parses a list of layer sizes separated by spaces or commas.
func parseHidden(s string) ([]int, error) {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("hidden layer %d: %w", i, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("hidden layer %d: size %d must be positive", i, n)
		}
		sizes[i] = n
	}
	return sizes, nil
}

// buildNetwork assembles [conv] -> hidden... -> output for inputs of
// width*height pixels.
func buildNetwork(o *options) (*net.Network, error) {
	sizes, err := parseHidden(o.hidden)
	if err != nil {
		return nil, err
	}
	act, err := activations.Lookup(o.activation)
	if err != nil {
		return nil, err
	}
	init := layer.NewGaussian(rand.NewSource(o.seed))

	var hidden []layer.HiddenLayer
	if o.conv > 0 {
		conv, err := layer.NewConvolutional(o.conv, 1, o.kernel, o.kernel, o.width, o.height, act, init)
		if err != nil {
			return nil, err
		}
		hidden = append(hidden, conv)
	}
	for _, size := range sizes {
		fc, err := layer.NewFullyConnected(size, act, init)
		if err != nil {
			return nil, err
		}
		hidden = append(hidden, fc)
	}

	var output layer.OutputLayer
	if o.softmax {
		if output, err = layer.NewSoftmax(mnist.Classes, init); err != nil {
			return nil, err
		}
	} else {
		fn, err := cost.Lookup(o.costName, activations.Sigmoid{})
		if err != nil {
			return nil, err
		}
		c, ok := fn.(cost.Activated)
		if !ok {
			return nil, fmt.Errorf("cost %q needs a softmax output", o.costName)
		}
		if output, err = layer.NewOutput(mnist.Classes, c, init); err != nil {
			return nil, err
		}
	}

	return net.New(o.width*o.height, output, hidden...)
}

func loadData(images, labels, csvPath string) ([]net.TrainingSample, error) {
	switch {
	case csvPath != "":
		return mnist.LoadCSV(csvPath, true)
	case images != "" && labels != "":
		return mnist.Load(images, labels)
	case images == "" && labels == "":
		return nil, nil
	}
	return nil, errors.New("images and labels must be given together")
}

func run(args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	train, err := loadData(o.trainImages, o.trainLabels, o.trainCSV)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}
	if len(train) == 0 {
		return errors.New("no training data: set -train-images and -train-labels, or -train-csv")
	}
	test, err := loadData(o.testImages, o.testLabels, o.testCSV)
	if err != nil {
		return fmt.Errorf("failed to load test data: %w", err)
	}

	var validation []net.TrainingSample
	if o.trainSize > 0 {
		train, validation = net.Split(train, o.trainSize)
	}
	log.Info("data loaded", "train", len(train), "validation", len(validation), "test", len(test))

	var n *net.Network
	if o.load != "" {
		if n, err = net.Load(o.load); err != nil {
			return err
		}
		log.Info("network loaded", "file", o.load, "layers", n.Depth())
	} else if n, err = buildNetwork(o); err != nil {
		return fmt.Errorf("failed to build network: %w", err)
	}
	if n.InputDimension() != len(train[0].Input) {
		return fmt.Errorf("network takes %d inputs, data has %d", n.InputDimension(), len(train[0].Input))
	}

	report := test
	if len(report) == 0 {
		report = validation
	}
	callbacks := []net.Callback{net.NewLogger(log, report)}
	if o.patience > 0 && len(validation) > 0 {
		es := net.NewEarlyStopping(validation, o.patience, 0)
		es.Log = log
		callbacks = append(callbacks, es)
	}
	if o.checkpoint != "" && len(validation) > 0 {
		mc := net.NewModelCheckpoint(o.checkpoint, validation)
		mc.Log = log
		callbacks = append(callbacks, mc)
	}
	if o.csvLog != "" {
		callbacks = append(callbacks, net.NewCSVLogger(o.csvLog, true, report))
	}

	cfg := net.TrainConfig{
		Epochs:             o.epochs,
		MiniBatchSize:      o.batch,
		LearningRate:       o.eta,
		Regularization:     o.reg,
		RegularizationRate: o.lambda,
		Rand:               rand.New(rand.NewSource(o.seed)),
		Workers:            o.workers,
	}
	log.Info("training",
		"epochs", cfg.Epochs,
		"batch", cfg.MiniBatchSize,
		"eta", cfg.LearningRate,
		"reg", cfg.Regularization,
		"lambda", cfg.RegularizationRate)
	if err := n.SGD(train, cfg, callbacks...); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if o.out != "" {
		if err := n.Save(o.out); err != nil {
			return err
		}
		log.Info("network saved", "file", o.out)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
