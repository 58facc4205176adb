package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/nndl"
)

func main() {
	if err := run(os.Stdout, os.TempDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run trains the network, prints progress to w and round-trips it through
// a file in dir.
func run(w io.Writer, dir string) error {
	fmt.Fprintln(w, "=== XOR Training Example ===")

	// 2 inputs -> 3 hidden -> 1 output. XOR is not linearly separable, so
	// the hidden layer is required.
	fmt.Fprintln(w, "Network architecture: 2-3-1")
	fmt.Fprintln(w, "Activation functions: Tanh (hidden), Sigmoid (output)")
	fmt.Fprintln(w, "Cost function: cross-entropy")
	fmt.Fprintln(w, "Optimizer: SGD, full batch, learning rate 2")

	init := nndl.Gaussian(42)
	hidden, err := nndl.FullyConnected(3, nndl.Tanh, init)
	if err != nil {
		return err
	}
	output, err := nndl.Output(1, nndl.CrossEntropy, init)
	if err != nil {
		return err
	}
	network, err := nndl.New(2, output, hidden)
	if err != nil {
		return err
	}

	data := []nndl.TrainingSample{
		{Input: []float64{0, 0}, Output: []float64{0}},
		{Input: []float64{0, 1}, Output: []float64{1}},
		{Input: []float64{1, 0}, Output: []float64{1}},
		{Input: []float64{1, 1}, Output: []float64{0}},
	}

	cfg := nndl.DefaultTrainConfig(42)
	cfg.Epochs, cfg.MiniBatchSize, cfg.LearningRate = 2000, len(data), 2
	progress := nndl.Hooks{Epoch: func(epoch int) {
		if epoch%200 != 0 {
			return
		}
		if c, err := network.Cost(data); err == nil {
			fmt.Fprintf(w, "Epoch %d, Cost: %.6f\n", epoch, c)
		}
	}}
	if err := network.SGD(data, cfg, progress); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nTesting trained network:")
	for _, s := range data {
		pred, err := network.Feedforward(s.Input)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Input: %v, Predicted: %.4f, Target: %v\n", s.Input, pred[0], s.Output[0])
	}

	filename := filepath.Join(dir, "xor_network.gob")
	fmt.Fprintf(w, "\nSaving network to %s...\n", filename)
	if err := network.Save(filename); err != nil {
		return err
	}
	loaded, err := nndl.Load(filename)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\nVerifying loaded network:")
	allMatch := true
	for _, s := range data {
		original, err := network.Feedforward(s.Input)
		if err != nil {
			return err
		}
		restored, err := loaded.Feedforward(s.Input)
		if err != nil {
			return err
		}
		match := "OK"
		if math.Abs(original[0]-restored[0]) > 1e-12 {
			match = "MISMATCH"
			allMatch = false
		}
		fmt.Fprintf(w, "Input: %v, Original: %.4f, Loaded: %.4f [%s]\n", s.Input, original[0], restored[0], match)
	}

	if !allMatch {
		return fmt.Errorf("predictions differ between original and loaded network")
	}
	fmt.Fprintln(w, "\nSUCCESS: All predictions match between original and loaded network!")
	return nil
}
