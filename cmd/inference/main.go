// inference evaluates a saved network on an MNIST test set.
//
// Usage:
//
//	inference -model=net.gob -images=t10k-images-idx3-ubyte.gz -labels=t10k-labels-idx1-ubyte.gz
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/mnist"
	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/net"
)

// report holds per-class results on a labelled set.
type report struct {
	Total, Correct int
	// Cost is the mean cost under the network's own cost function.
	Cost float64
	// Confusion[target][predicted]
	Confusion [mnist.Classes][mnist.Classes]int
}

func (r *report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

func evaluate(n *net.Network, samples []net.TrainingSample) (*report, error) {
	r := &report{}
	for i, s := range samples {
		a, err := n.Feedforward(s.Input)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if len(a) != mnist.Classes {
			return nil, fmt.Errorf("network has %d outputs, want %d", len(a), mnist.Classes)
		}
		predicted, target := floats.MaxIdx(a), floats.MaxIdx(s.Output)
		r.Confusion[target][predicted]++
		r.Total++
		if predicted == target {
			r.Correct++
		}
	}
	if len(samples) > 0 {
		c, err := n.Cost(samples)
		if err != nil {
			return nil, err
		}
		r.Cost = c
	}
	return r, nil
}

// describe prints one line per layer.
func describe(w io.Writer, n *net.Network) {
	fmt.Fprintf(w, "Network: %d inputs, %d layers\n", n.InputDimension(), n.Depth())
	for i, l := range n.Layers() {
		shape := fmt.Sprintf("%d -> %d", l.InputDimension(), l.OutputDimension())
		switch l := l.(type) {
		case *layer.FullyConnected:
			fmt.Fprintf(w, "  %d: fully connected %s, %v\n", i, shape, l.Activation())
		case *layer.Convolutional:
			fmt.Fprintf(w, "  %d: convolutional %s, %d kernels, %v\n", i, shape, l.OutputDepth(), l.Activation())
		case *layer.Output:
			fmt.Fprintf(w, "  %d: output %s, cost %v\n", i, shape, l.CostFunction())
		case *layer.Softmax:
			fmt.Fprintf(w, "  %d: softmax %s, cost %v\n", i, shape, l.CostFunction())
		default:
			fmt.Fprintf(w, "  %d: %T %s\n", i, l, shape)
		}
	}
	fmt.Fprintln(w)
}

func (r *report) print(w io.Writer) {
	fmt.Fprintf(w, "Accuracy: %d/%d (%.2f%%)\n", r.Correct, r.Total, 100*r.Accuracy())
	fmt.Fprintf(w, "Cost: %.6f\n\n", r.Cost)
	fmt.Fprintln(w, "Confusion matrix (rows: target, columns: predicted)")
	fmt.Fprint(w, "     ")
	for p := 0; p < mnist.Classes; p++ {
		fmt.Fprintf(w, "%6d", p)
	}
	fmt.Fprintln(w)
	for t, row := range r.Confusion {
		fmt.Fprintf(w, "%4d ", t)
		for _, c := range row {
			fmt.Fprintf(w, "%6d", c)
		}
		fmt.Fprintln(w)
	}
}

func main() {
	model := flag.String("model", "", "saved network")
	images := flag.String("images", "", "IDX test images (.gz allowed)")
	labels := flag.String("labels", "", "IDX test labels (.gz allowed)")
	flag.Parse()

	if *model == "" || *images == "" || *labels == "" {
		flag.Usage()
		os.Exit(2)
	}

	n, err := net.Load(*model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading network: %v\n", err)
		os.Exit(1)
	}
	samples, err := mnist.Load(*images, *labels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}

	describe(os.Stdout, n)
	r, err := evaluate(n, samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	r.print(os.Stdout)
}
