package net

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
)

const snapshotVersion = 1

// Snapshot is the serializable state of a network: its input dimension and
// every layer's shape-tagged configuration and parameters, output layer last.
type Snapshot struct {
	Version        int
	InputDimension int
	Layers         []layer.Config
}

// Snapshot captures the network's current structure and parameters.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{
		Version:        snapshotVersion,
		InputDimension: n.inputDimension,
		Layers:         make([]layer.Config, len(n.layers)),
	}
	for i, l := range n.layers {
		s.Layers[i] = l.Config()
	}
	return s
}

// FromSnapshot rebuilds a network equivalent to the one s was taken from.
func FromSnapshot(s Snapshot) (*Network, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d", ErrUnsupported, s.Version)
	}
	if len(s.Layers) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no layers", ErrInvalidConfig)
	}

	last := len(s.Layers) - 1
	hidden := make([]layer.HiddenLayer, 0, last)
	var output layer.OutputLayer
	for i, cfg := range s.Layers {
		l, err := layer.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		if i == last {
			o, ok := l.(layer.OutputLayer)
			if !ok {
				return nil, fmt.Errorf("%w: last layer %q is not an output layer", ErrInvalidConfig, cfg.Type)
			}
			output = o
			continue
		}
		h, ok := l.(layer.HiddenLayer)
		if !ok {
			return nil, fmt.Errorf("%w: layer %d %q cannot be hidden", ErrInvalidConfig, i, cfg.Type)
		}
		hidden = append(hidden, h)
	}

	n, err := New(s.InputDimension, output, hidden...)
	if err != nil {
		return nil, err
	}
	for i, l := range n.layers {
		cfg := s.Layers[i]
		if l.InputDimension() != cfg.InputDimension {
			return nil, fmt.Errorf("%w: layer %d input dimension %d, snapshot says %d",
				ErrInvalidConfig, i, l.InputDimension(), cfg.InputDimension)
		}
		if err := l.SetParameters(cfg.Params); err != nil {
			return nil, fmt.Errorf("failed to restore layer %d: %w", i, err)
		}
	}
	return n, nil
}

// Encode writes the network to an io.Writer using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(n.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return nil
}

// Decode reads a network written by Encode.
func Decode(r io.Reader) (*Network, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}
	return FromSnapshot(s)
}

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := n.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load loads a network from a file.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}
