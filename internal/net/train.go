package net

import (
	"fmt"
	"slices"

	"golang.org/x/exp/rand"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/opt"
)

// TrainConfig holds the SGD hyperparameters.
type TrainConfig struct {
	Epochs             int
	MiniBatchSize      int
	LearningRate       float64
	Regularization     opt.Regularization
	RegularizationRate float64

	// Rand shuffles the training set each epoch.
	Rand *rand.Rand

	// Workers bounds the per-batch fan-out; <= 0 means one per CPU.
	Workers int
}

// DefaultTrainConfig returns the classic MNIST settings: 30 epochs of
// batches of 10 at learning rate 3, unregularized.
func DefaultTrainConfig(seed uint64) TrainConfig {
	return TrainConfig{
		Epochs:        30,
		MiniBatchSize: 10,
		LearningRate:  3,
		Rand:          rand.New(rand.NewSource(seed)),
	}
}

// Validate validates the training configuration.
func (c TrainConfig) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive", ErrInvalidConfig)
	}
	if c.MiniBatchSize <= 0 {
		return fmt.Errorf("%w: mini-batch size must be positive", ErrInvalidConfig)
	}
	if c.Rand == nil {
		return fmt.Errorf("%w: missing random source", ErrInvalidConfig)
	}
	if err := c.optimizer(1).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c TrainConfig) optimizer(trainingSetSize int) opt.SGD {
	return opt.SGD{
		LearningRate:       c.LearningRate,
		Regularization:     c.Regularization,
		RegularizationRate: c.RegularizationRate,
		TrainingSetSize:    trainingSetSize,
	}
}

// SGD trains the network with mini-batch stochastic gradient descent.
//
// Each epoch shuffles a copy of data and walks it in contiguous batches of
// cfg.MiniBatchSize; a short final batch is kept and averaged over its own
// length. Callbacks run after every batch and every epoch. The first error
// aborts training.
func (n *Network) SGD(data []TrainingSample, cfg TrainConfig, callbacks ...Callback) error {
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	optimizer := cfg.optimizer(len(data))
	shuffled := slices.Clone(data)
	n.stopped.Store(false)

	for _, cb := range callbacks {
		cb.OnTrainBegin(n)
	}
	defer func() {
		for _, cb := range callbacks {
			cb.OnTrainEnd(n)
		}
	}()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		cfg.Rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		for batch, start := 0, 0; start < len(shuffled); batch, start = batch+1, start+cfg.MiniBatchSize {
			end := min(start+cfg.MiniBatchSize, len(shuffled))
			if err := n.runMiniBatch(shuffled[start:end], optimizer, cfg.Workers); err != nil {
				return fmt.Errorf("epoch %d, batch %d: %w", epoch, batch, err)
			}
			for _, cb := range callbacks {
				cb.OnBatch(batch, n)
			}
		}

		for _, cb := range callbacks {
			cb.OnEpoch(epoch, n)
		}
		if n.stopped.Load() {
			break
		}
	}
	return nil
}

func (n *Network) runMiniBatch(batch []TrainingSample, optimizer opt.Optimizer, workers int) error {
	grad, err := n.BatchGradient(batch, workers)
	if err != nil {
		return err
	}
	for i, l := range n.layers {
		if err := optimizer.Step(l, grad[i], len(batch)); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
