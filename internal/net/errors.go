package net

import (
	"errors"

	"github.com/HadiSalehWeb/NeuralNetworksAndDeepLearning/internal/layer"
)

// Errors returned by the network. The layer errors are re-exported so
// callers need only this package for errors.Is.
var (
	ErrInvalidConfig        = layer.ErrInvalidConfig
	ErrDimensionMismatch    = layer.ErrDimensionMismatch
	ErrNumericalInstability = layer.ErrNumericalInstability
	ErrUnsupported          = layer.ErrUnsupported

	// ErrEmptyDataset reports an operation over zero samples.
	ErrEmptyDataset = errors.New("empty dataset")
)
