package net

import (
	"log/slog"
	"math"
)

// Callback defines the interface for training callbacks. Batch indices
// restart at zero every epoch.
type Callback interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnEpoch(epoch int, n *Network)
	OnBatch(batch int, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(n *Network)       {}
func (BaseCallback) OnTrainEnd(n *Network)         {}
func (BaseCallback) OnEpoch(epoch int, n *Network) {}
func (BaseCallback) OnBatch(batch int, n *Network) {}

// Hooks adapts plain functions to Callback. Nil fields are skipped.
type Hooks struct {
	BaseCallback
	Epoch func(epoch int)
	Batch func(batch int)
}

func (h Hooks) OnEpoch(epoch int, n *Network) {
	if h.Epoch != nil {
		h.Epoch(epoch)
	}
}

func (h Hooks) OnBatch(batch int, n *Network) {
	if h.Batch != nil {
		h.Batch(batch)
	}
}

// Logger logs training progress, and accuracy on Test when it is set.
type Logger struct {
	BaseCallback
	Log       *slog.Logger
	Test      []TrainingSample
	Predicate func(prediction, target []float64) bool
	Interval  int
}

// NewLogger logs every epoch's arg-max accuracy on test.
func NewLogger(log *slog.Logger, test []TrainingSample) *Logger {
	return &Logger{Log: log, Test: test, Predicate: ArgMaxMatch, Interval: 1}
}

func logger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

func (c *Logger) OnEpoch(epoch int, n *Network) {
	if c.Interval > 1 && epoch%c.Interval != 0 {
		return
	}
	log := logger(c.Log)
	if len(c.Test) == 0 {
		log.Info("epoch complete", "epoch", epoch)
		return
	}

	correct, err := n.Validate(c.Test, c.Predicate)
	if err != nil {
		log.Error("validation failed", "epoch", epoch, "err", err)
		return
	}
	log.Info("epoch complete",
		"epoch", epoch,
		"correct", correct,
		"total", len(c.Test),
		"accuracy", float64(correct)/float64(len(c.Test)))
}

func (c *Logger) OnBatch(batch int, n *Network) {
	logger(c.Log).Debug("batch complete", "batch", batch)
}

// EarlyStopping stops training when the validation cost has stopped improving.
type EarlyStopping struct {
	BaseCallback
	Validation []TrainingSample
	Patience   int
	Threshold  float64
	// Log defaults to slog.Default().
	Log *slog.Logger

	bestCost     float64
	numBadEpochs int

	Stopped      bool
	StoppedEpoch int
	// Err holds the error that stopped training, if evaluation failed.
	Err error
}

func NewEarlyStopping(validation []TrainingSample, patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Validation: validation,
		Patience:   patience,
		Threshold:  threshold,
		bestCost:   math.Inf(1),
	}
}

func (c *EarlyStopping) OnTrainBegin(n *Network) {
	c.bestCost = math.Inf(1)
	c.numBadEpochs = 0
	c.Stopped = false
	c.Err = nil
}

func (c *EarlyStopping) OnEpoch(epoch int, n *Network) {
	cost, err := n.Cost(c.Validation)
	if err != nil {
		c.Err = err
		c.stop(epoch, n)
		return
	}

	if cost < c.bestCost-c.Threshold {
		c.bestCost = cost
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.numBadEpochs >= c.Patience {
		logger(c.Log).Info("early stopping", "epoch", epoch, "cost", cost, "patience", c.Patience)
		c.stop(epoch, n)
	}
}

func (c *EarlyStopping) stop(epoch int, n *Network) {
	c.Stopped = true
	c.StoppedEpoch = epoch
	n.Stop()
}

// ModelCheckpoint saves the model after every epoch if it's the best so far
// on the validation set.
type ModelCheckpoint struct {
	BaseCallback
	Filename   string
	Validation []TrainingSample
	Log        *slog.Logger

	bestCost float64
	// Err holds the last evaluation or save error.
	Err error
}

func NewModelCheckpoint(filename string, validation []TrainingSample) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename:   filename,
		Validation: validation,
		bestCost:   math.Inf(1),
	}
}

func (c *ModelCheckpoint) OnEpoch(epoch int, n *Network) {
	log := logger(c.Log)
	cost, err := n.Cost(c.Validation)
	if err != nil {
		c.Err = err
		log.Error("checkpoint evaluation failed", "epoch", epoch, "err", err)
		return
	}
	if cost >= c.bestCost {
		return
	}

	c.bestCost = cost
	if err := n.Save(c.Filename); err != nil {
		c.Err = err
		log.Error("failed to save checkpoint", "file", c.Filename, "err", err)
		return
	}
	log.Info("checkpoint saved", "epoch", epoch, "cost", cost, "file", c.Filename)
}
