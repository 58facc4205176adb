package net

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// CSVLogger logs training progress to a CSV file, one row per epoch.
// The validation columns are empty when Validation is nil.
type CSVLogger struct {
	BaseCallback
	Filename   string
	Append     bool
	Validation []TrainingSample

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool, validation []TrainingSample) *CSVLogger {
	return &CSVLogger{
		Filename:   filename,
		Append:     append,
		Validation: validation,
	}
}

func (c *CSVLogger) OnTrainBegin(n *Network) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		slog.Error("CSVLogger: failed to open file", "file", c.Filename, "err", err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.writer.Write([]string{"epoch", "cost", "accuracy", "time_seconds"})
		c.writer.Flush()
	}
}

func (c *CSVLogger) OnEpoch(epoch int, n *Network) {
	if c.writer == nil {
		return
	}

	var cost, accuracy string
	if len(c.Validation) > 0 {
		if v, err := n.Cost(c.Validation); err == nil {
			cost = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if correct, err := n.Validate(c.Validation, ArgMaxMatch); err == nil {
			accuracy = strconv.FormatFloat(float64(correct)/float64(len(c.Validation)), 'f', 4, 64)
		}
	}

	record := []string{
		strconv.Itoa(epoch),
		cost,
		accuracy,
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	}
	if err := c.writer.Write(record); err != nil {
		slog.Error("CSVLogger: failed to write record", "err", err)
	}
	c.writer.Flush()
}

func (c *CSVLogger) OnTrainEnd(n *Network) {
	if c.file != nil {
		c.writer.Flush()
		c.file.Close()
		c.file = nil
		c.writer = nil
	}
}
