package net

import "gonum.org/v1/gonum/floats"

// TrainingSample is a labelled input.
type TrainingSample struct {
	Input  []float64
	Output []float64
}

// OneHot returns a vector of length size with a 1 at index.
func OneHot(index, size int) []float64 {
	v := make([]float64, size)
	v[index] = 1
	return v
}

// ArgMaxMatch reports whether prediction and target peak at the same index.
func ArgMaxMatch(prediction, target []float64) bool {
	if len(prediction) == 0 || len(target) == 0 {
		return false
	}
	return floats.MaxIdx(prediction) == floats.MaxIdx(target)
}

// Split returns the first n samples and the rest. n is clamped to [0, len(samples)].
func Split(samples []TrainingSample, n int) (head, tail []TrainingSample) {
	n = max(0, min(n, len(samples)))
	return samples[:n], samples[n:]
}
