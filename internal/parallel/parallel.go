// Package parallel provides a bounded parallel map used for per-sample work.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers int // Maximum concurrent calls; <= 0 means runtime.NumCPU().
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Map calls f(i) for i in [0, n) on at most cfg.Workers goroutines and
// returns the first error. No new calls start once one has failed.
// f must only write state owned by index i.
func Map(n int, f func(i int) error, cfg Config) error {
	workers := cfg.workers()
	if workers == 1 || n <= 1 {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			return f(i)
		})
	}
	return g.Wait()
}
