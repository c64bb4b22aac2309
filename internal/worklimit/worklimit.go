// Package worklimit bounds CPU-bound fan-out to a single process-wide
// budget. The tuner's per-config search and the trainer's per-leaf fit are
// nested fan-outs; gating only the outer loop at GOMAXPROCS would still let
// each of those goroutines spawn its own GOMAXPROCS-wide inner fan-out,
// oversubscribing the CPU by roughly GOMAXPROCS^2 runnable goroutines. Every
// CPU-bound unit of work, regardless of which layer it's issued from,
// acquires a slot from the same semaphore instead.
package worklimit

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

var sem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

// Acquire blocks until a slot is free or ctx is done.
func Acquire(ctx context.Context) error { return sem.Acquire(ctx, 1) }

// Release returns a slot acquired via Acquire.
func Release() { sem.Release(1) }
