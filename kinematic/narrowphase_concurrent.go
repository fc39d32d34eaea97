// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/scene"
)

// NarrowPhaseConcurrent is NarrowPhase's parallel counterpart: one
// worker goroutine per bin, bounded to workers concurrently in flight
// (runtime.NumCPU() if workers <= 0), following the one-goroutine-per-
// row-bounded-by-a-semaphore shape of eg/rt.go's ray tracer worker pool.
// Bins never share a pair (the owner-bin dedup rule in evaluatePair
// ensures a pair is only ever emitted from one bin), so each worker
// writes to its own slot and no further synchronization is needed;
// results are concatenated in ascending bin order to match NarrowPhase's
// output exactly.
func NarrowPhaseConcurrent(ctx context.Context, prod *Production, policy *family.Policy, owners []scene.Owner, workers int) ([]contact.Pair, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	bins := activeBins(prod)
	results := make([][]contact.Pair, len(bins))

	sem := semaphore.NewWeighted(int64(workers))
	for i, bin := range bins {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		i, bin := i, bin
		go func() {
			defer sem.Release(1)
			results[i] = narrowPhaseBin(prod, bin, policy, owners)
		}()
	}
	// Acquiring the full weight blocks until every in-flight worker has
	// released, i.e. until all of them have finished.
	if err := sem.Acquire(ctx, int64(workers)); err != nil {
		return nil, err
	}

	var out []contact.Pair
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
