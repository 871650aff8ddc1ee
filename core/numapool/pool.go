// Package numapool provides the pinned worker pool and socket-aware
// vertex chunking used by every parallel loop in the engine: the binary
// edge-record scan during Load, process_edges's per-sub-partition scans,
// and process_vertices's parallel map/reduce.
//
// Go has no portable NUMA-pinning API, so "pinned" here only means that
// each call splits its range into Sockets fixed chunks, each run on its
// own goroutine; there is no OS-level CPU affinity, and no long-lived
// worker goroutines are kept between calls.
package numapool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs parallel loops over Sockets chunks, following the teacher's
// startWorkers/stepWorker split: a fixed number of workers, one chunk of
// work per worker, fanned out and joined with an errgroup so the first
// failure cancels the rest.
type Pool struct {
	Sockets int
}

// New returns a Pool sized to sockets sub-partitions (NUMA sockets).
// sockets must be >= 1.
func New(sockets int) *Pool {
	if sockets < 1 {
		sockets = 1
	}
	return &Pool{Sockets: sockets}
}

// ChunkRange splits [begin, end) into p.Sockets contiguous, near-equal
// ranges and returns the i-th one.
func (p *Pool) ChunkRange(begin, end uint64, i int) (uint64, uint64) {
	span := end - begin
	base := span / uint64(p.Sockets)
	rem := span % uint64(p.Sockets)

	lo := begin
	for j := 0; j < i; j++ {
		lo += base
		if uint64(j) < rem {
			lo++
		}
	}
	hi := lo + base
	if uint64(i) < rem {
		hi++
	}
	return lo, hi
}

// ForEachChunk runs fn once per socket chunk of [begin, end) concurrently
// and waits for all of them, returning the first error (if any), with
// the remaining chunks' contexts canceled once one fails.
func (p *Pool) ForEachChunk(ctx context.Context, begin, end uint64, fn func(ctx context.Context, socket int, lo, hi uint64) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < p.Sockets; s++ {
		s := s
		lo, hi := p.ChunkRange(begin, end, s)
		g.Go(func() error {
			return fn(gctx, s, lo, hi)
		})
	}
	return g.Wait()
}
