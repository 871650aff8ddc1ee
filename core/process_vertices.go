package core

import (
	"context"
	"sync/atomic"

	"github.com/brandonshearin/geminigo/core/procgroup"
)

// VertexMapFunc is applied to each vertex process_vertices visits; its
// return value is summed into the reduction.
type VertexMapFunc func(v VertexId) int

// ProcessVertices runs fn over every vertex in the local partition,
// optionally filtered by active (nil means "all vertices"), in parallel
// across sub-partitions, then all-reduces the sum of fn's return values
// across the whole process group. No inter-process communication occurs
// besides that terminal reduction.
func (g *Graph[E]) ProcessVertices(ctx context.Context, fn VertexMapFunc, active *VertexSubset) (VertexId, error) {
	local := g.localPartition()

	var total uint64
	err := g.pool.ForEachChunk(ctx, local.Begin, local.End, func(_ context.Context, _ int, lo, hi uint64) error {
		var sum uint64
		for v := lo; v < hi; v++ {
			if active != nil && !active.GetBit(v) {
				continue
			}
			sum += uint64(fn(v))
		}
		addUint64(&total, sum)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return g.pg.AllReduceUint64(total, procgroup.Sum), nil
}

// addUint64 folds a per-chunk partial sum into total under a CAS loop,
// since multiple sub-partition goroutines finish concurrently.
func addUint64(total *uint64, delta uint64) {
	for {
		old := atomic.LoadUint64(total)
		if CASUint64(total, old, old+delta) {
			return
		}
	}
}
