package core

import (
	"context"
	"sort"
	"sync"

	"github.com/brandonshearin/geminigo/core/procgroup"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

const tagSparseRing = 0x5350 // "SP"

// ownerOf returns the partition id owning vertex v via binary search over
// the (sorted, contiguous) partition table built at Load time.
func (g *Graph[E]) ownerOf(v VertexId) int {
	i := sort.Search(len(g.partitions), func(i int) bool { return g.partitions[i].End > v })
	return i
}

// ProcessEdges executes one bulk-synchronous iteration: it picks
// push (sparse) or pull (dense) mode based on the density of activeIn,
// drives the ring of partitions (sparse mode) or a local full-adjacency
// pass (dense mode, see processEdgesDense on why this reference engine
// does not need to ship per-step ring messages there), and
// returns the global sum of activation counts.
//
// visited is an optional short-circuit mask for dense mode (nil means
// "no short-circuit"); BFS supplies one, SSSP does not, matching Design
// Note #4.
func ProcessEdges[E EdgePayload, M Msg](ctx context.Context, g *Graph[E], prog EdgeProgram[E, M], activeIn *VertexSubset, visited *VertexSubset) (VertexId, error) {
	activeCount := activeIn.Count(ScopeLocal)
	activeEdges := sumOutDegree(g, activeIn)

	globalActive := g.pg.AllReduceUint64(uint64(activeCount), procgroup.Sum)
	if globalActive == 0 {
		return 0, nil
	}
	globalActiveEdges := g.pg.AllReduceUint64(activeEdges, procgroup.Sum)
	globalTotalEdges := g.pg.AllReduceUint64(uint64(len(g.store.outAdj)), procgroup.Sum)

	dense := globalActiveEdges*uint64(g.thresh) >= globalTotalEdges

	if dense {
		return processEdgesDense[E, M](ctx, g, prog, activeIn, visited)
	}
	return processEdgesSparse[E, M](ctx, g, prog, activeIn)
}

func sumOutDegree[E EdgePayload](g *Graph[E], activeIn *VertexSubset) uint64 {
	local := g.localPartition()
	var total uint64
	for v := local.Begin; v < local.End; v++ {
		if activeIn.GetBit(v) {
			total += uint64(len(g.store.OutAdj(v)))
		}
	}
	return total
}

// processEdgesSparse implements push mode: local active sources are
// scanned in parallel, their signal output is bucketed per destination
// partition using the source's own (locally-held) outgoing adjacency,
// shipped around the ring, and applied by the owning partition's slot.
func processEdgesSparse[E EdgePayload, M Msg](ctx context.Context, g *Graph[E], prog EdgeProgram[E, M], activeIn *VertexSubset) (VertexId, error) {
	local := g.localPartition()
	numParts := g.pg.Size()
	rank := g.pg.Rank()

	outgoing := make([][]sparseEntry[E, M], numParts)
	var outMu sync.Mutex

	err := g.pool.ForEachChunk(ctx, local.Begin, local.End, func(_ context.Context, _ int, lo, hi uint64) error {
		localOut := make([][]sparseEntry[E, M], numParts)
		for v := lo; v < hi; v++ {
			if !activeIn.GetBit(v) {
				continue
			}
			adj := g.store.OutAdj(v)
			byPart := make(map[int][]AdjUnit[E])
			for _, u := range adj {
				p := g.ownerOf(u.Neighbor)
				byPart[p] = append(byPart[p], u)
			}
			if len(byPart) == 0 {
				continue
			}
			prog.SparseSignal(g, v, func(msg M) {
				for p, filtered := range byPart {
					localOut[p] = append(localOut[p], sparseEntry[E, M]{src: v, msg: msg, adj: filtered})
				}
			})
		}
		outMu.Lock()
		for p := range outgoing {
			outgoing[p] = append(outgoing[p], localOut[p]...)
		}
		outMu.Unlock()
		return nil
	})
	if err != nil {
		return 0, err
	}

	// One communicator goroutine ships this rank's outgoing buffers
	// around the ring while a second drains the matching incoming ones;
	// worker goroutines above never touch the process group directly
	// (Design Notes §9: "a dedicated communicator task ... rather than
	// interleaving sends directly from worker threads").
	incoming := make([][]byte, numParts)
	var wg sync.WaitGroup
	var commErr *multierror.Error
	var commErrMu sync.Mutex
	recordErr := func(err error) {
		commErrMu.Lock()
		commErr = multierror.Append(commErr, err)
		commErrMu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		for step := 0; step < numParts; step++ {
			target := (rank + step) % numParts
			payload := encodeSparseBatch(outgoing[target])
			if err := g.pg.SendBytes(target, tagSparseRing, payload); err != nil {
				recordErr(xerrors.Errorf("process_edges: send to partition %d: %w", target, err))
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for step := 0; step < numParts; step++ {
			source := ((rank-step)%numParts + numParts) % numParts
			payload, err := g.pg.RecvBytes(source, tagSparseRing)
			if err != nil {
				recordErr(xerrors.Errorf("process_edges: recv from partition %d: %w", source, err))
				return
			}
			incoming[source] = payload
		}
	}()
	wg.Wait()
	if commErr.ErrorOrNil() != nil {
		return 0, commErr.ErrorOrNil()
	}

	var total uint64
	for _, payload := range incoming {
		for _, entry := range decodeSparseBatch[E, M](payload) {
			total += uint64(prog.SparseSlot(g, entry.src, entry.msg, entry.adj))
		}
	}

	return g.pg.AllReduceUint64(total, procgroup.Sum), nil
}

// processEdgesDense implements pull mode. Every local destination's
// signal reads whatever remote source state it needs directly off the
// shared VertexArray backing the kernel's distance/parent array (see
// NewSharedVertexArray); no per-step ring messages are required because
// the reference ProcessGroup keeps that memory co-resident. A real
// multi-machine ProcessGroup would need to replicate the relevant source
// partition's vertex-array slice before each ring step instead.
func processEdgesDense[E EdgePayload, M Msg](ctx context.Context, g *Graph[E], prog EdgeProgram[E, M], activeIn, visited *VertexSubset) (VertexId, error) {
	local := g.localPartition()
	filterByActive := prog.DenseFiltersByActiveIn()

	var total uint64
	err := g.pool.ForEachChunk(ctx, local.Begin, local.End, func(_ context.Context, _ int, lo, hi uint64) error {
		var sum uint64
		for v := lo; v < hi; v++ {
			if visited != nil && visited.GetBit(v) {
				continue
			}
			adj := g.store.InAdj(v)
			if filterByActive {
				filtered := adj[:0:0]
				for _, u := range adj {
					if activeIn.GetBit(u.Neighbor) {
						filtered = append(filtered, u)
					}
				}
				adj = filtered
			}
			msg, ok := prog.DenseSignal(g, v, adj)
			if !ok {
				continue
			}
			sum += uint64(prog.DenseSlot(g, v, msg))
		}
		addUint64(&total, sum)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return g.pg.AllReduceUint64(total, procgroup.Sum), nil
}
