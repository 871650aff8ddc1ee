// Package sssp implements single-source shortest paths (Bellman-Ford
// relaxation) as a client kernel of core.Graph, mirroring the original
// toolkit's float32-weighted process_edges loop.
package sssp

import (
	"context"

	"github.com/brandonshearin/geminigo/core"
	"golang.org/x/xerrors"
)

// Unreachable is the sentinel distance for a vertex never relaxed,
// matching the original's 1e9 convention.
const Unreachable float32 = 1e9

// Shared holds the backing storage every rank in one process group binds
// its own VertexArray/VertexSubset view onto. Allocate one Shared per
// run with NewShared and pass it to every rank's Run call; only rank 0
// seeds it, and Run barriers every rank before the first superstep so no
// rank reads before that seeding is visible.
type Shared struct {
	distance  []float32
	activeIn  []uint64
	activeOut []uint64
}

// NewShared allocates Shared state sized to numVertices.
func NewShared(numVertices core.VertexId) *Shared {
	return &Shared{
		distance:  core.NewSharedVertexArray[float32](numVertices),
		activeIn:  core.NewSharedVertexSubsetWords(numVertices),
		activeOut: core.NewSharedVertexSubsetWords(numVertices),
	}
}

// Distance exposes the gathered distance array after Run completes on
// every rank.
func (s *Shared) Distance() []float32 { return s.distance }

// Result is the gathered output of a completed Run.
type Result struct {
	Distance []float32
	Root     core.VertexId
	Steps    int
}

// program implements core.EdgeProgram[float32, float32]. Sparse mode
// relaxes each destination via write-min; dense mode scans every
// in-neighbor (unfiltered, per Design Note/Open Question #2) and emits
// the best candidate distance found, if any improves on the sentinel.
// activeOut is rebound by Run at the top of every step, the same way
// bfs.program does.
type program struct {
	distance  []float32
	activeOut *core.VertexSubset
}

func (p *program) SparseSignal(_ *core.Graph[float32], src core.VertexId, emit func(float32)) {
	emit(p.distance[src])
}

func (p *program) SparseSlot(_ *core.Graph[float32], _ core.VertexId, msg float32, adj []core.AdjUnit[float32]) int {
	var activated int
	for _, u := range adj {
		dst := u.Neighbor
		relaxed := msg + u.Payload
		if relaxed < p.distance[dst] && core.WriteMinFloat32(&p.distance[dst], relaxed) {
			p.activeOut.SetBit(dst)
			activated++
		}
	}
	return activated
}

func (p *program) DenseSignal(_ *core.Graph[float32], _ core.VertexId, adj []core.AdjUnit[float32]) (float32, bool) {
	best := Unreachable
	for _, u := range adj {
		relaxed := p.distance[u.Neighbor] + u.Payload
		if relaxed < best {
			best = relaxed
		}
	}
	if best >= Unreachable {
		return 0, false
	}
	return best, true
}

func (p *program) DenseSlot(_ *core.Graph[float32], dst core.VertexId, msg float32) int {
	if msg < p.distance[dst] {
		core.WriteMinFloat32(&p.distance[dst], msg)
		p.activeOut.SetBit(dst)
		return 1
	}
	return 0
}

// DenseFiltersByActiveIn stays false: SSSP relaxes every in-edge every
// dense pass rather than only ones whose source is in active_in, per
// Design Note/Open Question #2 (the original leaves the corresponding
// filter commented out, since a source's distance can still improve a
// destination after the source stops being newly-active).
func (p *program) DenseFiltersByActiveIn() bool { return false }

// Run drives SSSP from root to completion on g (which must already be
// Loaded). shared must be the same *Shared instance passed to every
// other rank in g's process group. Only the root partition (rank 0)
// seeds shared state; every rank barriers before the first superstep so
// no rank starts scanning before that seed is visible.
func Run(ctx context.Context, g *core.Graph[float32], root core.VertexId, shared *Shared) (*Result, error) {
	if root >= g.NumVertices() {
		return nil, xerrors.Errorf("sssp: root %d out of range [0,%d)", root, g.NumVertices())
	}

	local := g.LocalPartition()
	activeIn := core.BindSharedVertexSubset(shared.activeIn, g.NumVertices(), local)
	activeOut := core.BindSharedVertexSubset(shared.activeOut, g.NumVertices(), local)

	if g.PartitionId() == 0 {
		distArr := core.BindSharedVertexArray[float32](g, shared.distance)
		distArr.Fill(Unreachable)
		shared.distance[root] = 0
		activeIn.SetBit(root)
	}
	g.ProcessGroup().Barrier()

	prog := &program{distance: shared.distance}

	var activeVertices core.VertexId = 1
	steps := 0
	for activeVertices > 0 {
		activeOut.Clear()
		prog.activeOut = activeOut

		n, err := core.ProcessEdges[float32, float32](ctx, g, prog, activeIn, nil)
		if err != nil {
			return nil, xerrors.Errorf("sssp: process_edges step %d: %w", steps, err)
		}
		activeVertices = n

		activeIn, activeOut = activeOut, activeIn
		steps++
	}

	return &Result{Distance: shared.distance, Root: root, Steps: steps}, nil
}
