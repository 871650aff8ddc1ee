// Package bfs implements breadth-first search as a client kernel of
// core.Graph: a parent-pointer EdgeProgram driven by core.ProcessEdges /
// core.ProcessVertices until no vertex activates.
package bfs

import (
	"context"

	"github.com/brandonshearin/geminigo/core"
	"golang.org/x/xerrors"
)

// Unreached is the all-ones VertexId. Run does not use it: the sentinel
// parent it leaves on a vertex BFS never found is g.NumVertices(), which
// Result.Found checks for.
const Unreached = ^core.VertexId(0)

// Shared holds the backing storage every rank in one process group binds
// its own VertexArray/VertexSubset view onto, so dense-mode signal
// callbacks can read any partition's state directly (see
// core.NewSharedVertexArray's doc comment). Allocate one Shared per run
// with NewShared and pass it to every rank's Run call; only rank 0 seeds
// it, and Run barriers every rank before the first superstep so no rank
// reads before that seeding is visible.
type Shared struct {
	parent    []core.VertexId
	visited   []uint64
	activeIn  []uint64
	activeOut []uint64
}

// NewShared allocates Shared state sized to numVertices.
func NewShared(numVertices core.VertexId) *Shared {
	return &Shared{
		parent:    core.NewSharedVertexArray[core.VertexId](numVertices),
		visited:   core.NewSharedVertexSubsetWords(numVertices),
		activeIn:  core.NewSharedVertexSubsetWords(numVertices),
		activeOut: core.NewSharedVertexSubsetWords(numVertices),
	}
}

// Parent exposes the gathered parent array after Run completes on every
// rank (valid to read once every rank has returned from Run).
func (s *Shared) Parent() []core.VertexId { return s.parent }

// Result is the gathered output of a completed Run: Parent[v] is v's BFS
// parent (graph.NumVertices() if v was never visited), and Root is the
// source vertex actually used.
type Result struct {
	Parent []core.VertexId
	Root   core.VertexId
	Steps  int
}

// program implements core.EdgeProgram[core.Empty, core.VertexId]. Sparse
// mode claims an unclaimed destination's parent slot via CAS; dense mode
// looks for any active in-neighbor and, if found, claims the same way.
// activeOut is rebound by Run at the top of every step, mirroring how
// the original's per-iteration lambdas capture whichever VertexSubset
// currently plays the active_out role after the previous swap.
type program struct {
	parent    []core.VertexId
	sentinel  core.VertexId
	activeOut *core.VertexSubset
}

func (p *program) SparseSignal(_ *core.Graph[core.Empty], src core.VertexId, emit func(core.VertexId)) {
	emit(src)
}

func (p *program) SparseSlot(_ *core.Graph[core.Empty], _ core.VertexId, msg core.VertexId, adj []core.AdjUnit[core.Empty]) int {
	var activated int
	for _, u := range adj {
		dst := u.Neighbor
		if p.parent[dst] == p.sentinel && core.CASUint64(&p.parent[dst], p.sentinel, msg) {
			p.activeOut.SetBit(dst)
			activated++
		}
	}
	return activated
}

func (p *program) DenseSignal(_ *core.Graph[core.Empty], _ core.VertexId, adj []core.AdjUnit[core.Empty]) (core.VertexId, bool) {
	// adj has already been filtered to active_in neighbors by
	// process_edges (DenseFiltersByActiveIn() == true below), so the
	// first entry present is an arbitrary active in-neighbor, matching
	// the original's "break on first active in-neighbor" loop.
	if len(adj) == 0 {
		return 0, false
	}
	return adj[0].Neighbor, true
}

func (p *program) DenseSlot(_ *core.Graph[core.Empty], dst core.VertexId, msg core.VertexId) int {
	if core.CASUint64(&p.parent[dst], p.sentinel, msg) {
		p.activeOut.SetBit(dst)
		return 1
	}
	return 0
}

func (p *program) DenseFiltersByActiveIn() bool { return true }

// Run drives BFS from root to completion on g (which must already be
// Loaded). shared must be the same *Shared instance passed to every
// other rank in g's process group. Only the root partition (rank 0)
// seeds shared state; every rank barriers before the first superstep so
// no rank starts scanning before that seed is visible.
func Run(ctx context.Context, g *core.Graph[core.Empty], root core.VertexId, shared *Shared) (*Result, error) {
	if root >= g.NumVertices() {
		return nil, xerrors.Errorf("bfs: root %d out of range [0,%d)", root, g.NumVertices())
	}

	sentinel := g.NumVertices()
	local := g.LocalPartition()

	visited := core.BindSharedVertexSubset(shared.visited, g.NumVertices(), local)
	activeIn := core.BindSharedVertexSubset(shared.activeIn, g.NumVertices(), local)
	activeOut := core.BindSharedVertexSubset(shared.activeOut, g.NumVertices(), local)

	if g.PartitionId() == 0 {
		parentArr := core.BindSharedVertexArray[core.VertexId](g, shared.parent)
		parentArr.Fill(sentinel)
		shared.parent[root] = root
		visited.SetBit(root)
		activeIn.SetBit(root)
	}
	g.ProcessGroup().Barrier()

	prog := &program{parent: shared.parent, sentinel: sentinel}

	var activeVertices core.VertexId = 1
	steps := 0
	for activeVertices > 0 {
		activeOut.Clear()
		prog.activeOut = activeOut

		if _, err := core.ProcessEdges[core.Empty, core.VertexId](ctx, g, prog, activeIn, visited); err != nil {
			return nil, xerrors.Errorf("bfs: process_edges step %d: %w", steps, err)
		}

		var err error
		activeVertices, err = g.ProcessVertices(ctx, func(v core.VertexId) int {
			visited.SetBit(v)
			return 1
		}, activeOut)
		if err != nil {
			return nil, xerrors.Errorf("bfs: process_vertices step %d: %w", steps, err)
		}

		activeIn, activeOut = activeOut, activeIn
		steps++
	}

	return &Result{Parent: shared.parent, Root: root, Steps: steps}, nil
}

// Found reports whether v was reached and its BFS parent.
func (r *Result) Found(v core.VertexId) (parent core.VertexId, found bool) {
	p := r.Parent[v]
	return p, p < core.VertexId(len(r.Parent))
}
