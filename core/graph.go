package core

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"runtime"

	"github.com/brandonshearin/geminigo/core/numapool"
	"github.com/brandonshearin/geminigo/core/procgroup"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// recordSize returns the on-disk size, in bytes, of one edge record for
// payload type E: two little-endian uint64s, plus a float32 if E is
// weighted.
func recordSize[E EdgePayload]() int {
	var zero E
	switch any(zero).(type) {
	case float32:
		return 8 + 8 + 4
	default:
		return 8 + 8
	}
}

// GraphConfig configures a Graph at construction time.
type GraphConfig struct {
	// ProcessGroup is the (externally supplied) process group this
	// graph participates in. Required.
	ProcessGroup procgroup.ProcessGroup

	// Sockets is the number of NUMA-socket-equivalent sub-partitions to
	// split this process's partition into, and the number of pool
	// workers used for parallel loops. Defaults to runtime.NumCPU() if
	// <= 0.
	Sockets int

	// DenseThreshold is the sparse/dense mode-selection divisor from
	// spec §4.4: sparse mode runs when E_active*DenseThreshold < |E|,
	// dense mode otherwise. Defaults to 20 if <= 0.
	DenseThreshold int

	// DegreeAlpha weights in-degree against out-degree when computing
	// partition cut points (core.computeCutPoints). Defaults to 8 if
	// <= 0.
	DegreeAlpha int

	// Logger receives structured diagnostics. Defaults to a disabled
	// logger if zero-valued.
	Logger zerolog.Logger
}

func (cfg *GraphConfig) setDefaults() error {
	if cfg.ProcessGroup == nil {
		return xerrors.New("core: GraphConfig.ProcessGroup is required")
	}
	if cfg.Sockets <= 0 {
		cfg.Sockets = runtime.NumCPU()
	}
	if cfg.DenseThreshold <= 0 {
		cfg.DenseThreshold = 20
	}
	if cfg.DegreeAlpha <= 0 {
		cfg.DegreeAlpha = defaultDegreeAlpha
	}
	return nil
}

// Graph is a distributed, partitioned graph processing engine
// parameterized by an edge-payload type E (Empty for unweighted graphs,
// float32 for weighted graphs).
type Graph[E EdgePayload] struct {
	pg     procgroup.ProcessGroup
	pool   *numapool.Pool
	log    zerolog.Logger
	thresh int
	alpha  int

	numVertices VertexId
	partitions  []Partition
	subs        []SubPartition
	store       *edgeStore[E]
}

// NewGraph validates cfg and returns an unloaded Graph. Call Load before
// driving any computation.
func NewGraph[E EdgePayload](cfg GraphConfig) (*Graph[E], error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return &Graph[E]{
		pg:     cfg.ProcessGroup,
		pool:   numapool.New(cfg.Sockets),
		log:    cfg.Logger,
		thresh: cfg.DenseThreshold,
		alpha:  cfg.DegreeAlpha,
	}, nil
}

// NumVertices returns the graph's total vertex count.
func (g *Graph[E]) NumVertices() VertexId { return g.numVertices }

// PartitionId returns this process's rank, which doubles as its
// permanent partition identity.
func (g *Graph[E]) PartitionId() int { return g.pg.Rank() }

func (g *Graph[E]) localPartition() Partition { return g.partitions[g.pg.Rank()] }

// LocalPartition returns the vertex range this process owns, for client
// kernels that need to size their own per-partition state (subsets,
// vertex arrays bound outside of AllocVertexArray).
func (g *Graph[E]) LocalPartition() Partition { return g.localPartition() }

// ProcessGroup exposes the underlying process group so CLI drivers can
// run their own coordination (e.g. an all-reduce-max to agree on a
// randomly chosen BFS/SSSP source vertex) without core needing a
// dedicated wrapper for every such one-off reduction.
func (g *Graph[E]) ProcessGroup() procgroup.ProcessGroup { return g.pg }

// Load reads a binary edge file (spec §6 format) and builds this
// process's partition boundaries and both CSR adjacency views.
//
// Every process scans the whole file to compute the same degree-balanced
// cut points (so partitioning is deterministic cluster-wide without a
// separate coordination round trip), then retains only the edges
// belonging to its own partition in the CSR store.
func (g *Graph[E]) Load(path string, numVertices VertexId) error {
	g.numVertices = numVertices
	g.partitions = make([]Partition, g.pg.Size())

	f, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("core: open edge file %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return xerrors.Errorf("core: stat edge file %q: %w", path, err)
	}

	rsize := recordSize[E]()
	if info.Size()%int64(rsize) != 0 {
		return xerrors.Errorf("core: edge file %q: %w", path, ErrMalformedRecord)
	}
	numEdges := info.Size() / int64(rsize)

	edges, outDeg, inDeg, err := scanEdges[E](f, numEdges, rsize, numVertices, g.pool)
	if err != nil {
		return err
	}

	cuts := computeCutPoints(numVertices, g.pg.Size(), outDeg, inDeg, g.alpha)
	g.partitions = buildPartitions(cuts)

	local := g.localPartition()
	g.subs = buildSubPartitions(local, g.pool.Sockets, outDeg, inDeg, g.alpha)
	g.store = buildEdgeStore[E](local, g.subs, edges, local.Contains)

	g.log.Debug().
		Int("partition", g.pg.Rank()).
		Uint64("begin", local.Begin).
		Uint64("end", local.End).
		Int64("edges_total", numEdges).
		Msg("graph partition loaded")

	return nil
}

// scanEdges parses every record in the file in parallel (one goroutine
// per pool socket, each over a disjoint, record-aligned byte range) and
// returns the full edge list plus global per-vertex out/in degree
// counts, which every process needs identically to compute the same
// partition cut points.
func scanEdges[E EdgePayload](f *os.File, numEdges int64, rsize int, numVertices VertexId, pool *numapool.Pool) ([]Edge[E], []VertexId, []VertexId, error) {
	edges := make([]Edge[E], numEdges)

	type partial struct {
		out, in []VertexId
	}
	partials := make([]partial, pool.Sockets)

	err := pool.ForEachChunk(context.Background(), 0, uint64(numEdges), func(_ context.Context, socket int, lo, hi uint64) error {
		partials[socket] = partial{out: make([]VertexId, numVertices), in: make([]VertexId, numVertices)}
		if lo == hi {
			return nil
		}

		buf := make([]byte, (hi-lo)*uint64(rsize))
		if _, err := f.ReadAt(buf, int64(lo)*int64(rsize)); err != nil {
			return xerrors.Errorf("core: read edge records [%d,%d): %w", lo, hi, err)
		}

		for i := uint64(0); i < hi-lo; i++ {
			rec := buf[i*uint64(rsize):]
			src := binary.LittleEndian.Uint64(rec[0:8])
			dst := binary.LittleEndian.Uint64(rec[8:16])
			if src >= numVertices || dst >= numVertices {
				return xerrors.Errorf("core: record %d references vertex >= %d: %w", lo+i, numVertices, ErrVertexOutOfRange)
			}

			var payload E
			if rsize == 20 {
				bits := binary.LittleEndian.Uint32(rec[16:20])
				payload = any(math.Float32frombits(bits)).(E)
			}

			edges[lo+i] = Edge[E]{Src: src, Dst: dst, Payload: payload}
			partials[socket].out[src]++
			partials[socket].in[dst]++
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	outDeg := make([]VertexId, numVertices)
	inDeg := make([]VertexId, numVertices)
	for _, p := range partials {
		for v := VertexId(0); v < numVertices; v++ {
			outDeg[v] += p.out[v]
			inDeg[v] += p.in[v]
		}
	}

	return edges, outDeg, inDeg, nil
}
