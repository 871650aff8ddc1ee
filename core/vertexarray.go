package core

import "golang.org/x/xerrors"

// VertexArray is a process-wide logical array of length NumVertices over
// element type T. Only the local partition's slice is meaningfully
// writable on this process; the remote slice contents are valid only
// after a Gather or Scatter synchronization.
type VertexArray[T any] struct {
	data  []T
	local Partition
	pg    processGroupArrayOps
}

// processGroupArrayOps is the minimal slice of ProcessGroup behavior
// VertexArray needs to implement Gather/Scatter, kept narrow so this file
// does not need to import the procgroup package's full interface.
type processGroupArrayOps interface {
	Rank() int
	Size() int
	SendBytes(dst int, tag int, payload []byte) error
	RecvBytes(src int, tag int) ([]byte, error)
	Barrier()
}

// AllocVertexArray allocates a fresh, zero-valued VertexArray sized to
// g's vertex count. Its backing slice belongs to this process alone;
// dense-mode signal callbacks that need another partition's values must
// go through a Gather/Scatter or, within one shared-memory process
// group, a BindSharedVertexArray-backed array instead.
func AllocVertexArray[T any, E EdgePayload](g *Graph[E]) *VertexArray[T] {
	return &VertexArray[T]{
		data:  make([]T, g.numVertices),
		local: g.localPartition(),
		pg:    g.pg,
	}
}

// NewSharedVertexArray allocates one backing slice of length numVertices
// shared by every rank's view. This only makes sense for a ProcessGroup
// whose ranks are co-resident in one process (procgroup.Local): it lets
// dense/pull-mode signal callbacks read another partition's
// already-written value directly, the same way GeminiGraph's common
// single-node NUMA-shared deployment mode avoids per-step replication
// messages. A real multi-machine ProcessGroup cannot use this and must
// Gather/Scatter instead.
func NewSharedVertexArray[T any](numVertices VertexId) []T {
	return make([]T, numVertices)
}

// BindSharedVertexArray wraps a NewSharedVertexArray-allocated slice into
// a per-rank VertexArray view over g's partition table.
func BindSharedVertexArray[T any, E EdgePayload](g *Graph[E], data []T) *VertexArray[T] {
	return &VertexArray[T]{
		data:  data,
		local: g.localPartition(),
		pg:    g.pg,
	}
}

// Fill writes value to every entry, local and remote alike, in a single
// sequential pass on the calling goroutine; the work is not split across
// sub-partitions.
func (a *VertexArray[T]) Fill(value T) {
	for i := range a.data {
		a.data[i] = value
	}
}

// Get/Set provide plain (non-atomic) access; callers mutating
// concurrently from many goroutines must use the CAS/WriteMin
// primitives on the same backing memory instead.
func (a *VertexArray[T]) Get(v VertexId) T     { return a.data[v] }
func (a *VertexArray[T]) Set(v VertexId, t T)  { a.data[v] = t }
func (a *VertexArray[T]) Len() VertexId        { return VertexId(len(a.data)) }
func (a *VertexArray[T]) Local() Partition     { return a.local }

// Raw exposes the backing slice for callers that need a pointer into it
// (e.g. to pass &a.data[v] to CASUint64/WriteMinFloat32).
func (a *VertexArray[T]) Raw() []T { return a.data }

const (
	tagGatherLen = 0x6761 // "ga"
	tagGatherBuf = 0x6762 // "gb"
)

// GatherVertexArray performs an all-to-one exchange so that root's copy
// becomes globally consistent. Other processes keep only their local
// partition slice valid. Requires a byte-serializable T via the supplied
// encode/decode pair (VertexArray itself stays encoding-agnostic).
func GatherVertexArray[T any](a *VertexArray[T], root int, partitions []Partition, encode func(T) []byte, decode func([]byte) T) error {
	rank := a.pg.Rank()
	if rank == root {
		for p, part := range partitions {
			if p == root {
				continue
			}
			buf, err := a.pg.RecvBytes(p, tagGatherBuf)
			if err != nil {
				return xerrors.Errorf("gather vertex array: recv from partition %d: %w", p, err)
			}
			elemSize := 0
			if part.End > part.Begin {
				elemSize = len(buf) / int(part.End-part.Begin)
			}
			for i, v := 0, part.Begin; v < part.End; i, v = i+1, v+1 {
				a.data[v] = decode(buf[i*elemSize : (i+1)*elemSize])
			}
		}
		return nil
	}

	buf := make([]byte, 0, int(a.local.End-a.local.Begin))
	for v := a.local.Begin; v < a.local.End; v++ {
		buf = append(buf, encode(a.data[v])...)
	}
	if err := a.pg.SendBytes(root, tagGatherBuf, buf); err != nil {
		return xerrors.Errorf("gather vertex array: send to root: %w", err)
	}
	return nil
}

// ScatterVertexArray is the inverse of GatherVertexArray: root's fully
// populated copy is broken into per-partition slices and each slice is
// shipped to its owning process, which overwrites its local partition
// range with it. Entries outside a non-root process's local partition
// are not updated.
func ScatterVertexArray[T any](a *VertexArray[T], root int, partitions []Partition, encode func(T) []byte, decode func([]byte) T) error {
	rank := a.pg.Rank()
	if rank == root {
		for p, part := range partitions {
			if p == root {
				continue
			}
			buf := make([]byte, 0)
			for v := part.Begin; v < part.End; v++ {
				buf = append(buf, encode(a.data[v])...)
			}
			if err := a.pg.SendBytes(p, tagGatherBuf, buf); err != nil {
				return xerrors.Errorf("scatter vertex array: send to partition %d: %w", p, err)
			}
		}
		return nil
	}

	buf, err := a.pg.RecvBytes(root, tagGatherBuf)
	if err != nil {
		return xerrors.Errorf("scatter vertex array: recv from root: %w", err)
	}
	elemSize := 0
	if a.local.End > a.local.Begin {
		elemSize = len(buf) / int(a.local.End-a.local.Begin)
	}
	for i, v := 0, a.local.Begin; v < a.local.End; i, v = i+1, v+1 {
		a.data[v] = decode(buf[i*elemSize : (i+1)*elemSize])
	}
	return nil
}
