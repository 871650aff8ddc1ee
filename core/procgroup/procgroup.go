// Package procgroup defines the contract the graph engine expects from
// a pre-initialized process group (the MPI-equivalent collaborator the
// spec treats as external): rank, world size, a barrier, point-to-point
// send/recv with tags, and integer/float reductions.
//
// Process launch and cluster bring-up are out of scope here — only the
// contract the engine uses is specified, plus a reference Local
// implementation that simulates ranks with goroutines in a single
// process, so the rest of the engine is testable without a real cluster.
package procgroup

import "golang.org/x/xerrors"

// ErrClosed is returned by SendBytes and RecvBytes once the group has
// been closed.
var ErrClosed = xerrors.New("process group: closed")

// ReduceOp names the reduction collectives the engine relies on.
type ReduceOp int

const (
	Sum ReduceOp = iota
	Max
	Min
)

// ProcessGroup is the minimal collective + point-to-point contract the
// core engine requires. Implementations must be safe for concurrent use
// by multiple goroutines within the local rank (the engine's worker pool
// and communicator goroutine both call into it).
type ProcessGroup interface {
	// Rank returns this process's position in [0, Size()).
	Rank() int

	// Size returns the number of processes in the group.
	Size() int

	// Barrier blocks until every process has called Barrier.
	Barrier()

	// AllReduceUint64 combines one uint64 per process with op and
	// returns the combined value to every process.
	AllReduceUint64(val uint64, op ReduceOp) uint64

	// AllReduceFloat32 combines one float32 per process with op and
	// returns the combined value to every process.
	AllReduceFloat32(val float32, op ReduceOp) float32

	// SendBytes blocks until payload has been handed to dst under tag.
	SendBytes(dst int, tag int, payload []byte) error

	// RecvBytes blocks until a payload sent to this rank under tag from
	// src is available, then returns it.
	RecvBytes(src int, tag int) ([]byte, error)

	// Close releases any resources held by the group. Further SendBytes
	// and RecvBytes calls return ErrClosed.
	Close() error
}
