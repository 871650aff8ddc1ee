// Package core implements a distributed, partitioned graph processing
// engine: a vertex-centric, edge-parallel computation model driven by
// bulk-synchronous iterations across a process group.
//
// A Graph[E] is built once from a binary edge file and then driven
// through repeated calls to ProcessEdges and ProcessVertices by a client
// kernel (see the kernels package for BFS and SSSP). The engine itself
// never interprets vertex state; it only ships messages and tracks
// activation counts on the client's behalf.
package core
