package core

// edgeStore holds the two CSR-like adjacency representations for a
// single local partition: outgoing edges (indexed by src) and incoming
// edges (indexed by dst), each further sliced by sub-partition.
type edgeStore[E EdgePayload] struct {
	part Partition
	subs []SubPartition

	// outIndex[v-part.Begin .. ] gives, for each local vertex v, the
	// half-open range [outIndex[v-Begin], outIndex[v-Begin+1]) into
	// outAdj. Sized len(local)+1.
	outIndex []uint64
	outAdj   []AdjUnit[E]

	inIndex []uint64
	inAdj   []AdjUnit[E]
}

// OutAdj returns the outgoing adjacency slice for vertex v, which must
// lie in this store's partition.
func (s *edgeStore[E]) OutAdj(v VertexId) []AdjUnit[E] {
	i := v - s.part.Begin
	return s.outAdj[s.outIndex[i]:s.outIndex[i+1]]
}

// InAdj returns the incoming adjacency slice for vertex v, which must
// lie in this store's partition.
func (s *edgeStore[E]) InAdj(v VertexId) []AdjUnit[E] {
	i := v - s.part.Begin
	return s.inAdj[s.inIndex[i]:s.inIndex[i+1]]
}

// buildEdgeStore performs the two-pass CSR construction described in the
// spec: a histogram pass to size per-vertex adjacency ranges, followed by
// a placement pass using exclusive prefix sums as write cursors. Edge
// order within a vertex's adjacency is stable for a given input file
// (edges are placed in the order they are scanned), satisfying the
// reproducibility invariant.
func buildEdgeStore[E EdgePayload](part Partition, subs []SubPartition, edges []Edge[E], owner func(VertexId) bool) *edgeStore[E] {
	span := part.End - part.Begin

	outCount := make([]uint64, span)
	inCount := make([]uint64, span)
	var outTotal, inTotal uint64
	for _, e := range edges {
		if part.Contains(e.Src) {
			outCount[e.Src-part.Begin]++
			outTotal++
		}
		if part.Contains(e.Dst) {
			inCount[e.Dst-part.Begin]++
			inTotal++
		}
	}

	outIndex := prefixSum(outCount)
	inIndex := prefixSum(inCount)

	outAdj := make([]AdjUnit[E], outTotal)
	inAdj := make([]AdjUnit[E], inTotal)
	outCursor := append([]uint64(nil), outIndex[:span]...)
	inCursor := append([]uint64(nil), inIndex[:span]...)

	for _, e := range edges {
		if part.Contains(e.Src) {
			i := e.Src - part.Begin
			outAdj[outCursor[i]] = AdjUnit[E]{Neighbor: e.Dst, Payload: e.Payload}
			outCursor[i]++
		}
		if part.Contains(e.Dst) {
			i := e.Dst - part.Begin
			inAdj[inCursor[i]] = AdjUnit[E]{Neighbor: e.Src, Payload: e.Payload}
			inCursor[i]++
		}
	}

	return &edgeStore[E]{
		part:     part,
		subs:     subs,
		outIndex: outIndex,
		outAdj:   outAdj,
		inIndex:  inIndex,
		inAdj:    inAdj,
	}
}

// prefixSum returns the exclusive prefix sum of counts, with one extra
// trailing element equal to the total (so index i+1 - index i ==
// counts[i], and the last element is the grand total).
func prefixSum(counts []uint64) []uint64 {
	out := make([]uint64, len(counts)+1)
	var running uint64
	for i, c := range counts {
		out[i] = running
		running += c
	}
	out[len(counts)] = running
	return out
}
