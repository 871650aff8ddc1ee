package core

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(EdgeStoreSuite))

type EdgeStoreSuite struct{}

func (s *EdgeStoreSuite) TestPrefixSum(c *gc.C) {
	got := prefixSum([]uint64{3, 0, 2, 5})
	c.Assert(got, gc.DeepEquals, []uint64{0, 3, 3, 5, 10})
}

func (s *EdgeStoreSuite) TestBuildEdgeStoreOutAndInAdjacency(c *gc.C) {
	part := Partition{PartitionId: 0, Begin: 0, End: 4}
	edges := []Edge[Empty]{
		{Src: 0, Dst: 1},
		{Src: 0, Dst: 2},
		{Src: 1, Dst: 2},
		{Src: 3, Dst: 0},
	}

	store := buildEdgeStore[Empty](part, []SubPartition{{Begin: 0, End: 4}}, edges, part.Contains)

	out0 := store.OutAdj(0)
	c.Assert(out0, gc.HasLen, 2)
	c.Assert(out0[0].Neighbor, gc.Equals, VertexId(1))
	c.Assert(out0[1].Neighbor, gc.Equals, VertexId(2))

	in0 := store.InAdj(0)
	c.Assert(in0, gc.HasLen, 1)
	c.Assert(in0[0].Neighbor, gc.Equals, VertexId(3))

	in2 := store.InAdj(2)
	c.Assert(in2, gc.HasLen, 2)
}

func (s *EdgeStoreSuite) TestBuildEdgeStoreOnlyKeepsEdgesTouchingPartition(c *gc.C) {
	part := Partition{PartitionId: 1, Begin: 5, End: 10}
	edges := []Edge[Empty]{
		{Src: 0, Dst: 1},
		{Src: 5, Dst: 6},
		{Src: 6, Dst: 2},
	}

	store := buildEdgeStore[Empty](part, []SubPartition{{Begin: 5, End: 10}}, edges, part.Contains)

	c.Assert(store.OutAdj(5), gc.HasLen, 1)
	c.Assert(store.OutAdj(6), gc.HasLen, 1)
	c.Assert(store.InAdj(6), gc.HasLen, 1)
}
