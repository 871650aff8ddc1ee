package core

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(PartitionSuite))

type PartitionSuite struct{}

func (s *PartitionSuite) TestComputeCutPointsEvenSplitWithNoEdges(c *gc.C) {
	outDeg := make([]VertexId, 10)
	inDeg := make([]VertexId, 10)

	cuts := computeCutPoints(10, 4, outDeg, inDeg, defaultDegreeAlpha)

	c.Assert(cuts, gc.HasLen, 5)
	c.Assert(cuts, gc.DeepEquals, []VertexId{0, 3, 6, 8, 10})
}

func (s *PartitionSuite) TestComputeCutPointsCoversWholeRangeMonotonically(c *gc.C) {
	outDeg := []VertexId{5, 0, 0, 3, 9, 1, 0, 2}
	inDeg := []VertexId{0, 1, 4, 0, 0, 2, 6, 0}

	cuts := computeCutPoints(8, 3, outDeg, inDeg, defaultDegreeAlpha)

	c.Assert(cuts, gc.HasLen, 4)
	c.Assert(cuts[0], gc.Equals, VertexId(0))
	c.Assert(cuts[len(cuts)-1], gc.Equals, VertexId(8))
	for i := 1; i < len(cuts); i++ {
		c.Assert(cuts[i] >= cuts[i-1], gc.Equals, true, gc.Commentf("cut points must be non-decreasing"))
	}
}

func (s *PartitionSuite) TestComputeCutPointsDefaultsAlphaWhenNonPositive(c *gc.C) {
	outDeg := []VertexId{1, 1, 1, 1}
	inDeg := []VertexId{0, 0, 0, 0}

	withZero := computeCutPoints(4, 2, outDeg, inDeg, 0)
	withDefault := computeCutPoints(4, 2, outDeg, inDeg, defaultDegreeAlpha)

	c.Assert(withZero, gc.DeepEquals, withDefault)
}

func (s *PartitionSuite) TestComputeCutPointsPanicsOnZeroParts(c *gc.C) {
	c.Assert(func() {
		computeCutPoints(4, 0, []VertexId{0, 0, 0, 0}, []VertexId{0, 0, 0, 0}, defaultDegreeAlpha)
	}, gc.PanicMatches, ".*")
}

func (s *PartitionSuite) TestBuildPartitionsIndexedByRank(c *gc.C) {
	cuts := []VertexId{0, 4, 9, 10}
	parts := buildPartitions(cuts)

	c.Assert(parts, gc.HasLen, 3)
	c.Assert(parts[0], gc.Equals, Partition{PartitionId: 0, Begin: 0, End: 4})
	c.Assert(parts[1], gc.Equals, Partition{PartitionId: 1, Begin: 4, End: 9})
	c.Assert(parts[2], gc.Equals, Partition{PartitionId: 2, Begin: 9, End: 10})
}

func (s *PartitionSuite) TestPartitionContains(c *gc.C) {
	p := Partition{PartitionId: 0, Begin: 4, End: 9}
	c.Assert(p.Contains(3), gc.Equals, false)
	c.Assert(p.Contains(4), gc.Equals, true)
	c.Assert(p.Contains(8), gc.Equals, true)
	c.Assert(p.Contains(9), gc.Equals, false)
}

func (s *PartitionSuite) TestBuildSubPartitionsCoversWholeRange(c *gc.C) {
	part := Partition{PartitionId: 0, Begin: 10, End: 20}
	outDeg := make([]VertexId, 20)
	inDeg := make([]VertexId, 20)
	for v := VertexId(10); v < 20; v++ {
		outDeg[v] = v % 3
		inDeg[v] = v % 2
	}

	subs := buildSubPartitions(part, 3, outDeg, inDeg, defaultDegreeAlpha)

	c.Assert(subs, gc.HasLen, 3)
	c.Assert(subs[0].Begin, gc.Equals, VertexId(10))
	c.Assert(subs[len(subs)-1].End, gc.Equals, VertexId(20))
	for i := 1; i < len(subs); i++ {
		c.Assert(subs[i-1].End, gc.Equals, subs[i].Begin)
	}
}

func (s *PartitionSuite) TestBuildSubPartitionsSingleSocketIsWholeRange(c *gc.C) {
	part := Partition{PartitionId: 0, Begin: 5, End: 15}
	subs := buildSubPartitions(part, 1, make([]VertexId, 15), make([]VertexId, 15), defaultDegreeAlpha)

	c.Assert(subs, gc.HasLen, 1)
	c.Assert(subs[0], gc.Equals, SubPartition{Begin: 5, End: 15})
}
