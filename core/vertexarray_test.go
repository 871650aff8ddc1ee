package core

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(VertexArraySuite))

type VertexArraySuite struct{}

func (s *VertexArraySuite) TestFillGetSet(c *gc.C) {
	a := &VertexArray[float32]{data: make([]float32, 10), local: Partition{Begin: 0, End: 10}}

	a.Fill(1e9)
	for v := VertexId(0); v < 10; v++ {
		c.Assert(a.Get(v), gc.Equals, float32(1e9))
	}

	a.Set(3, 0.5)
	c.Assert(a.Get(3), gc.Equals, float32(0.5))
	c.Assert(a.Len(), gc.Equals, VertexId(10))
}

func (s *VertexArraySuite) TestNewSharedVertexArrayIsSharedAcrossBoundViews(c *gc.C) {
	backing := NewSharedVertexArray[uint64](50)
	g := &Graph[Empty]{numVertices: 50, partitions: []Partition{{PartitionId: 0, Begin: 0, End: 50}}}

	viewA := BindSharedVertexArray[uint64](g, backing)
	viewB := BindSharedVertexArray[uint64](g, backing)

	viewA.Set(7, 42)

	c.Assert(viewB.Get(7), gc.Equals, uint64(42))
}

func (s *VertexArraySuite) TestRawExposesBackingSlice(c *gc.C) {
	a := &VertexArray[VertexId]{data: make([]VertexId, 4)}
	raw := a.Raw()
	c.Assert(raw, gc.HasLen, 4)

	raw[0] = 99
	c.Assert(a.Get(0), gc.Equals, VertexId(99))
}
