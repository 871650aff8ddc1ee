package core

import (
	"sync"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(VertexSubsetSuite))

type VertexSubsetSuite struct{}

func (s *VertexSubsetSuite) TestSetClearGet(c *gc.C) {
	set := NewVertexSubset(200, Partition{Begin: 0, End: 200})

	c.Assert(set.GetBit(63), gc.Equals, false)
	set.SetBit(63)
	c.Assert(set.GetBit(63), gc.Equals, true)
	c.Assert(set.GetBit(64), gc.Equals, false)

	set.ClearBit(63)
	c.Assert(set.GetBit(63), gc.Equals, false)
}

func (s *VertexSubsetSuite) TestClearZeroesAllWords(c *gc.C) {
	set := NewVertexSubset(130, Partition{Begin: 0, End: 130})
	set.SetBit(0)
	set.SetBit(64)
	set.SetBit(129)

	set.Clear()

	for _, v := range []VertexId{0, 64, 129} {
		c.Assert(set.GetBit(v), gc.Equals, false)
	}
}

func (s *VertexSubsetSuite) TestCountGlobalAndLocal(c *gc.C) {
	local := Partition{Begin: 10, End: 20}
	set := NewVertexSubset(30, local)

	for _, v := range []VertexId{2, 11, 15, 25} {
		set.SetBit(v)
	}

	c.Assert(set.Count(ScopeGlobal), gc.Equals, VertexId(4))
	c.Assert(set.Count(ScopeLocal), gc.Equals, VertexId(2))
}

func (s *VertexSubsetSuite) TestCountRangeBoundaries(c *gc.C) {
	set := NewVertexSubset(128, Partition{Begin: 0, End: 128})
	set.SetBit(63)
	set.SetBit(64)

	c.Assert(set.countRange(0, 64), gc.Equals, VertexId(1))
	c.Assert(set.countRange(64, 128), gc.Equals, VertexId(1))
	c.Assert(set.countRange(0, 128), gc.Equals, VertexId(2))
	c.Assert(set.countRange(65, 65), gc.Equals, VertexId(0))
}

func (s *VertexSubsetSuite) TestConcurrentSetBitIsRaceFree(c *gc.C) {
	set := NewVertexSubset(1000, Partition{Begin: 0, End: 1000})
	var wg sync.WaitGroup
	for v := VertexId(0); v < 1000; v++ {
		v := v
		wg.Add(1)
		go func() {
			defer wg.Done()
			set.SetBit(v)
			set.SetBit(v)
		}()
	}
	wg.Wait()

	c.Assert(set.Count(ScopeGlobal), gc.Equals, VertexId(1000))
}

func (s *VertexSubsetSuite) TestSharedWordsAreVisibleAcrossBoundViews(c *gc.C) {
	words := NewSharedVertexSubsetWords(200)
	rankA := BindSharedVertexSubset(words, 200, Partition{Begin: 0, End: 100})
	rankB := BindSharedVertexSubset(words, 200, Partition{Begin: 100, End: 200})

	rankA.SetBit(5)

	c.Assert(rankB.GetBit(5), gc.Equals, true, gc.Commentf("a bit set through one bound view must be visible through another sharing the same backing words"))
}
