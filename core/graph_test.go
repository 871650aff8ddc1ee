package core

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"

	gc "gopkg.in/check.v1"

	"github.com/brandonshearin/geminigo/core/procgroup"
)

var _ = gc.Suite(new(GraphSuite))

type GraphSuite struct{}

// writeUnweightedEdgeFile writes edges as fixed u64,u64 little-endian
// records, matching the format core.Graph.Load expects for Empty-payload
// graphs.
func writeUnweightedEdgeFile(c *gc.C, edges [][2]uint64) string {
	path := filepath.Join(c.MkDir(), "edges.bin")
	f, err := os.Create(path)
	c.Assert(err, gc.IsNil)
	defer f.Close()

	buf := make([]byte, 16)
	for _, e := range edges {
		binary.LittleEndian.PutUint64(buf[0:8], e[0])
		binary.LittleEndian.PutUint64(buf[8:16], e[1])
		_, err := f.Write(buf)
		c.Assert(err, gc.IsNil)
	}
	return path
}

// writeWeightedEdgeFile writes edges as fixed u64,u64,f32 little-endian
// records, matching the format core.Graph.Load expects for float32
// payload graphs.
func writeWeightedEdgeFile(c *gc.C, edges []struct {
	Src, Dst uint64
	Weight   float32
}) string {
	path := filepath.Join(c.MkDir(), "edges.bin")
	f, err := os.Create(path)
	c.Assert(err, gc.IsNil)
	defer f.Close()

	buf := make([]byte, 20)
	for _, e := range edges {
		binary.LittleEndian.PutUint64(buf[0:8], e.Src)
		binary.LittleEndian.PutUint64(buf[8:16], e.Dst)
		binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(e.Weight))
		_, err := f.Write(buf)
		c.Assert(err, gc.IsNil)
	}
	return path
}

func (s *GraphSuite) TestLoadPartitionsCoverAllVertices(c *gc.C) {
	path := writeUnweightedEdgeFile(c, [][2]uint64{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0},
	})

	const numVertices = 6
	const ranks = 3

	groups := procgroup.NewLocalGroup(ranks)
	errCh := make(chan error, ranks)
	graphs := make([]*Graph[Empty], ranks)
	for i, pg := range groups {
		i, pg := i, pg
		g, err := NewGraph[Empty](GraphConfig{ProcessGroup: pg, Sockets: 2})
		c.Assert(err, gc.IsNil)
		graphs[i] = g
		go func() {
			errCh <- g.Load(path, numVertices)
		}()
	}
	for range groups {
		c.Assert(<-errCh, gc.IsNil)
	}

	// Every rank must compute the identical partition table (same cut
	// points derived from the same global degree histogram).
	var covered VertexId
	for i, g := range graphs {
		c.Assert(g.partitions, gc.DeepEquals, graphs[0].partitions, gc.Commentf("rank %d disagrees on partition table", i))
		covered += g.localPartition().End - g.localPartition().Begin
	}
	c.Assert(covered, gc.Equals, VertexId(numVertices))
}

func (s *GraphSuite) TestLoadRejectsOutOfRangeVertex(c *gc.C) {
	path := writeUnweightedEdgeFile(c, [][2]uint64{{0, 9}})

	groups := procgroup.NewLocalGroup(1)
	g, err := NewGraph[Empty](GraphConfig{ProcessGroup: groups[0]})
	c.Assert(err, gc.IsNil)

	err = g.Load(path, 4)
	c.Assert(errors.Is(err, ErrVertexOutOfRange), gc.Equals, true)
}

func (s *GraphSuite) TestLoadRejectsMalformedFile(c *gc.C) {
	path := filepath.Join(c.MkDir(), "bad.bin")
	c.Assert(os.WriteFile(path, []byte{1, 2, 3}, 0o644), gc.IsNil)

	groups := procgroup.NewLocalGroup(1)
	g, err := NewGraph[Empty](GraphConfig{ProcessGroup: groups[0]})
	c.Assert(err, gc.IsNil)

	err = g.Load(path, 4)
	c.Assert(errors.Is(err, ErrMalformedRecord), gc.Equals, true)
}

func (s *GraphSuite) TestLoadWeightedGraphPreservesPayload(c *gc.C) {
	path := writeWeightedEdgeFile(c, []struct {
		Src, Dst uint64
		Weight   float32
	}{
		{0, 1, 2.5},
		{1, 2, 1.25},
	})

	groups := procgroup.NewLocalGroup(1)
	g, err := NewGraph[float32](GraphConfig{ProcessGroup: groups[0]})
	c.Assert(err, gc.IsNil)
	c.Assert(g.Load(path, 3), gc.IsNil)

	adj := g.store.OutAdj(0)
	c.Assert(adj, gc.HasLen, 1)
	c.Assert(adj[0].Neighbor, gc.Equals, VertexId(1))
	c.Assert(almostEqual(adj[0].Payload, 2.5), gc.Equals, true, gc.Commentf("got %v", adj[0].Payload))
}
