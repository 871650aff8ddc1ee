package core

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(MsgCodecSuite))

type MsgCodecSuite struct{}

func (s *MsgCodecSuite) TestEncodeDecodeSparseBatchUnweighted(c *gc.C) {
	entries := []sparseEntry[Empty, VertexId]{
		{src: 1, msg: 1, adj: []AdjUnit[Empty]{{Neighbor: 2}, {Neighbor: 3}}},
		{src: 4, msg: 1, adj: []AdjUnit[Empty]{{Neighbor: 5}}},
	}

	buf := encodeSparseBatch(entries)
	decoded := decodeSparseBatch[Empty, VertexId](buf)

	c.Assert(decoded, gc.HasLen, 2)
	c.Assert(decoded[0].src, gc.Equals, entries[0].src)
	c.Assert(decoded[0].msg, gc.Equals, entries[0].msg)
	c.Assert(decoded[0].adj, gc.DeepEquals, entries[0].adj)
	c.Assert(decoded[1].adj, gc.DeepEquals, entries[1].adj)
}

func (s *MsgCodecSuite) TestEncodeDecodeSparseBatchWeighted(c *gc.C) {
	entries := []sparseEntry[float32, float32]{
		{src: 0, msg: 1.5, adj: []AdjUnit[float32]{
			{Neighbor: 1, Payload: 2.25},
			{Neighbor: 2, Payload: 0.75},
		}},
	}

	buf := encodeSparseBatch(entries)
	decoded := decodeSparseBatch[float32, float32](buf)

	c.Assert(decoded, gc.HasLen, 1)
	c.Assert(almostEqual(decoded[0].msg, 1.5), gc.Equals, true)
	c.Assert(decoded[0].adj, gc.HasLen, 2)
	c.Assert(almostEqual(decoded[0].adj[0].Payload, 2.25), gc.Equals, true)
	c.Assert(almostEqual(decoded[0].adj[1].Payload, 0.75), gc.Equals, true)
}

func (s *MsgCodecSuite) TestEncodeDecodeSparseBatchEmptyInput(c *gc.C) {
	buf := encodeSparseBatch[Empty, VertexId](nil)
	c.Assert(buf, gc.HasLen, 0)

	decoded := decodeSparseBatch[Empty, VertexId](buf)
	c.Assert(decoded, gc.HasLen, 0)
}

func (s *MsgCodecSuite) TestPayloadAndMsgSize(c *gc.C) {
	c.Assert(payloadSize[Empty](), gc.Equals, 0)
	c.Assert(payloadSize[float32](), gc.Equals, 4)
	c.Assert(msgSize[VertexId](), gc.Equals, 8)
	c.Assert(msgSize[float32](), gc.Equals, 4)
}
