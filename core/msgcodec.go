package core

import (
	"encoding/binary"
	"math"
)

// msgSize returns the wire size, in bytes, of one M value.
func msgSize[M Msg]() int {
	var zero M
	switch any(zero).(type) {
	case float32:
		return 4
	default:
		return 8
	}
}

func putMsg[M Msg](buf []byte, m M) {
	switch v := any(m).(type) {
	case float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	case uint64:
		binary.LittleEndian.PutUint64(buf, v)
	}
}

func getMsg[M Msg](buf []byte) M {
	var zero M
	switch any(zero).(type) {
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(buf))).(M)
	default:
		return any(binary.LittleEndian.Uint64(buf)).(M)
	}
}

func putPayload[E EdgePayload](buf []byte, e E) {
	if v, ok := any(e).(float32); ok {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	}
}

func getPayload[E EdgePayload](buf []byte) E {
	var zero E
	if _, ok := any(zero).(float32); ok {
		return any(math.Float32frombits(binary.LittleEndian.Uint32(buf))).(E)
	}
	return zero
}

// sparseEntry is one (src, msg, filtered-adjacency) unit routed to a
// single target partition during push-mode execution.
type sparseEntry[E EdgePayload, M Msg] struct {
	src VertexId
	msg M
	adj []AdjUnit[E]
}

// encodeSparseBatch serializes a slice of sparseEntry values destined for
// one target partition into a single byte buffer:
//
//	repeated { src u64, msg, adjCount u32, adjCount * (neighbor u64, payload) }
func encodeSparseBatch[E EdgePayload, M Msg](entries []sparseEntry[E, M]) []byte {
	ps := payloadSize[E]()
	ms := msgSize[M]()
	size := 0
	for _, e := range entries {
		size += 8 + ms + 4 + len(e.adj)*(8+ps)
	}
	buf := make([]byte, size)
	off := 0
	for _, e := range entries {
		binary.LittleEndian.PutUint64(buf[off:], e.src)
		off += 8
		putMsg(buf[off:], e.msg)
		off += ms
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(e.adj)))
		off += 4
		for _, u := range e.adj {
			binary.LittleEndian.PutUint64(buf[off:], u.Neighbor)
			off += 8
			putPayload(buf[off:], u.Payload)
			off += ps
		}
	}
	return buf
}

func decodeSparseBatch[E EdgePayload, M Msg](buf []byte) []sparseEntry[E, M] {
	ps := payloadSize[E]()
	ms := msgSize[M]()
	var entries []sparseEntry[E, M]
	off := 0
	for off < len(buf) {
		src := binary.LittleEndian.Uint64(buf[off:])
		off += 8
		msg := getMsg[M](buf[off:])
		off += ms
		count := int(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		adj := make([]AdjUnit[E], count)
		for i := 0; i < count; i++ {
			neighbor := binary.LittleEndian.Uint64(buf[off:])
			off += 8
			payload := getPayload[E](buf[off:])
			off += ps
			adj[i] = AdjUnit[E]{Neighbor: neighbor, Payload: payload}
		}
		entries = append(entries, sparseEntry[E, M]{src: src, msg: msg, adj: adj})
	}
	return entries
}

func payloadSize[E EdgePayload]() int {
	var zero E
	if _, ok := any(zero).(float32); ok {
		return 4
	}
	return 0
}
