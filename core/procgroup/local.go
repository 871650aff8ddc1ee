package procgroup

import (
	"sync"

	"golang.org/x/xerrors"
)

// Local is a reference ProcessGroup implementation that simulates size
// ranks as goroutines within a single process, communicating over
// channels instead of a network fabric. It exists so the engine's ring
// exchange, collectives, and gather/scatter paths can be exercised and
// tested without a real cluster — production deployments are expected
// to supply their own ProcessGroup backed by an actual transport.
type Local struct {
	rank int
	hub  *localHub
}

// localHub is shared by every rank produced from the same NewLocalGroup
// call; it holds the per-(src,dst,tag) mailboxes and the barrier/reduce
// rendezvous state.
type localHub struct {
	size int

	mu        sync.Mutex
	closed    bool
	mailboxes map[mailKey]chan []byte

	barrierMu    sync.Mutex
	barrierCond  *sync.Cond
	barrierCount int
	barrierGen   int

	reduceMu   sync.Mutex
	reduceCond *sync.Cond
	reduceGen  int
	reduceIn   []reduceValue
	reduceDone int
	reduceOut  reduceValue
}

type reduceValue struct {
	u   uint64
	f   float32
	set bool
}

type mailKey struct {
	src, dst, tag int
}

// NewLocalGroup constructs size Local ProcessGroup handles, one per
// rank, all sharing the same in-memory fabric.
func NewLocalGroup(size int) []*Local {
	if size <= 0 {
		panic("procgroup: size must be > 0")
	}
	hub := &localHub{
		size:      size,
		mailboxes: make(map[mailKey]chan []byte),
		reduceIn:  make([]reduceValue, size),
	}
	hub.barrierCond = sync.NewCond(&hub.barrierMu)
	hub.reduceCond = sync.NewCond(&hub.reduceMu)

	groups := make([]*Local, size)
	for r := 0; r < size; r++ {
		groups[r] = &Local{rank: r, hub: hub}
	}
	return groups
}

func (l *Local) Rank() int { return l.rank }
func (l *Local) Size() int { return l.hub.size }

func (l *Local) Barrier() {
	h := l.hub
	h.barrierMu.Lock()
	gen := h.barrierGen
	h.barrierCount++
	if h.barrierCount == h.size {
		h.barrierCount = 0
		h.barrierGen++
		h.barrierCond.Broadcast()
	} else {
		for h.barrierGen == gen {
			h.barrierCond.Wait()
		}
	}
	h.barrierMu.Unlock()
}

func (l *Local) AllReduceUint64(val uint64, op ReduceOp) uint64 {
	h := l.hub
	out := h.reduce(l.rank, reduceValue{u: val, set: true}, op)
	return out.u
}

func (l *Local) AllReduceFloat32(val float32, op ReduceOp) float32 {
	h := l.hub
	out := h.reduce(l.rank, reduceValue{f: val, set: true}, op)
	return out.f
}

func (h *localHub) reduce(rank int, v reduceValue, op ReduceOp) reduceValue {
	h.reduceMu.Lock()
	gen := h.reduceGen
	h.reduceIn[rank] = v
	h.reduceDone++
	if h.reduceDone == h.size {
		h.reduceOut = combine(h.reduceIn, op)
		h.reduceDone = 0
		h.reduceIn = make([]reduceValue, h.size)
		h.reduceGen++
		h.reduceCond.Broadcast()
	} else {
		for h.reduceGen == gen {
			h.reduceCond.Wait()
		}
	}
	out := h.reduceOut
	h.reduceMu.Unlock()
	return out
}

func combine(vals []reduceValue, op ReduceOp) reduceValue {
	out := vals[0]
	for _, v := range vals[1:] {
		switch op {
		case Sum:
			out.u += v.u
			out.f += v.f
		case Max:
			if v.u > out.u {
				out.u = v.u
			}
			if v.f > out.f {
				out.f = v.f
			}
		case Min:
			if v.u < out.u {
				out.u = v.u
			}
			if v.f < out.f {
				out.f = v.f
			}
		}
	}
	return out
}

func (l *Local) SendBytes(dst int, tag int, payload []byte) error {
	h := l.hub
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	key := mailKey{src: l.rank, dst: dst, tag: tag}
	ch, ok := h.mailboxes[key]
	if !ok {
		ch = make(chan []byte, 64)
		h.mailboxes[key] = ch
	}
	h.mu.Unlock()

	cp := make([]byte, len(payload))
	copy(cp, payload)
	ch <- cp
	return nil
}

func (l *Local) RecvBytes(src int, tag int) ([]byte, error) {
	h := l.hub
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	key := mailKey{src: src, dst: l.rank, tag: tag}
	ch, ok := h.mailboxes[key]
	if !ok {
		ch = make(chan []byte, 64)
		h.mailboxes[key] = ch
	}
	h.mu.Unlock()

	payload, ok := <-ch
	if !ok {
		return nil, xerrors.Errorf("recv from rank %d tag %d: %w", src, tag, ErrClosed)
	}
	return payload, nil
}

func (l *Local) Close() error {
	h := l.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, ch := range h.mailboxes {
		close(ch)
	}
	return nil
}
