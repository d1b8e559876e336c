package fabric

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/pamgo/medoids"
)

// NewLocalGroup creates n in-process fabric members joined by a shared
// hub. Collectives rendezvous on a condition variable and the reduction
// folds member inputs in rank order, so the selected candidate is
// deterministic for a fixed group size.
//
// Local groups let the engine run a multi-participant protocol inside one
// process: each member is driven by its own goroutine, exactly as
// separate processes would drive a network fabric.
func NewLocalGroup(n int) []Fabric {
	if n <= 0 {
		panic("fabric: group size must be positive")
	}

	h := &localHub{size: n, inputs: make([]medoids.Candidate, n)}
	h.cond = sync.NewCond(&h.mu)

	members := make([]Fabric, n)
	for rank := 0; rank < n; rank++ {
		members[rank] = &localMember{hub: h, rank: rank}
	}
	return members
}

type localHub struct {
	mu   sync.Mutex
	cond *sync.Cond

	size       int
	arrived    int
	generation uint64
	inputs     []medoids.Candidate
	result     medoids.Candidate

	aborted   bool
	abortCode int
}

// rendezvous blocks rank until all members of the current generation have
// arrived, then returns the folded result. The last arrival performs the
// rank-order fold.
func (h *localHub) rendezvous(op string, rank int, input medoids.Candidate) (medoids.Candidate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.aborted {
		return medoids.Candidate{}, NewCollectiveError(op, fmt.Errorf("%w (code %d)", ErrAborted, h.abortCode))
	}

	h.inputs[rank] = input
	h.arrived++

	if h.arrived == h.size {
		acc := h.inputs[0]
		for _, c := range h.inputs[1:] {
			acc.Min(c)
		}
		h.result = acc
		h.arrived = 0
		h.generation++
		h.cond.Broadcast()
		return h.result, nil
	}

	generation := h.generation
	for generation == h.generation && !h.aborted {
		h.cond.Wait()
	}
	if h.aborted {
		return medoids.Candidate{}, NewCollectiveError(op, fmt.Errorf("%w (code %d)", ErrAborted, h.abortCode))
	}
	return h.result, nil
}

func (h *localHub) abort(code int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.aborted {
		h.aborted = true
		h.abortCode = code
		h.cond.Broadcast()
	}
}

type localMember struct {
	hub  *localHub
	rank int
}

func (m *localMember) Rank() int { return m.rank }

func (m *localMember) Size() int { return m.hub.size }

func (m *localMember) AllReduce(ctx context.Context, c medoids.Candidate) (medoids.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return medoids.Candidate{}, NewCollectiveError("AllReduce", err)
	}
	return m.hub.rendezvous("AllReduce", m.rank, c)
}

func (m *localMember) Barrier(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return NewCollectiveError("Barrier", err)
	}
	_, err := m.hub.rendezvous("Barrier", m.rank, medoids.Candidate{})
	return err
}

func (m *localMember) Abort(code int) {
	m.hub.abort(code)
}

func (m *localMember) Close() error { return nil }
