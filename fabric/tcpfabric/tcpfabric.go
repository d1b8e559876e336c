package tcpfabric

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/hupe1980/pamgo/fabric"
	"github.com/hupe1980/pamgo/medoids"
)

const dialRetryInterval = 100 * time.Millisecond

// Connect joins the cluster described by cfg and blocks until every rank
// is connected. Rank 0 listens on its peer address; all other ranks dial
// it, retrying until the root is up or ctx expires.
func Connect(ctx context.Context, cfg *Config) (fabric.Fabric, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Rank == 0 {
		return listenRoot(ctx, cfg)
	}
	return dialLeaf(ctx, cfg)
}

// root is the rank-0 participant: it owns the gather/broadcast side of
// every collective.
type root struct {
	size  int
	ln    net.Listener
	conns []net.Conn // indexed by rank; conns[0] is nil
}

func listenRoot(ctx context.Context, cfg *Config) (*root, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Peers[0])
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", cfg.Peers[0], err)
	}

	r := &root{
		size:  len(cfg.Peers),
		ln:    ln,
		conns: make([]net.Conn, len(cfg.Peers)),
	}

	if deadline, ok := ctx.Deadline(); ok {
		if tl, ok := ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(deadline)
		}
	}

	for joined := 0; joined < r.size-1; joined++ {
		conn, err := ln.Accept()
		if err != nil {
			r.shutdown()
			return nil, fmt.Errorf("accepting rank: %w", err)
		}

		var rankBuf [4]byte
		if _, err := io.ReadFull(conn, rankBuf[:]); err != nil {
			r.shutdown()
			return nil, fmt.Errorf("rank handshake: %w", err)
		}
		rank := int(binary.LittleEndian.Uint32(rankBuf[:]))
		if rank <= 0 || rank >= r.size || r.conns[rank] != nil {
			r.shutdown()
			return nil, fmt.Errorf("rank handshake: invalid or duplicate rank %d", rank)
		}
		r.conns[rank] = conn
	}

	return r, nil
}

func (r *root) Rank() int { return 0 }

func (r *root) Size() int { return r.size }

func (r *root) AllReduce(ctx context.Context, own medoids.Candidate) (medoids.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
	}

	// Gather and fold in rank order: rank 0 seeds the accumulator.
	acc := own
	for rank := 1; rank < r.size; rank++ {
		op, payload, err := readFrame(r.conns[rank])
		if err != nil {
			r.Abort(1)
			return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", fmt.Errorf("rank %d: %w", rank, err))
		}
		switch op {
		case opAllReduce:
			var c medoids.Candidate
			if err := c.UnmarshalBinary(payload); err != nil {
				r.Abort(1)
				return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
			}
			acc.Min(c)
		case opAbort:
			r.Abort(abortCode(payload))
			return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce",
				fmt.Errorf("%w (rank %d, code %d)", fabric.ErrAborted, rank, abortCode(payload)))
		default:
			r.Abort(1)
			return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", fmt.Errorf("rank %d: unexpected opcode %d", rank, op))
		}
	}

	for rank := 1; rank < r.size; rank++ {
		if err := writeCandidate(r.conns[rank], opResult, acc); err != nil {
			r.Abort(1)
			return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", fmt.Errorf("rank %d: %w", rank, err))
		}
	}
	return acc, nil
}

func (r *root) Barrier(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fabric.NewCollectiveError("Barrier", err)
	}

	for rank := 1; rank < r.size; rank++ {
		op, payload, err := readFrame(r.conns[rank])
		if err != nil {
			r.Abort(1)
			return fabric.NewCollectiveError("Barrier", fmt.Errorf("rank %d: %w", rank, err))
		}
		switch op {
		case opBarrier:
		case opAbort:
			r.Abort(abortCode(payload))
			return fabric.NewCollectiveError("Barrier",
				fmt.Errorf("%w (rank %d, code %d)", fabric.ErrAborted, rank, abortCode(payload)))
		default:
			r.Abort(1)
			return fabric.NewCollectiveError("Barrier", fmt.Errorf("rank %d: unexpected opcode %d", rank, op))
		}
	}

	for rank := 1; rank < r.size; rank++ {
		if err := writeFrame(r.conns[rank], opRelease, nil); err != nil {
			r.Abort(1)
			return fabric.NewCollectiveError("Barrier", fmt.Errorf("rank %d: %w", rank, err))
		}
	}
	return nil
}

func (r *root) Abort(code int) {
	for rank := 1; rank < r.size; rank++ {
		if r.conns[rank] != nil {
			_ = writeAbort(r.conns[rank], code)
		}
	}
	r.shutdown()
}

func (r *root) Close() error {
	r.shutdown()
	return nil
}

func (r *root) shutdown() {
	for _, conn := range r.conns {
		if conn != nil {
			_ = conn.Close()
		}
	}
	if r.ln != nil {
		_ = r.ln.Close()
	}
}

// leaf is a rank > 0 participant: every collective is one request to the
// root followed by one response.
type leaf struct {
	rank int
	size int
	conn net.Conn
}

func dialLeaf(ctx context.Context, cfg *Config) (*leaf, error) {
	var d net.Dialer
	var conn net.Conn

	for {
		var err error
		conn, err = d.DialContext(ctx, "tcp", cfg.Peers[0])
		if err == nil {
			break
		}
		// The root may not be listening yet.
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dialing root %s: %w", cfg.Peers[0], err)
		case <-time.After(dialRetryInterval):
		}
	}

	var rankBuf [4]byte
	binary.LittleEndian.PutUint32(rankBuf[:], uint32(cfg.Rank))
	if _, err := conn.Write(rankBuf[:]); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rank handshake: %w", err)
	}

	return &leaf{rank: cfg.Rank, size: len(cfg.Peers), conn: conn}, nil
}

func (l *leaf) Rank() int { return l.rank }

func (l *leaf) Size() int { return l.size }

func (l *leaf) AllReduce(ctx context.Context, c medoids.Candidate) (medoids.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
	}

	if err := writeCandidate(l.conn, opAllReduce, c); err != nil {
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
	}

	op, payload, err := readFrame(l.conn)
	if err != nil {
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
	}
	switch op {
	case opResult:
		var result medoids.Candidate
		if err := result.UnmarshalBinary(payload); err != nil {
			return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", err)
		}
		return result, nil
	case opAbort:
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce",
			fmt.Errorf("%w (code %d)", fabric.ErrAborted, abortCode(payload)))
	default:
		return medoids.Candidate{}, fabric.NewCollectiveError("AllReduce", fmt.Errorf("unexpected opcode %d", op))
	}
}

func (l *leaf) Barrier(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fabric.NewCollectiveError("Barrier", err)
	}

	if err := writeFrame(l.conn, opBarrier, nil); err != nil {
		return fabric.NewCollectiveError("Barrier", err)
	}

	op, payload, err := readFrame(l.conn)
	if err != nil {
		return fabric.NewCollectiveError("Barrier", err)
	}
	switch op {
	case opRelease:
		return nil
	case opAbort:
		return fabric.NewCollectiveError("Barrier",
			fmt.Errorf("%w (code %d)", fabric.ErrAborted, abortCode(payload)))
	default:
		return fabric.NewCollectiveError("Barrier", fmt.Errorf("unexpected opcode %d", op))
	}
}

func (l *leaf) Abort(code int) {
	_ = writeAbort(l.conn, code)
	_ = l.conn.Close()
}

func (l *leaf) Close() error {
	return l.conn.Close()
}
