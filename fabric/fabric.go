// Package fabric abstracts the collective operations the clustering engine
// needs from a message fabric: an argmin all-reduce of candidates, a
// barrier, and an abort primitive.
//
// Implementations agree on one global winner per step and make it visible
// to every participant with identical content, which is what keeps all
// replicas of the PAM state in lockstep. The engine never sends
// point-to-point messages.
package fabric

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/pamgo/medoids"
)

// ErrAborted is returned by collectives interrupted by an Abort.
var ErrAborted = errors.New("fabric aborted")

// CollectiveError reports a failed collective operation. Per the engine's
// failure policy a collective error is fatal to the whole run.
type CollectiveError struct {
	Op    string
	cause error
}

func (e *CollectiveError) Error() string {
	return fmt.Sprintf("collective %s failed: %v", e.Op, e.cause)
}

func (e *CollectiveError) Unwrap() error { return e.cause }

// NewCollectiveError wraps cause with the name of the failing collective.
func NewCollectiveError(op string, cause error) *CollectiveError {
	return &CollectiveError{Op: op, cause: cause}
}

// Fabric joins one participant to the collective operations of a run.
// A Fabric is used by a single goroutine at a time.
type Fabric interface {
	// Rank returns this participant's rank in [0, Size()).
	Rank() int

	// Size returns the number of participants.
	Size() int

	// AllReduce folds one candidate per participant into the global
	// minimum and returns it to every participant bit-identically.
	AllReduce(ctx context.Context, c medoids.Candidate) (medoids.Candidate, error)

	// Barrier blocks until every participant has arrived.
	Barrier(ctx context.Context) error

	// Abort tears the fabric down, releasing participants blocked in
	// collectives with an error. Used on fatal failures only.
	Abort(code int)

	// Close releases the participant's resources.
	Close() error
}

// Single returns a world-of-one fabric: collectives are identity
// operations. It is the default when no cluster is configured.
func Single() Fabric {
	return single{}
}

type single struct{}

func (single) Rank() int { return 0 }

func (single) Size() int { return 1 }

func (single) AllReduce(ctx context.Context, c medoids.Candidate) (medoids.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return medoids.Candidate{}, NewCollectiveError("AllReduce", err)
	}
	return c, nil
}

func (single) Barrier(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return NewCollectiveError("Barrier", err)
	}
	return nil
}

func (single) Abort(int) {}

func (single) Close() error { return nil }
