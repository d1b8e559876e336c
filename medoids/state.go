package medoids

import (
	"math"

	"github.com/hupe1980/pamgo/matrix"
)

// State is the evolving PAM state: the medoid set plus, for every object,
// its nearest and second-nearest medoid.
//
// All scoring methods (DistanceToAll, AddMedoidProfit, SwapResult) are
// read-only and safe for concurrent use between the mutations AddMedoid
// and Swap. The caller serializes mutations against reads.
type State struct {
	matrix *matrix.Matrix
	k      int
	phase  Phase

	medoids []int
	nearest []int // m1: nearest medoid per object
	second  []int // m2: second-nearest medoid per object
}

// NewState creates a PAM state for k clusters over the given matrix.
func NewState(m *matrix.Matrix, k int) (*State, error) {
	if k < 2 || k > m.Size() {
		return nil, ErrInvalidK
	}

	return &State{
		matrix:  m,
		k:       k,
		phase:   PhaseInitializing,
		medoids: make([]int, 0, k),
		nearest: make([]int, m.Size()),
		second:  make([]int, m.Size()),
	}, nil
}

// Matrix returns the dissimilarity matrix the state was built over.
func (s *State) Matrix() *matrix.Matrix { return s.matrix }

// NumClusters returns k.
func (s *State) NumClusters() int { return s.k }

// Size returns the number of objects N.
func (s *State) Size() int { return s.matrix.Size() }

// Phase returns the current phase.
func (s *State) Phase() Phase { return s.phase }

// Medoids returns a snapshot of the medoid set in insertion order.
func (s *State) Medoids() []int {
	out := make([]int, len(s.medoids))
	copy(out, s.medoids)
	return out
}

// NumMedoids returns the current medoid count |M|.
func (s *State) NumMedoids() int { return len(s.medoids) }

// Nearest returns the nearest medoid of object.
// Meaningful once Building has begun.
func (s *State) Nearest(object int) int { return s.nearest[object] }

// Second returns the second-nearest medoid of object.
// Meaningful once the phase is Swapping.
func (s *State) Second(object int) int { return s.second[object] }

// IsMedoid reports whether object currently serves as its own medoid.
// Before the first medoid is added, no object is a medoid.
func (s *State) IsMedoid(object int) bool {
	return len(s.medoids) > 0 && s.nearest[object] == object
}

// DistanceToAll returns the total dissimilarity from object to every
// object. Used only while Initializing to pick the central object.
// Assumes object < Size() (caller's responsibility).
func (s *State) DistanceToAll(object int) float32 {
	var total float32
	for another := 0; another < s.matrix.Size(); another++ {
		total += s.matrix.Distance(object, another)
	}
	return total
}

// AddMedoid appends object to the medoid set. Valid while Initializing or
// Building. The first call transitions to Building and points every
// object's nearest-medoid entry at object 0; later calls relax the
// nearest-medoid entries against the new medoid. The call that brings the
// set to k medoids recomputes all nearest/second-nearest entries and
// transitions to Swapping.
func (s *State) AddMedoid(object int) error {
	if s.phase == PhaseSwapping {
		return &ErrWrongPhase{Op: "AddMedoid", Phase: s.phase}
	}
	if object < 0 || object >= s.matrix.Size() {
		return &ErrObjectOutOfRange{Object: object, Size: s.matrix.Size()}
	}

	s.medoids = append(s.medoids, object)

	if s.phase == PhaseInitializing {
		for i := range s.nearest {
			s.nearest[i] = 0
		}
		s.phase = PhaseBuilding
		return nil
	}

	for i := 0; i < s.matrix.Size(); i++ {
		if s.IsMedoid(i) {
			continue
		}
		if s.matrix.Distance(i, object) < s.distanceToNearest(i) {
			s.nearest[i] = object
		}
	}

	if len(s.medoids) == s.k {
		s.phase = PhaseSwapping
		s.findObjectMedoids()
	}
	return nil
}

// AddMedoidProfit returns the reduction in dissimilarity, summed over the
// other non-medoid objects, that would result from promoting object to a
// medoid. Object's own distance to its nearest medoid is not counted.
// Valid while Building.
// Assumes object is a non-medoid in range (caller's responsibility).
func (s *State) AddMedoidProfit(object int) float32 {
	var profit float32
	for another := 0; another < s.matrix.Size(); another++ {
		if another == object || s.IsMedoid(another) {
			continue
		}
		if d := s.matrix.Distance(object, another); d < s.distanceToNearest(another) {
			profit += s.distanceToNearest(another) - d
		}
	}
	return profit
}

// SwapResult returns the change in dissimilarity, summed over the
// non-medoid objects other than object, if medoid were replaced by object.
// Object's own term and the retiring medoid's new term are not counted.
// Negative means the swap improves the clustering.
// Valid while Swapping. Assumes medoid ∈ M and object ∉ M (caller's
// responsibility).
func (s *State) SwapResult(medoid, object int) float32 {
	var total float32
	for j := 0; j < s.matrix.Size(); j++ {
		if j == object || s.IsMedoid(j) {
			continue
		}
		total += s.swapDelta(medoid, j, object)
	}
	return total
}

// swapDelta is the per-object contribution to SwapResult.
func (s *State) swapDelta(medoid, j, object int) float32 {
	if s.nearest[j] == medoid {
		// j is currently served by the retiring medoid.
		if s.distanceToSecond(j) > s.matrix.Distance(j, object) {
			return s.matrix.Distance(j, object) - s.distanceToNearest(j)
		}
		return s.distanceToSecond(j) - s.distanceToNearest(j)
	}
	if s.distanceToNearest(j) > s.matrix.Distance(j, object) {
		return s.matrix.Distance(j, object) - s.distanceToNearest(j)
	}
	return 0
}

// Swap replaces medoid with object, preserving its position in the medoid
// set, and recomputes all nearest/second-nearest entries. Valid while
// Swapping.
func (s *State) Swap(medoid, object int) error {
	if s.phase != PhaseSwapping {
		return &ErrWrongPhase{Op: "Swap", Phase: s.phase}
	}
	if object < 0 || object >= s.matrix.Size() {
		return &ErrObjectOutOfRange{Object: object, Size: s.matrix.Size()}
	}

	replaced := false
	for i, m := range s.medoids {
		if m == medoid {
			s.medoids[i] = object
			replaced = true
			break
		}
	}
	if !replaced {
		return &ErrNotMedoid{Object: medoid}
	}

	s.findObjectMedoids()
	return nil
}

// TotalCost returns Σᵢ D(i, m₁(i)), the objective PAM minimizes.
// Meaningful once Building has begun.
func (s *State) TotalCost() float32 {
	var total float32
	for i := 0; i < s.matrix.Size(); i++ {
		total += s.distanceToNearest(i)
	}
	return total
}

func (s *State) distanceToNearest(object int) float32 {
	return s.matrix.Distance(object, s.nearest[object])
}

func (s *State) distanceToSecond(object int) float32 {
	return s.matrix.Distance(object, s.second[object])
}

// findObjectMedoids recomputes nearest and second-nearest medoids for
// every object by scanning the medoid set in insertion order. On equal
// distances the earlier medoid keeps first place.
func (s *State) findObjectMedoids() {
	for i := 0; i < s.matrix.Size(); i++ {
		nearest, second := -1, -1
		nearestDistance := float32(math.Inf(1))
		secondDistance := float32(math.Inf(1))

		for _, medoid := range s.medoids {
			d := s.matrix.Distance(medoid, i)
			if d < nearestDistance {
				second = nearest
				secondDistance = nearestDistance
				nearest = medoid
				nearestDistance = d
			} else if d < secondDistance {
				second = medoid
				secondDistance = d
			}
		}

		s.nearest[i] = nearest
		s.second[i] = second
	}
}
