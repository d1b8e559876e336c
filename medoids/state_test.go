package medoids

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pamgo/matrix"
)

func mustMatrix(t *testing.T, size int, distances []float32) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New(size, distances)
	require.NoError(t, err)
	return m
}

// lineMatrix builds the dissimilarity matrix of points placed at the given
// 1-D coordinates.
func lineMatrix(t *testing.T, coords []float32) *matrix.Matrix {
	t.Helper()
	n := len(coords)
	distances := make([]float32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := coords[i] - coords[j]
			if d < 0 {
				d = -d
			}
			distances[i*n+j] = d
		}
	}
	return mustMatrix(t, n, distances)
}

// ringMatrix builds an equidistant matrix: D(i,j)=1 for i!=j.
func ringMatrix(t *testing.T, n int) *matrix.Matrix {
	t.Helper()
	distances := make([]float32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				distances[i*n+j] = 1
			}
		}
	}
	return mustMatrix(t, n, distances)
}

func TestNewStateInvalidK(t *testing.T) {
	m := ringMatrix(t, 4)

	for _, k := range []int{-1, 0, 1, 5, 100} {
		_, err := NewState(m, k)
		require.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
	}

	s, err := NewState(m, 2)
	require.NoError(t, err)
	assert.Equal(t, PhaseInitializing, s.Phase())
	assert.Empty(t, s.Medoids())
}

func TestAddMedoidPhaseProgression(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11, 12})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	require.NoError(t, s.AddMedoid(1))
	assert.Equal(t, PhaseBuilding, s.Phase())
	assert.Equal(t, []int{1}, s.Medoids())
	// The first addition points every nearest entry at object 0.
	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 0, s.Nearest(i))
	}

	require.NoError(t, s.AddMedoid(4))
	assert.Equal(t, PhaseSwapping, s.Phase())
	assert.Equal(t, []int{1, 4}, s.Medoids())

	// Swapping forbids further additions.
	err = s.AddMedoid(3)
	var wrongPhase *ErrWrongPhase
	require.ErrorAs(t, err, &wrongPhase)
	assert.Equal(t, "AddMedoid", wrongPhase.Op)
}

func TestAddMedoidOutOfRange(t *testing.T) {
	s, err := NewState(ringMatrix(t, 4), 2)
	require.NoError(t, err)

	var oor *ErrObjectOutOfRange
	require.ErrorAs(t, s.AddMedoid(4), &oor)
	assert.Equal(t, 4, oor.Object)
	require.ErrorAs(t, s.AddMedoid(-1), &oor)
}

func TestAddMedoidRelaxesNearest(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11, 12})
	s, err := NewState(m, 3)
	require.NoError(t, err)

	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(4))

	// Lazy relaxation: objects near medoid 4 now point at it, the rest
	// keep the initial entry.
	assert.Equal(t, 0, s.Nearest(1))
	assert.Equal(t, 0, s.Nearest(2))
	assert.Equal(t, 4, s.Nearest(3))
	assert.Equal(t, 4, s.Nearest(5))
}

func TestIsMedoid(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	// No medoids yet: nobody is a medoid.
	for i := 0; i < m.Size(); i++ {
		assert.False(t, s.IsMedoid(i))
	}

	require.NoError(t, s.AddMedoid(0))
	assert.True(t, s.IsMedoid(0))
	assert.False(t, s.IsMedoid(1))
}

func TestSwappingEntryInvariants(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 3, 10, 11, 12, 20, 21})
	s, err := NewState(m, 3)
	require.NoError(t, err)

	require.NoError(t, s.AddMedoid(1))
	require.NoError(t, s.AddMedoid(5))
	require.NoError(t, s.AddMedoid(7))
	require.Equal(t, PhaseSwapping, s.Phase())

	medoidSet := map[int]bool{1: true, 5: true, 7: true}
	for i := 0; i < m.Size(); i++ {
		m1, m2 := s.Nearest(i), s.Second(i)
		assert.True(t, medoidSet[m1], "object %d nearest %d", i, m1)
		assert.True(t, medoidSet[m2], "object %d second %d", i, m2)
		assert.NotEqual(t, m1, m2, "object %d", i)
		assert.LessOrEqual(t, m.Distance(i, m1), m.Distance(i, m2), "object %d", i)
	}
}

func TestFindObjectMedoidsTieBreak(t *testing.T) {
	// Object 2 is equidistant from both medoids: the earlier medoid keeps
	// first place, the later one takes second.
	m := mustMatrix(t, 4, []float32{
		0, 2, 1, 5,
		2, 0, 1, 5,
		1, 1, 0, 5,
		5, 5, 5, 0,
	})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(1))
	require.Equal(t, PhaseSwapping, s.Phase())

	assert.Equal(t, 0, s.Nearest(2))
	assert.Equal(t, 1, s.Second(2))
}

func TestDistanceToAll(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 3})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	assert.InDelta(t, 4, s.DistanceToAll(0), 1e-6)
	assert.InDelta(t, 3, s.DistanceToAll(1), 1e-6)
	assert.InDelta(t, 5, s.DistanceToAll(2), 1e-6)
}

func TestAddMedoidProfitBruteForce(t *testing.T) {
	coords := []float32{5, 1, 2, 8, 9, 4, 7}
	m := lineMatrix(t, coords)
	s, err := NewState(m, 3)
	require.NoError(t, err)

	// Seeding with object 0 keeps the initial nearest entries exact.
	require.NoError(t, s.AddMedoid(0))

	for u := 0; u < m.Size(); u++ {
		if s.IsMedoid(u) {
			continue
		}

		// Brute force: total cost of non-medoid objects before and after
		// promoting u, with nearest medoids recomputed from scratch.
		cost := func(medoids []int) float32 {
			isMedoid := map[int]bool{}
			for _, md := range medoids {
				isMedoid[md] = true
			}
			var total float32
			for j := 0; j < m.Size(); j++ {
				if isMedoid[j] || j == u {
					continue
				}
				best := float32(math.Inf(1))
				for _, md := range medoids {
					if d := m.Distance(j, md); d < best {
						best = d
					}
				}
				total += best
			}
			return total
		}

		expected := cost([]int{0}) - cost([]int{0, u})
		assert.InDelta(t, expected, s.AddMedoidProfit(u), 1e-4, "candidate %d", u)
	}
}

func TestSwapResultCases(t *testing.T) {
	// Medoids 0 and 3; objects 1, 2 served by 0, object 4 served by 3.
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11})
	s, err := NewState(m, 2)
	require.NoError(t, err)
	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(3))
	require.Equal(t, PhaseSwapping, s.Phase())

	// j=2 is served by the retiring medoid 0 and moves to object 1:
	// delta = D(2,1) - D(2,0) = -1. j=4 stays with medoid 3.
	assert.InDelta(t, -1, s.SwapResult(0, 1), 1e-5)

	// Sliding medoid 3 to its neighbor 4 helps neither 1 nor 2.
	assert.InDelta(t, 0, s.SwapResult(3, 4), 1e-5)

	// Swapping 0 for the far object 4 strands 1 and 2 on their second
	// medoid: delta = (9-1) + (8-2) = 14.
	assert.InDelta(t, 14, s.SwapResult(0, 4), 1e-5)
}

func TestSwap(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11})
	s, err := NewState(m, 2)
	require.NoError(t, err)
	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(3))

	require.NoError(t, s.Swap(0, 1))
	assert.Equal(t, []int{1, 3}, s.Medoids())
	assert.True(t, s.IsMedoid(1))
	assert.False(t, s.IsMedoid(0))
	assert.Equal(t, 1, s.Nearest(0))

	var notMedoid *ErrNotMedoid
	require.ErrorAs(t, s.Swap(0, 2), &notMedoid)
	assert.Equal(t, 0, notMedoid.Object)

	var oor *ErrObjectOutOfRange
	require.ErrorAs(t, s.Swap(1, 99), &oor)
}

func TestSwapWrongPhase(t *testing.T) {
	s, err := NewState(ringMatrix(t, 4), 2)
	require.NoError(t, err)

	var wrongPhase *ErrWrongPhase
	require.ErrorAs(t, s.Swap(0, 1), &wrongPhase)
	assert.Equal(t, "Swap", wrongPhase.Op)
}

func TestSwapMonotoneDescent(t *testing.T) {
	coords := []float32{1, 2, 3, 4, 20, 21, 22, 40, 41, 42, 43, 60}
	m := lineMatrix(t, coords)
	s, err := NewState(m, 4)
	require.NoError(t, err)

	// Deliberately poor build order so Swapping has work to do.
	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(1))
	require.NoError(t, s.AddMedoid(2))
	require.NoError(t, s.AddMedoid(3))
	require.Equal(t, PhaseSwapping, s.Phase())

	previous := s.TotalCost()
	for iteration := 0; iteration < 1000; iteration++ {
		best := ScanSwap(s, 0, m.Size())
		if best.Distance >= 0 {
			break
		}
		// SwapResult leaves out the promoted object's own term and the
		// retired medoid's new term; add them back to get the cost change.
		promotedBefore := m.Distance(int(best.Object), s.Nearest(int(best.Object)))
		require.NoError(t, s.Swap(int(best.Medoid), int(best.Object)))
		retiredAfter := m.Distance(int(best.Medoid), s.Nearest(int(best.Medoid)))

		cost := s.TotalCost()
		assert.Less(t, cost, previous, "iteration %d", iteration)
		assert.InDelta(t, previous+best.Distance-promotedBefore+retiredAfter, cost, 1e-3, "iteration %d", iteration)
		previous = cost
	}

	// Local optimum: no remaining swap improves the cost.
	for _, medoid := range s.Medoids() {
		for object := 0; object < m.Size(); object++ {
			if s.IsMedoid(object) {
				continue
			}
			assert.GreaterOrEqual(t, s.SwapResult(medoid, object), float32(0))
		}
	}
}
