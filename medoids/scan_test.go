package medoids

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanBuildInitializing(t *testing.T) {
	// Coordinates 0..4 with 2 the central object.
	m := lineMatrix(t, []float32{0, 1, 2, 3, 4})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	best := ScanBuild(s, 0, m.Size())
	assert.Equal(t, uint32(2), best.Object)
	assert.InDelta(t, 6, best.Distance, 1e-5)

	// A shard that misses the central object reports its own local best.
	best = ScanBuild(s, 3, m.Size())
	assert.Equal(t, uint32(3), best.Object)
	assert.InDelta(t, 8, best.Distance, 1e-5)
}

func TestScanBuildEmptyShard(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2})
	s, err := NewState(m, 2)
	require.NoError(t, err)

	best := ScanBuild(s, 1, 1)
	assert.Equal(t, uint32(1), best.Object)
	assert.True(t, math.IsInf(float64(best.Distance), 1))
}

func TestScanBuildBuilding(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11, 12})
	s, err := NewState(m, 2)
	require.NoError(t, err)
	require.NoError(t, s.AddMedoid(1))

	best := ScanBuild(s, 0, m.Size())
	require.Equal(t, PhaseBuilding, s.Phase())
	// Objects 3 and 4 of the far group tie on profit (a candidate's own
	// distance is not counted), so the earlier object wins.
	assert.Equal(t, uint32(3), best.Object)
	assert.Negative(t, best.Distance)
	assert.InDelta(t, -s.AddMedoidProfit(3), best.Distance, 1e-6)
}

func TestScanSwapSeedsRejectNonImproving(t *testing.T) {
	m := ringMatrix(t, 6)
	s, err := NewState(m, 3)
	require.NoError(t, err)
	for _, object := range []int{1, 2, 3} {
		require.NoError(t, s.AddMedoid(object))
	}
	require.Equal(t, PhaseSwapping, s.Phase())

	// Every candidate swap on the equidistant ring scores 0, so the seed
	// value survives and no swap is proposed.
	best := ScanSwap(s, 0, m.Size())
	assert.Equal(t, float32(0), best.Distance)
	assert.Equal(t, uint32(1), best.Medoid)
	assert.Equal(t, uint32(0), best.Object)
}

func TestScanSwapFindsImprovement(t *testing.T) {
	m := lineMatrix(t, []float32{0, 1, 2, 10, 11, 12})
	s, err := NewState(m, 2)
	require.NoError(t, err)
	// Poor medoid choice: both in the left group.
	require.NoError(t, s.AddMedoid(0))
	require.NoError(t, s.AddMedoid(2))

	best := ScanSwap(s, 0, m.Size())
	require.Negative(t, best.Distance)
	require.NoError(t, s.Swap(int(best.Medoid), int(best.Object)))

	// The winning swap pulls one medoid into the right group.
	right := 0
	for _, md := range s.Medoids() {
		if md >= 3 {
			right++
		}
	}
	assert.Equal(t, 1, right)
}

func TestScanShardUnionMatchesFullScan(t *testing.T) {
	m := lineMatrix(t, []float32{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5})
	s, err := NewState(m, 3)
	require.NoError(t, err)

	full := ScanBuild(s, 0, m.Size())

	acc := ScanBuild(s, 0, 4)
	for _, bounds := range [][2]int{{4, 8}, {8, m.Size()}} {
		local := ScanBuild(s, bounds[0], bounds[1])
		acc.Min(local)
	}

	assert.Equal(t, full, acc)
}
