package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeCoversAndDisjoint(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
	}{
		{"Even", 100, 4},
		{"Uneven", 100, 3},
		{"MoreWorkersThanObjects", 3, 8},
		{"Single", 17, 1},
		{"Empty", 0, 4},
		{"OnePerWorker", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covered := 0
			previousEnd := 0
			for rank := 0; rank < tt.workers; rank++ {
				begin, end := Range(rank, tt.workers, tt.n)
				assert.LessOrEqual(t, begin, end)
				assert.Equal(t, previousEnd, begin, "rank %d not contiguous", rank)
				covered += end - begin
				previousEnd = end
			}
			assert.Equal(t, tt.n, covered)
			assert.Equal(t, tt.n, previousEnd)
		})
	}
}

func TestRangeBalanced(t *testing.T) {
	// Shard sizes differ by at most one, larger shards first.
	n, workers := 10, 4
	sizes := make([]int, workers)
	for rank := 0; rank < workers; rank++ {
		begin, end := Range(rank, workers, n)
		sizes[rank] = end - begin
	}
	assert.Equal(t, []int{3, 3, 2, 2}, sizes)
}

func TestRangeDeterministic(t *testing.T) {
	b1, e1 := Range(2, 7, 1000)
	b2, e2 := Range(2, 7, 1000)
	assert.Equal(t, b1, b2)
	assert.Equal(t, e1, e2)
}
