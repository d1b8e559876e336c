package matrix

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pamgo/distance"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		size    int
	}{
		{"TwoByTwo", "2 0 1 1 0", false, 2},
		{"Newlines", "2\n0 1\n1 0\n", false, 2},
		{"Empty", "", true, 0},
		{"SizeOnly", "3", true, 0},
		{"TooFew", "2 0 1 1", true, 0},
		{"TooMany", "2 0 1 1 0 5", true, 0},
		{"NotANumber", "2 0 1 x 0", true, 0},
		{"NegativeSize", "-1", true, 0},
		{"Zero", "0", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Matrix
			err := m.Load(strings.NewReader(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				assert.Equal(t, 0, m.Size())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, m.Size())
		})
	}
}

func TestLoadResetsPreviousContents(t *testing.T) {
	var m Matrix
	require.NoError(t, m.Load(strings.NewReader("2 0 1 1 0")))
	require.Equal(t, 2, m.Size())

	require.Error(t, m.Load(strings.NewReader("3 0 1")))
	assert.Equal(t, 0, m.Size())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := New(3, []float32{0, 1.5, 2.25, 1.5, 0, 0.125, 2.25, 0.125, 0})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	var got Matrix
	require.NoError(t, got.Load(&buf))
	require.Equal(t, m.Size(), got.Size())
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.Distance(i, j), got.Distance(i, j))
		}
	}
}

func TestNew(t *testing.T) {
	_, err := New(2, []float32{0, 1, 1})
	require.ErrorIs(t, err, ErrMalformed)

	m, err := New(2, []float32{0, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.Distance(0, 1))
	assert.Equal(t, float32(0), m.Distance(1, 1))
}

func TestOpenWriteCompressed(t *testing.T) {
	m, err := New(2, []float32{0, 3, 3, 0})
	require.NoError(t, err)

	for _, ext := range []string{".txt", ".zst", ".lz4"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "matrix"+ext)
			require.NoError(t, Write(path, m))

			got, err := Open(path)
			require.NoError(t, err)
			require.Equal(t, 2, got.Size())
			assert.Equal(t, float32(3), got.Distance(0, 1))
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestLoadPoints(t *testing.T) {
	input := "dataset 3\n0 1 1\n1 2.5 3\n2 -1 0\n"
	points, err := LoadPoints(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, distance.Point{X: 2.5, Y: 3}, points[1])
	assert.Equal(t, distance.Point{X: -1, Y: 0}, points[2])
}

func TestLoadPointsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"HeaderOnly", "x 2\n"},
		{"Truncated", "x 2\n0 1 1\n"},
		{"BadCoordinate", "x 1\n0 a 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPoints(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrBadPoints)
		})
	}
}

func TestFromPoints(t *testing.T) {
	points := []distance.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}}
	m, err := FromPoints(points, nil)
	require.NoError(t, err)
	require.Equal(t, 3, m.Size())

	assert.Equal(t, float32(0), m.Distance(1, 1))
	assert.InDelta(t, 5, m.Distance(0, 1), 1e-5)
	assert.InDelta(t, 10, m.Distance(0, 2), 1e-5)
	assert.InDelta(t, m.Distance(2, 1), m.Distance(1, 2), 1e-6)
}

func TestFromPointsNegativeMetric(t *testing.T) {
	bad := func(a, b distance.Point) float32 { return -1 }
	_, err := FromPoints([]distance.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, bad)
	require.Error(t, err)
}
