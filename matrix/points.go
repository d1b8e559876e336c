package matrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pamgo/distance"
)

// ErrBadPoints is returned when a vectors stream does not match the
// expected "<ignored> N" header followed by N "<ignored> X Y" lines.
var ErrBadPoints = errors.New("malformed vectors file")

// LoadPoints parses the vectors format: a header line "<ignored> N"
// followed by N lines of "<ignored> X Y". The first field of every line
// (typically an id) is discarded.
func LoadPoints(r io.Reader) ([]distance.Point, error) {
	br := bufio.NewReader(r)

	var ignored string
	var n int
	if _, err := fmt.Fscan(br, &ignored, &n); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrBadPoints, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrBadPoints, n)
	}

	points := make([]distance.Point, n)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fscan(br, &ignored, &points[i].X, &points[i].Y); err != nil {
			return nil, fmt.Errorf("%w: reading point %d: %w", ErrBadPoints, i, err)
		}
	}

	return points, nil
}

// FromPoints builds the full N×N dissimilarity matrix from points using fn.
// If fn is nil, distance.Euclidean is used. The diagonal is exact zero
// regardless of fn. Rows are computed in parallel.
func FromPoints(points []distance.Point, fn distance.Func) (*Matrix, error) {
	if fn == nil {
		fn = distance.Euclidean
	}

	n := len(points)
	distances := make([]float32, n*n)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		row := distances[i*n : (i+1)*n]
		p := points[i]
		i := i
		g.Go(func() error {
			for j, q := range points {
				if i == j {
					row[j] = 0
					continue
				}
				d := fn(p, q)
				if d < 0 {
					return fmt.Errorf("negative dissimilarity %g between objects %d and %d", d, i, j)
				}
				row[j] = d
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(n, distances)
}
