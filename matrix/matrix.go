// Package matrix provides the precomputed N×N dissimilarity matrix the
// clustering engine scans, along with its text codec and builders.
//
// A matrix is immutable once loaded or built and is replicated identically
// on every participant of a distributed run.
package matrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrMalformed is returned when a matrix stream does not contain a leading
// size followed by exactly size*size distance values.
var ErrMalformed = errors.New("malformed dissimilarity matrix")

// Matrix is a read-only N×N dissimilarity lookup stored in row-major order.
type Matrix struct {
	size      int
	distances []float32
}

// New creates a matrix from a row-major distance slice.
// len(distances) must equal size*size.
func New(size int, distances []float32) (*Matrix, error) {
	if size < 0 || len(distances) != size*size {
		return nil, fmt.Errorf("%w: size %d with %d distances", ErrMalformed, size, len(distances))
	}
	return &Matrix{size: size, distances: distances}, nil
}

// Size returns the number of objects N.
func (m *Matrix) Size() int {
	return m.size
}

// Distance returns the dissimilarity between objects i and j.
// Assumes i, j < Size() (caller's responsibility).
func (m *Matrix) Distance(i, j int) float32 {
	return m.distances[i*m.size+j]
}

// Load replaces the matrix contents from a text stream of the form
// "N d d d ..." with exactly N*N whitespace-separated distances.
// On any parse failure the matrix is reset to size 0 and ErrMalformed
// is returned.
func (m *Matrix) Load(r io.Reader) error {
	m.size = 0
	m.distances = nil

	br := bufio.NewReader(r)

	var size int
	if _, err := fmt.Fscan(br, &size); err != nil {
		return fmt.Errorf("%w: reading size: %w", ErrMalformed, err)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrMalformed, size)
	}

	distances := make([]float32, 0, size*size)
	for {
		var d float32
		if _, err := fmt.Fscan(br, &d); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%w: reading distance %d: %w", ErrMalformed, len(distances), err)
		}
		distances = append(distances, d)
	}

	if len(distances) != size*size {
		return fmt.Errorf("%w: expected %d distances, got %d", ErrMalformed, size*size, len(distances))
	}

	m.size = size
	m.distances = distances
	return nil
}

// Save writes the matrix in the same text form Load accepts.
func (m *Matrix) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strconv.Itoa(m.size)); err != nil {
		return err
	}
	for _, d := range m.distances {
		if err := bw.WriteByte(' '); err != nil {
			return err
		}
		if _, err := bw.WriteString(strconv.FormatFloat(float64(d), 'g', -1, 32)); err != nil {
			return err
		}
	}

	return bw.Flush()
}
