package matrix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Open reads a matrix from a file, transparently decompressing by
// extension: ".zst" (zstandard) and ".lz4" are recognized, anything else
// is read as plain text.
func Open(path string) (*Matrix, error) {
	f, err := os.Open(path) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closeFn, err := wrapReader(path, f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var m Matrix
	if err := m.Load(r); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return &m, nil
}

// Write saves a matrix to a file, compressing by extension the same way
// Open decompresses.
func Write(path string, m *Matrix) error {
	f, err := os.Create(path) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return err
	}

	w, finish, err := wrapWriter(path, f)
	if err != nil {
		_ = f.Close()
		return err
	}

	if err := m.Save(w); err != nil {
		_ = finish()
		_ = f.Close()
		return err
	}
	if err := finish(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func wrapReader(path string, f io.Reader) (io.Reader, func(), error) {
	switch filepath.Ext(path) {
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case ".lz4":
		return lz4.NewReader(f), func() {}, nil
	default:
		return f, func() {}, nil
	}
}

func wrapWriter(path string, f io.Writer) (io.Writer, func() error, error) {
	switch filepath.Ext(path) {
	case ".zst":
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return nil, nil, err
		}
		return enc, enc.Close, nil
	case ".lz4":
		w := lz4.NewWriter(f)
		return w, w.Close, nil
	default:
		return f, func() error { return nil }, nil
	}
}
