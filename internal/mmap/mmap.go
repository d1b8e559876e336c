// Package mmap provides read-only memory mapping of files, with a plain
// read fallback on platforms without mmap support.
package mmap

import "os"

// Mapping is a read-only view of a file's contents.
type Mapping struct {
	data   []byte
	mapped bool
}

// Open maps path read-only. Empty files yield an empty, valid mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		return &Mapping{}, nil
	}

	return openMapping(f, st.Size())
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Close releases the mapping. The slice returned by Bytes must not be
// used afterwards.
func (m *Mapping) Close() error {
	if !m.mapped || m.data == nil {
		m.data = nil
		return nil
	}
	data := m.data
	m.data = nil
	return unmap(data)
}
