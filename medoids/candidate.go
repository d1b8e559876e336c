package medoids

import (
	"encoding/binary"
	"fmt"
	"math"
)

// CandidateSize is the fixed wire size of a Candidate in bytes.
const CandidateSize = 12

// Candidate is the reduction triple exchanged between workers: the best
// (object, medoid, distance) found in a shard. The medoid field is only
// meaningful while Swapping.
type Candidate struct {
	Object   uint32
	Medoid   uint32
	Distance float32
}

// Min folds another candidate into c, keeping the operand with the
// strictly smaller distance. On equal distances c is kept, so folding in
// a fixed order yields a deterministic winner.
func (c *Candidate) Min(another Candidate) {
	if another.Distance < c.Distance {
		*c = another
	}
}

// MarshalBinary encodes the candidate as 12 little-endian bytes:
// object, medoid, then the IEEE-754 bits of distance.
func (c Candidate) MarshalBinary() ([]byte, error) {
	buf := make([]byte, CandidateSize)
	binary.LittleEndian.PutUint32(buf[0:4], c.Object)
	binary.LittleEndian.PutUint32(buf[4:8], c.Medoid)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(c.Distance))
	return buf, nil
}

// UnmarshalBinary decodes a candidate produced by MarshalBinary.
func (c *Candidate) UnmarshalBinary(data []byte) error {
	if len(data) != CandidateSize {
		return fmt.Errorf("candidate: expected %d bytes, got %d", CandidateSize, len(data))
	}
	c.Object = binary.LittleEndian.Uint32(data[0:4])
	c.Medoid = binary.LittleEndian.Uint32(data[4:8])
	c.Distance = math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	return nil
}
