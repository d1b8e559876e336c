package tcpfabric

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/pamgo/medoids"
)

// Frame opcodes. Every frame is one opcode byte followed by a payload of
// the fixed size the opcode implies.
const (
	opAllReduce byte = iota + 1 // leaf → root: 12-byte candidate
	opBarrier                   // leaf → root: empty
	opResult                    // root → leaf: 12-byte reduced candidate
	opRelease                   // root → leaf: empty
	opAbort                     // either direction: 4-byte code
)

func payloadSize(op byte) (int, error) {
	switch op {
	case opAllReduce, opResult:
		return medoids.CandidateSize, nil
	case opBarrier, opRelease:
		return 0, nil
	case opAbort:
		return 4, nil
	default:
		return 0, fmt.Errorf("unknown opcode %d", op)
	}
}

func writeFrame(w io.Writer, op byte, payload []byte) error {
	buf := make([]byte, 1+len(payload))
	buf[0] = op
	copy(buf[1:], payload)
	_, err := w.Write(buf)
	return err
}

func writeCandidate(w io.Writer, op byte, c medoids.Candidate) error {
	payload, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	return writeFrame(w, op, payload)
}

func writeAbort(w io.Writer, code int) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(code))
	return writeFrame(w, opAbort, payload)
}

func readFrame(r io.Reader) (byte, []byte, error) {
	var opBuf [1]byte
	if _, err := io.ReadFull(r, opBuf[:]); err != nil {
		return 0, nil, err
	}

	size, err := payloadSize(opBuf[0])
	if err != nil {
		return 0, nil, err
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return opBuf[0], payload, nil
}

func abortCode(payload []byte) int {
	return int(binary.LittleEndian.Uint32(payload))
}
