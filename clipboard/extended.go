package clipboard

import (
	"fmt"

	"github.com/ltsm/rfbcore/rfberr"
)

// ChunkAssembler reassembles an extended-clipboard "provide" payload
// delivered as {total, block_offset, block_len, bytes} chunks. It caps
// the declared total at maxPayload and rejects anything larger as
// ClipboardTooLarge before allocating.
type ChunkAssembler struct {
	maxPayload int
	total      int
	buf        []byte
	received   int
}

// NewChunkAssembler starts assembling a payload of the given declared
// total length.
func NewChunkAssembler(total, maxPayload int) (*ChunkAssembler, error) {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	if total < 0 || total > maxPayload {
		return nil, fmt.Errorf("clipboard: declared total %d exceeds cap %d: %w", total, maxPayload, rfberr.ClipboardTooLarge)
	}
	return &ChunkAssembler{maxPayload: maxPayload, total: total, buf: make([]byte, total)}, nil
}

// AddChunk writes one block at offset. Out-of-range offsets are a
// protocol violation, not silently clamped.
func (a *ChunkAssembler) AddChunk(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > a.total {
		return fmt.Errorf("clipboard: chunk [%d,%d) outside declared total %d: %w", offset, offset+len(data), a.total, rfberr.ProtocolViolation)
	}
	copy(a.buf[offset:], data)
	a.received += len(data)
	return nil
}

// Done reports whether every byte of the declared payload has arrived.
func (a *ChunkAssembler) Done() bool { return a.received >= a.total }

// Bytes returns the assembled payload. Only meaningful once Done.
func (a *ChunkAssembler) Bytes() []byte { return a.buf }
