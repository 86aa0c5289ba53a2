package frame

import (
	"fmt"

	"github.com/wagiedev/frame-pump-go/internal/errors"
)

// Handler receives complete frames.
//
// OnFrame is called synchronously, once per frame, in stream order. The
// slice is exactly one frame long and is not reused, so it may be retained.
type Handler interface {
	OnFrame(frame []byte) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(frame []byte) error

// OnFrame implements Handler.
func (f HandlerFunc) OnFrame(frame []byte) error {
	return f(frame)
}

// Reassembler converts variably sized reads into fixed-size frames.
//
// It has two states: empty (no remainder) and partial
// (0 < len(remainder) < Size). A remainder of a full frame never exists;
// it is emitted immediately. A Reassembler is not safe for concurrent use.
type Reassembler struct {
	size      int
	remainder []byte
}

// New creates a Reassembler for frames of size bytes.
func New(size int) (*Reassembler, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", errors.ErrInvalidFrameSize, size)
	}

	return &Reassembler{
		size:      size,
		remainder: make([]byte, 0, size),
	}, nil
}

// Size returns the frame size in bytes.
func (r *Reassembler) Size() int {
	return r.size
}

// Need returns how many bytes complete the pending frame. It is Size when
// the reassembler is empty.
func (r *Reassembler) Need() int {
	return r.size - len(r.remainder)
}

// Pending returns the number of remainder bytes held back.
func (r *Reassembler) Pending() int {
	return len(r.remainder)
}

// Remainder returns a copy of the held-back bytes.
func (r *Reassembler) Remainder() []byte {
	out := make([]byte, len(r.remainder))
	copy(out, r.remainder)

	return out
}

// Receive combines the remainder with chunk, emits every complete frame and
// keeps the tail as the new remainder.
//
// An empty chunk with an empty remainder is a no-op. If the handler fails,
// the frame it was given is consumed, the remaining input is discarded and
// the error is returned.
func (r *Reassembler) Receive(chunk []byte, h Handler) error {
	return r.consume(chunk, h)
}

// Flush is the end-of-stream counterpart of Receive. Complete frames are
// emitted as usual; a trailing partial frame is dropped and its length
// returned. The reassembler is empty afterwards.
func (r *Reassembler) Flush(final []byte, h Handler) (int, error) {
	err := r.consume(final, h)

	dropped := len(r.remainder)
	r.remainder = r.remainder[:0]

	return dropped, err
}

// consume slices frames off the front of remainder ++ chunk one at a time.
func (r *Reassembler) consume(chunk []byte, h Handler) error {
	for len(chunk) > 0 {
		need := r.size - len(r.remainder)

		if len(chunk) < need {
			r.remainder = append(r.remainder, chunk...)

			return nil
		}

		frame := make([]byte, r.size)
		n := copy(frame, r.remainder)
		copy(frame[n:], chunk[:need])
		chunk = chunk[need:]
		r.remainder = r.remainder[:0]

		if err := h.OnFrame(frame); err != nil {
			return err
		}
	}

	return nil
}
