package frame

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/frame-pump-go/internal/errors"
)

// collector records every frame it is handed.
type collector struct {
	frames [][]byte
}

func (c *collector) OnFrame(frame []byte) error {
	c.frames = append(c.frames, frame)

	return nil
}

// seq returns the bytes from..to inclusive.
func seq(from, to byte) []byte {
	out := make([]byte, 0, int(to-from)+1)
	for b := from; ; b++ {
		out = append(out, b)
		if b == to {
			break
		}
	}

	return out
}

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -4096} {
		_, err := New(size)
		require.ErrorIs(t, err, errors.ErrInvalidFrameSize)
	}
}

func TestReceive_ExactAndPartial(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	c := &collector{}

	require.NoError(t, r.Receive(seq(0x00, 0x04), c))
	require.Equal(t, [][]byte{{0x00, 0x01, 0x02, 0x03, 0x04}}, c.frames)
	require.Zero(t, r.Pending())

	require.NoError(t, r.Receive([]byte{0x05, 0x06}, c))
	require.Len(t, c.frames, 1)
	require.Equal(t, []byte{0x05, 0x06}, r.Remainder())
	require.Equal(t, 3, r.Need())
}

func TestReceive_ContinuationFillsSlots(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	c := &collector{}

	require.NoError(t, r.Receive(seq(0x00, 0x04), c))
	require.NoError(t, r.Receive([]byte{0x05, 0x06}, c))

	stream := seq(0x07, 0x1A)
	for len(stream) > 0 {
		n := min(r.Need(), len(stream))
		require.NoError(t, r.Receive(stream[:n], c))
		stream = stream[n:]
	}

	require.Equal(t, []byte{0x05, 0x06, 0x07, 0x08, 0x09}, c.frames[1])
	require.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D, 0x0E}, c.frames[2])
	require.Len(t, c.frames, 5)
	require.Equal(t, []byte{0x19, 0x1A}, r.Remainder())
}

func TestFlush_DropsTruncatedTail(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	c := &collector{}
	require.NoError(t, r.Receive([]byte{0x19, 0x1A}, c))

	dropped, err := r.Flush(nil, c)
	require.NoError(t, err)
	require.Equal(t, 2, dropped)
	require.Empty(t, c.frames)
	require.Zero(t, r.Pending())
}

func TestFlush_EmptyIsIdempotent(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	c := &collector{}

	for range 3 {
		dropped, err := r.Flush([]byte{}, c)
		require.NoError(t, err)
		require.Zero(t, dropped)
	}

	require.Empty(t, c.frames)
	require.Equal(t, 5, r.Need())
}

func TestFlush_CompletesFinalFrame(t *testing.T) {
	r, err := New(4)
	require.NoError(t, err)

	c := &collector{}
	require.NoError(t, r.Receive([]byte{1, 2, 3}, c))

	dropped, err := r.Flush([]byte{4, 5, 6}, c)
	require.NoError(t, err)
	require.Equal(t, 2, dropped)
	require.Equal(t, [][]byte{{1, 2, 3, 4}}, c.frames)
}

func TestReceive_EmptyChunkKeepsState(t *testing.T) {
	r, err := New(3)
	require.NoError(t, err)

	c := &collector{}
	require.NoError(t, r.Receive(nil, c))
	require.Zero(t, r.Pending())

	require.NoError(t, r.Receive([]byte{9}, c))
	require.NoError(t, r.Receive(nil, c))
	require.Equal(t, []byte{9}, r.Remainder())
	require.Empty(t, c.frames)
}

// TestReceive_GranularityIndependent feeds the same stream through several
// split strategies and requires identical frame sequences.
func TestReceive_GranularityIndependent(t *testing.T) {
	stream := make([]byte, 1000)
	for i := range stream {
		stream[i] = byte(i * 7)
	}

	const size = 24

	splits := map[string]func(i int) int{
		"one byte":     func(int) int { return 1 },
		"frame sized":  func(int) int { return size },
		"prime":        func(int) int { return 13 },
		"larger":       func(int) int { return 97 },
		"growing":      func(i int) int { return i + 1 },
		"whole stream": func(int) int { return len(stream) },
	}

	var want [][]byte
	for off := 0; off+size <= len(stream); off += size {
		want = append(want, stream[off:off+size])
	}

	for name, step := range splits {
		t.Run(name, func(t *testing.T) {
			r, err := New(size)
			require.NoError(t, err)

			c := &collector{}
			rest := stream

			for i := 0; len(rest) > 0; i++ {
				n := min(step(i), len(rest))
				require.NoError(t, r.Receive(rest[:n], c))
				rest = rest[n:]
			}

			dropped, err := r.Flush(nil, c)
			require.NoError(t, err)
			require.Equal(t, len(stream)%size, dropped)
			require.Equal(t, want, c.frames)
		})
	}
}

func TestReceive_FramesAreNotAliased(t *testing.T) {
	r, err := New(2)
	require.NoError(t, err)

	c := &collector{}
	buf := []byte{1, 2, 3, 4}
	require.NoError(t, r.Receive(buf, c))

	copy(buf, []byte{9, 9, 9, 9})
	require.True(t, bytes.Equal([]byte{1, 2}, c.frames[0]))
	require.True(t, bytes.Equal([]byte{3, 4}, c.frames[1]))
}

func TestReceive_HandlerError(t *testing.T) {
	r, err := New(2)
	require.NoError(t, err)

	boom := stderrors.New("consumer full")
	calls := 0

	h := HandlerFunc(func([]byte) error {
		calls++
		if calls == 2 {
			return boom
		}

		return nil
	})

	err = r.Receive([]byte{1, 2, 3, 4, 5, 6}, h)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}
