// Package bitio implements the ISF bit stream (spec.md §4.1, component C1):
// a byte buffer paired with a bit cursor, MSB-first within each byte. The
// same Stream type serves both directions — NewReader wraps an existing
// byte slice for Get*, NewWriter starts an empty one for Append*.
//
// The bit-buffering technique (absolute bit position, byte-at-a-time
// extraction instead of bit-at-a-time) follows the style of the teacher's
// bitReader in internal/encoding/numeric_gorilla.go, generalized to support
// random-access position queries and seeking, which ISF's tag parser uses to
// jump to the end of length-prefixed payloads.
package bitio

import (
	"fmt"

	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/internal/pool"
)

// Stream is a bit-granular cursor over a byte buffer.
//
// bitPos is an absolute bit offset from the start of buf.B: bitPos/8 is the
// byte index, bitPos%8 is the bit index within that byte counting from the
// most significant bit (bit 0 of a byte is 0x80).
type Stream struct {
	buf     *pool.ByteBuffer
	bitPos  int
	pooled  bool // true if buf came from the pool and Close should return it
}

// NewReader wraps data for bit-granular reads. data is not copied or
// modified.
func NewReader(data []byte) *Stream {
	return &Stream{buf: &pool.ByteBuffer{B: data}}
}

// NewWriter returns a Stream ready for Append*, backed by a pooled buffer.
// Call Close when done writing to return the buffer to the pool, or Release
// to take a copy of the final result and return the buffer.
func NewWriter() *Stream {
	return &Stream{buf: pool.GetBlobBuffer(), pooled: true}
}

// Close returns the writer's backing buffer to the pool. No-op for readers
// and for writers whose Bytes were already taken via Release.
func (s *Stream) Close() {
	if s.pooled && s.buf != nil {
		pool.PutBlobBuffer(s.buf)
		s.buf = nil
	}
}

// Release flushes any pending partial byte and returns the written bytes as
// a freshly allocated copy the caller owns. The Stream must not be used for
// further writes afterward; its pooled buffer is dropped rather than returned
// to the pool.
func (s *Stream) Release() []byte {
	s.Flush()
	out := make([]byte, len(s.buf.B))
	copy(out, s.buf.B)
	s.pooled = false
	s.Close()

	return out
}

func (s *Stream) ensureByte() {
	byteIdx := s.bitPos / 8
	if byteIdx >= len(s.buf.B) {
		s.buf.ExtendOrGrow(1)
		s.buf.B[byteIdx] = 0 // a reused pooled buffer may hold stale bytes
	}
}

// GetBit reads a single bit (0 or 1), MSB-first.
func (s *Stream) GetBit() (uint8, error) {
	byteIdx := s.bitPos / 8
	if byteIdx >= len(s.buf.B) {
		return 0, errs.ErrEndOfStream
	}
	bitIdx := s.bitPos % 8
	bit := (s.buf.B[byteIdx] >> (7 - bitIdx)) & 1
	s.bitPos++

	return bit, nil
}

// GetBits reads n (0..=64) bits and returns them right-aligned, MSB-first:
// the first bit read becomes the most significant bit of the result.
func (s *Stream) GetBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: bit count %d out of range", errs.ErrInternal, n)
	}
	if n == 0 {
		return 0, nil
	}

	var result uint64
	remaining := n
	for remaining > 0 {
		byteIdx := s.bitPos / 8
		if byteIdx >= len(s.buf.B) {
			return 0, errs.ErrEndOfStream
		}
		bitIdx := s.bitPos % 8
		availableInByte := 8 - bitIdx
		take := remaining
		if take > availableInByte {
			take = availableInByte
		}
		shift := availableInByte - take
		mask := byte((1 << take) - 1)
		bits := (s.buf.B[byteIdx] >> shift) & mask
		result = (result << take) | uint64(bits)
		s.bitPos += take
		remaining -= take
	}

	return result, nil
}

// GetByte reads 8 bits and returns them as a byte. Works whether or not the
// cursor is currently byte-aligned.
func (s *Stream) GetByte() (byte, error) {
	v, err := s.GetBits(8)
	if err != nil {
		return 0, err
	}

	return byte(v), nil
}

// GetBytes reads n whole bytes.
func (s *Stream) GetBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := s.GetByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}

	return out, nil
}

// AppendBits writes the low n bits of value, MSB-first (the same bit order
// GetBits reads back).
func (s *Stream) AppendBits(value uint64, n int) {
	if n <= 0 {
		return
	}
	remaining := n
	for remaining > 0 {
		s.ensureByte()
		byteIdx := s.bitPos / 8
		bitIdx := s.bitPos % 8
		availableInByte := 8 - bitIdx
		take := remaining
		if take > availableInByte {
			take = availableInByte
		}
		shift := availableInByte - take
		srcShift := remaining - take
		bitsToWrite := byte((value >> srcShift) & ((1 << take) - 1))
		s.buf.B[byteIdx] |= bitsToWrite << shift
		s.bitPos += take
		remaining -= take
	}
}

// AppendBit writes a single bit.
func (s *Stream) AppendBit(bit uint8) {
	s.AppendBits(uint64(bit&1), 1)
}

// AppendByte writes one byte.
func (s *Stream) AppendByte(b byte) {
	s.AppendBits(uint64(b), 8)
}

// AppendBytes writes data one byte at a time (bit-cursor aware).
func (s *Stream) AppendBytes(data []byte) {
	for _, b := range data {
		s.AppendByte(b)
	}
}

// Flush aligns the cursor to the next byte boundary, zero-padding any
// unused low bits of the current byte (already zero, since ensureByte clears
// each byte it adds and AppendBits only ever sets bits it's told to).
func (s *Stream) Flush() {
	if s.bitPos%8 != 0 {
		s.bitPos = (s.bitPos/8 + 1) * 8
	}
}

// SkipToNextByte discards the remainder of the current byte on the read
// side, identical in effect to Flush.
func (s *Stream) SkipToNextByte() {
	s.Flush()
}

// SkipToPrevByte clears the bit cursor within the current byte without
// moving the byte position, returning to the start of the byte the cursor
// is already in.
func (s *Stream) SkipToPrevByte() {
	s.bitPos = (s.bitPos / 8) * 8
}

// Pos returns the current bit position.
func (s *Stream) Pos() int { return s.bitPos }

// Seek moves the cursor to an absolute bit position previously obtained
// from Pos; the tag parser uses it to move to the end of a payload.
func (s *Stream) Seek(bitPos int) { s.bitPos = bitPos }

// Size returns the total number of bits currently backing the stream.
func (s *Stream) Size() int { return len(s.buf.B) * 8 }

// AtEnd reports whether the cursor has consumed all data. With
// considerBits false it treats the stream as exhausted once the cursor has
// moved past the last whole byte; with considerBits true it additionally
// requires every bit of that byte to have been consumed.
func (s *Stream) AtEnd(considerBits bool) bool {
	if considerBits {
		return s.bitPos >= s.Size()
	}

	return (s.bitPos+7)/8 >= len(s.buf.B)
}

// Bytes returns the backing buffer as written so far, without copying. The
// slice is only valid until the next Append call or Close.
func (s *Stream) Bytes() []byte { return s.buf.B }
