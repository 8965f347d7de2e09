// Package mbyte implements the ISF multi-byte integer and float codec
// (spec.md §4.2, component C2): a 7-bit-continuation variable-length
// integer, its zigzag-signed variant, and a little-endian float32, all
// layered on top of a bitio.Stream's byte-aligned reads and writes.
//
// Byte order (least-significant 7-bit group first, continuation flag in
// bit 7) is confirmed against original_source/src/multibytecoding.cpp.
package mbyte

import (
	"fmt"
	"math"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/endian"
	"github.com/inkstream/isf/errs"
)

// wireEndian is little-endian regardless of host byte order, per spec.md §6.
var wireEndian = endian.GetLittleEndianEngine()

const continuationBit = 0x80

// Size returns the number of bytes EncodeUint(v) would write.
func Size(v uint64) int {
	n := 1
	for v >= continuationBit {
		v >>= 7
		n++
	}

	return n
}

// SizeSigned returns the number of bytes EncodeInt(v) would write.
func SizeSigned(v int64) int {
	return Size(zigzagEncode(v))
}

func absUint64(v int64) uint64 {
	if v >= 0 {
		return uint64(v)
	}

	return uint64(-(v+1)) + 1
}

func zigzagEncode(v int64) uint64 {
	u := absUint64(v) << 1
	if v < 0 {
		u |= 1
	}

	return u
}

func zigzagDecode(u uint64) int64 {
	sign := u&1 != 0
	abs := u >> 1
	if !sign {
		return int64(abs) //nolint:gosec // abs <= 2^63-1 for a non-negative original value
	}

	// zigzagEncode(MinInt64) shifts |MinInt64| = 2^63 out of range, leaving
	// only the sign bit (u == 1); no other value encodes to a negative zero.
	if abs == 0 {
		return math.MinInt64
	}

	return -int64(abs) //nolint:gosec
}

// EncodeUint writes v to s as a 7-bit-continuation varint, least-significant
// group first, and returns the number of bytes written.
func EncodeUint(s *bitio.Stream, v uint64) int {
	n := 0
	for {
		group := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			s.AppendByte(group | continuationBit)
		} else {
			s.AppendByte(group)
		}
		n++
		if v == 0 {
			return n
		}
	}
}

// DecodeUint reads a 7-bit-continuation varint from s.
func DecodeUint(s *bitio.Stream) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, fmt.Errorf("%w: multi-byte integer longer than 10 bytes", errs.ErrInvalidPayload)
		}
		b, err := s.GetByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&continuationBit == 0 {
			return result, nil
		}
		shift += 7
	}
}

// EncodeInt writes a zigzag-encoded signed varint and returns the byte
// count.
func EncodeInt(s *bitio.Stream, v int64) int {
	return EncodeUint(s, zigzagEncode(v))
}

// DecodeInt reads a zigzag-encoded signed varint.
func DecodeInt(s *bitio.Stream) (int64, error) {
	u, err := DecodeUint(s)
	if err != nil {
		return 0, err
	}

	return zigzagDecode(u), nil
}

// EncodeFloat32 writes f as IEEE-754 binary32, little-endian on the wire
// regardless of host byte order.
func EncodeFloat32(s *bitio.Stream, f float32) {
	var buf [4]byte
	wireEndian.PutUint32(buf[:], math.Float32bits(f))
	s.AppendBytes(buf[:])
}

// DecodeFloat32 reads a little-endian IEEE-754 binary32.
func DecodeFloat32(s *bitio.Stream) (float32, error) {
	b, err := s.GetBytes(4)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(wireEndian.Uint32(b)), nil
}
