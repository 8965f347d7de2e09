// Package gorilla implements the ISF GorillaCodec (spec.md §4.4, component
// C4): fixed-block signed bit-packing with sign-extension. This is not the
// Facebook Gorilla XOR codec of the same name used elsewhere in the
// examples pack — it is a simple fixed-width two's-complement packer, the
// coordinate-compression sibling of internal/huffman.
package gorilla

import (
	"fmt"
	"math/bits"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
)

// MinBlockSize is the encoder's floor: every block reserves at least the
// sign bit.
const MinBlockSize = 1

// MaxBlockSize is the widest block the bit stream format allows.
const MaxBlockSize = 64

// BlockSize returns the smallest block width (1..64) that can represent
// every value in values as a signed two's-complement integer.
func BlockSize(values []int64) int {
	b := MinBlockSize
	for _, v := range values {
		if w := bitsFor(v); w > b {
			b = w
		}
	}

	return b
}

// bitsFor returns the minimum signed bit width needed to hold v.
func bitsFor(v int64) int {
	var magnitude uint64
	if v >= 0 {
		magnitude = uint64(v)
	} else {
		magnitude = uint64(^v) // -v-1, the largest unsigned magnitude that still fits
	}
	w := bits.Len64(magnitude) + 1
	if w < MinBlockSize {
		w = MinBlockSize
	}

	return w
}

// Encode writes each of values as a blockSize-bit signed field, MSB-first,
// using the block size Decode must be told separately (it is carried in the
// PacketCodec header byte, not in this stream).
func Encode(s *bitio.Stream, values []int64, blockSize int) error {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return fmt.Errorf("%w: gorilla block size %d out of range", errs.ErrInternal, blockSize)
	}
	mask := uint64(1)<<blockSize - 1
	if blockSize == MaxBlockSize {
		mask = ^uint64(0)
	}
	for _, v := range values {
		s.AppendBits(uint64(v)&mask, blockSize)
	}

	return nil
}

// Decode reads n blockSize-bit signed values, sign-extending each.
func Decode(s *bitio.Stream, n int, blockSize int) ([]int64, error) {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return nil, fmt.Errorf("%w: gorilla block size %d out of range", errs.ErrInternal, blockSize)
	}
	out := make([]int64, n)
	signBit := uint64(1) << (blockSize - 1)
	for i := range out {
		raw, err := s.GetBits(blockSize)
		if err != nil {
			return nil, err
		}
		v := int64(raw) //nolint:gosec // sign-extended below
		if raw&signBit != 0 && blockSize != MaxBlockSize {
			v = int64(raw) - int64(uint64(1)<<blockSize) //nolint:gosec
		}
		out[i] = v
	}

	return out, nil
}
