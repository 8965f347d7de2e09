// Package packet implements PacketCodec (spec.md §4.6, component C6): the
// dispatcher that picks Gorilla or Huffman coordinate compression, applies
// delta-delta preconditioning when required, and reads/writes the single
// header byte that says which.
package packet

import (
	"fmt"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/internal/gorilla"
	"github.com/inkstream/isf/internal/huffman"
	"github.com/inkstream/isf/transform"
)

// Inflate reads a header byte from s followed by n packed coordinate
// values, and returns them decoded and (if applicable) delta-delta
// restored.
func Inflate(s *bitio.Stream, n int) ([]int64, error) {
	headerByte, err := s.GetByte()
	if err != nil {
		return nil, err
	}
	header := format.DecodeHeader(headerByte)

	var values []int64
	switch header.Family {
	case format.AlgoGorilla:
		values, err = gorilla.Decode(s, n, header.ResolvedParam())
		if err != nil {
			return nil, err
		}
	case format.AlgoHuffman:
		values, err = huffman.Decode(s, n, int(header.Param))
		if err != nil {
			return nil, err
		}
		// Huffman streams are always delta-delta preconditioned
		// regardless of the header transform bit (spec.md §4.5).
		header.Transform = true
	default:
		return nil, fmt.Errorf("%w: packet algorithm family %02b", errs.ErrUnsupported, header.Family)
	}

	if header.Transform {
		transform.Inverse(values)
	}
	s.SkipToNextByte()

	return values, nil
}

// Deflate writes values to s as a header byte followed by packed
// coordinate data. Per spec.md §4.6: single values (n==1) use Gorilla with
// no transform, runs of more than one value are delta-delta transformed and
// Huffman-coded.
func Deflate(s *bitio.Stream, values []int64) error {
	if len(values) == 1 {
		b := gorilla.BlockSize(values)
		if b > 32 {
			// The header's 5-bit param field only addresses block sizes
			// 1..32 (0 means 32); wider blocks have no wire representation.
			return fmt.Errorf("%w: gorilla block size %d exceeds header field width", errs.ErrUnsupported, b)
		}
		param := byte(b % 32) //nolint:gosec // b in [1,32], %32 maps 32->0 per the header's own convention
		s.AppendByte(format.EncodeHeader(format.AlgoGorilla, false, param))

		return gorilla.Encode(s, values, b)
	}

	transformed := append([]int64(nil), values...)
	transform.Forward(transformed)

	idx, err := huffman.ChooseTable(transformed)
	if err != nil {
		return err
	}
	s.AppendByte(format.EncodeHeader(format.AlgoHuffman, true, byte(idx)))

	return huffman.Encode(s, transformed, idx)
}
