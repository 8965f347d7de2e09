// Package huffman implements the ISF Adaptive-Huffman coordinate codec
// (spec.md §4.5, component C5): a 3-bit table index selects one of eight
// hard-coded (bitAmounts, base) tables, each value coded as a unary
// run-length prefix followed by a signed offset.
//
// The table contents are taken verbatim from
// original_source/src/data/huffman.cpp's bitAmounts_/huffmanBases_ arrays;
// the base values there are themselves the prefix sum
// base[k] = base[k-1] + 2^(bitAmounts[k-1]-1), which the C++ computes at
// load time and this package simply stores pre-computed.
//
// Delta-delta preconditioning (spec.md §4.3) is applied by the caller
// (packet.PacketCodec, component C6), not by this package.
package huffman

import (
	"fmt"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
)

// NumTables is the number of hard-coded adaptive tables.
const NumTables = 8

// table holds one adaptive-Huffman table. bitAmounts[0] is always 0 and is
// never read (a run length of 0 emits value 0 with no offset bits); it is
// kept so indices line up exactly with original_source.
type table struct {
	bitAmounts []int
	bases      []uint64
}

var tables = [NumTables]table{
	{bitAmounts: []int{0, 1, 2, 4, 6, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 2, 4, 12, 44, 172, 2220, 34988, 8423596}},
	{bitAmounts: []int{0, 1, 1, 2, 4, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 2, 3, 5, 13, 141, 2189, 34957, 8423565}},
	{bitAmounts: []int{0, 1, 1, 1, 2, 4, 8, 14, 22, 32}, bases: []uint64{0, 1, 2, 3, 4, 6, 14, 142, 8334, 2105486}},
	{bitAmounts: []int{0, 2, 2, 3, 5, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 3, 5, 9, 25, 153, 2201, 34969, 8423577}},
	{bitAmounts: []int{0, 3, 4, 5, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 5, 13, 29, 157, 2205, 34973, 8423581}},
	{bitAmounts: []int{0, 4, 6, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 9, 41, 169, 2217, 34985, 8423593}},
	{bitAmounts: []int{0, 6, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 33, 161, 2209, 34977, 8423585}},
	{bitAmounts: []int{0, 7, 8, 12, 16, 24, 32}, bases: []uint64{0, 1, 65, 193, 2241, 35009, 8423617}},
}

// Decode reads n values from s using the table at index.
func Decode(s *bitio.Stream, n int, index int) ([]int64, error) {
	if index < 0 || index >= NumTables {
		return nil, fmt.Errorf("%w: huffman table index %d out of range", errs.ErrInternal, index)
	}
	t := tables[index]
	out := make([]int64, 0, n)

	for len(out) < n {
		count := 0
		for {
			bit, err := s.GetBit()
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				break
			}
			count++
		}

		var value int64
		switch {
		case count == 0:
			value = 0
		case count < len(t.bitAmounts):
			raw, err := s.GetBits(t.bitAmounts[count])
			if err != nil {
				return nil, err
			}
			sign := raw&1 != 0
			off := raw >> 1
			value = int64(t.bases[count] + off) //nolint:gosec // coordinate magnitudes stay well within int64
			if sign {
				value = -value
			}
		case count == len(t.bitAmounts):
			return nil, fmt.Errorf("%w: huffman 64-bit extension", errs.ErrUnsupported)
		default:
			return nil, fmt.Errorf("%w: huffman run length %d exceeds table", errs.ErrInvalidPayload, count)
		}

		out = append(out, value)
	}

	return out, nil
}

// encodeValue returns the (runLength, offsetField) pair for v under table
// index, and ok=false if v is out of that table's representable range.
func encodeValue(t table, v int64) (count int, raw uint64, ok bool) {
	if v == 0 {
		return 0, 0, true
	}

	sign := uint64(0)
	var mag uint64
	if v < 0 {
		sign = 1
		mag = uint64(-v) //nolint:gosec // ISF coordinate deltas never approach MinInt64
	} else {
		mag = uint64(v)
	}

	for k := 1; k < len(t.bitAmounts); k++ {
		span := uint64(1) << (t.bitAmounts[k] - 1)
		if mag >= t.bases[k] && mag-t.bases[k] < span {
			off := mag - t.bases[k]

			return k, (off << 1) | sign, true
		}
	}

	return 0, 0, false
}

// cost returns the number of bits encodeValue's result would occupy on the
// wire: count 1-bits, one terminating 0-bit, plus the offset field.
func cost(t table, count int) int {
	return count + 1 + t.bitAmounts[count]
}

// ChooseTable profiles values against every table and returns the index of
// the one that encodes them in the fewest total bits. Returns
// errs.ErrUnsupported if no table can represent every value (would require
// the unimplemented 64-bit extension).
func ChooseTable(values []int64) (int, error) {
	best := -1
	bestBits := 0

	for idx, t := range tables {
		total := 0
		fits := true
		for _, v := range values {
			count, _, ok := encodeValue(t, v)
			if !ok {
				fits = false

				break
			}
			total += cost(t, count)
		}
		if fits && (best == -1 || total < bestBits) {
			best = idx
			bestBits = total
		}
	}

	if best == -1 {
		return 0, fmt.Errorf("%w: no huffman table fits every value", errs.ErrUnsupported)
	}

	return best, nil
}

// Encode writes values to s under the table at index.
func Encode(s *bitio.Stream, values []int64, index int) error {
	if index < 0 || index >= NumTables {
		return fmt.Errorf("%w: huffman table index %d out of range", errs.ErrInternal, index)
	}
	t := tables[index]

	for _, v := range values {
		count, raw, ok := encodeValue(t, v)
		if !ok {
			return fmt.Errorf("%w: value %d does not fit huffman table %d", errs.ErrUnsupported, v, index)
		}
		for range count {
			s.AppendBit(1)
		}
		s.AppendBit(0)
		if count > 0 {
			s.AppendBits(raw, t.bitAmounts[count])
		}
	}

	return nil
}
