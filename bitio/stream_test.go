package bitio_test

import (
	"testing"

	"github.com/inkstream/isf/bitio"
	"github.com/stretchr/testify/require"
)

func TestBitRoundTrip(t *testing.T) {
	for n := 1; n <= 64; n++ {
		w := bitio.NewWriter()
		var v uint64
		if n < 64 {
			v = (uint64(1) << n) - 1 // all-ones value of width n
		} else {
			v = ^uint64(0)
		}
		w.AppendBits(v, n)
		data := w.Release()

		r := bitio.NewReader(data)
		got, err := r.GetBits(n)
		require.NoError(t, err)
		require.Equal(t, v, got, "n=%d", n)
	}
}

func TestGetBitEndOfStream(t *testing.T) {
	r := bitio.NewReader(nil)
	_, err := r.GetBit()
	require.Error(t, err)
}

func TestByteAlignedRoundTrip(t *testing.T) {
	w := bitio.NewWriter()
	w.AppendByte(0xAB)
	w.AppendBytes([]byte{0x01, 0x02, 0x03})
	data := w.Release()
	require.Equal(t, []byte{0xAB, 0x01, 0x02, 0x03}, data)

	r := bitio.NewReader(data)
	b, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), b)

	rest, err := r.GetBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, rest)
}

func TestMisalignedAppendThenRead(t *testing.T) {
	w := bitio.NewWriter()
	w.AppendBits(0b101, 3)
	w.AppendBits(0xFF, 8)
	w.AppendBits(0b01, 2)
	data := w.Release()

	r := bitio.NewReader(data)
	v1, err := r.GetBits(3)
	require.NoError(t, err)
	require.Equal(t, uint64(0b101), v1)

	v2, err := r.GetBits(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0xFF), v2)

	v3, err := r.GetBits(2)
	require.NoError(t, err)
	require.Equal(t, uint64(0b01), v3)
}

func TestSkipToNextByte(t *testing.T) {
	r := bitio.NewReader([]byte{0xFF, 0x00})
	_, err := r.GetBits(3)
	require.NoError(t, err)
	r.SkipToNextByte()
	require.Equal(t, 8, r.Pos())

	b, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x00), b)
}

func TestSkipToPrevByte(t *testing.T) {
	r := bitio.NewReader([]byte{0xFF})
	_, err := r.GetBits(3)
	require.NoError(t, err)
	r.SkipToPrevByte()
	require.Equal(t, 0, r.Pos())

	b, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), b)
}

func TestAtEnd(t *testing.T) {
	r := bitio.NewReader([]byte{0xFF})
	require.False(t, r.AtEnd(false))
	require.False(t, r.AtEnd(true))

	_, err := r.GetBits(4)
	require.NoError(t, err)
	require.False(t, r.AtEnd(true))

	_, err = r.GetBits(4)
	require.NoError(t, err)
	require.True(t, r.AtEnd(true))
	require.True(t, r.AtEnd(false))
}

func TestSeekRewind(t *testing.T) {
	r := bitio.NewReader([]byte{0xAA, 0xBB})
	pos := r.Pos()
	_, err := r.GetBits(8)
	require.NoError(t, err)

	r.Seek(pos)
	b, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), b)
}
