package mbyte_test

import (
	"math"
	"testing"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/mbyte"
	"github.com/stretchr/testify/require"
)

func TestUintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 16383, 16384, math.MaxUint32, math.MaxUint64}
	for _, v := range values {
		w := bitio.NewWriter()
		n := mbyte.EncodeUint(w, v)
		data := w.Release()
		require.Equal(t, n, len(data))
		require.Equal(t, mbyte.Size(v), len(data))

		r := bitio.NewReader(data)
		got, err := mbyte.DecodeUint(r)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 127, -127, math.MaxInt64, math.MinInt64, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		w := bitio.NewWriter()
		mbyte.EncodeInt(w, v)
		data := w.Release()

		r := bitio.NewReader(data)
		got, err := mbyte.DecodeInt(r)
		require.NoError(t, err, "v=%d", v)
		require.Equal(t, v, got, "v=%d", v)
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 3.14159, -2.71828, math.MaxFloat32, -math.MaxFloat32}
	for _, v := range values {
		w := bitio.NewWriter()
		mbyte.EncodeFloat32(w, v)
		data := w.Release()
		require.Len(t, data, 4)

		r := bitio.NewReader(data)
		got, err := mbyte.DecodeFloat32(r)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecodeUintTruncatedStream(t *testing.T) {
	r := bitio.NewReader([]byte{0x80}) // continuation bit set, no following byte
	_, err := mbyte.DecodeUint(r)
	require.Error(t, err)
}
