package isf_test

import (
	"testing"

	"github.com/inkstream/isf"
	"github.com/inkstream/isf/archive"
	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/mbyte"
	"github.com/inkstream/isf/model"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyStreamIsNull(t *testing.T) {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.Version))
	mbyte.EncodeUint(w, 0)
	data := w.Release()

	d := isf.Decode(data)
	require.NoError(t, d.Err)
	require.True(t, d.IsNull())
}

func TestEncodeDecodeSinglePointStrokeRoundTrip(t *testing.T) {
	d := model.NewDrawing()
	attrs := model.DefaultAttributeSet()
	attrs.Size = model.Size{Width: 6, Height: 6}
	id := d.InternAttributeSet(attrs)
	d.MaxPenWidth, d.MaxPenHeight = 6, 6

	st := model.NewStroke()
	st.AttrsID = id
	st.Points = []model.Point{{X: 42, Y: -17}}
	st.Finalize(6, 6, nil)
	d.AddStroke(st)

	data, err := isf.Encode(d)
	require.NoError(t, err)

	got := isf.Decode(data)
	require.NoError(t, got.Err)
	require.Len(t, got.Strokes, 1)
	require.Equal(t, []model.Point{{X: 42, Y: -17}}, got.Strokes[0].Points)
}

func TestMultiStrokeSharedAttributesOmitsRedundantIndex(t *testing.T) {
	d := model.NewDrawing()
	attrs := model.DefaultAttributeSet()
	attrs.Size = model.Size{Width: 3, Height: 3}
	id := d.InternAttributeSet(attrs)

	for _, pt := range []model.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}} {
		st := model.NewStroke()
		st.AttrsID = id
		st.Points = []model.Point{pt}
		st.Finalize(3, 3, nil)
		d.AddStroke(st)
	}

	data, err := isf.Encode(d)
	require.NoError(t, err)

	got := isf.Decode(data)
	require.NoError(t, got.Err)
	require.Len(t, got.Strokes, 3)
	require.Len(t, got.AttributeSet, 1)
	for _, st := range got.Strokes {
		require.Equal(t, model.AttributeSetID(0), st.AttrsID)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	got := isf.Decode([]byte{0xFF, 0x00})
	require.Error(t, got.Err)
}

func TestPNGRoundTripThroughFacade(t *testing.T) {
	d := model.NewDrawing()
	st := model.NewStroke()
	st.Points = []model.Point{{X: 1, Y: 1}}
	st.Finalize(0, 0, nil)
	d.AddStroke(st)

	wrapped, err := isf.EncodePNG(d)
	require.NoError(t, err)

	got, err := isf.DecodePNG(wrapped)
	require.NoError(t, err)
	require.NoError(t, got.Err)
	require.Len(t, got.Strokes, 1)
}

func TestGIFRoundTripThroughFacade(t *testing.T) {
	d := model.NewDrawing()
	st := model.NewStroke()
	st.Points = []model.Point{{X: 2, Y: 2}}
	st.Finalize(0, 0, nil)
	d.AddStroke(st)

	wrapped, err := isf.EncodeGIF(d)
	require.NoError(t, err)

	got, err := isf.DecodeGIF(wrapped)
	require.NoError(t, err)
	require.NoError(t, got.Err)
	require.Len(t, got.Strokes, 1)
}

func TestEncodeCompressedRoundTripAllCodecs(t *testing.T) {
	d := model.NewDrawing()
	st := model.NewStroke()
	st.Points = []model.Point{{X: 3, Y: 3}, {X: 4, Y: 5}}
	st.Finalize(0, 0, nil)
	d.AddStroke(st)

	codecs := []archive.Codec{
		archive.NewNoOpCompressor(),
		archive.NewZstdCompressor(),
		archive.NewS2Compressor(),
		archive.NewLZ4Compressor(),
	}

	for _, codec := range codecs {
		compressed, err := isf.EncodeCompressed(d, codec)
		require.NoError(t, err)

		got, err := isf.DecodeCompressed(compressed)
		require.NoError(t, err)
		require.NoError(t, got.Err)
		require.Len(t, got.Strokes, 1)
		require.Equal(t, []model.Point{{X: 3, Y: 3}, {X: 4, Y: 5}}, got.Strokes[0].Points)
	}
}

func TestDecodeCompressedRejectsEmptyInput(t *testing.T) {
	_, err := isf.DecodeCompressed(nil)
	require.Error(t, err)
}

func TestDecodeNeverPanicsOnRandomBytes(t *testing.T) {
	seeds := [][]byte{
		{0x00},
		{0x01, 0x02, 0x03},
		{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		make([]byte, 128),
	}
	for _, data := range seeds {
		require.NotPanics(t, func() {
			_ = isf.Decode(data)
		})
	}
}
