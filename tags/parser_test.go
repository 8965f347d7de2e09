package tags_test

import (
	"testing"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/mbyte"
	"github.com/inkstream/isf/model"
	"github.com/inkstream/isf/packet"
	"github.com/inkstream/isf/tags"
	"github.com/stretchr/testify/require"
)

func wrapStream(body []byte) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.Version))
	mbyte.EncodeUint(w, uint64(len(body)))
	w.AppendBytes(body)

	return w.Release()
}

func concatTags(parts ...[]byte) []byte {
	var body []byte
	for _, p := range parts {
		body = append(body, p...)
	}

	return body
}

func inkSpaceRectTag(l, t, r, b int64) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagInkSpaceRect))
	mbyte.EncodeInt(w, l)
	mbyte.EncodeInt(w, t)
	mbyte.EncodeInt(w, r)
	mbyte.EncodeInt(w, b)

	return w.Release()
}

func himetricSizeTag(width, height int64) []byte {
	payload := bitio.NewWriter()
	mbyte.EncodeInt(payload, width)
	mbyte.EncodeInt(payload, height)
	p := payload.Release()

	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagHimetricSize))
	mbyte.EncodeUint(w, uint64(len(p)))
	w.AppendBytes(p)

	return w.Release()
}

func persistentFormatTag(value uint64) []byte {
	payload := bitio.NewWriter()
	mbyte.EncodeUint(payload, value)
	p := payload.Release()

	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagPersistentFormat))
	mbyte.EncodeUint(w, uint64(len(p)))
	w.AppendBytes(p)

	return w.Release()
}

func guidTableTag(guids [][16]byte) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagGuidTable))
	mbyte.EncodeUint(w, uint64(len(guids)*16))
	for _, g := range guids {
		w.AppendBytes(g[:])
	}

	return w.Release()
}

func customGuidTag(idx int, payload []byte) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(int(format.TagCustomGuidBase)+idx)) //nolint:gosec
	mbyte.EncodeUint(w, uint64(len(payload)))
	w.AppendBytes(payload)

	return w.Release()
}

type attrProp struct {
	prop format.Property
	val  uint64
}

func attrsBlockTag(t *testing.T, props []attrProp) []byte {
	t.Helper()
	inner := bitio.NewWriter()
	for _, p := range props {
		mbyte.EncodeUint(inner, uint64(p.prop))
		mbyte.EncodeUint(inner, p.val)
	}
	payload := inner.Release()

	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagDrawAttrsBlock))
	mbyte.EncodeUint(w, uint64(len(payload)))
	w.AppendBytes(payload)

	return w.Release()
}

func didxTag(idx uint64) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagDIDX))
	mbyte.EncodeUint(w, idx)

	return w.Release()
}

func strokeTag(t *testing.T, xs, ys []int64) []byte {
	t.Helper()
	inner := bitio.NewWriter()
	mbyte.EncodeUint(inner, uint64(len(xs)))
	require.NoError(t, packet.Deflate(inner, xs))
	require.NoError(t, packet.Deflate(inner, ys))
	payload := inner.Release()

	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.TagStroke))
	mbyte.EncodeUint(w, uint64(len(payload)))
	w.AppendBytes(payload)

	return w.Release()
}

func TestDecodeEmptyStreamIsNull(t *testing.T) {
	d := tags.Decode(wrapStream(nil))
	require.NoError(t, d.Err)
	require.True(t, d.IsNull())
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, 99)
	mbyte.EncodeUint(w, 0)
	data := w.Release()

	d := tags.Decode(data)
	require.ErrorIs(t, d.Err, errs.ErrBadVersion)
}

func TestDecodeRejectsBadStreamSize(t *testing.T) {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(format.Version))
	mbyte.EncodeUint(w, 5) // claims 5 bytes remain, but none do
	data := w.Release()

	d := tags.Decode(data)
	require.ErrorIs(t, d.Err, errs.ErrBadStreamSize)
}

func TestDecodeInkSpaceRectAndHimetricSize(t *testing.T) {
	body := concatTags(
		inkSpaceRectTag(0, 0, 1000, 2000),
		himetricSizeTag(500, 800),
	)
	d := tags.Decode(wrapStream(body))
	require.NoError(t, d.Err)
	require.Equal(t, model.Rect{Left: 0, Top: 0, Right: 500, Bottom: 800}, d.Canvas)
}

func TestDecodeDuplicateInkSpaceRectFails(t *testing.T) {
	body := concatTags(
		inkSpaceRectTag(0, 0, 10, 10),
		inkSpaceRectTag(0, 0, 20, 20),
	)
	d := tags.Decode(wrapStream(body))
	require.ErrorIs(t, d.Err, errs.ErrInvalidStream)
}

func TestDecodePersistentFormatRejectsWrongValue(t *testing.T) {
	d := tags.Decode(wrapStream(persistentFormatTag(1)))
	require.ErrorIs(t, d.Err, errs.ErrBadVersion)
}

func TestDecodePersistentFormatAccepted(t *testing.T) {
	d := tags.Decode(wrapStream(persistentFormatTag(format.PersistentFormatValue)))
	require.NoError(t, d.Err)
}

func TestDecodeGuidTableAndCustomTag(t *testing.T) {
	guids := [][16]byte{
		{1, 2, 3},
		{4, 5, 6},
	}
	body := concatTags(
		guidTableTag(guids),
		customGuidTag(1, []byte{0xAA, 0xBB}),
	)
	d := tags.Decode(wrapStream(body))
	require.NoError(t, d.Err)
	require.Len(t, d.Guids, 2)
	require.Equal(t, model.Guid(guids[1]), d.Guids[1])
}

func TestDecodeRejectsUnregisteredCustomTag(t *testing.T) {
	body := concatTags(
		guidTableTag([][16]byte{{1}}),
		customGuidTag(3, []byte{0x01}),
	)
	d := tags.Decode(wrapStream(body))
	require.ErrorIs(t, d.Err, errs.ErrInvalidStream)
}

func TestDecodeStrokeWithAttributesUpdatesBounds(t *testing.T) {
	xs := []int64{10, 15, 20}
	ys := []int64{20, 25, 30}

	body := concatTags(
		attrsBlockTag(t, []attrProp{
			{format.PropertyPenWidth, 100},
			{format.PropertyPenHeight, 100},
		}),
		didxTag(0),
		strokeTag(t, xs, ys),
	)
	d := tags.Decode(wrapStream(body))
	require.NoError(t, d.Err)
	require.Len(t, d.Strokes, 1)
	require.Len(t, d.AttributeSet, 1)

	st := d.Strokes[0]
	require.Equal(t, model.AttributeSetID(0), st.AttrsID)
	require.Len(t, st.Points, 3)
	require.Equal(t, int64(10), st.Points[0].X)
	require.Equal(t, int64(30), st.Points[2].Y)
	require.False(t, st.Bounds.IsZero())
}

func TestDecodeStrokeWithoutAttributesDefaultsToZeroPen(t *testing.T) {
	body := strokeTag(t, []int64{1, 2}, []int64{3, 4})
	d := tags.Decode(wrapStream(body))
	require.NoError(t, d.Err)
	require.Len(t, d.Strokes, 1)
	require.Equal(t, model.AttributeSetID(model.NoID), d.Strokes[0].AttrsID)
}
