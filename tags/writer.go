package tags

import (
	"fmt"
	"sort"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/mbyte"
	"github.com/inkstream/isf/model"
	"github.com/inkstream/isf/packet"
)

// Encode serialises a Drawing back to ISF wire bytes, mirroring Decode
// (spec.md §4.9). The body is assembled in full before the outer
// version/size header is prepended, since the size field must be exact.
func Encode(d *model.Drawing) ([]byte, error) {
	body := bitio.NewWriter()

	writePersistentFormat(body)
	writeHimetricSize(body, d)
	writeAttributeSets(body, d)
	writeMetricsTables(body, d)
	writeTransforms(body, d)

	if err := writeStrokes(body, d); err != nil {
		body.Close()

		return nil, err
	}

	payload := body.Release()

	out := bitio.NewWriter()
	mbyte.EncodeUint(out, uint64(format.Version))
	mbyte.EncodeUint(out, uint64(len(payload)))
	out.AppendBytes(payload)

	return out.Release(), nil
}

func writeLengthPrefixed(w *bitio.Stream, tag format.Tag, payload []byte) {
	mbyte.EncodeUint(w, uint64(tag))
	mbyte.EncodeUint(w, uint64(len(payload)))
	w.AppendBytes(payload)
}

func writePersistentFormat(w *bitio.Stream) {
	inner := bitio.NewWriter()
	mbyte.EncodeUint(inner, format.PersistentFormatValue)
	writeLengthPrefixed(w, format.TagPersistentFormat, inner.Release())
}

func writeHimetricSize(w *bitio.Stream, d *model.Drawing) {
	inner := bitio.NewWriter()
	mbyte.EncodeInt(inner, d.Canvas.Right-d.Canvas.Left)
	mbyte.EncodeInt(inner, d.Canvas.Bottom-d.Canvas.Top)
	writeLengthPrefixed(w, format.TagHimetricSize, inner.Release())
}

// encodeAttrsBlockPayload writes only properties that differ from
// DefaultAttributeSet, per spec.md §4.9's "writer doesn't emit COLORREF for
// black with full alpha".
func encodeAttrsBlockPayload(set model.AttributeSet) []byte {
	w := bitio.NewWriter()

	def := model.DefaultRGBA
	if set.Color.R != def.R || set.Color.G != def.G || set.Color.B != def.B {
		mbyte.EncodeUint(w, uint64(format.PropertyColorRef))
		mbyte.EncodeUint(w, uint64(set.Color.R)|uint64(set.Color.G)<<8|uint64(set.Color.B)<<16)
	}
	if set.Color.A != def.A {
		mbyte.EncodeUint(w, uint64(format.PropertyTransparency))
		mbyte.EncodeUint(w, uint64(set.Color.A))
	}

	switch {
	case set.Size.Width != 0 && set.Size.Width == set.Size.Height:
		mbyte.EncodeUint(w, uint64(format.PropertyPenWidth))
		mbyte.EncodeUint(w, uint64(set.Size.Width*format.HiMetricPerPixel))
	default:
		if set.Size.Width != 0 {
			mbyte.EncodeUint(w, uint64(format.PropertyPenWidth))
			mbyte.EncodeUint(w, uint64(set.Size.Width*format.HiMetricPerPixel))
		}
		if set.Size.Height != 0 {
			mbyte.EncodeUint(w, uint64(format.PropertyPenHeight))
			mbyte.EncodeUint(w, uint64(set.Size.Height*format.HiMetricPerPixel))
		}
	}

	if set.Tip != format.PenTipBall {
		mbyte.EncodeUint(w, uint64(format.PropertyPenTip))
		mbyte.EncodeUint(w, 1)
	}
	if set.Flags != 0 {
		mbyte.EncodeUint(w, uint64(format.PropertyDrawingFlags))
		mbyte.EncodeUint(w, uint64(set.Flags))
	}
	if set.ROP != ([3]byte{}) {
		mbyte.EncodeUint(w, uint64(format.PropertyROP))
		w.AppendBytes(set.ROP[:])
	}

	return w.Release()
}

func writeAttributeSets(w *bitio.Stream, d *model.Drawing) {
	switch len(d.AttributeSet) {
	case 0:
		return
	case 1:
		writeLengthPrefixed(w, format.TagDrawAttrsBlock, encodeAttrsBlockPayload(d.AttributeSet[0]))
	default:
		inner := bitio.NewWriter()
		for _, set := range d.AttributeSet {
			payload := encodeAttrsBlockPayload(set)
			mbyte.EncodeUint(inner, uint64(len(payload)))
			inner.AppendBytes(payload)
		}
		writeLengthPrefixed(w, format.TagDrawAttrsTable, inner.Release())
	}
}

func encodeMetricsBlockPayload(m model.Metrics) []byte {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w := bitio.NewWriter()
	for _, id := range ids {
		metric := m[id]

		entry := bitio.NewWriter()
		mbyte.EncodeInt(entry, metric.Min)
		mbyte.EncodeInt(entry, metric.Max)
		entry.AppendByte(byte(metric.Units))
		mbyte.EncodeFloat32(entry, metric.Resolution)

		mbyte.EncodeUint(w, uint64(id))
		payload := entry.Release()
		mbyte.EncodeUint(w, uint64(len(payload)))
		w.AppendBytes(payload)
	}

	return w.Release()
}

// isDefaultMetrics reports whether m is exactly the compiled-in default
// table, the case spec.md §4.9 allows METRIC_BLOCK to be omitted for.
func isDefaultMetrics(m model.Metrics) bool {
	def := model.DefaultMetrics()
	if len(m) != len(def) {
		return false
	}
	for k, v := range def {
		if m[k] != v {
			return false
		}
	}

	return true
}

func writeMetricsTables(w *bitio.Stream, d *model.Drawing) {
	if len(d.MetricsTable) == 0 {
		return
	}
	if len(d.MetricsTable) == 1 && isDefaultMetrics(d.MetricsTable[0]) {
		return
	}

	switch len(d.MetricsTable) {
	case 1:
		writeLengthPrefixed(w, format.TagMetricBlock, encodeMetricsBlockPayload(d.MetricsTable[0]))
	default:
		inner := bitio.NewWriter()
		for _, m := range d.MetricsTable {
			payload := encodeMetricsBlockPayload(m)
			mbyte.EncodeUint(inner, uint64(len(payload)))
			inner.AppendBytes(payload)
		}
		writeLengthPrefixed(w, format.TagMetricTable, inner.Release())
	}
}

// encodeTransformPayload always emits the general 6-float TRANSFORM shape;
// the compact ISO/ANISO/ROTATE/TRANS/SCALE_TR variants are a read-side
// convenience (spec.md §4.8.3) the writer doesn't need to reproduce to stay
// correct.
func encodeTransformPayload(t model.Transform) []byte {
	w := bitio.NewWriter()
	mbyte.EncodeFloat32(w, t.M11*format.HiMetricPerPixel)
	mbyte.EncodeFloat32(w, t.M12)
	mbyte.EncodeFloat32(w, t.M21)
	mbyte.EncodeFloat32(w, t.M22*format.HiMetricPerPixel)
	mbyte.EncodeFloat32(w, t.DX)
	mbyte.EncodeFloat32(w, t.DY)

	return w.Release()
}

func writeTransforms(w *bitio.Stream, d *model.Drawing) {
	switch len(d.Transforms) {
	case 0:
		return
	case 1:
		// Transform tags carry their floats bare, with no length prefix.
		mbyte.EncodeUint(w, uint64(format.TagTransform))
		w.AppendBytes(encodeTransformPayload(d.Transforms[0]))
	default:
		inner := bitio.NewWriter()
		for _, t := range d.Transforms {
			mbyte.EncodeUint(inner, uint64(format.TagTransform))
			inner.AppendBytes(encodeTransformPayload(t))
		}
		writeLengthPrefixed(w, format.TagTransformTable, inner.Release())
	}
}

func encodeStrokePayload(st model.Stroke, info model.StrokeInfo) ([]byte, error) {
	w := bitio.NewWriter()
	mbyte.EncodeUint(w, uint64(len(st.Points)))

	if info.HasX {
		xs := make([]int64, len(st.Points))
		for i, p := range st.Points {
			xs[i] = p.X
		}
		if err := packet.Deflate(w, xs); err != nil {
			return nil, fmt.Errorf("x channel: %w", err)
		}
	}
	if info.HasY {
		ys := make([]int64, len(st.Points))
		for i, p := range st.Points {
			ys[i] = p.Y
		}
		if err := packet.Deflate(w, ys); err != nil {
			return nil, fmt.Errorf("y channel: %w", err)
		}
	}
	if info.HasPressure {
		ps := make([]int64, len(st.Points))
		for i, p := range st.Points {
			ps[i] = p.Pressure
		}
		if err := packet.Deflate(w, ps); err != nil {
			return nil, fmt.Errorf("pressure channel: %w", err)
		}
	}

	return w.Release(), nil
}

// writeStrokes emits MIDX/DIDX/TIDX/SIDX only when the binding changes from
// the previous stroke, then a STROKE tag (spec.md §4.9 item 7).
func writeStrokes(w *bitio.Stream, d *model.Drawing) error {
	prevAttrs := model.AttributeSetID(model.NoID)
	prevMetrics := model.MetricsID(model.NoID)
	prevTransform := model.TransformID(model.NoID)
	prevInfo := model.StrokeInfoID(model.NoID)

	for _, st := range d.Strokes {
		if st.MetricsID != model.MetricsID(model.NoID) && st.MetricsID != prevMetrics {
			mbyte.EncodeUint(w, uint64(format.TagMIDX))
			mbyte.EncodeUint(w, uint64(st.MetricsID))
			prevMetrics = st.MetricsID
		}
		if st.AttrsID != model.AttributeSetID(model.NoID) && st.AttrsID != prevAttrs {
			mbyte.EncodeUint(w, uint64(format.TagDIDX))
			mbyte.EncodeUint(w, uint64(st.AttrsID))
			prevAttrs = st.AttrsID
		}
		if st.TransformID != model.TransformID(model.NoID) && st.TransformID != prevTransform {
			mbyte.EncodeUint(w, uint64(format.TagTIDX))
			mbyte.EncodeUint(w, uint64(st.TransformID))
			prevTransform = st.TransformID
		}
		if st.StrokeInfoID != model.StrokeInfoID(model.NoID) && st.StrokeInfoID != prevInfo {
			mbyte.EncodeUint(w, uint64(format.TagSIDX))
			mbyte.EncodeUint(w, uint64(st.StrokeInfoID))
			prevInfo = st.StrokeInfoID
		}

		info := model.DefaultStrokeInfo()
		if st.StrokeInfoID != model.StrokeInfoID(model.NoID) {
			info = d.StrokeInfos[st.StrokeInfoID]
		}

		payload, err := encodeStrokePayload(st, info)
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
		}
		writeLengthPrefixed(w, format.TagStroke, payload)
	}

	return nil
}
