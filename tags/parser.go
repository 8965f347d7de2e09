// Package tags implements TagParser and TagWriter (spec.md §4.8/§4.9,
// components C8/C9): the state machine that walks an ISF byte stream and
// materialises a model.Drawing, and its mirror that serialises one back.
package tags

import (
	"fmt"
	"math"

	"github.com/inkstream/isf/bitio"
	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/mbyte"
	"github.com/inkstream/isf/model"
	"github.com/inkstream/isf/packet"
)

// Parser drives the Start -> StreamSize -> Tag* -> Finish state machine of
// spec.md §4.8. The "current" attribute-set/metrics/transform/stroke-info
// pointers are parser-local per spec.md §9's redesign note, not stored on
// Drawing.
type Parser struct {
	s *bitio.Stream
	d *model.Drawing

	currentAttrs     model.AttributeSetID
	currentMetrics   model.MetricsID
	currentTransform model.TransformID
	currentInfo      model.StrokeInfoID

	sawInkSpaceRect  bool
	sawHimetricSize  bool
	sawGuidTable     bool
}

// Decode parses an ISF byte stream into a Drawing. Parse errors are
// recorded on the returned Drawing (d.Err) rather than returned directly;
// prior partial state remains inspectable, per spec.md §7.
func Decode(data []byte) *model.Drawing {
	d := model.NewDrawing()
	p := &Parser{
		s: bitio.NewReader(data),
		d: d,

		currentAttrs:     model.NoID,
		currentMetrics:   model.NoID,
		currentTransform: model.NoID,
		currentInfo:      model.NoID,
	}
	p.run()

	return d
}

func (p *Parser) fail(err error) {
	if p.d.Err == nil {
		p.d.Err = err
	}
}

func (p *Parser) run() {
	version, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	if version != format.Version {
		p.fail(fmt.Errorf("%w: stream version %d", errs.ErrBadVersion, version))

		return
	}

	size, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	remaining := uint64((p.s.Size() - p.s.Pos()) / 8) //nolint:gosec // stream sizes fit comfortably in a uint64 (bounded by the caller's byte slice)
	if size != remaining {
		p.fail(fmt.Errorf("%w: declared %d, remaining %d", errs.ErrBadStreamSize, size, remaining))

		return
	}

	for !p.s.AtEnd(false) && p.d.Err == nil {
		tagID, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}
		p.dispatch(format.Tag(tagID)) //nolint:gosec // tag ids are small stream-declared values
	}
}

// blockEnd reads a multi-byte length prefix and returns the absolute bit
// position the payload ends at. zeroOK controls whether a zero-length
// payload is accepted (most tag tables reject it per original_source).
func (p *Parser) blockEnd(zeroOK bool) (int, bool) {
	length, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return 0, false
	}
	if length == 0 && !zeroOK {
		p.fail(fmt.Errorf("%w: zero-length tag payload", errs.ErrInvalidPayload))

		return 0, false
	}
	if length > uint64((p.s.Size()-p.s.Pos())/8) { //nolint:gosec // cursor never passes Size here
		p.fail(fmt.Errorf("%w: payload length %d exceeds stream", errs.ErrInvalidPayload, length))

		return 0, false
	}
	end := p.s.Pos() + int(length)*8 //nolint:gosec // bounded by the check above

	return end, true
}

// skipPayload consumes a generic length-prefixed, unrecognised tag's bytes.
func (p *Parser) skipPayload() {
	end, ok := p.blockEnd(true)
	if !ok {
		return
	}
	p.s.Seek(end)
}

func (p *Parser) dispatch(tag format.Tag) {
	switch {
	case tag == format.TagInkSpaceRect:
		p.parseInkSpaceRect()
	case tag == format.TagGuidTable:
		p.parseGuidTable()
	case tag == format.TagDrawAttrsTable:
		p.parseAttrsTable()
	case tag == format.TagDrawAttrsBlock:
		p.parseAttrsBlock()
	case tag == format.TagStrokeDescTable:
		p.parseStrokeDescTable()
	case tag == format.TagStrokeDescBlock:
		p.parseStrokeDescBlock()
	case tag == format.TagNoX:
		p.d.HasXData = false
	case tag == format.TagNoY:
		p.d.HasYData = false
	case tag == format.TagDIDX:
		p.parseIndexTag(&p.currentAttrs, len(p.d.AttributeSet))
	case tag == format.TagStroke:
		p.parseStroke()
	case tag == format.TagSIDX:
		p.parseIndexTag(&p.currentInfo, len(p.d.StrokeInfos))
	case tag == format.TagTransformTable:
		p.parseTransformTable()
	case tag.IsTransform():
		p.parseTransform(tag, true)
	case tag == format.TagTIDX:
		p.parseIndexTag(&p.currentTransform, len(p.d.Transforms))
	case tag == format.TagMetricTable:
		p.parseMetricTable()
	case tag == format.TagMetricBlock:
		p.parseMetricBlock()
	case tag == format.TagMIDX:
		p.parseIndexTag(&p.currentMetrics, len(p.d.MetricsTable))
	case tag == format.TagPersistentFormat:
		p.parsePersistentFormat()
	case tag == format.TagHimetricSize:
		p.parseHimetricSize()
	case tag >= format.TagCustomGuidBase:
		p.parseCustomGuidTag(tag)
	default:
		p.skipPayload()
	}
}

// parseIndexTag reads a multi-byte index and assigns it to *current if in
// range; an out-of-range index is a non-fatal no-op (spec.md §4.8, DIDX row).
func (p *Parser) parseIndexTag(current *int, count int) {
	idx, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	if idx < uint64(count) { //nolint:gosec // count is a non-negative slice length
		*current = int(idx) //nolint:gosec
	}
}

func (p *Parser) parseInkSpaceRect() {
	if p.sawInkSpaceRect {
		p.fail(fmt.Errorf("%w: duplicate INK_SPACE_RECT", errs.ErrInvalidStream))

		return
	}
	var r model.Rect
	var err error
	if r.Left, err = mbyte.DecodeInt(p.s); err == nil {
		if r.Top, err = mbyte.DecodeInt(p.s); err == nil {
			if r.Right, err = mbyte.DecodeInt(p.s); err == nil {
				r.Bottom, err = mbyte.DecodeInt(p.s)
			}
		}
	}
	if err != nil {
		p.fail(err)

		return
	}
	p.sawInkSpaceRect = true
	p.d.Canvas = r
}

func (p *Parser) parseHimetricSize() {
	if p.sawHimetricSize {
		p.fail(fmt.Errorf("%w: duplicate HIMETRIC_SIZE", errs.ErrInvalidStream))

		return
	}
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	w, err := mbyte.DecodeInt(p.s)
	if err == nil {
		var h int64
		h, err = mbyte.DecodeInt(p.s)
		if err == nil {
			p.sawHimetricSize = true
			p.d.Canvas.Right = p.d.Canvas.Left + w
			p.d.Canvas.Bottom = p.d.Canvas.Top + h
		}
	}
	if err != nil {
		p.fail(err)

		return
	}
	p.s.Seek(end)
}

func (p *Parser) parsePersistentFormat() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	value, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	if value != format.PersistentFormatValue {
		p.fail(fmt.Errorf("%w: PERSISTENT_FORMAT value %d", errs.ErrBadVersion, value))

		return
	}
	p.s.Seek(end)
}

func (p *Parser) parseGuidTable() {
	if p.sawGuidTable {
		p.fail(fmt.Errorf("%w: duplicate GUID_TABLE", errs.ErrInvalidStream))

		return
	}
	tableSize, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	p.sawGuidTable = true
	numGuids := tableSize / 16
	for range numGuids {
		raw, err := p.s.GetBytes(16)
		if err != nil {
			p.fail(err)

			return
		}
		var g model.Guid
		copy(g[:], raw)
		p.d.Guids = append(p.d.Guids, g)
	}
}

func (p *Parser) parseCustomGuidTag(tag format.Tag) {
	idx := int(tag - format.TagCustomGuidBase) //nolint:gosec
	if idx >= len(p.d.Guids) {
		p.fail(fmt.Errorf("%w: unregistered custom tag %d", errs.ErrInvalidStream, tag))

		return
	}
	// Payload is decoded-but-opaque (spec.md §4.8): we intentionally don't
	// run the property-channel bit-packing VM (Unsupported, spec.md §9) and
	// just consume the declared byte span.
	p.skipPayload()
}

func (p *Parser) parseAttrsTable() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	for p.s.Pos() < end && p.d.Err == nil {
		p.parseAttrsBlock()
	}
	p.s.Seek(end)
}

func (p *Parser) parseAttrsBlock() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}

	set := model.DefaultAttributeSet()
	for p.s.Pos() < end {
		property, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}

		if format.Property(property) == format.PropertyROP { //nolint:gosec
			raw, err := p.s.GetBytes(3)
			if err != nil {
				p.fail(err)

				return
			}
			copy(set.ROP[:], raw)

			continue
		}

		value, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}

		switch format.Property(property) { //nolint:gosec
		case format.PropertyColorRef:
			set.Color = model.RGBA{
				R: byte(value),
				G: byte(value >> 8),
				B: byte(value >> 16),
				A: 255,
			}
		case format.PropertyPenWidth:
			px := float64(value) / format.HiMetricPerPixel
			set.Size.Width = px
			set.Size.Height = px
		case format.PropertyPenHeight:
			set.Size.Height = float64(value) / format.HiMetricPerPixel
		case format.PropertyPenTip:
			if value != 0 {
				set.Tip = format.PenTipRectangle
				set.Flags = set.Flags.With(format.FlagIsRectangle)
			}
		case format.PropertyDrawingFlags:
			set.Flags |= format.StrokeFlag(value & 0xFF) //nolint:gosec
		case format.PropertyTransparency:
			set.Color.A = byte(value)
		default:
			// Unknown or custom-GUID property: already consumed above.
		}
	}
	p.s.Seek(end)

	if set.Size.Width > p.d.MaxPenWidth {
		p.d.MaxPenWidth = set.Size.Width
	}
	if set.Size.Height > p.d.MaxPenHeight {
		p.d.MaxPenHeight = set.Size.Height
	}
	p.d.AttributeSet = append(p.d.AttributeSet, set)
}

func (p *Parser) parseMetricTable() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	for p.s.Pos() < end && p.d.Err == nil {
		p.parseMetricBlock()
	}
	p.s.Seek(end)
}

func (p *Parser) parseMetricBlock() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}

	table := make(model.Metrics)
	for p.s.Pos() < end {
		propID, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}
		entryEnd, ok := p.blockEnd(false)
		if !ok {
			return
		}
		if entryEnd-p.s.Pos() < 7*8 {
			// Too small to hold min, max, units, resolution; skip it.
			p.s.Seek(entryEnd)

			continue
		}

		var m model.Metric
		var derr error
		if m.Min, derr = mbyte.DecodeInt(p.s); derr == nil {
			if m.Max, derr = mbyte.DecodeInt(p.s); derr == nil {
				var unitsByte byte
				if unitsByte, derr = p.s.GetByte(); derr == nil {
					m.Units = format.Units(unitsByte)
					m.Resolution, derr = mbyte.DecodeFloat32(p.s)
				}
			}
		}
		if derr != nil {
			p.fail(derr)

			return
		}
		p.s.Seek(entryEnd)
		table[uint32(propID)] = m //nolint:gosec
	}
	p.s.Seek(end)
	p.d.MetricsTable = append(p.d.MetricsTable, table)
}

func (p *Parser) parseTransformTable() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	for p.s.Pos() < end && p.d.Err == nil {
		subTag, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}
		p.parseTransform(format.Tag(subTag), false) //nolint:gosec
	}
	p.s.Seek(end)
}

// parseTransform decodes one transform payload (spec.md §4.8.3). setCurrent
// is true when this transform arrived as a standalone top-level tag (which
// also becomes the current transform), false inside TRANSFORM_TABLE.
func (p *Parser) parseTransform(tag format.Tag, setCurrent bool) {
	t := model.IdentityTransform
	var err error

	readFloat := func() float32 {
		if err != nil {
			return 0
		}
		var f float32
		f, err = mbyte.DecodeFloat32(p.s)

		return f
	}

	const hiMetric = format.HiMetricPerPixel

	switch tag {
	case format.TagTransform:
		t.M11 = readFloat() / hiMetric
		t.M12 = readFloat()
		t.M21 = readFloat()
		t.M22 = readFloat() / hiMetric
		t.DX = readFloat()
		t.DY = readFloat()
	case format.TagTransformIso:
		s := readFloat() / hiMetric
		t.M11, t.M22 = s, s
	case format.TagTransformAniso:
		t.M11 = readFloat() / hiMetric
		t.M22 = readFloat() / hiMetric
	case format.TagTransformRotate:
		rad := float64(readFloat()/100) * math.Pi / 180
		sin, cos := math.Sincos(rad)
		t.M11, t.M12 = float32(cos), float32(sin)
		t.M21, t.M22 = float32(-sin), float32(cos)
	case format.TagTransformTrans:
		t.DX = readFloat()
		t.DY = readFloat()
	case format.TagTransformScaleTr:
		t.M11 = readFloat() / hiMetric
		t.M22 = readFloat() / hiMetric
		t.DX = readFloat()
		t.DY = readFloat()
	case format.TagTransformQuad:
		p.fail(fmt.Errorf("%w: TRANSFORM_QUAD", errs.ErrUnsupported))

		return
	default:
		p.fail(fmt.Errorf("%w: unknown transform tag %d", errs.ErrInvalidBlock, tag))

		return
	}
	if err != nil {
		p.fail(err)

		return
	}

	p.d.Transforms = append(p.d.Transforms, t)
	if setCurrent {
		p.currentTransform = len(p.d.Transforms) - 1
	}
}

func (p *Parser) parseStrokeDescTable() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}
	for p.s.Pos() < end && p.d.Err == nil {
		p.parseStrokeDescBlock()
	}
	p.s.Seek(end)
}

func (p *Parser) parseStrokeDescBlock() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}

	info := model.DefaultStrokeInfo()
	for p.s.Pos() < end {
		sub, err := mbyte.DecodeUint(p.s)
		if err != nil {
			p.fail(err)

			return
		}
		switch format.Tag(sub) { //nolint:gosec
		case format.TagNoX:
			info.HasX = false
		case format.TagNoY:
			info.HasY = false
		case format.TagButtons, format.TagStrokePropList:
			// Acknowledged, carries no further payload in this revision.
		default:
			info.HasPressure = true
			info.ExtraProperties = append(info.ExtraProperties, uint32(sub)) //nolint:gosec
		}
	}
	p.s.Seek(end)

	p.d.StrokeInfos = append(p.d.StrokeInfos, info)
}

func (p *Parser) parseStroke() {
	end, ok := p.blockEnd(false)
	if !ok {
		return
	}

	n, err := mbyte.DecodeUint(p.s)
	if err != nil {
		p.fail(err)

		return
	}
	const maxStrokePoints = 10_000_000
	if n > maxStrokePoints {
		p.fail(fmt.Errorf("%w: stroke declares %d points, limit %d", errs.ErrInvalidPayload, n, maxStrokePoints))

		return
	}
	numPoints := int(n) //nolint:gosec // bounded by maxStrokePoints

	info := model.DefaultStrokeInfo()
	if p.currentInfo != model.NoID {
		info = p.d.StrokeInfos[p.currentInfo]
	}

	xs := make([]int64, numPoints)
	ys := make([]int64, numPoints)
	ps := make([]int64, numPoints)

	if info.HasX {
		xs, err = packet.Inflate(p.s, numPoints)
	}
	if err == nil && info.HasY {
		ys, err = packet.Inflate(p.s, numPoints)
	}
	if err == nil && info.HasPressure {
		ps, err = packet.Inflate(p.s, numPoints)
	}
	if err != nil {
		p.fail(fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err))

		return
	}
	if len(xs) != numPoints || len(ys) != numPoints || (info.HasPressure && len(ps) != numPoints) {
		p.fail(fmt.Errorf("%w: stroke declared %d points", errs.ErrInvalidPayload, numPoints))

		return
	}

	st := model.NewStroke()
	st.AttrsID = model.AttributeSetID(p.currentAttrs)
	st.MetricsID = model.MetricsID(p.currentMetrics)
	st.TransformID = model.TransformID(p.currentTransform)
	st.StrokeInfoID = model.StrokeInfoID(p.currentInfo)
	st.Points = make([]model.Point, numPoints)
	for i := range st.Points {
		st.Points[i] = model.Point{X: xs[i], Y: ys[i], Pressure: ps[i]}
	}

	var penW, penH float64
	var transform *model.Transform
	if p.currentAttrs != model.NoID {
		set := p.d.AttributeSet[p.currentAttrs]
		penW, penH = set.Size.Width, set.Size.Height
	}
	if p.currentTransform != model.NoID {
		tr := p.d.Transforms[p.currentTransform]
		transform = &tr
	}
	st.Finalize(penW, penH, transform)

	p.s.Seek(end)
	p.d.AddStroke(st)
}
