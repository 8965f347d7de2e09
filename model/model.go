// Package model implements the ISF data model (spec.md §3/§4.7, component
// C7): Drawing, Stroke, Point, AttributeSet, Metrics, Transform, StrokeInfo
// and the Guid table, arena-indexed per spec.md §9's redesign note (indices
// into the Drawing's owning slices, not pointers).
package model

import (
	"fmt"
	"sort"

	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/format"
	"github.com/inkstream/isf/internal/dedup"
)

// Point is an ink-space (x, y) position with an optional pressure sample.
type Point struct {
	X, Y     int64
	Pressure int64
}

// Rect is an axis-aligned ink-space rectangle.
type Rect struct {
	Left, Top, Right, Bottom int64
}

// IsZero reports whether r has zero area and zero origin, the state a
// freshly constructed Stroke's bounding rectangle starts in.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}

	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Pad grows r by n units on every side.
func (r Rect) Pad(n int64) Rect {
	if r.IsZero() {
		return r
	}

	return Rect{Left: r.Left - n, Top: r.Top - n, Right: r.Right + n, Bottom: r.Bottom + n}
}

// Size is a 2-D extent in pixels.
type Size struct {
	Width, Height float64
}

// RGBA is a pen color. Its zero value has A == 0 (fully transparent);
// DefaultRGBA is the opaque default.
type RGBA struct {
	R, G, B, A uint8
}

// DefaultRGBA is black at full alpha, the Color of DefaultAttributeSet and
// the value TagWriter omits as redundant (spec.md §4.9).
var DefaultRGBA = RGBA{A: 255}

// AttributeSet is a pen's visual properties (spec.md §3, §4.8.1).
type AttributeSet struct {
	Color RGBA
	Size  Size
	Flags format.StrokeFlag
	Tip   format.PenTip
	// ROP preserves property 77's 3 opaque bytes untouched, per
	// SPEC_FULL.md §C.3 (original_source stores but never interprets it).
	ROP [3]byte
}

// DefaultAttributeSet is the value a stroke carries when no
// DRAW_ATTRS_BLOCK precedes it: black, zero pen size, no flags.
func DefaultAttributeSet() AttributeSet {
	return AttributeSet{Color: DefaultRGBA}
}

// PenSizePixels returns Size converted from HiMetric width/height already
// stored on the AttributeSet; present for callers holding raw HiMetric
// values from the wire.
func PenSizePixels(hiMetricWidth, hiMetricHeight int64) Size {
	return Size{
		Width:  float64(hiMetricWidth) / format.HiMetricPerPixel,
		Height: float64(hiMetricHeight) / format.HiMetricPerPixel,
	}
}

// Metric is one channel's declared range, units, and resolution (spec.md §3).
type Metric struct {
	Min, Max   int64
	Units      format.Units
	Resolution float32
}

// Metrics maps a known property id (spec.md §3, format.KnownGUIDName) to its
// declared Metric.
type Metrics map[uint32]Metric

// DefaultMetrics is the compiled-in default metrics table, per spec.md §9
// ("Default metrics table is a constant compiled-in value"). NewDrawing and
// the tag parser leave MetricsTable empty; the tag writer omits a lone
// METRIC_BLOCK equal to this table.
func DefaultMetrics() Metrics {
	return Metrics{
		uint32(format.PropertyX): {Min: 0, Max: 32767, Units: format.UnitsDefault, Resolution: 1000},
		uint32(format.PropertyY): {Min: 0, Max: 32767, Units: format.UnitsDefault, Resolution: 1000},
	}
}

// Transform is a 2x3 affine matrix (spec.md §3, §4.8.3).
type Transform struct {
	M11, M12, M21, M22 float32
	DX, DY             float32
}

// IdentityTransform is the no-op affine transform.
var IdentityTransform = Transform{M11: 1, M22: 1}

// Apply maps (x, y) through the transform.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*float64(t.M11) + y*float64(t.M21) + float64(t.DX),
		x*float64(t.M12) + y*float64(t.M22) + float64(t.DY)
}

// StrokeInfo describes which channels a stroke's points carry.
type StrokeInfo struct {
	HasX, HasY, HasPressure bool
	// ExtraProperties records the STROKE_DESC_BLOCK entries other than
	// NO_X, NO_Y, BUTTONS and STROKE_PROPERTY_LIST; the parser also sets
	// HasPressure for each such entry (SPEC_FULL.md §C.4).
	ExtraProperties []uint32
}

// DefaultStrokeInfo is the channel set a stroke has absent any
// STROKE_DESC_BLOCK: x and y present, no pressure.
func DefaultStrokeInfo() StrokeInfo {
	return StrokeInfo{HasX: true, HasY: true}
}

// Guid is a 16-byte stream-registered identifier, indexed from tag id 100
// (spec.md §3: "index i in the table denotes tag id 100 + i").
type Guid [16]byte

// AttributeSetID, MetricsID, TransformID, and StrokeInfoID are indices into
// Drawing's owning slices (spec.md §9: re-architected as arena indices
// rather than the source's bare pointers).
type (
	AttributeSetID int
	MetricsID      int
	TransformID    int
	StrokeInfoID   int
)

// NoID marks an unset optional reference.
const NoID = -1

// Stroke is an ordered run of points with optional references into the
// owning Drawing's attribute/metrics/transform/stroke-info arenas.
type Stroke struct {
	Points       []Point
	AttrsID      AttributeSetID
	MetricsID    MetricsID
	TransformID  TransformID
	StrokeInfoID StrokeInfoID
	Bounds       Rect
	HasPressure  bool
}

// NewStroke returns a Stroke with no attribute/metrics/transform/info
// reference bound.
func NewStroke() Stroke {
	return Stroke{
		AttrsID:      NoID,
		MetricsID:    NoID,
		TransformID:  NoID,
		StrokeInfoID: NoID,
	}
}

// Finalize recomputes Bounds and HasPressure from Points, expanded by half
// the pen width/height on each side (spec.md §3, §4.7). penW and penH are
// the bound AttributeSet's pixel pen size; pass 0 when no AttributeSet is
// bound. A Stroke with no points has a zero-area bounding rectangle.
func (st *Stroke) Finalize(penW, penH float64, t *Transform) {
	st.HasPressure = false
	for _, p := range st.Points {
		if p.Pressure != 0 {
			st.HasPressure = true

			break
		}
	}

	var bounds Rect
	for _, p := range st.Points {
		x, y := float64(p.X), float64(p.Y)
		if t != nil {
			x, y = t.Apply(x, y)
		}
		r := Rect{Left: int64(x), Top: int64(y), Right: int64(x), Bottom: int64(y)}
		bounds = bounds.Union(r)
	}
	if !bounds.IsZero() {
		bounds.Left -= int64(penW / 2)
		bounds.Right += int64(penW / 2)
		bounds.Top -= int64(penH / 2)
		bounds.Bottom += int64(penH / 2)
	}
	st.Bounds = bounds
}

// Drawing is the sole arena root: every Stroke, AttributeSet, Metrics,
// Transform, and StrokeInfo is owned here and referenced by index (spec.md
// §3, §9).
type Drawing struct {
	Strokes      []Stroke
	AttributeSet []AttributeSet
	MetricsTable []Metrics
	Transforms   []Transform
	StrokeInfos  []StrokeInfo
	Guids        []Guid

	Canvas       Rect
	Bounds       Rect
	MaxPenWidth  float64
	MaxPenHeight float64
	HasXData     bool
	HasYData     bool

	// Err holds the first error encountered while parsing, or nil. Prior
	// partial state remains inspectable (spec.md §7).
	Err error

	// Lazily-initialized interning registries for the Intern* builder
	// methods below (SPEC_FULL.md §A.3); nil until first used, so the
	// zero-value Drawing built directly by the tag parser never pays for
	// them.
	attrsRegistry     *dedup.Registry
	metricsRegistry   *dedup.Registry
	transformRegistry *dedup.Registry
}

// NewDrawing returns an empty Drawing (spec.md §3, the "null" state).
func NewDrawing() *Drawing {
	return &Drawing{}
}

// IsNull reports whether d has no content parsed, or a fatal error
// occurred in the preamble (spec.md §7).
func (d *Drawing) IsNull() bool {
	return len(d.Strokes) == 0 && len(d.AttributeSet) == 0 && len(d.Transforms) == 0 && len(d.StrokeInfos) == 0
}

// AddStroke appends st and recomputes the drawing's bounding rectangle.
func (d *Drawing) AddStroke(st Stroke) {
	d.Strokes = append(d.Strokes, st)
	d.updateBoundingRect()
}

// DeleteStroke removes the stroke at i and recomputes the bounding
// rectangle.
func (d *Drawing) DeleteStroke(i int) error {
	if i < 0 || i >= len(d.Strokes) {
		return errs.ErrInvalidBlock
	}
	d.Strokes = append(d.Strokes[:i], d.Strokes[i+1:]...)
	d.updateBoundingRect()

	return nil
}

// InternAttributeSet returns the index of an existing AttributeSet with
// identical content, appending set as a new entry only if none matches.
// Callers building a Drawing for re-encoding use this instead of appending
// directly, so that strokes sharing visual properties also share one
// AttributeSet and emit a single DRAW_ATTRS_BLOCK (spec.md §4.9, scenario
// "multi-stroke with shared attributes").
func (d *Drawing) InternAttributeSet(set AttributeSet) AttributeSetID {
	if d.attrsRegistry == nil {
		d.attrsRegistry = dedup.NewRegistry()
	}
	idx := d.attrsRegistry.Intern([]byte(fmt.Sprintf("%+v", set)))
	if idx == len(d.AttributeSet) {
		d.AttributeSet = append(d.AttributeSet, set)
	}

	return AttributeSetID(idx)
}

// InternMetrics is InternAttributeSet for Metrics tables.
func (d *Drawing) InternMetrics(m Metrics) MetricsID {
	if d.metricsRegistry == nil {
		d.metricsRegistry = dedup.NewRegistry()
	}
	idx := d.metricsRegistry.Intern([]byte(metricsKey(m)))
	if idx == len(d.MetricsTable) {
		d.MetricsTable = append(d.MetricsTable, m)
	}

	return MetricsID(idx)
}

// InternTransform is InternAttributeSet for Transforms.
func (d *Drawing) InternTransform(t Transform) TransformID {
	if d.transformRegistry == nil {
		d.transformRegistry = dedup.NewRegistry()
	}
	idx := d.transformRegistry.Intern([]byte(fmt.Sprintf("%+v", t)))
	if idx == len(d.Transforms) {
		d.Transforms = append(d.Transforms, t)
	}

	return TransformID(idx)
}

// metricsKey builds a deterministic content key for a Metrics map: map
// iteration order is randomized in Go, so the key must sort ids first or
// two calls with identical content could intern as distinct entries.
func metricsKey(m Metrics) string {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	key := ""
	for _, id := range ids {
		key += fmt.Sprintf("%d:%+v;", id, m[id])
	}

	return key
}

// SetBoundingRect overrides the cached bounding rectangle directly, for
// callers that computed it externally. The next AddStroke or DeleteStroke
// recomputes it.
func (d *Drawing) SetBoundingRect(r Rect) {
	d.Bounds = r
}

// updateBoundingRect unions every stroke's rectangle and pads by
// max_pen_size + 1 on each side (spec.md §4.7).
func (d *Drawing) updateBoundingRect() {
	var b Rect
	for _, st := range d.Strokes {
		b = b.Union(st.Bounds)
	}
	pad := int64(max(d.MaxPenWidth, d.MaxPenHeight)) + 1
	d.Bounds = b.Pad(pad)
}
