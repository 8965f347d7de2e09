package model_test

import (
	"testing"

	"github.com/inkstream/isf/model"
	"github.com/stretchr/testify/require"
)

func TestEmptyStrokeHasZeroAreaBounds(t *testing.T) {
	st := model.NewStroke()
	st.Finalize(4, 4, nil)
	require.True(t, st.Bounds.IsZero())
	require.False(t, st.HasPressure)
}

func TestStrokeFinalizePadsByHalfPenSize(t *testing.T) {
	st := model.NewStroke()
	st.Points = []model.Point{{X: 100, Y: 200}}
	st.Finalize(4, 6, nil)
	require.Equal(t, model.Rect{Left: 98, Top: 197, Right: 102, Bottom: 203}, st.Bounds)
}

func TestStrokeFinalizeDetectsPressure(t *testing.T) {
	st := model.NewStroke()
	st.Points = []model.Point{{X: 0, Y: 0, Pressure: 0}, {X: 1, Y: 1, Pressure: 5}}
	st.Finalize(0, 0, nil)
	require.True(t, st.HasPressure)
}

func TestDrawingAddStrokeUpdatesBounds(t *testing.T) {
	d := model.NewDrawing()
	require.True(t, d.IsNull())

	a := model.NewStroke()
	a.Points = []model.Point{{X: 10, Y: 20}}
	a.Finalize(0, 0, nil)

	b := model.NewStroke()
	b.Points = []model.Point{{X: 100, Y: 100}}
	b.Finalize(0, 0, nil)

	d.MaxPenWidth = 4
	d.MaxPenHeight = 4
	d.AddStroke(a)
	d.AddStroke(b)

	require.False(t, d.IsNull())
	want := model.Rect{Left: 10, Top: 20, Right: 100, Bottom: 100}.Pad(5)
	require.Equal(t, want, d.Bounds)
}

func TestDrawingDeleteStrokeOutOfRange(t *testing.T) {
	d := model.NewDrawing()
	require.Error(t, d.DeleteStroke(0))
}

func TestTransformApplyIdentity(t *testing.T) {
	x, y := model.IdentityTransform.Apply(3, 4)
	require.InDelta(t, 3.0, x, 1e-9)
	require.InDelta(t, 4.0, y, 1e-9)
}

func TestDefaultMetricsHasXAndY(t *testing.T) {
	m := model.DefaultMetrics()
	require.Len(t, m, 2)
}

func TestInternAttributeSetReturnsSameIDForIdenticalContent(t *testing.T) {
	d := model.NewDrawing()
	set := model.DefaultAttributeSet()
	set.Size = model.Size{Width: 2, Height: 2}

	a := d.InternAttributeSet(set)
	b := d.InternAttributeSet(set)
	require.Equal(t, a, b)
	require.Len(t, d.AttributeSet, 1)
}

func TestInternAttributeSetAppendsDistinctContent(t *testing.T) {
	d := model.NewDrawing()
	red := model.DefaultAttributeSet()
	red.Color = model.RGBA{R: 255, A: 255}
	blue := model.DefaultAttributeSet()
	blue.Color = model.RGBA{B: 255, A: 255}

	a := d.InternAttributeSet(red)
	b := d.InternAttributeSet(blue)
	require.NotEqual(t, a, b)
	require.Len(t, d.AttributeSet, 2)
}

func TestInternMetricsDeduplicatesRegardlessOfMapOrder(t *testing.T) {
	d := model.NewDrawing()
	m := model.DefaultMetrics()

	a := d.InternMetrics(m)
	b := d.InternMetrics(model.DefaultMetrics())
	require.Equal(t, a, b)
	require.Len(t, d.MetricsTable, 1)
}
