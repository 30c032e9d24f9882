package vega

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/fields"
)

// ============================================================================
// COMPILER TESTS
// ============================================================================

func salesFields() []fields.DataField {
	return []fields.DataField{
		{Name: "Region", Type: fields.Nominal},
		{Name: "Month", Type: fields.Temporal},
		{Name: "Sales", Type: fields.Quantitative},
		{Name: "Units", Type: fields.Quantitative},
	}
}

func salesState() builder.State {
	return builder.DefaultState(salesFields())
}

func TestCompileDefaultBar(t *testing.T) {
	spec := Compile(salesState(), salesFields())

	assert.Equal(t, SchemaURL, spec.Schema)
	require.NotNil(t, spec.Data)
	assert.Equal(t, DataName, spec.Data.Name)

	require.NotNil(t, spec.Mark)
	assert.Equal(t, "bar", spec.Mark.Type)

	require.NotNil(t, spec.Encoding)
	require.NotNil(t, spec.Encoding.X)
	assert.Equal(t, "Region", spec.Encoding.X.Field)
	assert.Equal(t, "nominal", spec.Encoding.X.Type)
	require.NotNil(t, spec.Encoding.Y)
	assert.Equal(t, "Sales", spec.Encoding.Y.Field)
	assert.Equal(t, "sum", spec.Encoding.Y.Aggregate)

	require.NotNil(t, spec.Autosize, "fill-container compiles to autosize")
	assert.Equal(t, "fit", spec.Autosize.Type)
	assert.Nil(t, spec.Width)
	assert.Nil(t, spec.Height)
}

func TestCompileDeterministic(t *testing.T) {
	s := salesState()
	s.Transforms = []builder.Transform{
		builder.TopNTransform(5, "Sales", builder.Descending),
	}
	s.Encodings[builder.ChannelColor] = &builder.EncodingConfig{
		Field: "Region", Type: fields.Nominal,
		Scale: &builder.ScaleConfig{Domain: []string{"East", "West"}, Range: []string{"#ff7f0e", "#1f77b4"}},
	}

	a, err := Compile(s, salesFields()).Marshal()
	require.NoError(t, err)
	b, err := Compile(s.Clone(), salesFields()).Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "identical inputs must compile byte-identically")
}

func TestCompileTopNExpansion(t *testing.T) {
	s := salesState()
	s.Transforms = []builder.Transform{
		builder.TopNTransform(10, "Sales", builder.Descending),
	}

	spec := Compile(s, salesFields())
	require.Len(t, spec.Transform, 2, "topN expands to window rank + filter")

	window := spec.Transform[0]
	require.Len(t, window.Window, 1)
	assert.Equal(t, "rank", window.Window[0].Op)
	assert.Equal(t, rankField, window.Window[0].As)
	require.Len(t, window.Sort, 1)
	assert.Equal(t, "Sales", window.Sort[0].Field)
	assert.Equal(t, "descending", window.Sort[0].Order)

	assert.Equal(t, "datum.__rank <= 10", spec.Transform[1].Filter)
}

func TestCompileTransformOrderPreserved(t *testing.T) {
	s := salesState()
	s.Transforms = []builder.Transform{
		builder.FilterTransform("datum.Sales > 0"),
		builder.CalculateTransform("datum.Sales / 1000", "SalesK"),
	}

	spec := Compile(s, salesFields())
	require.Len(t, spec.Transform, 2)
	assert.Equal(t, "datum.Sales > 0", spec.Transform[0].Filter)
	assert.Equal(t, "datum.Sales / 1000", spec.Transform[1].Calculate)
	assert.Equal(t, "SalesK", spec.Transform[1].As)
}

func TestCompileStackOnQuantitativeY(t *testing.T) {
	s := salesState()
	s.Mark.Stack = builder.StackNormalize

	spec := Compile(s, salesFields())
	require.NotNil(t, spec.Encoding.Y.Stack)
	assert.Equal(t, "normalize", spec.Encoding.Y.Stack.Mode)
	assert.Nil(t, spec.Encoding.X.Stack)
}

func TestCompileStackDroppedWithoutQuantitativeAxis(t *testing.T) {
	s := builder.NewState(builder.MarkBar)
	s.Mark.Stack = builder.StackZero
	s.Encodings[builder.ChannelX] = &builder.EncodingConfig{Field: "Region", Type: fields.Nominal}

	spec := Compile(s, salesFields())
	assert.Nil(t, spec.Encoding.X.Stack, "stack needs a quantitative axis")
}

func TestCompileTooltipAuto(t *testing.T) {
	many := make([]fields.DataField, 8)
	for i := range many {
		many[i] = fields.DataField{Name: string(rune('a' + i)), Type: fields.Nominal}
	}
	s := builder.NewState(builder.MarkBar)
	s.Tooltip = &builder.TooltipConfig{Auto: true}

	spec := Compile(s, many)
	require.Len(t, spec.Encoding.Tooltip, autoTooltipLimit, "auto tooltip caps at six fields")
	assert.Equal(t, "a", spec.Encoding.Tooltip[0].Field)
	assert.Equal(t, "f", spec.Encoding.Tooltip[5].Field)
}

func TestCompileTooltipExplicit(t *testing.T) {
	s := builder.NewState(builder.MarkBar)
	s.Tooltip = &builder.TooltipConfig{Fields: []string{"Sales", "Region"}}

	spec := Compile(s, salesFields())
	require.Len(t, spec.Encoding.Tooltip, 2)
	assert.Equal(t, "Sales", spec.Encoding.Tooltip[0].Field)
	assert.Equal(t, "quantitative", spec.Encoding.Tooltip[0].Type)
	assert.Equal(t, "Region", spec.Encoding.Tooltip[1].Field)
	assert.Equal(t, "nominal", spec.Encoding.Tooltip[1].Type)
}

func TestCompilePointOverlayOnlyOnLineArea(t *testing.T) {
	s := salesState()
	s.Mark.Type = builder.MarkLine
	s.Mark.PointOverlay = true
	assert.True(t, Compile(s, salesFields()).Mark.Point)

	s.Mark.Type = builder.MarkBar
	assert.False(t, Compile(s, salesFields()).Mark.Point)
}

func TestCompilePixelSize(t *testing.T) {
	s := salesState()
	s.Width = builder.PxDim(640)
	s.Height = builder.PxDim(480)

	spec := Compile(s, salesFields())
	require.NotNil(t, spec.Width)
	assert.Equal(t, 640.0, *spec.Width)
	require.NotNil(t, spec.Height)
	assert.Equal(t, 480.0, *spec.Height)
	assert.Nil(t, spec.Autosize)
}

func TestCompileEmptyState(t *testing.T) {
	s := builder.NewState(builder.MarkBar)
	s.Width = builder.Dimension{}
	s.Height = builder.Dimension{}

	spec := Compile(s, nil)
	assert.Nil(t, spec.Encoding, "no channels, no encoding block")
	assert.Nil(t, spec.Autosize)
	require.NotNil(t, spec.Mark)
	assert.Equal(t, "bar", spec.Mark.Type)
}
