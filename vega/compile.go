package vega

import (
	"fmt"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/fields"
)

// ============================================================================
// SPEC COMPILER — BuilderState → declarative spec
// ============================================================================
// Total, deterministic, pure. Re-run after every state mutation; identical
// inputs always produce identical output.
//
// Known asymmetry: topN compiles to a window-rank + filter pair (the grammar
// has no native top-N) and the decompiler never reverses it.
// ============================================================================

// rankField is the synthetic field the topN expansion ranks into.
const rankField = "__rank"

const autoTooltipLimit = 6

// Compile turns a builder state and field metadata into a declarative spec.
func Compile(s builder.State, fs []fields.DataField) *Spec {
	spec := &Spec{
		Schema:      SchemaURL,
		Title:       s.Title,
		Description: s.Description,
		Background:  s.Background,
		Data:        &Data{Name: DataName},
	}
	if s.Padding != nil {
		p := *s.Padding
		spec.Padding = &p
	}

	// (a) channels
	enc := &Encoding{
		X:     compileChannel(s.Encoding(builder.ChannelX)),
		Y:     compileChannel(s.Encoding(builder.ChannelY)),
		Color: compileChannel(s.Encoding(builder.ChannelColor)),
		Size:  compileChannel(s.Encoding(builder.ChannelSize)),
	}
	enc.Tooltip = compileTooltip(s.Tooltip, fs)
	if enc.X != nil || enc.Y != nil || enc.Color != nil || enc.Size != nil || len(enc.Tooltip) > 0 {
		spec.Encoding = enc
	}

	// (b) transforms, in order
	for _, t := range s.Transforms {
		spec.Transform = append(spec.Transform, compileTransform(t)...)
	}

	// (c) mark + stacking
	spec.Mark = compileMark(s.Mark)
	attachStack(spec, s.Mark)

	// (d) sizing
	fill := false
	if s.Width.Fill {
		fill = true
	} else if s.Width.Px > 0 {
		w := s.Width.Px
		spec.Width = &w
	}
	if s.Height.Fill {
		fill = true
	} else if s.Height.Px > 0 {
		h := s.Height.Px
		spec.Height = &h
	}
	if fill {
		spec.Autosize = &Autosize{Type: "fit", Contains: "padding"}
	}

	return spec
}

func compileChannel(e *builder.EncodingConfig) *ChannelDef {
	if e == nil || e.Field == "" {
		return nil
	}
	def := &ChannelDef{
		Field:     e.Field,
		Type:      string(e.Type),
		Aggregate: string(e.Aggregate),
		TimeUnit:  string(e.TimeUnit),
	}
	if e.Bin != nil {
		def.Bin = &BinValue{MaxBins: e.Bin.MaxBins}
	}
	if e.Sort != nil {
		def.Sort = &SortValue{Order: string(e.Sort.Order), Field: e.Sort.Field}
	}
	if e.Scale != nil {
		def.Scale = &Scale{
			Domain:  append([]string(nil), e.Scale.Domain...),
			Range:   append([]string(nil), e.Scale.Range...),
			Scheme:  e.Scale.Scheme,
			Reverse: e.Scale.Reverse,
		}
		if e.Scale.Zero != nil {
			z := *e.Scale.Zero
			def.Scale.Zero = &z
		}
	}
	if e.Axis != nil {
		def.Axis = &Guide{Title: e.Axis.Title, Format: e.Axis.Format}
	}
	if e.Legend != nil {
		def.Legend = &Guide{Title: e.Legend.Title, Format: e.Legend.Format}
	}
	return def
}

// compileTooltip expands 'auto' to the first six fields in dataset-column
// order, or one descriptor per explicit entry.
func compileTooltip(t *builder.TooltipConfig, fs []fields.DataField) []ChannelDef {
	if t == nil {
		return nil
	}
	if t.Auto {
		n := len(fs)
		if n > autoTooltipLimit {
			n = autoTooltipLimit
		}
		defs := make([]ChannelDef, 0, n)
		for _, f := range fs[:n] {
			defs = append(defs, ChannelDef{Field: f.Name, Type: string(f.Type)})
		}
		return defs
	}
	defs := make([]ChannelDef, 0, len(t.Fields))
	for _, name := range t.Fields {
		def := ChannelDef{Field: name}
		if f, ok := fields.Lookup(fs, name); ok {
			def.Type = string(f.Type)
		}
		defs = append(defs, def)
	}
	return defs
}

// compileTransform expands one builder transform into grammar steps.
// topN becomes a rank window plus a rank filter.
func compileTransform(t builder.Transform) []TransformDef {
	switch t.Kind {
	case builder.TransformFilter:
		return []TransformDef{{Filter: t.Expr}}

	case builder.TransformCalculate:
		return []TransformDef{{Calculate: t.Expr, As: t.As}}

	case builder.TransformTopN:
		return []TransformDef{
			{
				Window: []WindowField{{Op: "rank", As: rankField}},
				Sort:   []SortField{{Field: t.ByField, Order: string(t.Order)}},
			},
			{Filter: fmt.Sprintf("datum.%s <= %d", rankField, t.N)},
		}

	case builder.TransformAggregate:
		agg := make([]AggregateField, 0, len(t.Ops))
		for i, op := range t.Ops {
			f := AggregateField{Op: string(op)}
			if i < len(t.Fields) {
				f.Field = t.Fields[i]
			}
			if i < len(t.Names) {
				f.As = t.Names[i]
			}
			agg = append(agg, f)
		}
		return []TransformDef{{GroupBy: append([]string(nil), t.GroupBy...), Aggregate: agg}}
	}
	return nil
}

func compileMark(m builder.MarkConfig) *MarkDef {
	def := &MarkDef{
		Type:        string(m.Type),
		Interpolate: m.Interpolate,
	}
	switch m.Type {
	case builder.MarkLine, builder.MarkArea:
		def.Point = m.PointOverlay
	}
	if m.Opacity != nil {
		v := *m.Opacity
		def.Opacity = &v
	}
	if m.Size != nil {
		v := *m.Size
		def.Size = &v
	}
	if m.StrokeWidth != nil {
		v := *m.StrokeWidth
		def.StrokeWidth = &v
	}
	return def
}

// attachStack places the stack directive on the quantitative axis channel.
// Prefers y when both axes are quantitative; silently drops stacking when
// neither is, or when the mark does not permit it.
func attachStack(spec *Spec, m builder.MarkConfig) {
	if m.Stack == "" {
		return
	}
	switch m.Type {
	case builder.MarkBar, builder.MarkArea:
	default:
		return
	}
	if spec.Encoding == nil {
		return
	}

	target := spec.Encoding.Y
	if target == nil || target.Type != string(fields.Quantitative) {
		target = nil
		if x := spec.Encoding.X; x != nil && x.Type == string(fields.Quantitative) {
			target = x
		}
	}
	if target == nil {
		return
	}
	target.Stack = &StackValue{Mode: string(m.Stack)}
}
