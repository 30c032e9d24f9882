package vega

import (
	"encoding/json"
	"strings"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/fields"
)

// ============================================================================
// SPEC DECOMPILER — Declarative spec → partial BuilderState
// ============================================================================
// Best-effort and always safe: anything it cannot map is omitted, nothing
// is ever thrown. Used when a spec arrives from outside the builder (manual
// edit, AI direct edit) and the classifier says it is not custom.
//
// Not reconstructed: topN (window-rank + filter pairs are skipped, never
// reverse-mapped), aggregate transforms, composition operators.
// ============================================================================

// Decompile extracts a builder state from raw spec JSON. The second return
// is false only when the input is not parseable JSON; a true result may
// still be partial.
func Decompile(raw []byte) (builder.State, bool) {
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return builder.NewState(builder.MarkBar), false
	}
	return decompileSpec(&spec), true
}

func decompileSpec(spec *Spec) builder.State {
	s := builder.NewState(builder.MarkBar)

	if spec.Mark != nil {
		if t := builder.MarkType(spec.Mark.Type); builder.KnownMark(t) {
			s.Mark.Type = t
		}
		s.Mark.PointOverlay = spec.Mark.Point
		s.Mark.Interpolate = spec.Mark.Interpolate
		s.Mark.Opacity = spec.Mark.Opacity
		s.Mark.Size = spec.Mark.Size
		s.Mark.StrokeWidth = spec.Mark.StrokeWidth
	}

	if spec.Encoding != nil {
		setEncoding(&s, builder.ChannelX, spec.Encoding.X)
		setEncoding(&s, builder.ChannelY, spec.Encoding.Y)
		setEncoding(&s, builder.ChannelColor, spec.Encoding.Color)
		setEncoding(&s, builder.ChannelSize, spec.Encoding.Size)

		if len(spec.Encoding.Tooltip) > 0 {
			names := make([]string, 0, len(spec.Encoding.Tooltip))
			for _, def := range spec.Encoding.Tooltip {
				if def.Field != "" {
					names = append(names, def.Field)
				}
			}
			s.Tooltip = &builder.TooltipConfig{Fields: names}
		}

		// Stacking lives on whichever axis carries the directive.
		for _, def := range []*ChannelDef{spec.Encoding.Y, spec.Encoding.X} {
			if def != nil && def.Stack != nil {
				s.Mark.Stack = builder.StackMode(def.Stack.Mode)
				break
			}
		}
	}
	s.Normalize()

	for _, t := range spec.Transform {
		s.Transforms = append(s.Transforms, decompileTransform(t)...)
	}

	if spec.Width != nil {
		s.Width = builder.PxDim(*spec.Width)
	} else {
		s.Width = builder.FillDim()
	}
	if spec.Height != nil {
		s.Height = builder.PxDim(*spec.Height)
	} else {
		s.Height = builder.FillDim()
	}

	s.Title = spec.Title
	s.Description = spec.Description
	s.Background = spec.Background

	return s
}

func setEncoding(s *builder.State, ch builder.Channel, def *ChannelDef) {
	if def == nil || def.Field == "" {
		return
	}
	enc := &builder.EncodingConfig{
		Field:     def.Field,
		Type:      fieldsType(def.Type),
		Aggregate: builder.Aggregate(def.Aggregate),
		TimeUnit:  builder.TimeUnit(def.TimeUnit),
	}
	if def.Bin != nil {
		enc.Bin = &builder.BinConfig{MaxBins: def.Bin.MaxBins}
	}
	if def.Sort != nil {
		enc.Sort = &builder.SortConfig{Order: builder.Order(def.Sort.Order), Field: def.Sort.Field}
	}
	if def.Scale != nil {
		enc.Scale = &builder.ScaleConfig{
			Domain:  append([]string(nil), def.Scale.Domain...),
			Range:   append([]string(nil), def.Scale.Range...),
			Scheme:  def.Scale.Scheme,
			Reverse: def.Scale.Reverse,
		}
		if def.Scale.Zero != nil {
			z := *def.Scale.Zero
			enc.Scale.Zero = &z
		}
	}
	if def.Axis != nil {
		enc.Axis = &builder.GuideConfig{Title: def.Axis.Title, Format: def.Axis.Format}
	}
	if def.Legend != nil {
		enc.Legend = &builder.GuideConfig{Title: def.Legend.Title, Format: def.Legend.Format}
	}
	s.Encodings[ch] = enc
}

// decompileTransform keeps filter and calculate steps. Window steps and the
// rank filters they pair with are skipped — topN is not reconstructed.
func decompileTransform(t TransformDef) []builder.Transform {
	switch {
	case len(t.Window) > 0:
		return nil
	case t.Filter != "":
		if strings.Contains(t.Filter, rankField) {
			return nil
		}
		return []builder.Transform{builder.FilterTransform(t.Filter)}
	case t.Calculate != "":
		return []builder.Transform{builder.CalculateTransform(t.Calculate, t.As)}
	}
	return nil
}

func fieldsType(t string) fields.Type {
	switch t {
	case "quantitative", "nominal", "ordinal", "temporal":
		return fields.Type(t)
	}
	return ""
}
