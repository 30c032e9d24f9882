package builder

import (
	"fmt"
	"sort"

	"github.com/vizforge-org/vizforge/fields"
)

// ============================================================================
// PLAN APPLIER — Pure reducer over (State, ChartEditPlan)
// ============================================================================
// Applies operations strictly in list order. Each operation may read state
// left by earlier ones in the same plan (set_series_colors after
// set_encoding(color, ...) sees the new color field). The input state is
// never mutated.
//
// Inconsistent operations (set_aggregate on an empty channel) are silently
// ignored — operations are best-effort edits over a model that must stay
// structurally valid. Unknown kinds produce a warning, never an error.
// ============================================================================

// Apply reduces a plan over a state and returns the new state plus warnings
// for skipped operations.
func Apply(s State, plan ChartEditPlan, fs []fields.DataField) (State, []string) {
	out := s.Clone()
	var warnings []string

	for _, op := range plan.Operations {
		switch op.Op {
		case OpSetMark:
			applySetMark(&out, op)
		case OpSetEncoding:
			applySetEncoding(&out, op, fs)
		case OpRemoveEncoding:
			delete(out.Encodings, op.Channel)
		case OpSetSeriesColors:
			applySetSeriesColors(&out, op, fs)
		case OpSetColorScheme:
			applySetColorScheme(&out, op, fs)
		case OpSetTopN:
			applySetTopN(&out, op)
		case OpSetSort:
			applySetSort(&out, op)
		case OpAddFilter:
			out.Transforms = append(out.Transforms, FilterTransform(op.Expr))
		case OpSetAggregate:
			if enc := out.Encoding(op.Channel); enc != nil && enc.Field != "" {
				enc.Aggregate = op.Aggregate
			}
		case OpSetTitle:
			out.Title = op.Title
		case OpSetSize:
			if op.Width != nil {
				out.Width = *op.Width
			}
			if op.Height != nil {
				out.Height = *op.Height
			}
		case OpDirectSpecEdit:
			// Whole-spec replacement is the caller's job, not the reducer's.
		default:
			warnings = append(warnings, fmt.Sprintf("unknown operation %q ignored", op.Op))
		}
	}

	return out, warnings
}

func applySetMark(s *State, op EditOp) {
	if !KnownMark(op.Mark) {
		return
	}
	s.Mark.Type = op.Mark
	if op.PointOverlay != nil {
		s.Mark.PointOverlay = *op.PointOverlay
	}
	if op.Stack != "" {
		s.Mark.Stack = op.Stack
	}
	s.Normalize()
}

func applySetEncoding(s *State, op EditOp, fs []fields.DataField) {
	if op.Channel == "" || op.Field == "" {
		return
	}
	enc := &EncodingConfig{Field: op.Field}

	// Explicit type override wins; otherwise the field's inferred type.
	if op.FieldType != "" {
		enc.Type = fields.Type(op.FieldType)
	} else if f, ok := fields.Lookup(fs, op.Field); ok {
		enc.Type = f.Type
	}

	if op.Config != nil {
		mergeEncoding(enc, op.Config)
	}
	s.Encodings[op.Channel] = enc
}

// mergeEncoding overlays the populated fields of extra onto enc.
func mergeEncoding(enc, extra *EncodingConfig) {
	if extra.Type != "" {
		enc.Type = extra.Type
	}
	if extra.Aggregate != "" {
		enc.Aggregate = extra.Aggregate
	}
	if extra.Sort != nil {
		enc.Sort = extra.Clone().Sort
	}
	if extra.Bin != nil {
		enc.Bin = extra.Clone().Bin
	}
	if extra.TimeUnit != "" {
		enc.TimeUnit = extra.TimeUnit
	}
	if extra.Scale != nil {
		enc.Scale = extra.Clone().Scale
	}
	if extra.Axis != nil {
		enc.Axis = extra.Clone().Axis
	}
	if extra.Legend != nil {
		enc.Legend = extra.Clone().Legend
	}
}

// applySetSeriesColors attaches an explicit domain/range color scale.
// When no color encoding exists, the first nominal field (or the first field
// of any type) is auto-assigned to the color channel first.
func applySetSeriesColors(s *State, op EditOp, fs []fields.DataField) {
	if len(op.Colors) == 0 {
		return
	}
	ensureColorEncoding(s, fs)
	enc := s.Encoding(ChannelColor)
	if enc == nil {
		return // no fields at all
	}

	domain, rng := sortedPairs(op.Colors)
	if enc.Scale == nil {
		enc.Scale = &ScaleConfig{}
	}
	enc.Scale.Domain = domain
	enc.Scale.Range = rng
	enc.Scale.Scheme = ""
}

func applySetColorScheme(s *State, op EditOp, fs []fields.DataField) {
	if op.Scheme == "" {
		return
	}
	ensureColorEncoding(s, fs)
	enc := s.Encoding(ChannelColor)
	if enc == nil {
		return
	}
	if enc.Scale == nil {
		enc.Scale = &ScaleConfig{}
	}
	enc.Scale.Scheme = op.Scheme
	enc.Scale.Domain = nil
	enc.Scale.Range = nil
}

// ensureColorEncoding auto-assigns a color field when the channel is empty.
func ensureColorEncoding(s *State, fs []fields.DataField) {
	if enc := s.Encoding(ChannelColor); enc != nil && enc.Field != "" {
		return
	}
	for _, f := range fs {
		if f.Type == fields.Nominal {
			s.Encodings[ChannelColor] = &EncodingConfig{Field: f.Name, Type: f.Type}
			return
		}
	}
	if len(fs) > 0 {
		s.Encodings[ChannelColor] = &EncodingConfig{Field: fs[0].Name, Type: fs[0].Type}
	}
}

// applySetTopN replaces any existing topN transform; at most one exists.
// The ranking field defaults to the current y field, then x field.
func applySetTopN(s *State, op EditOp) {
	if op.N <= 0 {
		return
	}
	byField := op.ByField
	if byField == "" {
		if enc := s.Encoding(ChannelY); enc != nil && enc.Field != "" {
			byField = enc.Field
		} else if enc := s.Encoding(ChannelX); enc != nil && enc.Field != "" {
			byField = enc.Field
		}
	}
	if byField == "" {
		return
	}

	t := TopNTransform(op.N, byField, op.Order)
	if i := s.TopNIndex(); i >= 0 {
		s.Transforms[i] = t
	} else {
		s.Transforms = append(s.Transforms, t)
	}
}

// applySetSort sorts an axis channel directly when the target is "x" or "y".
// Any other target attaches a field-based sort to the y channel regardless
// of which axis that field encodes.
func applySetSort(s *State, op EditOp) {
	order := op.Order
	if order == "" {
		order = Ascending
	}

	switch op.Target {
	case "x", "y":
		ch := Channel(op.Target)
		if enc := s.Encoding(ch); enc != nil && enc.Field != "" {
			enc.Sort = &SortConfig{Order: order}
		}
	default:
		if enc := s.Encoding(ChannelY); enc != nil && enc.Field != "" {
			enc.Sort = &SortConfig{Field: op.Target, Order: order}
		}
	}
}

// sortedPairs splits a category→color map into parallel domain/range slices
// with a deterministic (sorted) domain order.
func sortedPairs(colors map[string]string) (domain, rng []string) {
	domain = make([]string, 0, len(colors))
	for k := range colors {
		domain = append(domain, k)
	}
	sort.Strings(domain)
	rng = make([]string, len(domain))
	for i, k := range domain {
		rng[i] = colors[k]
	}
	return domain, rng
}
