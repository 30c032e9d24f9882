package builder

import "encoding/json"

// ============================================================================
// EDIT OPERATIONS — Contract between planner and reducer
// ============================================================================
// One atomic, typed instruction for mutating a State. Produced by the intent
// planner (local battery or remote LLM), consumed once by Apply.
// ============================================================================

// OpKind tags the operation union.
type OpKind string

const (
	OpSetMark         OpKind = "set_mark"
	OpSetEncoding     OpKind = "set_encoding"
	OpRemoveEncoding  OpKind = "remove_encoding"
	OpSetSeriesColors OpKind = "set_series_colors"
	OpSetColorScheme  OpKind = "set_color_scheme"
	OpSetTopN         OpKind = "set_top_n"
	OpSetSort         OpKind = "set_sort"
	OpAddFilter       OpKind = "add_filter"
	OpSetAggregate    OpKind = "set_aggregate"
	OpSetTitle        OpKind = "set_title"
	OpSetSize         OpKind = "set_size"

	// OpDirectSpecEdit marks an AI whole-spec replacement. The reducer skips
	// it — the caller substitutes the spec directly (custom-spec pathway).
	OpDirectSpecEdit OpKind = "direct_spec_edit"
)

// EditOp is one operation of a ChartEditPlan. Only the fields for its Op
// kind are populated. Immutable once built.
type EditOp struct {
	Op OpKind `json:"op"`

	// set_mark
	Mark         MarkType  `json:"mark,omitempty"`
	PointOverlay *bool     `json:"pointOverlay,omitempty"`
	Stack        StackMode `json:"stack,omitempty"`

	// set_encoding / remove_encoding / set_aggregate / set_sort target
	Channel Channel `json:"channel,omitempty"`

	// set_encoding
	Field     string          `json:"field,omitempty"`
	FieldType string          `json:"fieldType,omitempty"` // explicit type override
	Config    *EncodingConfig `json:"config,omitempty"`    // extra channel config to merge

	// set_series_colors
	Colors map[string]string `json:"colors,omitempty"` // category → color literal

	// set_color_scheme
	Scheme string `json:"scheme,omitempty"`

	// set_top_n
	N       int    `json:"n,omitempty"`
	ByField string `json:"byField,omitempty"`

	// set_top_n + set_sort
	Order Order `json:"order,omitempty"`

	// set_sort: "x", "y", or a field name (field-based sort on y)
	Target string `json:"target,omitempty"`

	// add_filter
	Expr string `json:"expr,omitempty"`

	// set_aggregate
	Aggregate Aggregate `json:"aggregate,omitempty"`

	// set_title
	Title string `json:"title,omitempty"`

	// set_size
	Width  *Dimension `json:"width,omitempty"`
	Height *Dimension `json:"height,omitempty"`

	// direct_spec_edit
	Spec json.RawMessage `json:"spec,omitempty"`
}

// ChartEditPlan is an ordered operation list plus provenance. Transient:
// displayed, applied once, then discarded.
type ChartEditPlan struct {
	IntentText string   `json:"intentText"`
	Confidence float64  `json:"confidence"`
	Operations []EditOp `json:"operations"`
}

// Empty reports a plan that matched nothing ("nothing changed" surface).
func (p ChartEditPlan) Empty() bool { return len(p.Operations) == 0 }
