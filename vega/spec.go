package vega

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// DECLARATIVE SPEC — Vega-Lite subset the compiler can emit
// ============================================================================
// The rendering collaborator owns the full grammar; these types cover only
// the compiler/decompiler-representable subset. Anything richer (facet,
// layer, concat, repeat, remote data) is a "custom" spec handled as opaque
// JSON — see classify.go.
// ============================================================================

// SchemaURL is stamped on every compiled spec.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// DataName is the named data source compiled specs reference. The renderer
// binds actual rows to it; the core never embeds data.
const DataName = "table"

// Spec is a single-view declarative chart spec.
type Spec struct {
	Schema      string    `json:"$schema,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Background  string    `json:"background,omitempty"`
	Padding     *int      `json:"padding,omitempty"`
	Width       *float64  `json:"width,omitempty"`
	Height      *float64  `json:"height,omitempty"`
	Autosize    *Autosize `json:"autosize,omitempty"`

	Data      *Data          `json:"data,omitempty"`
	Transform []TransformDef `json:"transform,omitempty"`
	Mark      *MarkDef       `json:"mark,omitempty"`
	Encoding  *Encoding      `json:"encoding,omitempty"`
}

// Autosize is the flexible-sizing layout hint emitted for fill-container.
type Autosize struct {
	Type     string `json:"type"`
	Contains string `json:"contains,omitempty"`
	Resize   bool   `json:"resize,omitempty"`
}

// Data is the spec's data source reference.
type Data struct {
	Name   string           `json:"name,omitempty"`
	URL    string           `json:"url,omitempty"`
	Values []map[string]any `json:"values,omitempty"`
}

// MarkDef is the mark descriptor. The grammar also allows a bare string
// mark ("bar"); UnmarshalJSON accepts both, MarshalJSON always emits the
// object form so compiled output is canonical.
type MarkDef struct {
	Type        string   `json:"type"`
	Point       bool     `json:"point,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	Size        *float64 `json:"size,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Interpolate string   `json:"interpolate,omitempty"`
}

func (m *MarkDef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MarkDef{Type: s}
		return nil
	}
	type alias MarkDef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = MarkDef(a)
	return nil
}

// Encoding holds the channel descriptors. Fixed struct fields (not a map)
// keep marshalling order byte-stable.
type Encoding struct {
	X       *ChannelDef  `json:"x,omitempty"`
	Y       *ChannelDef  `json:"y,omitempty"`
	Color   *ChannelDef  `json:"color,omitempty"`
	Size    *ChannelDef  `json:"size,omitempty"`
	Tooltip []ChannelDef `json:"tooltip,omitempty"`
}

// ChannelDef is one channel descriptor.
type ChannelDef struct {
	Field     string      `json:"field,omitempty"`
	Type      string      `json:"type,omitempty"`
	Aggregate string      `json:"aggregate,omitempty"`
	Bin       *BinValue   `json:"bin,omitempty"`
	TimeUnit  string      `json:"timeUnit,omitempty"`
	Sort      *SortValue  `json:"sort,omitempty"`
	Stack     *StackValue `json:"stack,omitempty"`
	Scale     *Scale      `json:"scale,omitempty"`
	Axis      *Guide      `json:"axis,omitempty"`
	Legend    *Guide      `json:"legend,omitempty"`
}

// Scale carries explicit scale overrides.
type Scale struct {
	Domain  []string `json:"domain,omitempty"`
	Range   []string `json:"range,omitempty"`
	Scheme  string   `json:"scheme,omitempty"`
	Reverse bool     `json:"reverse,omitempty"`
	Zero    *bool    `json:"zero,omitempty"`
}

// Guide is an axis or legend hint.
type Guide struct {
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
}

// ============================================================================
// GRAMMAR VALUE TYPES — JSON shapes that are unions in the grammar
// ============================================================================

// BinValue is `true` or `{"maxbins": n}` on the wire.
type BinValue struct {
	MaxBins int
}

func (b BinValue) MarshalJSON() ([]byte, error) {
	if b.MaxBins > 0 {
		return json.Marshal(map[string]int{"maxbins": b.MaxBins})
	}
	return []byte("true"), nil
}

func (b *BinValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) {
		*b = BinValue{}
		return nil
	}
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*b = BinValue{}
		return nil
	}
	var obj struct {
		MaxBins int `json:"maxbins"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("vega: bad bin value: %w", err)
	}
	*b = BinValue{MaxBins: obj.MaxBins}
	return nil
}

// SortValue is `"ascending"` / `"descending"` or `{"field","order"}`.
type SortValue struct {
	Order string `json:"order,omitempty"`
	Field string `json:"field,omitempty"`
}

func (s SortValue) MarshalJSON() ([]byte, error) {
	if s.Field == "" {
		return json.Marshal(s.Order)
	}
	type alias SortValue
	return json.Marshal(alias(s))
}

func (s *SortValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var order string
		if err := json.Unmarshal(data, &order); err != nil {
			return err
		}
		*s = SortValue{Order: order}
		return nil
	}
	type alias SortValue
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("vega: bad sort value: %w", err)
	}
	*s = SortValue(a)
	return nil
}

// StackValue is `"zero"` / `"normalize"` or `false` (stacking disabled).
type StackValue struct {
	Mode string // "zero", "normalize", or "none"
}

func (s StackValue) MarshalJSON() ([]byte, error) {
	if s.Mode == "none" {
		return []byte("false"), nil
	}
	return json.Marshal(s.Mode)
}

func (s *StackValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*s = StackValue{Mode: "none"}
		return nil
	}
	var mode string
	if err := json.Unmarshal(data, &mode); err != nil {
		return fmt.Errorf("vega: bad stack value: %w", err)
	}
	*s = StackValue{Mode: mode}
	return nil
}

// ============================================================================
// TRANSFORMS
// ============================================================================

// TransformDef is one transform step. Exactly one family of fields is set:
// filter, calculate/as, window/sort, or aggregate/groupby.
type TransformDef struct {
	Filter    string           `json:"filter,omitempty"`
	Calculate string           `json:"calculate,omitempty"`
	As        string           `json:"as,omitempty"`
	Window    []WindowField    `json:"window,omitempty"`
	Sort      []SortField      `json:"sort,omitempty"`
	GroupBy   []string         `json:"groupby,omitempty"`
	Aggregate []AggregateField `json:"aggregate,omitempty"`
}

// WindowField is one window operation.
type WindowField struct {
	Op string `json:"op"`
	As string `json:"as"`
}

// SortField orders a window frame.
type SortField struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// AggregateField is one aggregate-transform operation.
type AggregateField struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	As    string `json:"as"`
}

// ============================================================================
// SERIALIZATION
// ============================================================================

// Marshal renders the spec as canonical JSON. Identical specs marshal to
// byte-identical output.
func (s *Spec) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// MarshalIndent renders the spec for display.
func (s *Spec) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
