package builder

import (
	"encoding/json"
	"fmt"

	"github.com/vizforge-org/vizforge/fields"
)

// ============================================================================
// BUILDER STATE — Restricted, always-valid chart description
// ============================================================================
// The panel/command editing surface. Everything here is compilable to a
// declarative spec by construction: invariants are enforced where state is
// built (Apply, Normalize), never patched up afterwards.
// ============================================================================

// MarkType is the chart mark.
type MarkType string

const (
	MarkBar    MarkType = "bar"
	MarkLine   MarkType = "line"
	MarkArea   MarkType = "area"
	MarkPoint  MarkType = "point"
	MarkCircle MarkType = "circle"
	MarkSquare MarkType = "square"
	MarkTick   MarkType = "tick"
	MarkRect   MarkType = "rect"
	MarkArc    MarkType = "arc"
	MarkText   MarkType = "text"
)

// KnownMark reports whether t is a recognized mark type.
func KnownMark(t MarkType) bool {
	switch t {
	case MarkBar, MarkLine, MarkArea, MarkPoint, MarkCircle, MarkSquare,
		MarkTick, MarkRect, MarkArc, MarkText:
		return true
	}
	return false
}

// StackMode controls stacking for bar/area marks.
type StackMode string

const (
	StackNone      StackMode = "none"
	StackZero      StackMode = "zero"
	StackNormalize StackMode = "normalize"
)

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

// Aggregate is a channel aggregation function.
type Aggregate string

const (
	AggSum      Aggregate = "sum"
	AggMean     Aggregate = "mean"
	AggMedian   Aggregate = "median"
	AggCount    Aggregate = "count"
	AggMin      Aggregate = "min"
	AggMax      Aggregate = "max"
	AggDistinct Aggregate = "distinct"
	AggQ1       Aggregate = "q1"
	AggQ3       Aggregate = "q3"
	AggVariance Aggregate = "variance"
	AggStdev    Aggregate = "stdev"
)

// TimeUnit is a temporal bucketing granularity.
type TimeUnit string

const (
	UnitYear      TimeUnit = "year"
	UnitQuarter   TimeUnit = "quarter"
	UnitMonth     TimeUnit = "month"
	UnitWeek      TimeUnit = "week"
	UnitDate      TimeUnit = "date"
	UnitDay       TimeUnit = "day"
	UnitHours     TimeUnit = "hours"
	UnitMinutes   TimeUnit = "minutes"
	UnitYearMonth TimeUnit = "yearmonth"
)

// Channel is a visual mapping slot.
type Channel string

const (
	ChannelX     Channel = "x"
	ChannelY     Channel = "y"
	ChannelColor Channel = "color"
	ChannelSize  Channel = "size"
)

// EncodingChannels is the channel evaluation order used everywhere a
// deterministic walk over the encodings map is needed.
var EncodingChannels = []Channel{ChannelX, ChannelY, ChannelColor, ChannelSize}

// ============================================================================
// MARK / ENCODING CONFIG
// ============================================================================

// MarkConfig describes the mark and its style hints.
// Stack is only meaningful for bar/area; PointOverlay only for line/area.
type MarkConfig struct {
	Type         MarkType  `json:"type"`
	PointOverlay bool      `json:"pointOverlay,omitempty"`
	Stack        StackMode `json:"stack,omitempty"`
	Opacity      *float64  `json:"opacity,omitempty"`
	Size         *float64  `json:"size,omitempty"`
	StrokeWidth  *float64  `json:"strokeWidth,omitempty"`
	Interpolate  string    `json:"interpolate,omitempty"`
}

// EncodingConfig maps one channel to a field. Owned by exactly one channel
// slot — never shared between channels or states.
type EncodingConfig struct {
	Field     string       `json:"field,omitempty"`
	Type      fields.Type  `json:"type,omitempty"`
	Aggregate Aggregate    `json:"aggregate,omitempty"`
	Sort      *SortConfig  `json:"sort,omitempty"`
	Bin       *BinConfig   `json:"bin,omitempty"`
	TimeUnit  TimeUnit     `json:"timeUnit,omitempty"`
	Scale     *ScaleConfig `json:"scale,omitempty"`
	Axis      *GuideConfig `json:"axis,omitempty"`
	Legend    *GuideConfig `json:"legend,omitempty"`
}

// SortConfig is either a plain direction or a (field, order) pair.
type SortConfig struct {
	Order Order  `json:"order,omitempty"`
	Field string `json:"field,omitempty"`
}

// BinConfig enables binning. A zero MaxBins means plain boolean binning.
type BinConfig struct {
	MaxBins int `json:"maxbins,omitempty"`
}

// ScaleConfig carries explicit scale overrides.
type ScaleConfig struct {
	Domain  []string `json:"domain,omitempty"`
	Range   []string `json:"range,omitempty"`
	Scheme  string   `json:"scheme,omitempty"`
	Reverse bool     `json:"reverse,omitempty"`
	Zero    *bool    `json:"zero,omitempty"`
}

// GuideConfig is an axis/legend display hint.
type GuideConfig struct {
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
}

// TooltipConfig is the tooltip channel variant: auto (first six dataset
// fields) or an explicit field list.
type TooltipConfig struct {
	Auto   bool     `json:"auto,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// ============================================================================
// TRANSFORMS
// ============================================================================

// TransformKind tags the transform union.
type TransformKind string

const (
	TransformFilter    TransformKind = "filter"
	TransformTopN      TransformKind = "topN"
	TransformCalculate TransformKind = "calculate"
	TransformAggregate TransformKind = "aggregate"
)

// Transform is one step of the ordered transform pipeline.
// Only the fields for its Kind are populated; order is significant.
type Transform struct {
	Kind TransformKind `json:"kind"`

	// filter + calculate
	Expr string `json:"expr,omitempty"`

	// topN
	N       int    `json:"n,omitempty"`
	ByField string `json:"byField,omitempty"`
	Order   Order  `json:"order,omitempty"`

	// calculate
	As string `json:"as,omitempty"`

	// aggregate
	GroupBy []string    `json:"groupBy,omitempty"`
	Ops     []Aggregate `json:"ops,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
	Names   []string    `json:"names,omitempty"`
}

// FilterTransform builds a filter step.
func FilterTransform(expr string) Transform {
	return Transform{Kind: TransformFilter, Expr: expr}
}

// TopNTransform builds a top-N step. Order defaults to descending.
func TopNTransform(n int, byField string, order Order) Transform {
	if order == "" {
		order = Descending
	}
	return Transform{Kind: TransformTopN, N: n, ByField: byField, Order: order}
}

// CalculateTransform builds a calculate step.
func CalculateTransform(expr, as string) Transform {
	return Transform{Kind: TransformCalculate, Expr: expr, As: as}
}

// ============================================================================
// DIMENSION — number or "fill-container"
// ============================================================================

// FillContainer is the sentinel for flexible sizing.
const FillContainer = "fill-container"

// Dimension is a chart width/height: a pixel count or fill-container.
type Dimension struct {
	Px   float64
	Fill bool
}

// FillDim returns the fill-container dimension.
func FillDim() Dimension { return Dimension{Fill: true} }

// PxDim returns a fixed pixel dimension.
func PxDim(px float64) Dimension { return Dimension{Px: px} }

// IsZero reports an unset dimension (used by omitzero).
func (d Dimension) IsZero() bool { return !d.Fill && d.Px == 0 }

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Fill {
		return json.Marshal(FillContainer)
	}
	return json.Marshal(d.Px)
}

func (d *Dimension) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != FillContainer {
			return fmt.Errorf("builder: unknown dimension sentinel %q", s)
		}
		*d = Dimension{Fill: true}
		return nil
	}
	var px float64
	if err := json.Unmarshal(data, &px); err != nil {
		return fmt.Errorf("builder: dimension must be a number or %q: %w", FillContainer, err)
	}
	*d = Dimension{Px: px}
	return nil
}

// ============================================================================
// STATE
// ============================================================================

// State is the Configuration Model: the restricted chart description edited
// by visual controls and commands. Always compilable.
type State struct {
	Mark       MarkConfig                  `json:"mark"`
	Encodings  map[Channel]*EncodingConfig `json:"encodings"`
	Tooltip    *TooltipConfig              `json:"tooltip,omitempty"`
	Transforms []Transform                 `json:"transforms,omitempty"`

	Width  Dimension `json:"width,omitzero"`
	Height Dimension `json:"height,omitzero"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Background  string `json:"background,omitempty"`
	Padding     *int   `json:"padding,omitempty"`
}

// NewState returns an empty state with the given mark and fill sizing.
func NewState(mark MarkType) State {
	return State{
		Mark:      MarkConfig{Type: mark},
		Encodings: map[Channel]*EncodingConfig{},
		Width:     FillDim(),
		Height:    FillDim(),
	}
}

// DefaultState seeds a bar chart from inferred fields: first categorical or
// temporal field on x, first quantitative on y, auto tooltip.
func DefaultState(fs []fields.DataField) State {
	s := NewState(MarkBar)
	for _, f := range fs {
		if f.Type != fields.Quantitative {
			s.Encodings[ChannelX] = &EncodingConfig{Field: f.Name, Type: f.Type}
			break
		}
	}
	for _, f := range fs {
		if f.Type == fields.Quantitative {
			s.Encodings[ChannelY] = &EncodingConfig{Field: f.Name, Type: f.Type, Aggregate: AggSum}
			break
		}
	}
	s.Tooltip = &TooltipConfig{Auto: true}
	return s
}

// Encoding returns the channel's config, or nil when the channel is empty.
func (s State) Encoding(ch Channel) *EncodingConfig {
	if s.Encodings == nil {
		return nil
	}
	return s.Encodings[ch]
}

// Normalize clears flags that are illegal for the current mark type:
// stacking off bar/area, point overlay off line/area.
func (s *State) Normalize() {
	switch s.Mark.Type {
	case MarkBar, MarkArea:
	default:
		s.Mark.Stack = ""
	}
	switch s.Mark.Type {
	case MarkLine, MarkArea:
	default:
		s.Mark.PointOverlay = false
	}
}

// TopNIndex returns the index of the topN transform, or -1.
// At most one topN transform exists at a time.
func (s State) TopNIndex() int {
	for i, t := range s.Transforms {
		if t.Kind == TransformTopN {
			return i
		}
	}
	return -1
}

// ============================================================================
// DEEP COPY
// ============================================================================

// Clone returns a deep copy. Snapshots and reducers rely on this: a cloned
// state shares no mutable memory with its source.
func (s State) Clone() State {
	out := s
	out.Encodings = make(map[Channel]*EncodingConfig, len(s.Encodings))
	for ch, enc := range s.Encodings {
		out.Encodings[ch] = enc.Clone()
	}
	if s.Tooltip != nil {
		t := TooltipConfig{Auto: s.Tooltip.Auto, Fields: append([]string(nil), s.Tooltip.Fields...)}
		out.Tooltip = &t
	}
	out.Transforms = make([]Transform, len(s.Transforms))
	for i, tr := range s.Transforms {
		out.Transforms[i] = tr.Clone()
	}
	out.Mark = s.Mark.Clone()
	out.Padding = clonePtr(s.Padding)
	return out
}

// Clone deep-copies a mark config.
func (m MarkConfig) Clone() MarkConfig {
	out := m
	out.Opacity = clonePtr(m.Opacity)
	out.Size = clonePtr(m.Size)
	out.StrokeWidth = clonePtr(m.StrokeWidth)
	return out
}

// Clone deep-copies an encoding config. Nil in, nil out.
func (e *EncodingConfig) Clone() *EncodingConfig {
	if e == nil {
		return nil
	}
	out := *e
	if e.Sort != nil {
		s := *e.Sort
		out.Sort = &s
	}
	out.Bin = clonePtr(e.Bin)
	if e.Scale != nil {
		sc := *e.Scale
		sc.Domain = append([]string(nil), e.Scale.Domain...)
		sc.Range = append([]string(nil), e.Scale.Range...)
		sc.Zero = clonePtr(e.Scale.Zero)
		out.Scale = &sc
	}
	out.Axis = clonePtr(e.Axis)
	out.Legend = clonePtr(e.Legend)
	return &out
}

// Clone deep-copies a transform.
func (t Transform) Clone() Transform {
	out := t
	out.GroupBy = append([]string(nil), t.GroupBy...)
	out.Ops = append([]Aggregate(nil), t.Ops...)
	out.Fields = append([]string(nil), t.Fields...)
	out.Names = append([]string(nil), t.Names...)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
