package fields

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// FIELD INFERENCE — Semantic type + stats per dataset column
// ============================================================================
// Inspects raw rows and classifies each column as quantitative, temporal,
// ordinal, or nominal. No AI needed — pure heuristics over a sample window.
//
// Classification per column (non-null samples):
//   1. >60% finite numbers            → quantitative
//   2. >60% ISO-like dates            → temporal
//   3. ≤20 distinct AND <50% of rows  → ordinal
//   4. otherwise                      → nominal
// ============================================================================

// Type is the inferred semantic type of a column.
type Type string

const (
	Quantitative Type = "quantitative"
	Nominal      Type = "nominal"
	Ordinal      Type = "ordinal"
	Temporal     Type = "temporal"
)

// DataField describes one column of a loaded dataset.
// Created once per dataset load and recomputed wholesale on data change.
type DataField struct {
	Name  string `json:"name"`
	Type  Type   `json:"inferredType"`
	Stats Stats  `json:"stats"`
}

// Stats holds summary statistics over the sample window.
type Stats struct {
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	UniqueCount int          `json:"uniqueCount"`
	NullCount   int          `json:"nullCount"`
	TopValues   []ValueCount `json:"topValues,omitempty"`
}

// ValueCount is one entry of a categorical top-values list.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Options controls inference behavior.
type Options struct {
	SampleSize int      // Max rows to inspect (0 = default 100)
	Columns    []string // Column order override (otherwise first-seen, sorted)
}

const defaultSampleSize = 100

// Infer classifies every column observed in the sample window.
// Column order follows opts.Columns when given; otherwise columns are
// sorted by name so output is deterministic across map iteration.
// An empty dataset yields an empty slice, not an error.
func Infer(rows []map[string]any, opts ...Options) []DataField {
	opt := Options{SampleSize: defaultSampleSize}
	if len(opts) > 0 {
		opt = opts[0]
		if opt.SampleSize <= 0 {
			opt.SampleSize = defaultSampleSize
		}
	}

	sample := rows
	if len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	names := opt.Columns
	if len(names) == 0 {
		seen := make(map[string]bool)
		for _, row := range sample {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					names = append(names, k)
				}
			}
		}
		sort.Strings(names)
	}

	out := make([]DataField, 0, len(names))
	for _, name := range names {
		out = append(out, analyzeColumn(name, sample))
	}
	return out
}

// Names returns the field names in order.
func Names(fs []DataField) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by exact name.
func Lookup(fs []DataField, name string) (DataField, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return DataField{}, false
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

// analyzeColumn inspects one column across the sample window.
func analyzeColumn(name string, sample []map[string]any) DataField {
	var (
		nonNull   []any
		nullCount int
	)

	// Stringified unique/top tracking. firstSeen preserves insertion order
	// for the tie-break on equal counts.
	counts := make(map[string]int)
	var firstSeen []string

	for _, row := range sample {
		v, ok := row[name]
		if !ok || isNull(v) {
			nullCount++
			continue
		}
		nonNull = append(nonNull, v)
		s := stringify(v)
		if counts[s] == 0 {
			firstSeen = append(firstSeen, s)
		}
		counts[s]++
	}

	field := DataField{
		Name: name,
		Stats: Stats{
			UniqueCount: len(counts),
			NullCount:   nullCount,
		},
	}

	if len(nonNull) == 0 {
		field.Type = Nominal
		return field
	}

	numericCount := 0
	temporalCount := 0
	var nums []float64
	for _, v := range nonNull {
		if f, ok := asNumber(v); ok {
			numericCount++
			nums = append(nums, f)
		} else if isTemporal(v) {
			temporalCount++
		}
	}

	n := len(nonNull)
	switch {
	case float64(numericCount)/float64(n) > 0.6:
		field.Type = Quantitative
		field.Stats.Min, field.Stats.Max = minMax(nums)

	case float64(temporalCount)/float64(n) > 0.6:
		field.Type = Temporal

	case len(counts) <= 20 && float64(len(counts)) < 0.5*float64(n):
		field.Type = Ordinal
		field.Stats.TopValues = topValues(counts, firstSeen, 10)

	default:
		field.Type = Nominal
		field.Stats.TopValues = topValues(counts, firstSeen, 10)
	}

	return field
}

// isNull treats missing, nil, and the usual null tokens as null.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		t := strings.TrimSpace(s)
		return t == "" || t == "null" || t == "NULL" || t == "N/A" || t == "n/a"
	}
	return false
}

// asNumber extracts a finite float from native numbers and numeric strings.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var isoDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`), // 2026-01-15, 2026-01-15T10:30:00Z
	regexp.MustCompile(`^\d{4}-\d{2}$`), // 2026-01
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`),
}

// isTemporal checks for native time values and ISO-like date strings.
func isTemporal(v any) bool {
	switch d := v.(type) {
	case time.Time:
		return true
	case string:
		s := strings.TrimSpace(d)
		for _, re := range isoDatePatterns {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// stringify converts a value to its categorical key.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// minMax returns pointers so zero-sample columns omit min/max entirely.
func minMax(nums []float64) (*float64, *float64) {
	if len(nums) == 0 {
		return nil, nil
	}
	lo, hi := nums[0], nums[0]
	for _, f := range nums[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return &lo, &hi
}

// topValues returns up to max value/count pairs sorted by descending count,
// ties broken by first-seen order.
func topValues(counts map[string]int, firstSeen []string, max int) []ValueCount {
	order := make(map[string]int, len(firstSeen))
	for i, v := range firstSeen {
		order[v] = i
	}

	top := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		top = append(top, ValueCount{Value: v, Count: c})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return order[top[i].Value] < order[top[j].Value]
	})

	if len(top) > max {
		top = top[:max]
	}
	return top
}
