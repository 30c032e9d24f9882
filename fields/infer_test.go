package fields

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// INFERENCE TESTS
// ============================================================================

// Sample sales rows, the shape a CSV loader produces.
func salesRows() []map[string]any {
	return []map[string]any{
		{"Region": "West", "Month": "2026-01", "Sales": 1200.0, "Notes": "launch week"},
		{"Region": "East", "Month": "2026-01", "Sales": 900.0, "Notes": "steady"},
		{"Region": "West", "Month": "2026-02", "Sales": 1350.0, "Notes": "promo ran long"},
		{"Region": "East", "Month": "2026-02", "Sales": 870.0, "Notes": "holiday dip"},
		{"Region": "North", "Month": "2026-03", "Sales": 400.0, "Notes": "new territory"},
		{"Region": "West", "Month": "2026-03", "Sales": 1500.0, "Notes": "record month"},
		{"Region": "East", "Month": "2026-04", "Sales": nil, "Notes": "missing report"},
		{"Region": "South", "Month": "2026-04", "Sales": 650.0, "Notes": "first quarter"},
	}
}

func TestInferClassification(t *testing.T) {
	fs := Infer(salesRows(), Options{Columns: []string{"Region", "Month", "Sales", "Notes"}})
	require.Len(t, fs, 4)

	byName := map[string]DataField{}
	for _, f := range fs {
		byName[f.Name] = f
	}

	assert.Equal(t, Quantitative, byName["Sales"].Type)
	assert.Equal(t, Temporal, byName["Month"].Type)
	// 4 distinct regions over 8 rows: exactly half, so not low-cardinality.
	assert.Equal(t, Nominal, byName["Region"].Type)
	// Every note is unique free text.
	assert.Equal(t, Nominal, byName["Notes"].Type)
}

func TestInferOrdinal(t *testing.T) {
	rows := make([]map[string]any, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, map[string]any{"Priority": []string{"P1", "P2", "P3"}[i%3]})
	}
	fs := Infer(rows)
	require.Len(t, fs, 1)
	assert.Equal(t, Ordinal, fs[0].Type)
	assert.Equal(t, 3, fs[0].Stats.UniqueCount)
}

func TestInferStats(t *testing.T) {
	fs := Infer(salesRows(), Options{Columns: []string{"Sales"}})
	require.Len(t, fs, 1)

	stats := fs[0].Stats
	require.NotNil(t, stats.Min)
	require.NotNil(t, stats.Max)
	assert.Equal(t, 400.0, *stats.Min)
	assert.Equal(t, 1500.0, *stats.Max)
	assert.Equal(t, 1, stats.NullCount)
	assert.Equal(t, 7, stats.UniqueCount)
}

func TestInferTopValuesOrdering(t *testing.T) {
	rows := []map[string]any{
		{"Status": "open"}, {"Status": "open"}, {"Status": "open"},
		{"Status": "closed"}, {"Status": "closed"},
		{"Status": "triaged"}, {"Status": "triaged"},
		{"Status": "wontfix"},
	}
	fs := Infer(rows)
	require.Len(t, fs, 1)

	top := fs[0].Stats.TopValues
	require.Len(t, top, 4)
	assert.Equal(t, ValueCount{Value: "open", Count: 3}, top[0])
	// closed and triaged tie at 2; closed was seen first.
	assert.Equal(t, ValueCount{Value: "closed", Count: 2}, top[1])
	assert.Equal(t, ValueCount{Value: "triaged", Count: 2}, top[2])
	assert.Equal(t, ValueCount{Value: "wontfix", Count: 1}, top[3])
}

func TestInferNumericStrings(t *testing.T) {
	rows := []map[string]any{
		{"Amount": "1200.50"},
		{"Amount": "990"},
		{"Amount": " 45.00 "},
		{"Amount": "oops"},
	}
	fs := Infer(rows)
	require.Len(t, fs, 1)
	assert.Equal(t, Quantitative, fs[0].Type, "3 of 4 numeric clears the 60%% bar")
}

func TestInferNullTokens(t *testing.T) {
	rows := []map[string]any{
		{"V": ""}, {"V": "null"}, {"V": "N/A"}, {"V": nil}, {"V": "x"},
	}
	fs := Infer(rows)
	require.Len(t, fs, 1)
	assert.Equal(t, 4, fs[0].Stats.NullCount)
	assert.Equal(t, 1, fs[0].Stats.UniqueCount)
}

func TestInferColumnOrder(t *testing.T) {
	rows := []map[string]any{{"b": 1, "a": 2, "c": 3}}

	// No override: sorted by name for determinism.
	assert.Equal(t, []string{"a", "b", "c"}, Names(Infer(rows)))

	// Override preserves dataset column order.
	got := Infer(rows, Options{Columns: []string{"c", "a", "b"}})
	assert.Equal(t, []string{"c", "a", "b"}, Names(got))
}

func TestInferSampleWindow(t *testing.T) {
	rows := make([]map[string]any, 0, 150)
	for i := 0; i < 150; i++ {
		v := any(fmt.Sprintf("cat-%d", i))
		if i >= 100 {
			v = float64(i) // numbers only beyond the default window
		}
		rows = append(rows, map[string]any{"V": v})
	}
	fs := Infer(rows)
	require.Len(t, fs, 1)
	assert.Equal(t, Nominal, fs[0].Type, "rows past the sample window must not count")
}

func TestInferEmpty(t *testing.T) {
	assert.Empty(t, Infer(nil))
	assert.Empty(t, Infer([]map[string]any{}))
}

func TestInferAllNullColumn(t *testing.T) {
	rows := []map[string]any{{"V": nil}, {"V": ""}}
	fs := Infer(rows)
	require.Len(t, fs, 1)
	assert.Equal(t, Nominal, fs[0].Type)
	assert.Nil(t, fs[0].Stats.Min)
}

func TestLookup(t *testing.T) {
	fs := Infer(salesRows(), Options{Columns: []string{"Region", "Sales"}})

	f, ok := Lookup(fs, "Sales")
	require.True(t, ok)
	assert.Equal(t, Quantitative, f.Type)

	_, ok = Lookup(fs, "sales")
	assert.False(t, ok, "Lookup is exact-match only")
}
