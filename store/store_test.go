package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/fields"
	"github.com/vizforge-org/vizforge/planner"
)

// ============================================================================
// SESSION TESTS
// ============================================================================

func salesRows() []map[string]any {
	return []map[string]any{
		{"Region": "West", "Month": "2026-01", "Sales": 1200.0},
		{"Region": "East", "Month": "2026-01", "Sales": 900.0},
		{"Region": "West", "Month": "2026-02", "Sales": 1350.0},
		{"Region": "East", "Month": "2026-02", "Sales": 870.0},
		{"Region": "North", "Month": "2026-03", "Sales": 400.0},
		{"Region": "South", "Month": "2026-03", "Sales": 650.0},
	}
}

var salesColumns = []string{"Region", "Month", "Sales"}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	sess, err := NewSession(salesRows(), salesColumns, opts...)
	require.NoError(t, err)
	return sess
}

// failingPlanner simulates a dead remote.
type failingPlanner struct{}

func (failingPlanner) Plan(context.Context, string, []string, builder.State) (builder.ChartEditPlan, error) {
	return builder.ChartEditPlan{}, &planner.RemoteError{Provider: "test", Err: errors.New("boom")}
}

func TestNewSessionSeedsDefaultChart(t *testing.T) {
	sess := newTestSession(t)

	state := sess.State()
	assert.Equal(t, builder.MarkBar, state.Mark.Type)
	assert.False(t, sess.Custom())

	spec := sess.Spec()
	assert.Equal(t, "bar", gjson.GetBytes(spec, "mark.type").String())
	assert.Equal(t, "table", gjson.GetBytes(spec, "data.name").String())
	assert.Equal(t, "Region", gjson.GetBytes(spec, "encoding.x.field").String())
	assert.Equal(t, "Sales", gjson.GetBytes(spec, "encoding.y.field").String())
}

func TestApplyCommandMutatesSpec(t *testing.T) {
	sess := newTestSession(t)

	warnings, err := sess.ApplyCommand(context.Background(), "change to line chart")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, builder.MarkLine, sess.State().Mark.Type)
	assert.Equal(t, "line", gjson.GetBytes(sess.Spec(), "mark.type").String())
}

func TestApplyCommandNoMatchLeavesStateAlone(t *testing.T) {
	sess := newTestSession(t)
	before := sess.Spec()

	warnings, err := sess.ApplyCommand(context.Background(), "sing me a song")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, string(before), string(sess.Spec()))
	assert.False(t, sess.Undo(), "no snapshot was taken")
}

func TestApplyCommandRemoteFailureLeavesStateAlone(t *testing.T) {
	sess := newTestSession(t, WithPlanner(failingPlanner{}))
	before := sess.Spec()

	_, err := sess.ApplyCommand(context.Background(), "change to line chart")
	require.Error(t, err)

	var remote *planner.RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, string(before), string(sess.Spec()))
	assert.False(t, sess.Undo())
}

func TestUndoRedoThroughSession(t *testing.T) {
	sess := newTestSession(t)

	_, err := sess.ApplyCommand(context.Background(), "change to line chart")
	require.NoError(t, err)

	require.True(t, sess.Undo())
	assert.Equal(t, builder.MarkBar, sess.State().Mark.Type)

	require.True(t, sess.Redo())
	assert.Equal(t, builder.MarkLine, sess.State().Mark.Type)

	assert.False(t, sess.Redo(), "top of history")
}

func TestUndoOnFreshSessionIsNoop(t *testing.T) {
	sess := newTestSession(t)
	assert.False(t, sess.Undo())
	assert.False(t, sess.Redo())
}

func TestReplaceSpecCustomMode(t *testing.T) {
	sess := newTestSession(t)

	facet := json.RawMessage(`{"facet":{"field":"Region","type":"nominal"},"spec":{"mark":"bar"}}`)
	require.NoError(t, sess.ReplaceSpec(facet, "paste faceted spec"))
	assert.True(t, sess.Custom())

	// Structured plans are rejected in custom mode.
	_, err := sess.ApplyPlan(builder.ChartEditPlan{Operations: []builder.EditOp{{Op: builder.OpSetMark, Mark: builder.MarkLine}}})
	assert.ErrorIs(t, err, ErrCustomSpec)

	// Commands without a spec editor are rejected too.
	_, err = sess.ApplyCommand(context.Background(), "change to line chart")
	assert.ErrorIs(t, err, ErrCustomSpec)

	// Undo leaves custom mode.
	require.True(t, sess.Undo())
	assert.False(t, sess.Custom())
}

func TestReplaceSpecBuilderRepresentable(t *testing.T) {
	sess := newTestSession(t)

	raw := json.RawMessage(`{"mark":"line","title":"Pasted","encoding":{"x":{"field":"Month","type":"temporal"}}}`)
	require.NoError(t, sess.ReplaceSpec(raw, "paste simple spec"))

	assert.False(t, sess.Custom(), "representable specs decompile back to builder state")
	state := sess.State()
	assert.Equal(t, builder.MarkLine, state.Mark.Type)
	assert.Equal(t, "Pasted", state.Title)
}

func TestReplaceSpecRejectsInvalidJSON(t *testing.T) {
	sess := newTestSession(t)
	err := sess.ReplaceSpec(json.RawMessage(`{"mark":`), "broken")
	require.Error(t, err)
	assert.False(t, sess.Custom())
}

func TestEditSpecPath(t *testing.T) {
	sess := newTestSession(t)

	require.NoError(t, sess.EditSpecPath("title", "Quarterly Revenue"))
	assert.Equal(t, "Quarterly Revenue", gjson.GetBytes(sess.Spec(), "title").String())
	assert.Equal(t, "Quarterly Revenue", sess.State().Title, "edited spec decompiles back into state")
}

func TestSetDataPrunesStaleEncodings(t *testing.T) {
	sess := newTestSession(t)
	require.NotNil(t, sess.State().Encoding(builder.ChannelX))

	rows := []map[string]any{
		{"Team": "core", "Bugs": 4.0},
		{"Team": "infra", "Bugs": 7.0},
	}
	require.NoError(t, sess.SetData(rows, []string{"Team", "Bugs"}))

	state := sess.State()
	assert.Nil(t, state.Encoding(builder.ChannelX), "Region no longer exists")
	assert.Nil(t, state.Encoding(builder.ChannelY), "Sales no longer exists")

	names := fields.Names(sess.Fields())
	assert.Equal(t, []string{"Team", "Bugs"}, names)

	require.True(t, sess.Undo(), "data replacement is undoable")
}

func TestSubscribe(t *testing.T) {
	sess := newTestSession(t)

	var events []Event
	unsub := sess.Subscribe(func(ev Event) { events = append(events, ev) })

	_, err := sess.ApplyCommand(context.Background(), "change to line chart")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, builder.MarkLine, events[0].State.Mark.Type)
	assert.False(t, events[0].Custom)

	unsub()
	_, err = sess.ApplyCommand(context.Background(), "change to bar chart")
	require.NoError(t, err)
	assert.Len(t, events, 1, "unsubscribed callbacks stop firing")
}

func TestCompileIsStable(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	assert.Equal(t, string(a.Spec()), string(b.Spec()), "identical inputs compile identically")
}

func TestHistoryMetadata(t *testing.T) {
	sess := newTestSession(t)

	_, err := sess.ApplyCommand(context.Background(), "change to line chart")
	require.NoError(t, err)

	entries := sess.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "change to line chart", entries[0].Description)
}
