package history

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vizforge-org/vizforge/builder"
)

// ============================================================================
// HISTORY MANAGER — Bounded, truncate-on-branch snapshot stack
// ============================================================================
// Append-only stack of immutable (state, spec) snapshots with a cursor.
// Capture is called BEFORE the mutation it precedes, so undo restores the
// pre-mutation state. Capturing while undone truncates the redo-able future.
// Snapshots never alias caller memory: deep copy in, deep copy out.
// ============================================================================

// Limit is the maximum stack depth. Oldest snapshots are evicted first.
const Limit = 50

// Snapshot is one immutable history entry.
type Snapshot struct {
	ID          string          `json:"id"`
	State       builder.State   `json:"state"`
	Spec        json.RawMessage `json:"spec"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// clone deep-copies a snapshot so restores never alias the stack.
func (s Snapshot) clone() Snapshot {
	out := s
	out.State = s.State.Clone()
	out.Spec = append(json.RawMessage(nil), s.Spec...)
	return out
}

// Manager owns the stack and cursor. Not safe for concurrent use; the
// owning store serializes access.
type Manager struct {
	stack  []Snapshot
	cursor int // index of the snapshot matching the current state; -1 when empty
}

// NewManager returns an empty history.
func NewManager() *Manager {
	return &Manager{cursor: -1}
}

// Len returns the stack depth.
func (m *Manager) Len() int { return len(m.stack) }

// Cursor returns the current cursor position (-1 when empty).
func (m *Manager) Cursor() int { return m.cursor }

// Entries returns shallow metadata (id, timestamp, description) for display.
func (m *Manager) Entries() []Snapshot {
	out := make([]Snapshot, len(m.stack))
	for i, s := range m.stack {
		out[i] = Snapshot{ID: s.ID, Timestamp: s.Timestamp, Description: s.Description}
	}
	return out
}

// Capture pushes a snapshot of the given state+spec, discarding any
// redo-able future past the cursor. Call it with the CURRENT state, before
// applying the mutation the description names.
func (m *Manager) Capture(state builder.State, spec []byte, description string) {
	m.push(state, spec, description)
	m.evict()
}

func (m *Manager) push(state builder.State, spec []byte, description string) {
	m.stack = m.stack[:m.cursor+1]
	m.stack = append(m.stack, Snapshot{
		ID:          uuid.NewString(),
		State:       state.Clone(),
		Spec:        append(json.RawMessage(nil), spec...),
		Timestamp:   time.Now().UTC(),
		Description: description,
	})
	m.cursor = len(m.stack) - 1
}

// evict trims the stack to Limit and returns how many snapshots were
// dropped, so callers holding pre-eviction indices can shift them.
func (m *Manager) evict() int {
	over := len(m.stack) - Limit
	if over <= 0 {
		return 0
	}
	m.stack = append(m.stack[:0:0], m.stack[over:]...)
	m.cursor -= over
	if m.cursor < 0 {
		m.cursor = 0
	}
	return over
}

// Undo steps back one snapshot and returns a deep copy of the state to
// restore. When the live state has drifted past the cursor snapshot (the
// normal capture-then-mutate flow), the live state is first pushed so redo
// can return to it, and the cursor snapshot itself is restored.
// Returns false (no-op) at the bottom of the stack.
func (m *Manager) Undo(liveState builder.State, liveSpec []byte) (Snapshot, bool) {
	if m.cursor < 0 {
		return Snapshot{}, false
	}

	if m.dirty(liveState, liveSpec) {
		restore := m.stack[m.cursor]
		at := m.cursor
		m.push(liveState, liveSpec, "current")
		// Eviction at the bound shifts every index; the saved cursor must
		// shift with it or it lands on the just-pushed live snapshot.
		at -= m.evict()
		if at < 0 {
			at = 0
		}
		m.cursor = at
		return restore.clone(), true
	}

	if m.cursor <= 0 {
		return Snapshot{}, false
	}
	m.cursor--
	return m.stack[m.cursor].clone(), true
}

// Redo steps forward one snapshot. No-op at the top of the stack.
func (m *Manager) Redo() (Snapshot, bool) {
	if m.cursor >= len(m.stack)-1 {
		return Snapshot{}, false
	}
	m.cursor++
	return m.stack[m.cursor].clone(), true
}

// dirty reports whether the live state differs from the cursor snapshot.
func (m *Manager) dirty(liveState builder.State, liveSpec []byte) bool {
	cur := m.stack[m.cursor]
	if !bytes.Equal(normalizeJSON(cur.Spec), normalizeJSON(liveSpec)) {
		return true
	}
	a, _ := json.Marshal(cur.State)
	b, _ := json.Marshal(liveState)
	return !bytes.Equal(a, b)
}

// normalizeJSON compacts raw JSON so formatting differences don't read as
// state drift.
func normalizeJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
