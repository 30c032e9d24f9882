package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/vizforge-org/vizforge/builder"
	"github.com/vizforge-org/vizforge/fields"
	"github.com/vizforge-org/vizforge/history"
	"github.com/vizforge-org/vizforge/planner"
	"github.com/vizforge-org/vizforge/vega"
)

// ============================================================================
// SESSION STORE — Single-owner facade over the whole pipeline
// ============================================================================
// One Session holds the dataset fields, the builder state, the compiled (or
// custom) spec, and the history stack behind a single mutex. Every mutation
// follows the same shape: plan fully, snapshot the current state, apply,
// recompile, notify. A failed remote call therefore never leaves a
// half-applied session.
// ============================================================================

// ErrCustomSpec is returned when a structured-plan mutation is attempted
// while the session holds a custom spec the builder cannot represent.
var ErrCustomSpec = errors.New("store: session holds a custom spec; use EditSpecPath or ReplaceSpec")

const defaultCacheSize = 64

// Event describes one committed session change, delivered to subscribers.
type Event struct {
	Description string
	State       builder.State
	Spec        json.RawMessage
	Custom      bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Default is zap.NewNop.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithPlanner sets the planner used by ApplyCommand. Default is the local
// pattern battery.
func WithPlanner(p planner.Planner) Option {
	return func(s *Session) { s.planner = p }
}

// WithSpecEditor sets the editor used for commands against custom specs.
// Without one, ApplyCommand on a custom spec fails with ErrCustomSpec.
func WithSpecEditor(e planner.SpecEditor) Option {
	return func(s *Session) { s.editor = e }
}

// WithCacheSize sets the compile cache capacity.
func WithCacheSize(n int) Option {
	return func(s *Session) { s.cacheSize = n }
}

// Session is the single-owner chart editing session. Safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	log       *zap.Logger
	planner   planner.Planner
	editor    planner.SpecEditor
	cacheSize int

	fields []fields.DataField
	state  builder.State
	spec   json.RawMessage
	custom bool

	hist    *history.Manager
	cache   *lru.Cache[string, []byte]
	subs    map[int]func(Event)
	nextSub int
}

// NewSession infers fields from the rows, seeds a default chart, and
// compiles the initial spec.
func NewSession(rows []map[string]any, columns []string, opts ...Option) (*Session, error) {
	s := &Session{
		log:       zap.NewNop(),
		planner:   planner.NewLocal(),
		cacheSize: defaultCacheSize,
		hist:      history.NewManager(),
		subs:      map[int]func(Event){},
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := lru.New[string, []byte](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: compile cache: %w", err)
	}
	s.cache = cache

	s.fields = fields.Infer(rows, fields.Options{Columns: columns})
	s.state = builder.DefaultState(s.fields)
	if err := s.recompile(); err != nil {
		return nil, err
	}

	s.log.Info("session created",
		zap.Int("rows", len(rows)),
		zap.Int("fields", len(s.fields)))
	return s, nil
}

// State returns a deep copy of the current builder state.
func (s *Session) State() builder.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Spec returns a copy of the current spec bytes.
func (s *Session) Spec() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(json.RawMessage(nil), s.spec...)
}

// Custom reports whether the session holds a custom spec.
func (s *Session) Custom() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom
}

// Fields returns the inferred dataset fields.
func (s *Session) Fields() []fields.DataField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fields.DataField(nil), s.fields...)
}

// History returns snapshot metadata for display.
func (s *Session) History() []history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Entries()
}

// Subscribe registers a callback for committed changes and returns an
// unsubscribe func. Callbacks run synchronously under the session lock, so
// they must not call back into the session.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// ApplyCommand plans the natural-language command and applies the result.
// The planner (or spec editor, for custom specs) runs to completion before
// any snapshot or mutation: a remote failure returns the error with the
// session untouched. Returns the plan's warnings.
//
// Planning runs against a snapshot of the session taken at entry, outside
// the lock, so a slow remote call never blocks the session. A mutation
// committed by another goroutine while planning is in flight means the
// plan lands on the newer state; each operation is still applied safely,
// but callers that interleave writers should serialize their commands.
func (s *Session) ApplyCommand(ctx context.Context, command string) ([]string, error) {
	s.mu.Lock()
	custom := s.custom
	spec := append(json.RawMessage(nil), s.spec...)
	state := s.state.Clone()
	names := fields.Names(s.fields)
	s.mu.Unlock()

	if custom {
		if s.editor == nil {
			return nil, ErrCustomSpec
		}
		result, err := s.editor.EditSpec(ctx, command, spec)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, fmt.Errorf("store: spec edit rejected: %s", result.Error)
		}
		return nil, s.ReplaceSpec(result.Spec, command)
	}

	plan, err := s.planner.Plan(ctx, command, names, state)
	if err != nil {
		return nil, err
	}
	s.log.Debug("planned command",
		zap.String("command", command),
		zap.Float64("confidence", plan.Confidence),
		zap.Int("operations", len(plan.Operations)))
	if plan.Empty() {
		return []string{"command matched no chart edit"}, nil
	}
	return s.ApplyPlan(plan)
}

// ApplyPlan snapshots the current state and applies a structured plan.
// Operations of kind direct_spec_edit replace the spec wholesale; everything
// else goes through the pure applier.
func (s *Session) ApplyPlan(plan builder.ChartEditPlan) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.custom {
		return nil, ErrCustomSpec
	}

	for _, op := range plan.Operations {
		if op.Op == builder.OpDirectSpecEdit {
			return nil, s.replaceSpecLocked(op.Spec, plan.IntentText)
		}
	}

	s.hist.Capture(s.state, s.spec, plan.IntentText)

	next, warnings := builder.Apply(s.state, plan, s.fields)
	s.state = next
	if err := s.recompile(); err != nil {
		return warnings, err
	}

	for _, w := range warnings {
		s.log.Warn("plan warning", zap.String("warning", w))
	}
	s.notify(plan.IntentText)
	return warnings, nil
}

// ReplaceSpec swaps in a raw spec. A spec the builder grammar can represent
// is decompiled back into builder state; anything else puts the session into
// custom mode.
func (s *Session) ReplaceSpec(raw json.RawMessage, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceSpecLocked(raw, description)
}

func (s *Session) replaceSpecLocked(raw json.RawMessage, description string) error {
	if !json.Valid(raw) {
		return errors.New("store: replacement spec is not valid JSON")
	}

	s.hist.Capture(s.state, s.spec, description)
	s.spec = append(json.RawMessage(nil), raw...)

	if vega.IsCustom(raw) {
		s.custom = true
		s.log.Info("entered custom spec mode", zap.String("reason", description))
	} else if state, ok := vega.Decompile(raw); ok {
		s.custom = false
		s.state = state
	} else {
		s.custom = true
	}

	s.notify(description)
	return nil
}

// EditSpecPath sets one JSON path in the current spec, e.g.
// ("encoding.x.title", "Month"). Works in both modes; in builder mode the
// result is reclassified and may flip the session to custom.
func (s *Session) EditSpecPath(path string, value any) error {
	s.mu.Lock()
	spec := append(json.RawMessage(nil), s.spec...)
	s.mu.Unlock()

	edited, err := sjson.SetBytes(spec, path, value)
	if err != nil {
		return fmt.Errorf("store: edit %q: %w", path, err)
	}
	return s.ReplaceSpec(edited, "edit "+path)
}

// Undo restores the previous snapshot. Returns false when there is nothing
// to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.hist.Undo(s.state, s.spec)
	if !ok {
		return false
	}
	s.restore(snap)
	s.notify("undo")
	return true
}

// Redo re-applies the next snapshot. Returns false when there is nothing to
// redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	s.notify("redo")
	return true
}

func (s *Session) restore(snap history.Snapshot) {
	s.state = snap.State
	s.spec = snap.Spec
	s.custom = vega.IsCustom(snap.Spec)
}

// SetData replaces the dataset. Fields are re-inferred; encodings whose
// field no longer exists are dropped.
func (s *Session) SetData(rows []map[string]any, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hist.Capture(s.state, s.spec, "replace data")
	s.fields = fields.Infer(rows, fields.Options{Columns: columns})

	next := s.state.Clone()
	for ch, enc := range next.Encodings {
		if _, ok := fields.Lookup(s.fields, enc.Field); !ok {
			delete(next.Encodings, ch)
		}
	}
	s.state = next
	s.custom = false

	if err := s.recompile(); err != nil {
		return err
	}
	s.log.Info("data replaced",
		zap.Int("rows", len(rows)),
		zap.Int("fields", len(s.fields)))
	s.notify("replace data")
	return nil
}

// recompile rebuilds the spec from the current state, via the cache.
// Caller holds the lock.
func (s *Session) recompile() error {
	key := s.cacheKey()
	if cached, ok := s.cache.Get(key); ok {
		s.spec = append(json.RawMessage(nil), cached...)
		s.custom = false
		return nil
	}

	out, err := vega.Compile(s.state, s.fields).Marshal()
	if err != nil {
		return fmt.Errorf("store: compile: %w", err)
	}
	s.cache.Add(key, out)
	s.spec = out
	s.custom = false
	return nil
}

// cacheKey hashes the state and field schema; identical inputs always
// compile to identical specs.
func (s *Session) cacheKey() string {
	h := sha256.New()
	stateJSON, _ := json.Marshal(s.state)
	h.Write(stateJSON)
	fieldsJSON, _ := json.Marshal(s.fields)
	h.Write(fieldsJSON)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Session) notify(description string) {
	if len(s.subs) == 0 {
		return
	}
	ev := Event{
		Description: description,
		State:       s.state.Clone(),
		Spec:        append(json.RawMessage(nil), s.spec...),
		Custom:      s.custom,
	}
	for _, fn := range s.subs {
		fn(ev)
	}
}
