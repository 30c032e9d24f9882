package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vizforge-org/vizforge/builder"
)

// ============================================================================
// PLANNER — Capability boundary for natural language → ChartEditPlan
// ============================================================================
// Two interchangeable strategies implement this interface: the Local regex
// battery and the Gemini remote planner. Callers select one explicitly —
// there is no implicit fallback from remote to local, so failure semantics
// stay predictable.
// ============================================================================

// Planner translates a free-text command into an ordered edit plan.
type Planner interface {
	// Plan builds a ChartEditPlan from a command, the known field names, and
	// the current builder state. A plan with zero operations means "nothing
	// changed" and is not an error.
	Plan(ctx context.Context, command string, fieldNames []string, state builder.State) (builder.ChartEditPlan, error)
}

// SpecEditor is the alternate remote contract for custom specs: instead of
// operations it returns a full replacement spec. This path bypasses the
// plan applier entirely.
type SpecEditor interface {
	EditSpec(ctx context.Context, command string, spec []byte) (DirectEditResult, error)
}

// DirectEditResult is the custom-spec edit outcome.
type DirectEditResult struct {
	Success bool            `json:"success"`
	Spec    json.RawMessage `json:"spec,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RemoteError wraps a remote planner failure (network, non-JSON response,
// schema violation). The caller's state must be left untouched when one of
// these surfaces.
type RemoteError struct {
	Provider string
	Err      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s planner: %v", e.Provider, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Confidence is the shared plan-confidence heuristic: base 0.6, +0.08 per
// operation, capped at 1.0. A display hint, not a calibrated probability.
func Confidence(opCount int) float64 {
	c := 0.6 + 0.08*float64(opCount)
	if c > 1.0 {
		return 1.0
	}
	return c
}
