package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/vizforge-org/vizforge/builder"
)

// ============================================================================
// GEMINI PLANNER — Remote drop-in for the local battery
// ============================================================================
// The only component in the system that performs network I/O. A failed or
// slow call leaves the caller's state untouched: the full plan (or edit
// result) is returned before any snapshot or mutation happens, and there is
// no streamed partial application.
// ============================================================================

// ErrNoAPIKey is returned when the Gemini client cannot authenticate.
var ErrNoAPIKey = errors.New("planner: GEMINI_API_KEY not set")

// Config holds remote planner configuration.
type Config struct {
	APIKey string // AI provider API key (consumer's key)
	Model  string // Model name (empty = default)
}

const defaultModel = "gemini-2.5-flash-lite"

// Gemini implements Planner and SpecEditor against the Gemini API.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a Gemini-backed planner.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("planner: gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: cfg.Model}, nil
}

// Plan asks the model for an operation list. Returns *RemoteError on any
// network or schema failure; the caller decides whether to fall back to the
// local battery — this type never does so itself.
func (g *Gemini) Plan(ctx context.Context, command string, fieldNames []string, state builder.State) (builder.ChartEditPlan, error) {
	raw, err := g.generate(ctx, buildPlanPrompt(command, fieldNames, state))
	if err != nil {
		return builder.ChartEditPlan{}, err
	}

	var parsed struct {
		Confidence float64          `json:"confidence"`
		Operations []builder.EditOp `json:"operations"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return builder.ChartEditPlan{}, &RemoteError{Provider: "gemini", Err: fmt.Errorf("non-JSON plan response: %w", err)}
	}

	plan := builder.ChartEditPlan{
		IntentText: command,
		Confidence: parsed.Confidence,
		Operations: parsed.Operations,
	}
	if plan.Confidence <= 0 || plan.Confidence > 1 {
		plan.Confidence = Confidence(len(plan.Operations))
	}
	return plan, nil
}

// EditSpec is the custom-spec contract: the model returns a full replacement
// spec plus a success flag instead of operations. The caller applies it as a
// direct spec substitution, bypassing the plan applier.
func (g *Gemini) EditSpec(ctx context.Context, command string, spec []byte) (DirectEditResult, error) {
	raw, err := g.generate(ctx, buildEditPrompt(command, spec))
	if err != nil {
		return DirectEditResult{}, err
	}

	var result DirectEditResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		return DirectEditResult{}, &RemoteError{Provider: "gemini", Err: fmt.Errorf("non-JSON edit response: %w", err)}
	}
	if result.Success && len(result.Spec) == 0 {
		return DirectEditResult{}, &RemoteError{Provider: "gemini", Err: errors.New("edit response missing spec")}
	}
	return result, nil
}

// generate runs one JSON-mode completion and returns the text payload.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", &RemoteError{Provider: "gemini", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &RemoteError{Provider: "gemini", Err: errors.New("empty response")}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
