package planner

import (
	"encoding/json"
	"strings"

	"github.com/vizforge-org/vizforge/builder"
)

// ============================================================================
// PROMPT BUILDERS — What the remote planner sees
// ============================================================================
// The model sees field names and the current builder state (or spec) plus
// the operation schema. It never sees raw data rows.
// ============================================================================

const planSchema = `Respond with a single JSON object:
{
  "confidence": 0.0-1.0,
  "operations": [ ... ]
}

Each operation is one of:
  {"op":"set_mark","mark":"bar|line|area|point|circle|square|tick|rect|arc|text","pointOverlay":bool?,"stack":"none|zero|normalize"?}
  {"op":"set_encoding","channel":"x|y|color|size","field":"<field>","fieldType":"quantitative|nominal|ordinal|temporal"?}
  {"op":"remove_encoding","channel":"x|y|color|size"}
  {"op":"set_series_colors","colors":{"<category>":"<css color or #hex>"}}
  {"op":"set_color_scheme","scheme":"<named scheme>"}
  {"op":"set_top_n","n":<int>,"byField":"<field>"?,"order":"ascending|descending"?}
  {"op":"set_sort","target":"x"|"y"|"<field>","order":"ascending|descending"?}
  {"op":"add_filter","expr":"<vega expression>"}
  {"op":"set_aggregate","channel":"x|y|color|size","aggregate":"sum|mean|median|count|min|max|distinct|q1|q3|variance|stdev"}
  {"op":"set_title","title":"<text>"}
  {"op":"set_size","width":<px or "fill-container">?,"height":<px or "fill-container">?}

Use only field names from the list. Emit an empty operations array when the
command is not a chart edit.`

// buildPlanPrompt assembles the operation-planning prompt.
func buildPlanPrompt(command string, fieldNames []string, state builder.State) string {
	stateJSON, _ := json.MarshalIndent(state, "", "  ")

	var b strings.Builder
	b.WriteString("You translate chart-editing commands into typed edit operations.\n\n")
	b.WriteString("DATASET FIELDS: ")
	b.WriteString(strings.Join(fieldNames, ", "))
	b.WriteString("\n\nCURRENT CHART STATE:\n")
	b.Write(stateJSON)
	b.WriteString("\n\n")
	b.WriteString(planSchema)
	b.WriteString("\n\nUSER COMMAND: ")
	b.WriteString(command)
	b.WriteString("\n\nRespond with valid JSON only:")
	return b.String()
}

// buildEditPrompt assembles the custom-spec direct-edit prompt.
func buildEditPrompt(command string, spec []byte) string {
	var b strings.Builder
	b.WriteString("You edit Vega-Lite specifications. Apply the user's command to the\n")
	b.WriteString("spec below and return the COMPLETE modified spec.\n\n")
	b.WriteString("CURRENT SPEC:\n")
	b.Write(spec)
	b.WriteString("\n\nUSER COMMAND: ")
	b.WriteString(command)
	b.WriteString("\n\nRespond with a single JSON object: {\"success\":bool,\"spec\":{...},\"error\":\"<message when success is false>\"}\nRespond with valid JSON only:")
	return b.String()
}

// stripFences removes markdown code fences models like to wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
