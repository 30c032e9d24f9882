package planner

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/vizforge-org/vizforge/builder"
)

// ============================================================================
// LOCAL PLANNER — Ordered regex battery
// ============================================================================
// A fixed battery of independent matchers; each appends zero or one
// operation, and several can fire on one command ("change to line chart and
// color by Region" yields two operations). Matching is case-insensitive;
// captures keep the user's original casing for field names, titles, and
// category values.
// ============================================================================

// Local is the pattern-based planner. Synchronous, deterministic, no I/O.
type Local struct{}

// NewLocal returns the local pattern planner.
func NewLocal() *Local { return &Local{} }

type matcher func(cmd string, fieldNames []string, state builder.State) *builder.EditOp

// battery order fixes the operation order within a plan.
var battery = []matcher{
	matchMark,
	matchColorBy,
	matchSeriesColors,
	matchTopN,
	matchSort,
	matchTitle,
	matchScheme,
	matchSize,
}

// Plan runs the battery over the command. Never returns an error: a command
// that matches nothing yields an empty plan with floor confidence.
func (l *Local) Plan(_ context.Context, command string, fieldNames []string, state builder.State) (builder.ChartEditPlan, error) {
	cmd := strings.TrimSpace(command)

	var ops []builder.EditOp
	for _, m := range battery {
		if op := m(cmd, fieldNames, state); op != nil {
			ops = append(ops, *op)
		}
	}

	return builder.ChartEditPlan{
		IntentText: command,
		Confidence: Confidence(len(ops)),
		Operations: ops,
	}, nil
}

// ============================================================================
// MATCHERS
// ============================================================================

var markWords = `(bar|line|area|point|scatter|pie|circle|square|tick|rect|text)`

var (
	reMarkChange = regexp.MustCompile(`(?i)\b(?:change|switch|convert|turn)\b.*?\bto\s+(?:an?\s+)?` + markWords + `\b`)
	reMarkMakeIt = regexp.MustCompile(`(?i)\bmake\s+(?:it|this)\s+(?:an?\s+)?` + markWords + `\b`)
	reMarkDraw   = regexp.MustCompile(`(?i)\b(?:draw|show|plot)\s+(?:as\s+)?(?:an?\s+)?` + markWords + `\s+(?:chart|graph|plot)\b`)
)

func matchMark(cmd string, _ []string, _ builder.State) *builder.EditOp {
	for _, re := range []*regexp.Regexp{reMarkChange, reMarkMakeIt, reMarkDraw} {
		if m := re.FindStringSubmatch(cmd); m != nil {
			return &builder.EditOp{Op: builder.OpSetMark, Mark: canonicalMark(m[1])}
		}
	}
	return nil
}

// canonicalMark maps command vocabulary onto grammar mark types.
func canonicalMark(word string) builder.MarkType {
	switch strings.ToLower(word) {
	case "scatter":
		return builder.MarkPoint
	case "pie":
		return builder.MarkArc
	default:
		return builder.MarkType(strings.ToLower(word))
	}
}

var reColorBy = regexp.MustCompile(`(?i)\bcolou?r(?:ed)?\s+by\s+(.+?)(?:\s+and\s+.*)?$`)

func matchColorBy(cmd string, fieldNames []string, _ builder.State) *builder.EditOp {
	m := reColorBy.FindStringSubmatch(cmd)
	if m == nil {
		return nil
	}
	field, ok := resolveField(m[1], fieldNames)
	if !ok {
		return nil
	}
	return &builder.EditOp{Op: builder.OpSetEncoding, Channel: builder.ChannelColor, Field: field}
}

var (
	reMakeTail  = regexp.MustCompile(`(?i)\bmake\s+(.+)$`)
	rePairSplit = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+`)
	rePair      = regexp.MustCompile(`^(\S+)\s+(\S+)$`)
)

// matchSeriesColors handles "make West blue and East orange". Every clause
// must be a two-token (category, color) pair, and at least one color token
// must be recognizable — otherwise "make it a line chart" would match.
// Unrecognized color words pass through verbatim.
func matchSeriesColors(cmd string, _ []string, _ builder.State) *builder.EditOp {
	m := reMakeTail.FindStringSubmatch(cmd)
	if m == nil {
		return nil
	}

	parts := rePairSplit.Split(m[1], -1)
	colors := make(map[string]string, len(parts))
	recognized := false

	for _, part := range parts {
		pm := rePair.FindStringSubmatch(strings.TrimSpace(part))
		if pm == nil {
			return nil
		}
		category, word := pm[1], strings.ToLower(pm[2])
		if _, ok := colorNames[word]; ok || strings.HasPrefix(word, "#") {
			recognized = true
		}
		colors[category] = resolveColor(word)
	}

	if !recognized || len(colors) == 0 {
		return nil
	}
	return &builder.EditOp{Op: builder.OpSetSeriesColors, Colors: colors}
}

var reTopN = regexp.MustCompile(`(?i)\b(top|bottom)\s+(\d+)(?:\s+by\s+(.+?))?\s*$`)

func matchTopN(cmd string, fieldNames []string, _ builder.State) *builder.EditOp {
	m := reTopN.FindStringSubmatch(cmd)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return nil
	}

	order := builder.Descending
	if strings.EqualFold(m[1], "bottom") {
		order = builder.Ascending
	}

	byField := ""
	if m[3] != "" {
		if f, ok := resolveField(m[3], fieldNames); ok {
			byField = f
		} else {
			byField = strings.TrimSpace(m[3])
		}
	}
	return &builder.EditOp{Op: builder.OpSetTopN, N: n, ByField: byField, Order: order}
}

var reSort = regexp.MustCompile(`(?i)\bsort(?:ed)?\s+(?:by\s+)?(.+?)(?:\s+(ascending|descending|asc|desc))?\s*$`)

func matchSort(cmd string, fieldNames []string, _ builder.State) *builder.EditOp {
	m := reSort.FindStringSubmatch(cmd)
	if m == nil {
		return nil
	}

	target := strings.TrimSpace(m[1])
	switch strings.ToLower(target) {
	case "x", "y":
		target = strings.ToLower(target)
	default:
		if f, ok := resolveField(target, fieldNames); ok {
			target = f
		}
	}

	order := builder.Order("")
	switch strings.ToLower(m[2]) {
	case "ascending", "asc":
		order = builder.Ascending
	case "descending", "desc":
		order = builder.Descending
	}

	return &builder.EditOp{Op: builder.OpSetSort, Target: target, Order: order}
}

var (
	reTitle  = regexp.MustCompile(`(?i)\b(?:set\s+)?(?:the\s+)?title\s+(?:to\s+|as\s+|=\s*)?["']?(.+?)["']?\s*$`)
	reCallIt = regexp.MustCompile(`(?i)\bcall\s+(?:it|this)\s+["']?(.+?)["']?\s*$`)
)

func matchTitle(cmd string, _ []string, _ builder.State) *builder.EditOp {
	for _, re := range []*regexp.Regexp{reTitle, reCallIt} {
		if m := re.FindStringSubmatch(cmd); m != nil {
			return &builder.EditOp{Op: builder.OpSetTitle, Title: strings.TrimSpace(m[1])}
		}
	}
	return nil
}

var (
	reSchemeBefore = regexp.MustCompile(`(?i)\b([a-z0-9]+)\s+(?:colou?r\s+)?scheme\b`)
	reSchemeAfter  = regexp.MustCompile(`(?i)\bscheme\s+(?:to\s+)?([a-z0-9]+)\b`)
)

func matchScheme(cmd string, _ []string, _ builder.State) *builder.EditOp {
	for _, re := range []*regexp.Regexp{reSchemeBefore, reSchemeAfter} {
		if m := re.FindStringSubmatch(cmd); m != nil {
			scheme := strings.ToLower(m[1])
			if namedSchemes[scheme] {
				return &builder.EditOp{Op: builder.OpSetColorScheme, Scheme: scheme}
			}
		}
	}
	return nil
}

var reSize = regexp.MustCompile(`(?i)\b(?:resize|size|dimensions?)\b.*?(\d{2,4})\s*(?:x|by|×)\s*(\d{2,4})`)

func matchSize(cmd string, _ []string, _ builder.State) *builder.EditOp {
	m := reSize.FindStringSubmatch(cmd)
	if m == nil {
		return nil
	}
	w, _ := strconv.ParseFloat(m[1], 64)
	h, _ := strconv.ParseFloat(m[2], 64)
	wd, hd := builder.PxDim(w), builder.PxDim(h)
	return &builder.EditOp{Op: builder.OpSetSize, Width: &wd, Height: &hd}
}
