// Package vizforge provides a chart-builder core: a restricted, always-valid
// chart configuration, a bidirectional compiler between that configuration
// and a Vega-Lite style declarative spec, a natural-language edit planner,
// and snapshot-based undo/redo.
//
// Usage:
//
//	import (
//	    "github.com/vizforge-org/vizforge/builder"
//	    "github.com/vizforge-org/vizforge/fields"
//	    "github.com/vizforge-org/vizforge/planner"
//	    "github.com/vizforge-org/vizforge/store"
//	    "github.com/vizforge-org/vizforge/vega"
//	)
//
//	fs := fields.Infer(rows)
//	state := builder.DefaultState(fs)
//	spec := vega.Compile(state, fs)
//
//	plan, _ := planner.NewLocal().Plan(ctx, "top 10 by Sales", fields.Names(fs), state)
//	next, _ := builder.Apply(state, plan, fs)
//
// Rendering is external: the core emits specs and never draws anything.
// The only component that calls an external service is planner.Gemini.
package vizforge
