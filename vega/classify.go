package vega

import "github.com/tidwall/gjson"

// ============================================================================
// CUSTOM-SPEC CLASSIFIER — Gates compiled vs. direct editing
// ============================================================================
// A custom spec is outside the builder's expressive range: the decompiler
// must not attempt full reconciliation and panel controls are disabled.
// Probes run over the raw JSON so specs the subset types cannot represent
// are still classified correctly.
// ============================================================================

// compositionKeys are the grammar's composition operators.
var compositionKeys = []string{"facet", "layer", "hconcat", "vconcat", "concat", "repeat"}

// maxBuilderTransforms is the most transform steps a builder-editable spec
// may carry.
const maxBuilderTransforms = 3

// IsCustom reports whether a spec must bypass the compiler: any composition
// operator, more than three transforms, or a remote data source.
func IsCustom(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return true
	}
	for _, key := range compositionKeys {
		if gjson.GetBytes(raw, key).Exists() {
			return true
		}
	}
	if t := gjson.GetBytes(raw, "transform"); t.IsArray() && len(t.Array()) > maxBuilderTransforms {
		return true
	}
	if gjson.GetBytes(raw, "data.url").Exists() {
		return true
	}
	return false
}
