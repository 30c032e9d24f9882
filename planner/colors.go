package planner

// ============================================================================
// COLOR VOCABULARY
// ============================================================================

// colorNames maps common color words to the default categorical palette
// hex values. Words not in the table pass through verbatim on the
// assumption they are already color literals ("#ff0000", "rebeccapurple").
var colorNames = map[string]string{
	"blue":    "#1f77b4",
	"orange":  "#ff7f0e",
	"green":   "#2ca02c",
	"red":     "#d62728",
	"purple":  "#9467bd",
	"brown":   "#8c564b",
	"pink":    "#e377c2",
	"gray":    "#7f7f7f",
	"grey":    "#7f7f7f",
	"yellow":  "#bcbd22",
	"teal":    "#17becf",
	"cyan":    "#17becf",
	"black":   "#000000",
	"white":   "#ffffff",
	"magenta": "#e377c2",
	"violet":  "#9467bd",
	"gold":    "#ffd700",
	"silver":  "#c0c0c0",
}

// namedSchemes are the renderer color schemes the battery recognizes.
var namedSchemes = map[string]bool{
	"viridis":    true,
	"magma":      true,
	"inferno":    true,
	"plasma":     true,
	"cividis":    true,
	"turbo":      true,
	"blues":      true,
	"greens":     true,
	"reds":       true,
	"oranges":    true,
	"purples":    true,
	"greys":      true,
	"category10": true,
	"category20": true,
	"tableau10":  true,
	"tableau20":  true,
	"accent":     true,
	"dark2":      true,
	"paired":     true,
	"pastel1":    true,
	"pastel2":    true,
	"set1":       true,
	"set2":       true,
	"set3":       true,
}

// resolveColor maps a color word to hex, passing unknown words through.
func resolveColor(word string) string {
	if hex, ok := colorNames[word]; ok {
		return hex
	}
	return word
}
