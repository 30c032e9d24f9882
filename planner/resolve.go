package planner

import "strings"

// ============================================================================
// FIELD RESOLUTION — Maps command tokens onto dataset field names
// ============================================================================
// Tried in order, first success wins:
//   1. exact match
//   2. case-insensitive match
//   3. substring containment (either direction)
//   4. nearest match within edit distance ≤3
// ============================================================================

const maxEditDistance = 3

// resolveField maps a user-typed name onto a known field name.
// Returns the canonical field name and whether resolution succeeded.
func resolveField(name string, fieldNames []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	for _, f := range fieldNames {
		if f == name {
			return f, true
		}
	}

	lower := strings.ToLower(name)
	for _, f := range fieldNames {
		if strings.ToLower(f) == lower {
			return f, true
		}
	}

	for _, f := range fieldNames {
		fl := strings.ToLower(f)
		if strings.Contains(fl, lower) || strings.Contains(lower, fl) {
			return f, true
		}
	}

	best, bestDist := "", maxEditDistance+1
	for _, f := range fieldNames {
		if d := editDistance(lower, strings.ToLower(f)); d < bestDist {
			best, bestDist = f, d
		}
	}
	if bestDist <= maxEditDistance {
		return best, true
	}
	return "", false
}

// editDistance is plain Levenshtein over bytes; field names are short so
// the quadratic table is fine.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
