package networkd

import (
	"sort"
)

// Canonicalize recursively normalizes a nested structure of mappings and
// sequences into a deterministic form:
//   - map[string]any values are normalized; iterate maps with SortedKeys
//   - []any elements are normalized and then sorted, but only when all
//     elements are mutually comparable; otherwise the post-normalization
//     order is kept
//   - []string values are sorted
//
// Sortability is attempted and silently skipped on failure: the goal is
// deterministic-when-possible output, not rejecting unusual input. The input
// is never mutated.
func Canonicalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(val))
		for _, k := range SortedKeys(val) {
			normalized[k] = Canonicalize(val[k])
		}
		return normalized
	case []any:
		normalized := make([]any, len(val))
		for i, item := range val {
			normalized[i] = Canonicalize(item)
		}
		if comparableElements(normalized) {
			sort.SliceStable(normalized, func(i, j int) bool {
				return lessValue(normalized[i], normalized[j])
			})
		}
		return normalized
	case []string:
		normalized := make([]string, len(val))
		copy(normalized, val)
		sort.Strings(normalized)
		return normalized
	}
	return v
}

// SortedKeys returns the keys of a map in sorted order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// comparableElements reports whether all elements of a sequence are mutually
// ordering-comparable: all strings, all numerics, or all booleans.
func comparableElements(items []any) bool {
	if len(items) == 0 {
		return true
	}

	strings, numbers, bools := 0, 0, 0
	for _, item := range items {
		switch item.(type) {
		case string:
			strings++
		case int, int64, float64:
			numbers++
		case bool:
			bools++
		default:
			return false
		}
	}

	return strings == len(items) || numbers == len(items) || bools == len(items)
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case bool:
		bv, _ := b.(bool)
		return !av && bv
	default:
		return numeric(a) < numeric(b)
	}
}

func numeric(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// sortedUnique returns a sorted copy of lines with duplicates removed
func sortedUnique(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}
