package processor

import (
	"math"
	"strconv"
	"strings"
)

// floatTolerance absorbs floating round-trip error when both sides of a
// comparison parse as numbers.
const floatTolerance = 1e-10

// valueEqual compares two primitive values: numbers within an absolute
// tolerance, everything else as trimmed strings (case-sensitive).
func valueEqual(a, b string) bool {
	fa, aok := parseFloat(a)
	fb, bok := parseFloat(b)
	if aok && bok {
		return math.Abs(fa-fb) <= floatTolerance
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// singleEqual: null equals null; otherwise first values compare.
func singleEqual(correct, submitted []string) bool {
	if len(correct) == 0 && len(submitted) == 0 {
		return true
	}
	if len(correct) == 0 || len(submitted) == 0 {
		return false
	}
	return valueEqual(correct[0], submitted[0])
}

// sequenceEqual: same length, pairwise equal at each index.
func sequenceEqual(correct, submitted []string) bool {
	if len(correct) != len(submitted) {
		return false
	}
	for i := range correct {
		if !valueEqual(correct[i], submitted[i]) {
			return false
		}
	}
	return true
}

// setEqual: same length and every correct value present in the
// submission, order-independent, respecting multiplicity.
func setEqual(correct, submitted []string) bool {
	if len(correct) != len(submitted) {
		return false
	}
	used := make([]bool, len(submitted))
outer:
	for _, c := range correct {
		for i, s := range submitted {
			if !used[i] && valueEqual(c, s) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
