package match

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/huntline/phrasehound/internal/domain/text"
)

// bestWindowRatio slides windows of the seed's token count (and ±1, to
// tolerate one inserted or dropped word) across docTokens and returns the
// best similarity between the joined window and the joined seed. Every
// window is evaluated, never an early exit, so the maximum is identical
// under any scan order.
func bestWindowRatio(seedTokens, docTokens []string) float64 {
	if len(seedTokens) == 0 || len(docTokens) == 0 {
		return 0
	}

	target := text.Join(seedTokens)
	best := 0.0
	for _, width := range windowWidths(len(seedTokens), len(docTokens)) {
		for i := 0; i+width <= len(docTokens); i++ {
			window := text.Join(docTokens[i : i+width])
			if r := similarity(target, window); r > best {
				best = r
			}
		}
	}

	return best
}

// windowWidths returns {n-1, n, n+1} clamped to [1, docLen], ascending,
// without duplicates.
func windowWidths(n, docLen int) []int {
	widths := make([]int, 0, 3)
	for _, w := range []int{n - 1, n, n + 1} {
		if w < 1 {
			w = 1
		}
		if w > docLen {
			w = docLen
		}
		if len(widths) > 0 && widths[len(widths)-1] == w {
			continue
		}
		widths = append(widths, w)
	}

	return widths
}

// similarity is difflib's sequence ratio over the two strings' characters,
// in [0,1].
func similarity(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
