package match

// matchesExact reports whether seedTokens occur in docTokens in their given
// order with at most maxGap intervening document tokens between consecutive
// seed tokens. The first start position that completes wins, so results are
// reproducible; gapConsumed is the widest gap inside that match.
func matchesExact(seedTokens, docTokens []string, maxGap int) (bool, int) {
	if len(seedTokens) == 0 || len(docTokens) < len(seedTokens) {
		return false, 0
	}

	for start := 0; start <= len(docTokens)-len(seedTokens); start++ {
		if docTokens[start] != seedTokens[0] {
			continue
		}
		if ok, gap := consumeFrom(seedTokens, docTokens, start, maxGap); ok {
			return true, gap
		}
	}

	return false, 0
}

// consumeFrom greedily consumes seedTokens[1:] after docTokens[start].
// Each next seed token must appear within maxGap tokens of the previously
// consumed one; otherwise the whole start position is abandoned.
func consumeFrom(seedTokens, docTokens []string, start, maxGap int) (bool, int) {
	pos := start // index of the last consumed document token
	widest := 0

	for _, tok := range seedTokens[1:] {
		next := -1
		limit := pos + 1 + maxGap
		for j := pos + 1; j <= limit && j < len(docTokens); j++ {
			if docTokens[j] == tok {
				next = j
				break
			}
		}
		if next == -1 {
			return false, 0
		}
		if gap := next - pos - 1; gap > widest {
			widest = gap
		}
		pos = next
	}

	return true, widest
}
