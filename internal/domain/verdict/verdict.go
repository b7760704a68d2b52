// Package verdict carries the engine's decision for one (seed, post) pair.
package verdict

// Kind is the match outcome class.
type Kind string

// Match outcome constants.
const (
	Exact Kind = "exact"
	Fuzzy Kind = "fuzzy"
	None  Kind = "none"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Exact || k == Fuzzy || k == None
}

// Verdict is a single match decision. Gap is meaningful on exact verdicts:
// the largest run of intervening document tokens consumed inside the match.
// Ratio is meaningful whenever the fuzzy stage actually ran, including on
// negative verdicts, so tuning output can show how close a miss was.
type Verdict struct {
	kind     Kind
	gap      int
	ratio    float64
	hasRatio bool
}

// NewExact reports a gap-tolerant exact match with its widest consumed gap.
func NewExact(gap int) Verdict {
	return Verdict{kind: Exact, gap: gap}
}

// NewFuzzy reports a fuzzy match with its best window similarity.
func NewFuzzy(ratio float64) Verdict {
	return Verdict{kind: Fuzzy, ratio: ratio, hasRatio: true}
}

// NewNone reports a non-match where the fuzzy stage never ran.
func NewNone() Verdict {
	return Verdict{kind: None}
}

// NewNoneWithRatio reports a non-match whose best fuzzy ratio fell short
// of the threshold.
func NewNoneWithRatio(ratio float64) Verdict {
	return Verdict{kind: None, ratio: ratio, hasRatio: true}
}

// Kind returns the outcome class.
func (v Verdict) Kind() Kind { return v.kind }

// Gap returns the widest gap consumed by an exact match.
func (v Verdict) Gap() int { return v.gap }

// Ratio returns the best fuzzy similarity computed for the pair.
func (v Verdict) Ratio() float64 { return v.ratio }

// HasRatio reports whether the fuzzy stage ran and Ratio is meaningful.
func (v Verdict) HasRatio() bool { return v.hasRatio }

// Matched reports whether the pair should reach the operator listing.
func (v Verdict) Matched() bool { return v.kind == Exact || v.kind == Fuzzy }
