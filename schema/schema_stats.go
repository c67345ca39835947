package schema

import "math"

// GroupStat holds descriptive statistics for one treatment group. SEM is NaN
// when the group has fewer than two trials.
type GroupStat struct {
	Group string  `json:"group"`
	N     int     `json:"n"`
	Mean  float64 `json:"mean"`
	SEM   float64 `json:"sem"`
}

// Defined reports whether the group produced any usable values.
func (g GroupStat) Defined() bool { return g.N > 0 && !math.IsNaN(g.Mean) }

// Comparison holds the Welch two-sample comparison of a group pair.
type Comparison struct {
	TStat  float64 `json:"t_stat"`  // Welch t statistic, base minus target
	DF     float64 `json:"df"`      // Welch–Satterthwaite degrees of freedom
	PValue float64 `json:"p_value"` // Two-tailed
	CohenD float64 `json:"cohen_d"` // Standardized mean difference
}

// GroupComparison is one row of the output table the presentation layer
// consumes: a feature, the parameters it was computed with, the two group
// summaries, and the pairwise comparison. Comparison is nil when either group
// is degenerate (n < 2); descriptive stats are still filled for n >= 1.
type GroupComparison struct {
	Feature    FeatureName   `json:"feature"`
	Params     FeatureParams `json:"params"`
	Base       GroupStat     `json:"base"`
	Target     GroupStat     `json:"target"`
	Comparison *Comparison   `json:"comparison,omitempty"`
}

// SweepPoint is one cell of a parameter sweep: the parameters used and the
// comparison they produced. Score is the group separation the sweep optimizes
// (base mean minus target mean).
type SweepPoint struct {
	Params FeatureParams   `json:"params"`
	Result GroupComparison `json:"result"`
	Score  float64         `json:"score"`
}

// CatalogRow pairs a trial with the group label it was selected under.
type CatalogRow struct {
	Trial Trial  `json:"trial"`
	Group string `json:"group"`
}

// SignificanceLabel buckets a p-value into the conventional star notation.
// This is a presentation concern; the stats engine only reports raw p-values.
func SignificanceLabel(p float64) string {
	switch {
	case math.IsNaN(p):
		return "-"
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return "n.s."
	}
}
