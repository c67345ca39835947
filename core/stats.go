package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ghrelinlab/posemetrics/schema"
)

// Describe computes the descriptive summary of a group's per-trial values.
// Values must already exclude missing entries.
func Describe(label string, values []float64) schema.GroupStat {
	gs := schema.GroupStat{Group: label, N: len(values)}
	switch len(values) {
	case 0:
		gs.Mean = schema.Missing()
		gs.SEM = schema.Missing()
	case 1:
		gs.Mean = values[0]
		gs.SEM = schema.Missing()
	default:
		gs.Mean = stat.Mean(values, nil)
		gs.SEM = stat.StdDev(values, nil) / math.Sqrt(float64(len(values)))
	}
	return gs
}

// CompareGroups builds the full comparison row for two groups of per-trial
// feature values. Descriptive stats are always filled; the pairwise
// comparison is nil whenever either group cannot support one (fewer than two
// values, or zero variance in both groups with a standard error of zero).
func CompareGroups(feature schema.FeatureName, params schema.FeatureParams, baseLabel string, base []float64, targetLabel string, target []float64) schema.GroupComparison {
	result := schema.GroupComparison{
		Feature: feature,
		Params:  params,
		Base:    Describe(baseLabel, base),
		Target:  Describe(targetLabel, target),
	}
	if len(base) < 2 || len(target) < 2 {
		return result
	}
	result.Comparison = welch(base, target)
	return result
}

// welch runs Welch's unequal-variance two-sample t-test with a two-tailed
// p-value from the Student's t distribution at Welch–Satterthwaite degrees of
// freedom, plus Cohen's d on the unpooled average variance.
func welch(base, target []float64) *schema.Comparison {
	n1, n2 := float64(len(base)), float64(len(target))
	m1, v1 := stat.MeanVariance(base, nil)
	m2, v2 := stat.MeanVariance(target, nil)

	se2 := v1/n1 + v2/n2
	if se2 <= 0 {
		// Both groups constant. There is no scale to standardize the
		// difference against, so the test is undefined.
		return nil
	}
	t := (m1 - m2) / math.Sqrt(se2)
	df := se2 * se2 / (v1*v1/(n1*n1*(n1-1)) + v2*v2/(n2*n2*(n2-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	d := (m1 - m2) / math.Sqrt((v1+v2)/2)
	return &schema.Comparison{TStat: t, DF: df, PValue: p, CohenD: d}
}
