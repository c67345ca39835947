package schema

import "strings"

// Treatment models the trial's intervention label as a sum type: either a
// named label (drug, dose, opsin) or None for trials recorded without any
// modulation. None is a real experimental category, not absent data, so it is
// never merged with a named label.
type Treatment struct {
	label string
	named bool
}

// NamedTreatment returns a Treatment with the given label.
func NamedTreatment(label string) Treatment {
	return Treatment{label: label, named: true}
}

// NoTreatment returns the untreated/control Treatment.
func NoTreatment() Treatment {
	return Treatment{}
}

// IsNone reports whether the trial recorded no treatment.
func (t Treatment) IsNone() bool { return !t.named }

// Label returns the treatment label, or the empty string for None.
func (t Treatment) Label() string { return t.label }

// String renders the treatment for tables and logs.
func (t Treatment) String() string {
	if !t.named {
		return "none"
	}
	return t.label
}

// TreatmentFromColumn interprets a raw metadata cell. Empty cells and the
// sentinel "NA" both mean untreated; anything else is a named label.
func TreatmentFromColumn(raw string) Treatment {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "null") {
		return NoTreatment()
	}
	return NamedTreatment(raw)
}

// TreatmentFilter selects trials by treatment in a ConditionFilter.
type TreatmentFilter struct {
	mode  treatmentFilterMode
	label string
}

type treatmentFilterMode int

const (
	matchAny treatmentFilterMode = iota
	matchNone
	matchNamed
)

// AnyTreatment matches every trial regardless of treatment.
func AnyTreatment() TreatmentFilter { return TreatmentFilter{mode: matchAny} }

// OnlyUntreated matches exactly the trials whose treatment is None.
func OnlyUntreated() TreatmentFilter { return TreatmentFilter{mode: matchNone} }

// TreatmentEquals matches trials with the given named treatment.
func TreatmentEquals(label string) TreatmentFilter {
	return TreatmentFilter{mode: matchNamed, label: label}
}

// ParseTreatmentFilter maps CLI/config input to a filter: "any" matches all,
// "none" matches untreated trials, anything else is a named label.
func ParseTreatmentFilter(raw string) TreatmentFilter {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "any":
		return AnyTreatment()
	case "none":
		return OnlyUntreated()
	default:
		return TreatmentEquals(strings.TrimSpace(raw))
	}
}

// Matches reports whether a treatment satisfies the filter.
func (f TreatmentFilter) Matches(t Treatment) bool {
	switch f.mode {
	case matchNone:
		return t.IsNone()
	case matchNamed:
		return !t.IsNone() && t.Label() == f.label
	default:
		return true
	}
}

// String renders the filter for logs and cache keys.
func (f TreatmentFilter) String() string {
	switch f.mode {
	case matchNone:
		return "none"
	case matchNamed:
		return f.label
	default:
		return "any"
	}
}

// ConditionFilter selects trials matching an experimental condition. Empty
// Task/Strain match every value.
type ConditionFilter struct {
	Task      string
	Treatment TreatmentFilter
	Strain    string
}

// Matches reports whether a trial satisfies every component of the filter.
func (f ConditionFilter) Matches(tr Trial) bool {
	if f.Task != "" && tr.Task != f.Task {
		return false
	}
	if f.Strain != "" && tr.Strain != f.Strain {
		return false
	}
	return f.Treatment.Matches(tr.Treatment)
}
