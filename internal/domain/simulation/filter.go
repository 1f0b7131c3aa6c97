package simulation

import (
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/search"
)

// Filter selects runs for a history search. Zero fields mean "no constraint".
type Filter struct {
	ProjectName  string     // Case-insensitive substring of the project name
	ProjectPath  string     // Exact project path
	Status       *Status    // Exact status
	RecordedFrom *time.Time // Inclusive lower bound on recorded-at
	RecordedTo   *time.Time // Inclusive upper bound on recorded-at
}

// Spec builds the search predicates for the filter.
func (f Filter) Spec() search.Spec[*Run] {
	spec := search.Spec[*Run]{}
	if f.ProjectName != "" {
		spec = spec.Contains(f.ProjectName, (*Run).ProjectName)
	}
	if f.ProjectPath != "" {
		spec = spec.Equals(f.ProjectPath, (*Run).ProjectPath)
	}
	if f.Status != nil {
		want := f.Status.String()
		spec = spec.Equals(want, func(r *Run) string { return r.Status().String() })
	}
	if f.RecordedFrom != nil || f.RecordedTo != nil {
		spec = spec.Between(f.RecordedFrom, f.RecordedTo, (*Run).RecordedAt)
	}
	return spec
}

// SortKey orders run history: newest recorded-at first.
func SortKey(r *Run) time.Time {
	return r.RecordedAt()
}
