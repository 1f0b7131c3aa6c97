// Package search provides the filter, sort and paginate algorithm shared by
// every collection (run history, recent projects).
package search

import (
	"slices"
	"strings"
	"time"
)

// Predicate reports whether an item belongs to the result set.
type Predicate[T any] func(T) bool

// Spec is an immutable conjunction of predicates. The zero value matches everything.
type Spec[T any] struct {
	predicates []Predicate[T]
}

func (s Spec[T]) with(p Predicate[T]) Spec[T] {
	next := make([]Predicate[T], 0, len(s.predicates)+1)
	next = append(next, s.predicates...)
	next = append(next, p)
	return Spec[T]{predicates: next}
}

// Where adds an arbitrary predicate.
func (s Spec[T]) Where(p Predicate[T]) Spec[T] {
	return s.with(p)
}

// Contains matches items where any of fields contains needle, ignoring case.
// An empty needle adds no constraint.
func (s Spec[T]) Contains(needle string, fields ...func(T) string) Spec[T] {
	if needle == "" || len(fields) == 0 {
		return s
	}
	lowered := strings.ToLower(needle)
	return s.with(func(item T) bool {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), lowered) {
				return true
			}
		}
		return false
	})
}

// Equals matches items whose field equals want exactly.
func (s Spec[T]) Equals(want string, field func(T) string) Spec[T] {
	return s.with(func(item T) bool {
		return field(item) == want
	})
}

// Between matches items whose field lies in [from, to]. Either bound may be nil.
func (s Spec[T]) Between(from, to *time.Time, field func(T) time.Time) Spec[T] {
	if from == nil && to == nil {
		return s
	}
	return s.with(func(item T) bool {
		ts := field(item)
		if from != nil && ts.Before(*from) {
			return false
		}
		if to != nil && ts.After(*to) {
			return false
		}
		return true
	})
}

// Match reports whether item satisfies every predicate.
func (s Spec[T]) Match(item T) bool {
	for _, p := range s.predicates {
		if !p(item) {
			return false
		}
	}
	return true
}

// Len returns the number of predicates.
func (s Spec[T]) Len() int {
	return len(s.predicates)
}

// Search filters items with spec, sorts them newest first by sortKey and
// returns the requested page. Items with equal keys keep their input order.
// items is not modified.
func Search[T any](items []T, spec Spec[T], page PageRequest, sortKey func(T) time.Time) (PageResult[T], error) {
	if err := page.Validate(); err != nil {
		return PageResult[T]{}, err
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if spec.Match(item) {
			matched = append(matched, item)
		}
	}

	slices.SortStableFunc(matched, func(a, b T) int {
		return sortKey(b).Compare(sortKey(a))
	})

	total := len(matched)
	start, end := page.Bounds(total)

	return PageResult[T]{
		Items:    slices.Clone(matched[start:end]),
		Total:    total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		LastPage: LastPage(total, page.PerPage),
	}, nil
}
