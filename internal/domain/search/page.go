package search

import "github.com/whhaicheng/SimDesk/internal/domain/validation"

const (
	// MaxPerPage is the largest page size a caller may request.
	MaxPerPage = 100

	// DefaultPerPage is used by callers that do not choose a page size.
	DefaultPerPage = 20
)

// PageRequest selects one page of a result set. Page is 1-based.
type PageRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FirstPage returns page 1 with the default page size.
func FirstPage() PageRequest {
	return PageRequest{Page: 1, PerPage: DefaultPerPage}
}

// Validate checks the page bounds.
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return validation.New("page", "Page must be greater than 0")
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return validation.New("perPage", "PerPage must be between 1 and 100")
	}
	return nil
}

// Bounds clamps the page window to a collection of size total.
// Pages past the end yield an empty window; the offset is never computed for them,
// so very large page numbers cannot overflow.
func (p PageRequest) Bounds(total int) (start, end int) {
	if p.Page < 1 || p.PerPage < 1 || p.Page-1 > total/p.PerPage {
		return total, total
	}
	start = (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end = start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}

// PageResult is one page of a search.
type PageResult[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"` // Matches before pagination
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

// HasNext reports whether a later page exists.
func (r PageResult[T]) HasNext() bool {
	return r.Page < r.LastPage
}

// LastPage returns ceil(total/perPage), 0 when total is 0.
func LastPage(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
