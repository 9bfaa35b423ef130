// Package pagination implements offset pagination with page metadata
// derived from an independent row count.
package pagination

import "gorm.io/gorm"

// Request carries 1-based page selection. PerPage == 0 means "no limit":
// every matching row is returned and no offset arithmetic happens. The zero
// value is for in-process callers; query binding insists on the 1..100 window.
type Request struct {
	Page    int `form:"page,default=1" binding:"gte=1"`
	PerPage int `form:"limit,default=10" binding:"gte=1,lte=100"`
}

// All requests every matching row.
func All() Request { return Request{Page: 1, PerPage: 0} }

// Apply adds LIMIT/OFFSET to tx, or leaves it untouched when PerPage is 0.
func (r Request) Apply(tx *gorm.DB) *gorm.DB {
	if r.PerPage == 0 {
		return tx
	}
	page := r.Page
	if page < 1 {
		page = 1
	}
	return tx.Limit(r.PerPage).Offset((page - 1) * r.PerPage)
}

// Page is one slice of a result set plus the metadata derived from the
// total matching row count.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// NewPage assembles a page from the rows of one query and the count of
// another; Total always reflects every matching row, not the slice length.
func NewPage[T any](items []T, total int64, req Request) Page[T] {
	return Page[T]{Items: items, Total: total, Page: req.Page, PerPage: req.PerPage}
}

// Pages is the total page count: ceil(Total/PerPage). An unlimited page
// holds everything, so it counts as a single page when any rows exist.
func (p Page[T]) Pages() int {
	if p.PerPage == 0 {
		if p.Total > 0 {
			return 1
		}
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }
