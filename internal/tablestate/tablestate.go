// Package tablestate implements the filter, sort and paginate cycle shared by
// every list screen: a predicate narrows the rows, a named comparator orders
// them and a page window is cut from the result.
package tablestate

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// SortDir is the sort direction of a query.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSortDir treats anything other than "desc" as ascending.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Less reports whether a sorts before b in ascending order.
type Less[T any] func(a, b T) bool

// Columns maps sort keys to comparators.
type Columns[T any] map[string]Less[T]

// Query describes one view of a table.
type Query[T any] struct {
	Filter   func(T) bool
	SortKey  string
	SortDir  SortDir
	Page     int
	PageSize int
}

// Page is a window of rows plus paging metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Normalize clamps page and page size into their valid ranges.
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Apply filters, sorts and pages rows. The input slice is not modified.
// Unknown sort keys fall back to fallbackKey; ties keep input order.
func Apply[T any](rows []T, q Query[T], cols Columns[T], fallbackKey string) Page[T] {
	filtered := make([]T, 0, len(rows))
	for _, r := range rows {
		if q.Filter == nil || q.Filter(r) {
			filtered = append(filtered, r)
		}
	}

	sortRows(filtered, q.SortKey, q.SortDir, cols, fallbackKey)

	page, pageSize := Normalize(q.Page, q.PageSize)
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Sort returns a sorted copy of rows without filtering or paging.
func Sort[T any](rows []T, key string, dir SortDir, cols Columns[T], fallbackKey string) []T {
	out := append([]T(nil), rows...)
	sortRows(out, key, dir, cols, fallbackKey)
	return out
}

func sortRows[T any](rows []T, key string, dir SortDir, cols Columns[T], fallbackKey string) {
	less, ok := cols[key]
	if !ok {
		less = cols[fallbackKey]
	}
	if less == nil {
		return
	}
	desc := dir == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// ContainsFold reports whether s contains term, ignoring case. An empty term
// matches everything.
func ContainsFold(s, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}
