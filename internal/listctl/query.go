// Package listctl owns the paginated-list state machine every screen is an
// instance of: query state (search/filters/page), the fetch controller with
// its stale-response guard, and the row selection set.
//
// The package is UI-agnostic; the TUI drives it through bubbletea messages
// and the CLI drives it synchronously.
package listctl

import (
	"strings"

	"backoffice-cli/internal/api"
)

// PageSizes are the selectable page sizes, in display order.
var PageSizes = []int{5, 10, 25, 50}

// DefaultPageSize is used when a configured value is not in PageSizes.
const DefaultPageSize = 10

// Query is the single source of truth for "what page of what filtered view
// am I looking at".
type Query struct {
	SearchText   string
	StatusFilter string
	Extra        map[string]string
	Page         int
	PageSize     int
}

func NewQuery(pageSize int) Query {
	if !validPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return Query{Page: 1, PageSize: pageSize}
}

func validPageSize(n int) bool {
	for _, p := range PageSizes {
		if n == p {
			return true
		}
	}
	return false
}

// SetSearch commits the (already debounced) search text. Any change of
// scope invalidates the current page position, so the page resets to 1.
func (q *Query) SetSearch(text string) bool {
	text = strings.TrimSpace(text)
	if q.SearchText == text {
		return false
	}
	q.SearchText = text
	q.Page = 1
	return true
}

// SetStatusFilter sets the status scope ("" clears it). Resets the page.
func (q *Query) SetStatusFilter(status string) bool {
	status = strings.TrimSpace(status)
	if q.StatusFilter == status {
		return false
	}
	q.StatusFilter = status
	q.Page = 1
	return true
}

// SetFilter sets one named extra filter; an empty value removes the key.
// Resets the page.
func (q *Query) SetFilter(key, value string) bool {
	value = strings.TrimSpace(value)
	if q.Extra[key] == value {
		return false
	}
	if q.Extra == nil {
		q.Extra = map[string]string{}
	}
	if value == "" {
		delete(q.Extra, key)
	} else {
		q.Extra[key] = value
	}
	q.Page = 1
	return true
}

// SetPage moves to page n, clamped to [1, totalPages].
func (q *Query) SetPage(n, totalPages int) bool {
	n = clamp(n, 1, maxInt(totalPages, 1))
	if q.Page == n {
		return false
	}
	q.Page = n
	return true
}

// SetPageSize switches the page size (must be one of PageSizes) and resets
// the page to 1.
func (q *Query) SetPageSize(n int) bool {
	if !validPageSize(n) || q.PageSize == n {
		return false
	}
	q.PageSize = n
	q.Page = 1
	return true
}

// Params derives the request parameters for the backend list endpoint.
func (q Query) Params() api.ListParams {
	extra := make(map[string]string, len(q.Extra))
	for k, v := range q.Extra {
		extra[k] = v
	}
	return api.ListParams{
		Limit:   q.PageSize,
		Offset:  (q.Page - 1) * q.PageSize,
		Keyword: q.SearchText,
		Status:  q.StatusFilter,
		Extra:   extra,
	}
}

// TotalPages is ceil(total/pageSize), never below 1 (an empty result still
// has a page 1 to stand on).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
