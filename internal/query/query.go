// Package query normalizes the optional list parameters (page, limit, sort,
// filters) into a bounded form the repositories can execute, and
// derives the pagination envelope from the results.
package query

import "strings"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	defaultSortField = "createdAt"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Page is a normalized page/limit pair.
type Page struct {
	Number int
	Limit  int
}

// NewPage floors the page at 1 and clamps the limit to [1,100], applying the
// defaults for missing or non-positive values.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Sort is a normalized sort key and direction.
type Sort struct {
	Field string
	Order string
}

// NewSort falls back to createdAt for fields outside the allow-list and to
// descending order for anything that is not explicitly "asc".
func NewSort(field, order string, allowed []string) Sort {
	s := Sort{Field: defaultSortField, Order: SortDesc}
	for _, f := range allowed {
		if f == field {
			s.Field = field
			break
		}
	}
	if order == SortAsc {
		s.Order = SortAsc
	}
	return s
}

// Sortable fields per entity.
var (
	TaskSortFields = []string{"createdAt", "updatedAt", "dueDate", "priority", "status", "title"}
	UserSortFields = []string{"createdAt", "updatedAt", "username", "email", "role"}
)

// CSVValues splits a comma-separated parameter, trims each entry, and
// silently drops values the valid predicate rejects.
func CSVValues(raw string, valid func(string) bool) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" || !valid(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Keyword trims a free-text search term. The repositories apply it as a
// case-insensitive substring match over the entity's two searchable fields.
func Keyword(raw string) string {
	return strings.TrimSpace(raw)
}

// TaskFilter is the normalized filter set for task listings.
type TaskFilter struct {
	OwnerID    string
	Statuses   []string
	Priorities []string
	Keyword    string
}

// UserFilter is the normalized filter set for user listings.
type UserFilter struct {
	Roles   []string
	Keyword string
}

// Pagination is the result envelope metadata returned with every listing.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// Paginate derives the envelope from the page and the total match count.
// TotalPages is never below 1, even for an empty result.
func Paginate(p Page, totalItems int) Pagination {
	totalPages := (totalItems + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:        p.Number,
		Limit:       p.Limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevPage: p.Number > 1,
		HasNextPage: p.Number < totalPages,
	}
}
