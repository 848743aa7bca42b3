package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", page: 0, limit: 0, wantPage: 1, wantLimit: 10},
		{name: "negative page floored", page: -3, limit: 25, wantPage: 1, wantLimit: 25},
		{name: "limit clamped high", page: 2, limit: 100000, wantPage: 2, wantLimit: 100},
		{name: "limit clamped at boundary", page: 1, limit: 100, wantPage: 1, wantLimit: 100},
		{name: "negative limit defaulted", page: 1, limit: -1, wantPage: 1, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 10).Offset())
	assert.Equal(t, 30, NewPage(4, 10).Offset())
	assert.Equal(t, 100, NewPage(2, 100).Offset())
}

func TestNewSort(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		order     string
		wantField string
		wantOrder string
	}{
		{name: "allowed field and asc", field: "title", order: "asc", wantField: "title", wantOrder: "asc"},
		{name: "unknown field falls back", field: "password_hash", order: "asc", wantField: "createdAt", wantOrder: "asc"},
		{name: "unknown order falls back", field: "dueDate", order: "upwards", wantField: "dueDate", wantOrder: "desc"},
		{name: "empty everything", field: "", order: "", wantField: "createdAt", wantOrder: "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSort(tt.field, tt.order, TaskSortFields)
			assert.Equal(t, tt.wantField, s.Field)
			assert.Equal(t, tt.wantOrder, s.Order)
		})
	}
}

func TestCSVValues(t *testing.T) {
	valid := func(v string) bool {
		return v == "pending" || v == "completed"
	}

	assert.Nil(t, CSVValues("", valid))
	assert.Equal(t, []string{"pending"}, CSVValues("pending", valid))
	assert.Equal(t, []string{"pending", "completed"}, CSVValues(" pending , completed ", valid))
	assert.Equal(t, []string{"completed"}, CSVValues("archived,completed,nonsense", valid))
	assert.Nil(t, CSVValues("archived,,nonsense", valid))
}

func TestKeyword(t *testing.T) {
	assert.Equal(t, "report", Keyword("  report  "))
	assert.Equal(t, "", Keyword("   "))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		total    int
		want     Pagination
	}{
		{
			name:  "empty result still has one page",
			page:  NewPage(1, 10),
			total: 0,
			want:  Pagination{Page: 1, Limit: 10, TotalItems: 0, TotalPages: 1, HasPrevPage: false, HasNextPage: false},
		},
		{
			name:  "exact fit",
			page:  NewPage(2, 10),
			total: 20,
			want:  Pagination{Page: 2, Limit: 10, TotalItems: 20, TotalPages: 2, HasPrevPage: true, HasNextPage: false},
		},
		{
			name:  "partial last page",
			page:  NewPage(1, 10),
			total: 21,
			want:  Pagination{Page: 1, Limit: 10, TotalItems: 21, TotalPages: 3, HasPrevPage: false, HasNextPage: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.page, tt.total))
		})
	}
}

// TotalPages must equal max(ceil(total/limit),1) and HasNextPage must hold
// exactly when page < TotalPages, across the whole parameter range.
func TestPaginateInvariants(t *testing.T) {
	for limit := 1; limit <= 100; limit += 7 {
		for total := 0; total <= 500; total += 13 {
			for pageNum := 1; pageNum <= 8; pageNum++ {
				p := NewPage(pageNum, limit)
				got := Paginate(p, total)

				wantPages := (total + limit - 1) / limit
				if wantPages < 1 {
					wantPages = 1
				}
				if got.TotalPages != wantPages {
					t.Fatalf("limit=%d total=%d: TotalPages=%d want %d", limit, total, got.TotalPages, wantPages)
				}
				if got.HasNextPage != (pageNum < wantPages) {
					t.Fatalf("limit=%d total=%d page=%d: HasNextPage=%v", limit, total, pageNum, got.HasNextPage)
				}
				if got.HasPrevPage != (pageNum > 1) {
					t.Fatalf("limit=%d total=%d page=%d: HasPrevPage=%v", limit, total, pageNum, got.HasPrevPage)
				}
			}
		}
	}
}
