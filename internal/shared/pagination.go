package shared

import (
	"math"
	"net/http"
	"strconv"
)

// Page carries the limit/offset window of a listing.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset from the query string, clamping the limit to
// max and defaulting it to def.
func ParsePage(r *http.Request, def, max int) Page {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page Page, total int) Pagination {
	if page.Limit <= 0 {
		page.Limit = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(page.Limit)))
	return Pagination{Limit: page.Limit, Offset: page.Offset, Total: total, TotalPages: totalPages}
}
