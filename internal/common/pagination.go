package common

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	if limit <= 0 {
		limit = 1
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Offset is the row offset for the current page. Pages past the end still yield a valid offset
// so the store returns an empty page rather than an error.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// RowOffset is Offset narrowed to the int32 OFFSET parameter of the list queries.
// It saturates at math.MaxInt32, which still yields an empty page.
func (p Pagination) RowOffset() int32 {
	off := int64(max(p.Page-1, 0)) * int64(max(p.Limit, 0))
	if off > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(off)
}

// ParsePagination extracts page and limit parameters from query values. The limit is clamped to maxPerPage when positive.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = min(p, math.MaxInt32)
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}
