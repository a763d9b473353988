package common

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{95, 10, 10},
	}
	for _, tc := range cases {
		p := NewPagination(1, tc.limit, tc.total)
		require.Equal(t, tc.pages, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestPaginationOffsetBeyondEnd(t *testing.T) {
	p := NewPagination(7, 10, 25)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 60, p.Offset())
}

func TestPaginationRowOffsetSaturates(t *testing.T) {
	require.Equal(t, int32(60), NewPagination(7, 10, 25).RowOffset())

	for _, page := range []int{107374184, 200000000, math.MaxInt32} {
		p := NewPagination(page, 20, 5)
		require.Equal(t, int32(math.MaxInt32), p.RowOffset(), "page=%d", page)
	}
}

func TestParsePaginationClamps(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/users?page=3&limit=500", nil)
	page, limit := ParsePagination(r, 20, 100)
	require.Equal(t, 3, page)
	require.Equal(t, 100, limit)

	r = httptest.NewRequest("GET", "/admin/users?page=-1&limit=abc", nil)
	page, limit = ParsePagination(r, 20, 100)
	require.Equal(t, 1, page)
	require.Equal(t, 20, limit)
}

func TestParsePaginationCapsHugePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/orders?page=9223372036854775807&limit=100", nil)
	page, limit := ParsePagination(r, 20, 100)
	require.Equal(t, math.MaxInt32, page)
	require.Equal(t, 100, limit)
	require.Equal(t, int32(math.MaxInt32), NewPagination(page, limit, 0).RowOffset())
}
