package handlers

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

// defaultPageSize is the page size for list endpoints.
const defaultPageSize = 10

// currentUID returns the authenticated user's ID set by the auth middleware,
// or "" when the request is unauthenticated.
func currentUID(c echo.Context) string {
	uid, _ := c.Get("firebaseUID").(string)
	return uid
}

// pagination reads page/limit query params with sane bounds.
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = defaultPageSize
	}
	return page, limit
}

// paginationMeta builds the standard pagination envelope.
func paginationMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}
