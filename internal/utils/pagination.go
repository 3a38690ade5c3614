package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/constants"
)

// PaginationParams is a page request with its row offset precomputed.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginationParams clamps page to [1, MaxPage] and falls back to the
// default limit when limit is out of range. Clamping the page keeps the
// offset from overflowing.
func NewPaginationParams(page, limit int) PaginationParams {
	switch {
	case page < 1:
		page = 1
	case page > constants.MaxPage:
		page = constants.MaxPage
	}
	if limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// PaginationFromQuery reads the page and limit query parameters. Values that
// do not parse count as missing.
func PaginationFromQuery(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = constants.DefaultPageSize
	}
	return NewPaginationParams(page, limit)
}

// Response describes this page of a result set holding total rows.
func (p PaginationParams) Response(total int64) PaginationResponse {
	var pages int64
	if total > 0 && p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return PaginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
