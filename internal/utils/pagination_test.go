package utils

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yukikurage/project-management-api/internal/constants"
)

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        PaginationParams
	}{
		{"defaults", 0, 0, PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"second page", 2, 10, PaginationParams{Page: 2, Limit: 10, Offset: 10}},
		{"limit too large", 1, constants.MaxPageSize + 1, PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"negative page", -5, 10, PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"huge page", math.MaxInt, constants.MaxPageSize, PaginationParams{
			Page:   constants.MaxPage,
			Limit:  constants.MaxPageSize,
			Offset: (constants.MaxPage - 1) * constants.MaxPageSize,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPaginationParams(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Offset, 0)
		})
	}
}

func TestPaginationFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	read := func(query string) PaginationParams {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/tasks?"+query, nil)
		return PaginationFromQuery(c)
	}

	assert.Equal(t, PaginationParams{Page: 3, Limit: 5, Offset: 10}, read("page=3&limit=5"))
	assert.Equal(t, PaginationParams{Page: 1, Limit: constants.DefaultPageSize}, read("page=abc&limit="))
	// Larger than int64: Atoi fails, so the first page is served.
	assert.Equal(t, 1, read("page=99999999999999999999").Page)
	assert.Equal(t, constants.MaxPage, read("page="+strconv.Itoa(math.MaxInt)).Page)
}

func TestPaginationParams_Response(t *testing.T) {
	params := NewPaginationParams(2, 10)

	assert.Equal(t, PaginationResponse{Page: 2, Limit: 10, Total: 25, TotalPages: 3}, params.Response(25))
	assert.Equal(t, PaginationResponse{Page: 2, Limit: 10, Total: 0, TotalPages: 0}, params.Response(0))
}
