package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1

	// MaxPage keeps (page-1)*MaxPageSize within an int and a Postgres bigint OFFSET
	MaxPage = math.MaxInt / MaxPageSize
)

// CalculateOffsetLimit converts a 1-based page and a size into SQL offset and limit
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	if size <= 0 || size > MaxPageSize {
		limit = DefaultPageSize
	} else {
		limit = size
	}

	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	offset = uint64(page-1) * uint64(limit)
	return offset, limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := int((totalItems + int64(size) - 1) / int64(size))

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads "page" and "limit" from the query. "size" is
// accepted as an alias of "limit". Invalid values fall back to the defaults.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("size")
	}
	size, err = strconv.Atoi(raw)
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// ParseIDParam parses a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseOptionalIDQuery parses an optional positive int64 query parameter.
// A missing parameter yields 0.
func ParseOptionalIDQuery(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
