package helpers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)

	offset, limit = CalculateOffsetLimit(math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPageSize, limit)
	assert.LessOrEqual(t, offset, uint64(math.MaxInt64))
	assert.Equal(t, uint64(MaxPage-1)*uint64(MaxPageSize), offset)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(25), info.TotalItems)

	assert.Equal(t, 0, NewPaginationInfo(0, 1, 10).TotalPages)
	assert.Equal(t, 1, NewPaginationInfo(10, 1, 10).TotalPages)
}

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParsePaginationParams(t *testing.T) {
	page, size := ParsePaginationParams(newContext("/?page=2&limit=25"))
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, size)

	page, size = ParsePaginationParams(newContext("/?size=5"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 5, size)

	page, size = ParsePaginationParams(newContext("/?page=-1&limit=abc"))
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)

	page, _ = ParsePaginationParams(newContext("/?limit=100&page=" + strconv.Itoa(math.MaxInt)))
	assert.Equal(t, MaxPage, page)
	offset, _ := CalculateOffsetLimit(page, 100)
	assert.LessOrEqual(t, offset, uint64(math.MaxInt64))
}

func TestParseOptionalIDQuery(t *testing.T) {
	id, ok := ParseOptionalIDQuery(newContext("/"), "student_id")
	assert.True(t, ok)
	assert.Zero(t, id)

	id, ok = ParseOptionalIDQuery(newContext("/?student_id=7"), "student_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = ParseOptionalIDQuery(newContext("/?student_id=x"), "student_id")
	assert.False(t, ok)
}
