package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const DefaultPageLimit = 50

// Pagination links a list page to its neighbours. A missing link means there
// is no page in that direction.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageParams reads page and limit from the query string. Missing, malformed
// or non-positive values fall back to page 1 and DefaultPageLimit.
func PageParams(c *gin.Context) (page, limit int) {
	page, limit = 1, DefaultPageLimit
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

// Paginate slices one page out of items. total is len(items).
func Paginate[T any](items []T, page, limit int) (data []T, total int, links Pagination) {
	total = len(items)
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := total
	if limit < total-start {
		end = start + limit
	}

	if end < total {
		links.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if start > 0 {
		links.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	data = make([]T, 0, end-start)
	return append(data, items[start:end]...), total, links
}

// RespondWithPage writes the page of items selected by the request's page
// and limit parameters. items is the full list, usually straight from cache.
func RespondWithPage[T any](c *gin.Context, items []T) {
	page, limit := PageParams(c)
	data, total, links := Paginate(items, page, limit)
	count := len(data)
	c.JSON(http.StatusOK, Envelope{
		Error:      false,
		Errors:     []string{},
		Total:      &total,
		Count:      &count,
		Pagination: &links,
		Data:       data,
		Message:    "successful",
		Status:     http.StatusOK,
	})
}
