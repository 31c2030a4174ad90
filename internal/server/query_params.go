package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sitepulse/sitepulse/pkg/db/pagination"
)

// parsePagination validates limit/offset strictly: limit must be a positive
// integer and offset non-negative. Absent parameters fall back to defaults.
func parsePagination(c *gin.Context) (pagination.Pagination, error) {
	page := pagination.Pagination{Limit: pagination.DefaultLimit}

	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return pagination.Pagination{}, newBadRequest("Limit must be a positive integer")
		}
		page.Limit = limit
	}

	if raw, ok := c.GetQuery("offset"); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return pagination.Pagination{}, newBadRequest("Offset must be a non-negative integer")
		}
		page.Offset = offset
	}

	return page.Normalize(), nil
}

func parseBoolQuery(c *gin.Context, name string) bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}
