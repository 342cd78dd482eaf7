package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pingpost/pingpost-backend/middleware"
)

// parsePagination reads zero-indexed page and page size query values,
// clamping to sane bounds. Defaults: first page, ten items.
func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 0
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return "", false
	}
	name, ok := value.(string)
	return name, ok && name != ""
}
