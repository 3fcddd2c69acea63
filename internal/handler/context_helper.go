package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kotkala/EduConnectSystem-sub009/internal/middleware"
)

// actorID returns the verified caller id, or empty when the route is unauthenticated.
func actorID(c *gin.Context) string {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return ""
	}
	return claims.UserID()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryIntPtr returns nil when the parameter is absent or not a number.
func queryIntPtr(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}
