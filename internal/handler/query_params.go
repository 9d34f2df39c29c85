package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

// parseStatuses accepts repeated ?status= values as well as comma lists.
func parseStatuses(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
