package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldops/backend/internal/metrics"
)

// SessionIDHeader carries the conversation id on requests and responses.
const SessionIDHeader = "X-Session-Id"

// Metrics counts finished requests by matched route so unknown paths do not
// explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.HTTPRequest(routeOf(c), strconv.Itoa(c.Writer.Status()))
	}
}
