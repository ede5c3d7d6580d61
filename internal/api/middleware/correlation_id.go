package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	correlationIDKey    = "correlationID"
	CorrelationIDHeader = "X-Correlation-ID"
)

// CorrelationIDMiddleware 确保每个请求都带有 Correlation ID，导出任务沿用同一个 ID。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	if value, ok := c.Get(correlationIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
