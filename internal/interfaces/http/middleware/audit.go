// Package middleware 提供 HTTP 中间件
package middleware

import (
	"time"

	"bedtime-story-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuditConfig 访问日志配置
type AuditConfig struct {
	// SkipPaths 跳过记录的路径
	SkipPaths []string
}

// Audit 访问日志中间件
func Audit(cfg AuditConfig) gin.HandlerFunc {
	skipMap := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"body_size", c.Writer.Size(),
		)
	}
}
