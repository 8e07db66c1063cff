// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"bedtime-story-api/internal/interfaces/http/dto"
	"bedtime-story-api/pkg/logger"
)

// Recovery 捕获 panic，记录堆栈并返回统一错误响应
// http.ErrAbortHandler 继续向上抛出，由 net/http 中断连接
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic recovered", fmt.Errorf("%v", rec),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Success: false,
				Message: "Internal server error",
				Details: fmt.Sprint(rec),
			})
		}()

		c.Next()
	}
}
