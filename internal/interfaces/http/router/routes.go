// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册业务路由，路径与移动端客户端约定保持一致
func RegisterRoutes(r gin.IRoutes, h *RouterHandlers) {
	// 孩子档案
	r.GET("/child-profiles", h.ChildProfile.List)
	r.POST("/child-profiles", h.ChildProfile.Create)

	// 故事
	r.GET("/stories", h.Story.List)
	r.POST("/create-story", h.Story.Create)

	// 诊断
	r.GET("/anthropic-models", h.Diagnostic.AnthropicModels)
	r.GET("/test-create", h.Diagnostic.TestCreate)
}
