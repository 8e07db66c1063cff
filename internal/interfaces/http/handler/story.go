// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bedtime-story-api/internal/application/story"
	"bedtime-story-api/internal/interfaces/http/dto"
	"bedtime-story-api/pkg/logger"
)

// StoryHandler 故事处理器
type StoryHandler struct {
	svc *story.Service
}

// NewStoryHandler 创建故事处理器
func NewStoryHandler(svc *story.Service) *StoryHandler {
	return &StoryHandler{svc: svc}
}

// List 列出用户最近的故事
// @Summary 故事列表
// @Tags Stories
// @Produce json
// @Param userId query int true "用户 ID"
// @Success 200 {object} dto.StoryListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /stories [get]
func (h *StoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := dto.QueryUserID(c)
	if !ok {
		dto.BadRequest(c, dto.MsgInvalidUserID)
		return
	}

	stories, err := h.svc.ListByUser(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to list stories", err, "user_id", userID)
		dto.FromError(c, err, msgFailed)
		return
	}

	c.JSON(http.StatusOK, dto.StoryListResponse{
		Success: true,
		Items:   dto.ToStoryListItems(stories),
	})
}

// Create 生成并保存故事
// @Summary 生成故事
// @Tags Stories
// @Accept json
// @Produce json
// @Param body body dto.CreateStoryRequest true "生成参数"
// @Success 200 {object} dto.StoryCreateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /create-story [post]
func (h *StoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStoryRequest
	if details := dto.BindJSON(c, &req); details != nil {
		dto.InvalidInput(c, details)
		return
	}
	if details := dto.ValidateStruct(&req); details != nil {
		dto.InvalidInput(c, details)
		return
	}

	created, err := h.svc.CreateStory(ctx, req.ToInput())
	if err != nil {
		dto.FromError(c, err, story.MsgGenerationFailed)
		return
	}

	c.JSON(http.StatusOK, dto.StoryCreateResponse{
		Success: true,
		Story:   dto.ToStoryResponse(created),
	})
}
