// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bedtime-story-api/internal/application/profile"
	"bedtime-story-api/internal/interfaces/http/dto"
	"bedtime-story-api/pkg/logger"
)

// msgFailed 档案与故事列表接口的通用失败消息
const msgFailed = "Failed"

// ChildProfileHandler 孩子档案处理器
type ChildProfileHandler struct {
	svc *profile.Service
}

// NewChildProfileHandler 创建孩子档案处理器
func NewChildProfileHandler(svc *profile.Service) *ChildProfileHandler {
	return &ChildProfileHandler{svc: svc}
}

// List 列出用户的孩子档案
// @Summary 孩子档案列表
// @Tags ChildProfiles
// @Produce json
// @Param userId query int true "用户 ID"
// @Success 200 {object} dto.ChildProfileListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /child-profiles [get]
func (h *ChildProfileHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := dto.QueryUserID(c)
	if !ok {
		dto.BadRequest(c, dto.MsgInvalidUserID)
		return
	}

	items, err := h.svc.List(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to list child profiles", err, "user_id", userID)
		dto.FromError(c, err, msgFailed)
		return
	}

	c.JSON(http.StatusOK, dto.ChildProfileListResponse{
		Success: true,
		Items:   dto.ToChildProfileResponses(items),
	})
}

// Create 创建或返回同名孩子档案
// @Summary 创建孩子档案
// @Tags ChildProfiles
// @Accept json
// @Produce json
// @Param body body dto.CreateChildProfileRequest true "档案信息"
// @Success 201 {object} dto.ChildProfileCreateResponse
// @Success 200 {object} dto.ChildProfileCreateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /child-profiles [post]
func (h *ChildProfileHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateChildProfileRequest
	if details := dto.BindJSON(c, &req); details != nil {
		dto.InvalidInput(c, details)
		return
	}
	req.Normalize()
	if details := dto.ValidateStruct(&req); details != nil {
		dto.InvalidInput(c, details)
		return
	}

	item, created, err := h.svc.Create(ctx, req.UserID.Int64(), *req.ChildName)
	if err != nil {
		logger.Error(ctx, "failed to create child profile", err, "user_id", req.UserID.Int64())
		dto.FromError(c, err, msgFailed)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ChildProfileCreateResponse{
		Success: true,
		Item:    dto.ToChildProfileResponse(item),
		Created: created,
	})
}
