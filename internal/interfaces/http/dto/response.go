// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bedtime-story-api/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{Success: false, Message: message})
}

// ErrorWithDetails 返回带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details any) {
	c.JSON(httpCode, ErrorResponse{Success: false, Message: message, Details: details})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// InvalidInput 返回 400 校验错误
func InvalidInput(c *gin.Context, details *ValidationDetails) {
	ErrorWithDetails(c, http.StatusBadRequest, "Invalid input", details)
}

// FromError 将错误转换为响应
// 已知的 AppError 使用自身状态码与消息，其余按 500 返回 fallback 消息并附带错误描述
func FromError(c *gin.Context, err error, fallback string) {
	if appErr, ok := asKnown(err); ok {
		ErrorWithDetails(c, appErr.HTTPStatus, appErr.Message, appErr.Details)
		return
	}
	ErrorWithDetails(c, http.StatusInternalServerError, fallback, err.Error())
}

func asKnown(err error) (*apperrors.AppError, bool) {
	if !apperrors.IsAppError(err) {
		return nil, false
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeUnknown || appErr.HTTPStatus == 0 {
		return nil, false
	}
	return appErr, true
}
