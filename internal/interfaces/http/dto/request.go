// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MsgInvalidUserID userId 查询参数缺失或无效
const MsgInvalidUserID = "Missing or invalid userId"

// QueryUserID 解析必填的正整数 userId 查询参数
func QueryUserID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Query("userId"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
