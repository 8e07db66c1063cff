// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// ChildProfile 孩子档案实体
type ChildProfile struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"not null;uniqueIndex:idx_child_profiles_user_name,priority:1"`
	ChildName string    `json:"childName" gorm:"type:varchar(40);not null;uniqueIndex:idx_child_profiles_user_name,priority:2"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (ChildProfile) TableName() string {
	return "child_profiles"
}

// NewChildProfile 创建新的孩子档案
func NewChildProfile(userID int64, childName string) *ChildProfile {
	return &ChildProfile{
		UserID:    userID,
		ChildName: childName,
		CreatedAt: time.Now(),
	}
}

// BelongsTo 检查档案是否属于指定用户
func (p *ChildProfile) BelongsTo(userID int64) bool {
	return p != nil && p.UserID == userID
}

// NormalizeChildName 去除名称首尾空白
func NormalizeChildName(name string) string {
	return strings.TrimSpace(name)
}
