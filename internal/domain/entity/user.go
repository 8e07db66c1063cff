// Package entity 定义领域实体
package entity

import (
	"time"
)

// User 用户实体（由外部流程创建，故事流程只引用）
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// NewUser 创建新用户
func NewUser(email string) *User {
	return &User{
		Email:     email,
		CreatedAt: time.Now(),
	}
}
