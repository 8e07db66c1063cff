// Package entity 定义领域实体
package entity

import "time"

// LLMUsageEvent 单次 LLM 调用用量记录
type LLMUsageEvent struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           int64     `json:"userId" gorm:"index;not null"`
	StoryID          *int64    `json:"storyId" gorm:"index"`
	Provider         string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	TokensPrompt     int       `json:"tokensPrompt" gorm:"not null;default:0"`
	TokensCompletion int       `json:"tokensCompletion" gorm:"not null;default:0"`
	DurationMs       int       `json:"durationMs" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (LLMUsageEvent) TableName() string {
	return "llm_usage_events"
}

// TotalTokens 返回输入与输出 token 之和
func (e *LLMUsageEvent) TotalTokens() int {
	return e.TokensPrompt + e.TokensCompletion
}
