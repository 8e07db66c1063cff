// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bedtime-story-api/internal/domain/entity"
)

// StoryRepository 故事仓储接口
type StoryRepository interface {
	// Create 创建故事记录
	Create(ctx context.Context, story *entity.Story) error

	// UpdateContent 原地更新标题与正文，返回更新后的记录
	UpdateContent(ctx context.Context, id int64, title, storyText string) (*entity.Story, error)

	// UpdateStoryText 仅更新正文（用于写入失败标记）
	UpdateStoryText(ctx context.Context, id int64, storyText string) error

	// ListByUser 按创建时间倒序列出用户的故事（附带孩子档案摘要）
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Story, error)
}
