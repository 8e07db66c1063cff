// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bedtime-story-api/internal/domain/entity"
)

// ChildProfileRepository 孩子档案仓储接口
type ChildProfileRepository interface {
	// GetByID 根据 ID 获取档案，不存在时返回 nil, nil
	GetByID(ctx context.Context, id int64) (*entity.ChildProfile, error)

	// GetByUserAndName 根据 (用户, 名称) 精确查找档案
	GetByUserAndName(ctx context.Context, userID int64, childName string) (*entity.ChildProfile, error)

	// CreateIfAbsent 插入档案；(用户, 名称) 已存在时不插入并返回 false
	CreateIfAbsent(ctx context.Context, profile *entity.ChildProfile) (bool, error)

	// ListByUser 按创建时间倒序列出用户的档案
	ListByUser(ctx context.Context, userID int64) ([]*entity.ChildProfile, error)
}
