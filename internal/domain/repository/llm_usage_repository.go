// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bedtime-story-api/internal/domain/entity"
)

// LLMUsageEventRepository 生成用量流水
type LLMUsageEventRepository interface {
	// Create 写入一条用量记录
	Create(ctx context.Context, event *entity.LLMUsageEvent) error
}
