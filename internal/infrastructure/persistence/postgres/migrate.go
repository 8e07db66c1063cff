// Package postgres 提供 PostgreSQL 数据库访问层实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bedtime-story-api/internal/domain/entity"
)

// Models 返回需要迁移的全部模型（按依赖顺序）
func Models() []any {
	return []any{
		&entity.User{},
		&entity.ChildProfile{},
		&entity.Story{},
		&entity.LLMUsageEvent{},
	}
}

// AutoMigrate 创建或更新数据表结构
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	ctx, span := tracer.Start(ctx, "postgres.AutoMigrate")
	defer span.End()

	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Migrate 对客户端执行迁移
func (c *Client) Migrate(ctx context.Context) error {
	return AutoMigrate(ctx, c.db)
}
