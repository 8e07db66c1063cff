// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"bedtime-story-api/internal/domain/entity"
)

// LLMUsageEventRepository 用量流水仓储，只追加
type LLMUsageEventRepository struct {
	client *Client
}

// NewLLMUsageEventRepository 创建用量流水仓储
func NewLLMUsageEventRepository(client *Client) *LLMUsageEventRepository {
	return &LLMUsageEventRepository{client: client}
}

// Create 追加一条用量记录
func (r *LLMUsageEventRepository) Create(ctx context.Context, event *entity.LLMUsageEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", event.UserID),
		attribute.String("llm.model", event.Model),
		attribute.Int("llm.total_tokens", event.TotalTokens()),
	)

	if err := getDB(ctx, r.client.db).Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record llm usage for user %d: %w", event.UserID, err)
	}
	return nil
}
