// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
)

// ErrStoryNotFound 待更新的故事记录不存在
var ErrStoryNotFound = errors.New("story not found")

// StoryRepository 故事仓储实现
type StoryRepository struct {
	client *Client
}

// NewStoryRepository 创建故事仓储
func NewStoryRepository(client *Client) *StoryRepository {
	return &StoryRepository{client: client}
}

// Create 创建故事记录
func (r *StoryRepository) Create(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Create",
		trace.WithAttributes(attribute.String("story.story_id", story.StoryID)))
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Omit("ChildProfile").Create(story).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// UpdateContent 原地更新标题与正文
func (r *StoryRepository) UpdateContent(ctx context.Context, id int64, title, storyText string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.UpdateContent",
		trace.WithAttributes(attribute.Int64("story.id", id)))
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Story{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "story_text": storyText})
	if result.Error != nil {
		span.RecordError(result.Error)
		return nil, fmt.Errorf("failed to update story: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("failed to update story %d: %w", id, ErrStoryNotFound)
	}

	var story entity.Story
	if err := db.First(&story, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to reload story: %w", err)
	}
	return &story, nil
}

// UpdateStoryText 仅更新正文
func (r *StoryRepository) UpdateStoryText(ctx context.Context, id int64, storyText string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.UpdateStoryText",
		trace.WithAttributes(attribute.Int64("story.id", id)))
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Story{}).Where("id = ?", id).Update("story_text", storyText)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update story text: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update story text %d: %w", id, ErrStoryNotFound)
	}
	return nil
}

// ListByUser 按创建时间倒序列出用户的故事
func (r *StoryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByUser")
	defer span.End()

	if limit <= 0 || limit > repository.DefaultStoryListLimit {
		limit = repository.DefaultStoryListLimit
	}

	db := getDB(ctx, r.client.db)
	stories := make([]*entity.Story, 0)
	if err := db.Where("user_id = ?", userID).
		Preload("ChildProfile", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "child_name")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}
