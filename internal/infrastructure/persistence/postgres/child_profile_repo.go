// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bedtime-story-api/internal/domain/entity"
)

// ChildProfileRepository 孩子档案仓储实现
type ChildProfileRepository struct {
	client *Client
}

// NewChildProfileRepository 创建孩子档案仓储
func NewChildProfileRepository(client *Client) *ChildProfileRepository {
	return &ChildProfileRepository{client: client}
}

// GetByID 根据 ID 获取档案
func (r *ChildProfileRepository) GetByID(ctx context.Context, id int64) (*entity.ChildProfile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChildProfileRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var profile entity.ChildProfile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get child profile: %w", err)
	}
	return &profile, nil
}

// GetByUserAndName 根据 (用户, 名称) 获取档案
func (r *ChildProfileRepository) GetByUserAndName(ctx context.Context, userID int64, childName string) (*entity.ChildProfile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChildProfileRepository.GetByUserAndName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var profile entity.ChildProfile
	if err := db.Where("user_id = ? AND child_name = ?", userID, childName).
		Order("id ASC").
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get child profile by name: %w", err)
	}
	return &profile, nil
}

// CreateIfAbsent 插入档案，唯一约束冲突时不做任何事
func (r *ChildProfileRepository) CreateIfAbsent(ctx context.Context, profile *entity.ChildProfile) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChildProfileRepository.CreateIfAbsent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "child_name"}},
		DoNothing: true,
	}).Create(profile)
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to create child profile: %w", result.Error)
	}

	created := result.RowsAffected > 0
	span.SetAttributes(attribute.Bool("child_profile.created", created))
	return created, nil
}

// ListByUser 按创建时间倒序列出用户的档案
func (r *ChildProfileRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.ChildProfile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChildProfileRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	profiles := make([]*entity.ChildProfile, 0)
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&profiles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list child profiles: %w", err)
	}
	return profiles, nil
}
