// Package profile 提供孩子档案的应用服务
package profile

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
	apperrors "bedtime-story-api/pkg/errors"
	"bedtime-story-api/pkg/logger"
)

// Service 孩子档案服务
type Service struct {
	users    repository.UserRepository
	profiles repository.ChildProfileRepository
	group    singleflight.Group
}

// NewService 创建孩子档案服务
func NewService(users repository.UserRepository, profiles repository.ChildProfileRepository) *Service {
	return &Service{users: users, profiles: profiles}
}

type findOrCreateResult struct {
	profile *entity.ChildProfile
	created bool
}

// List 按创建时间倒序列出用户的档案
func (s *Service) List(ctx context.Context, userID int64) ([]*entity.ChildProfile, error) {
	return s.profiles.ListByUser(ctx, userID)
}

// Create 校验用户后按名称查找或创建档案
func (s *Service) Create(ctx context.Context, userID int64, childName string) (*entity.ChildProfile, bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, apperrors.New(apperrors.CodeUserNotFound, "User not found")
	}
	ctx = logger.WithContext(ctx, logger.UserIDKey, user.ID)
	return s.FindOrCreate(ctx, user.ID, childName)
}

// FindOrCreate 按 (用户, 名称) 精确查找档案，不存在时创建
// 同一进程内相同键的并发调用只执行一次
func (s *Service) FindOrCreate(ctx context.Context, userID int64, childName string) (*entity.ChildProfile, bool, error) {
	key := fmt.Sprintf("%d:%s", userID, childName)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.findOrCreate(ctx, userID, childName)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(*findOrCreateResult)
	return res.profile, res.created, nil
}

func (s *Service) findOrCreate(ctx context.Context, userID int64, childName string) (*findOrCreateResult, error) {
	existing, err := s.profiles.GetByUserAndName(ctx, userID, childName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &findOrCreateResult{profile: existing}, nil
	}

	profile := entity.NewChildProfile(userID, childName)
	created, err := s.profiles.CreateIfAbsent(ctx, profile)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info(ctx, "child profile created", "child_profile_id", profile.ID)
		return &findOrCreateResult{profile: profile, created: true}, nil
	}

	// 其他进程抢先插入，读取已存在的记录
	existing, err = s.profiles.GetByUserAndName(ctx, userID, childName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("child profile %q for user %d vanished after conflict", childName, userID)
	}
	return &findOrCreateResult{profile: existing}, nil
}
