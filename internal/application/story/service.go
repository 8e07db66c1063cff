// Package story 提供睡前故事生成的应用服务
package story

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/domain/service"
	apperrors "bedtime-story-api/pkg/errors"
	"bedtime-story-api/pkg/logger"
	"bedtime-story-api/pkg/metrics"
)

// MsgGenerationFailed 生成流程失败时的对外消息
const MsgGenerationFailed = "Story generation failed"

// ChildProfileResolver 按名称查找或创建孩子档案
type ChildProfileResolver interface {
	FindOrCreate(ctx context.Context, userID int64, childName string) (*entity.ChildProfile, bool, error)
}

// CreateStoryInput 创建故事的输入（已通过校验）
type CreateStoryInput struct {
	UserID         int64
	Theme          string
	Age            int
	Language       Language
	LengthSec      int
	ChildProfileID *int64
	ChildName      *string
}

func (in CreateStoryInput) withDefaults() CreateStoryInput {
	if in.Age == 0 {
		in.Age = DefaultAge
	}
	if in.LengthSec == 0 {
		in.LengthSec = DefaultLengthSec
	}
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	return in
}

// Service 故事服务
type Service struct {
	users     repository.UserRepository
	profiles  repository.ChildProfileRepository
	stories   repository.StoryRepository
	resolver  ChildProfileResolver
	generator Generator
	usage     service.LLMUsageRecorder
	events    service.StoryEventPublisher
}

// NewService 创建故事服务
func NewService(
	users repository.UserRepository,
	profiles repository.ChildProfileRepository,
	stories repository.StoryRepository,
	resolver ChildProfileResolver,
	generator Generator,
	usage service.LLMUsageRecorder,
) *Service {
	return &Service{
		users:     users,
		profiles:  profiles,
		stories:   stories,
		resolver:  resolver,
		generator: generator,
		usage:     usage,
	}
}

// WithEvents 设置故事事件发布器，nil 表示不发布
func (s *Service) WithEvents(events service.StoryEventPublisher) *Service {
	s.events = events
	return s
}

// ListByUser 列出用户最近的故事
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*entity.Story, error) {
	return s.stories.ListByUser(ctx, userID, repository.DefaultStoryListLimit)
}

// CreateStory 先写入占位记录，再调用生成器并原地更新
// 占位写入之后的任何失败都会尝试把正文标记为失败
func (s *Service) CreateStory(ctx context.Context, in CreateStoryInput) (*entity.Story, error) {
	in = in.withDefaults()

	ctx, span := tracer.Start(ctx, "story.Service.CreateStory")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("story.user_id", in.UserID),
		attribute.String("story.language", string(in.Language)),
		attribute.Int("story.length_sec", in.LengthSec),
	)

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, generationFailed(err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeUserNotFound, "User not found")
	}
	ctx = logger.WithContext(ctx, logger.UserIDKey, user.ID)

	child, err := s.resolveChild(ctx, user.ID, in)
	if err != nil {
		return nil, err
	}

	var childID *int64
	var characterName string
	if child != nil {
		childID = &child.ID
		characterName = child.ChildName
	}

	placeholder := entity.NewPlaceholderStory(user.ID, childID)
	if err := s.stories.Create(ctx, placeholder); err != nil {
		return nil, generationFailed(err)
	}
	ctx = logger.WithContext(ctx, logger.StoryIDKey, placeholder.StoryID)
	span.SetAttributes(attribute.String("story.story_id", placeholder.StoryID))

	// 生成与后续更新不随客户端断开而取消
	ctx = context.WithoutCancel(ctx)

	prompt := BuildPrompt(PromptParams{
		Theme:         in.Theme,
		Age:           in.Age,
		LengthSec:     in.LengthSec,
		Language:      in.Language,
		CharacterName: characterName,
	})

	start := time.Now()
	gen, err := s.generator.Generate(ctx, prompt)
	metrics.StoryGenerationDuration.WithLabelValues(string(in.Language)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, s.fail(ctx, placeholder, in.Language, err)
	}

	title, body := SplitTitleAndBody(gen.Text)
	updated, err := s.stories.UpdateContent(ctx, placeholder.ID, title, body)
	if err != nil {
		span.RecordError(err)
		return nil, s.fail(ctx, placeholder, in.Language, err)
	}

	s.recordUsage(ctx, user.ID, updated.ID, gen)
	metrics.StoryGenerationTotal.WithLabelValues(string(in.Language), "success").Inc()
	metrics.StoryWordCount.WithLabelValues(string(in.Language)).Observe(float64(updated.WordCount()))
	s.publish(ctx, service.StoryEvent{
		Type:           service.StoryEventGenerated,
		StoryID:        updated.StoryID,
		UserID:         user.ID,
		ChildProfileID: updated.ChildProfileID,
		Language:       string(in.Language),
		Title:          updated.Title,
		WordCount:      updated.WordCount(),
		Model:          gen.Model,
	})

	logger.Info(ctx, "story generated",
		"title", updated.Title,
		"words", updated.WordCount(),
		"duration_ms", gen.Duration.Milliseconds(),
	)
	return updated, nil
}

// resolveChild 显式 ID 必须属于该用户；否则按名称查找或创建；都未提供时返回 nil
func (s *Service) resolveChild(ctx context.Context, userID int64, in CreateStoryInput) (*entity.ChildProfile, error) {
	if in.ChildProfileID != nil {
		child, err := s.profiles.GetByID(ctx, *in.ChildProfileID)
		if err != nil {
			return nil, generationFailed(err)
		}
		if !child.BelongsTo(userID) {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "Child profile not found")
		}
		return child, nil
	}

	if in.ChildName != nil && *in.ChildName != "" {
		child, _, err := s.resolver.FindOrCreate(ctx, userID, *in.ChildName)
		if err != nil {
			return nil, generationFailed(err)
		}
		return child, nil
	}
	return nil, nil
}

// fail 写入失败标记（失败仅记录日志）并返回生成失败错误
func (s *Service) fail(ctx context.Context, placeholder *entity.Story, lang Language, cause error) error {
	metrics.StoryGenerationTotal.WithLabelValues(string(lang), "failed").Inc()
	logger.Error(ctx, "story generation failed", cause)

	appErr := generationFailed(cause)
	defer s.publish(ctx, service.StoryEvent{
		Type:           service.StoryEventFailed,
		StoryID:        placeholder.StoryID,
		UserID:         placeholder.UserID,
		ChildProfileID: placeholder.ChildProfileID,
		Language:       string(lang),
		Error:          fmt.Sprint(appErr.Details),
	})

	if err := s.stories.UpdateStoryText(ctx, placeholder.ID, entity.StoryFailureMarker); err != nil {
		metrics.StoryFailureMarkTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "failed to write failure marker", err)
	} else {
		metrics.StoryFailureMarkTotal.WithLabelValues("success").Inc()
	}
	return appErr
}

func (s *Service) publish(ctx context.Context, ev service.StoryEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStoryEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "failed to publish story event", "type", string(ev.Type), "error", err.Error())
	}
}

func (s *Service) recordUsage(ctx context.Context, userID, storyID int64, gen *Generation) {
	if s.usage == nil {
		return
	}
	err := s.usage.Record(ctx, service.LLMUsageInput{
		UserID:           userID,
		StoryID:          &storyID,
		Provider:         gen.Provider,
		Model:            gen.Model,
		PromptTokens:     gen.PromptTokens,
		CompletionTokens: gen.CompletionTokens,
		DurationMs:       int(gen.Duration.Milliseconds()),
	})
	if err != nil {
		logger.Warn(ctx, "failed to record llm usage", "error", err.Error())
	}
}

// generationFailed 包装为 500 错误，details 携带底层错误描述
func generationFailed(cause error) *apperrors.AppError {
	detail := cause.Error()
	if appErr, ok := cause.(*apperrors.AppError); ok {
		detail = appErr.Message
	}
	return apperrors.Wrap(cause, apperrors.CodeGenerationFailed, MsgGenerationFailed).WithDetails(detail)
}
