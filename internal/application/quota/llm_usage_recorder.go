// Package quota 提供 LLM 用量记录
package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/domain/service"
	"bedtime-story-api/pkg/logger"
)

type LLMUsageRecorder struct {
	usageRepo repository.LLMUsageEventRepository
	now       func() time.Time
}

func NewLLMUsageRecorder(usageRepo repository.LLMUsageEventRepository) *LLMUsageRecorder {
	return &LLMUsageRecorder{
		usageRepo: usageRepo,
		now:       time.Now,
	}
}

func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}
	if in.UserID <= 0 {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	evt := &entity.LLMUsageEvent{
		UserID:           in.UserID,
		StoryID:          in.StoryID,
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
		CreatedAt:        r.now(),
	}
	if err := r.usageRepo.Create(ctx, evt); err != nil {
		return err
	}
	logger.Debug(ctx, "llm usage recorded", "model", evt.Model, "total_tokens", evt.TotalTokens())
	return nil
}
