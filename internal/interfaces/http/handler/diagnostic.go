// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/infrastructure/llm"
	"bedtime-story-api/internal/infrastructure/persistence/redis"
	"bedtime-story-api/internal/interfaces/http/dto"
	"bedtime-story-api/pkg/logger"
)

const (
	modelsCachePrefix = "anthropic_models"
	modelsRawLimit    = 2000

	// DemoStoryText 种子故事正文
	DemoStoryText = "Bu bir test masalıdır."
)

// DiagnosticHandler 诊断与种子数据处理器
type DiagnosticHandler struct {
	client  *llm.AnthropicClient
	cache   *redis.Cache
	ttl     time.Duration
	users   repository.UserRepository
	stories repository.StoryRepository
	tx      repository.Transactor
}

// NewDiagnosticHandler 创建诊断处理器，cache 可为空
func NewDiagnosticHandler(
	client *llm.AnthropicClient,
	cache *redis.Cache,
	users repository.UserRepository,
	stories repository.StoryRepository,
	tx repository.Transactor,
) *DiagnosticHandler {
	return &DiagnosticHandler{
		client:  client,
		cache:   cache,
		ttl:     client.Config().ModelsCacheTTL,
		users:   users,
		stories: stories,
		tx:      tx,
	}
}

// upstreamSnapshot 可缓存的上游响应
type upstreamSnapshot struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// AnthropicModels 代理上游模型列表
// @Summary 可用模型列表（诊断）
// @Tags Diagnostics
// @Produce json
// @Router /anthropic-models [get]
func (h *DiagnosticHandler) AnthropicModels(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.client.HasAPIKey() {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": llm.ErrMissingAPIKey.Error()})
		return
	}

	payload, err := h.cache.GetOrLoad(ctx, modelsCachePrefix, "list", h.ttl, h.loadModels)
	if err != nil {
		logger.Error(ctx, "failed to list anthropic models", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	var snap upstreamSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	var data any
	if err := json.Unmarshal(snap.Body, &data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"status":  snap.Status,
			"raw":     llm.Snippet(snap.Body, modelsRawLimit),
		})
		return
	}

	ok := snap.Status >= 200 && snap.Status < 300
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"success": ok, "status": snap.Status, "data": data})
}

// loadModels 仅缓存成功且为 JSON 的上游响应
func (h *DiagnosticHandler) loadModels(ctx context.Context) ([]byte, bool, error) {
	raw, err := h.client.ListModels(ctx)
	if err != nil {
		return nil, false, err
	}
	payload, err := json.Marshal(upstreamSnapshot{Status: raw.StatusCode, Body: raw.Body})
	if err != nil {
		return nil, false, err
	}
	return payload, raw.OK() && json.Valid(raw.Body), nil
}

// TestCreate 创建一次性测试用户与故事
// @Summary 创建测试数据（诊断）
// @Tags Diagnostics
// @Produce json
// @Router /test-create [get]
func (h *DiagnosticHandler) TestCreate(c *gin.Context) {
	ctx := c.Request.Context()
	uid := uuid.NewString()[:8]

	var (
		user  *entity.User
		story *entity.Story
	)
	err := h.tx.WithTransaction(ctx, func(ctx context.Context) error {
		user = entity.NewUser(fmt.Sprintf("test+%s@masallarlabuyu.com", uid))
		if err := h.users.Create(ctx, user); err != nil {
			return err
		}

		story = &entity.Story{
			StoryID:   "demo-" + uid,
			UserID:    user.ID,
			Title:     entity.StoryFallbackTitle,
			StoryText: DemoStoryText,
			ImageURLs: entity.URLList{},
			CreatedAt: time.Now(),
		}
		return h.stories.Create(ctx, story)
	})
	if err != nil {
		logger.Error(ctx, "test-create failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"uid":     uid,
		"user":    user,
		"story":   dto.ToStoryResponse(story),
	})
}
