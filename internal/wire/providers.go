// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"bedtime-story-api/internal/application/story"
	"bedtime-story-api/internal/config"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/domain/service"
	"bedtime-story-api/internal/infrastructure/llm"
	"bedtime-story-api/internal/infrastructure/messaging"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
	"bedtime-story-api/internal/infrastructure/persistence/redis"
	"bedtime-story-api/pkg/logger"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	UserRepo     *postgres.UserRepository
	ProfileRepo  *postgres.ChildProfileRepository
	StoryRepo    *postgres.StoryRepository
	LLMUsageRepo *postgres.LLMUsageEventRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional 提供 Redis 客户端，未启用或不可达时返回 nil（缓存退化为直连上游）
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideAnthropicClient 提供 Anthropic Messages API 客户端
func ProvideAnthropicClient(cfg *config.Config) *llm.AnthropicClient {
	return llm.NewAnthropicClient(&cfg.LLM.Anthropic)
}

// ProvideStoryEventPublisher 提供故事事件发布器，Redis 不可用或未开启时不发布
func ProvideStoryEventPublisher(redisClient *redis.Client, cfg *config.Config) service.StoryEventPublisher {
	if redisClient == nil || !cfg.Messaging.RedisStream.Enabled {
		return nil
	}
	return messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideStoryService 提供故事服务
func ProvideStoryService(
	users repository.UserRepository,
	profiles repository.ChildProfileRepository,
	stories repository.StoryRepository,
	resolver story.ChildProfileResolver,
	generator story.Generator,
	usage service.LLMUsageRecorder,
	events service.StoryEventPublisher,
) *story.Service {
	return story.NewService(users, profiles, stories, resolver, generator, usage).WithEvents(events)
}
