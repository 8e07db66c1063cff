//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"bedtime-story-api/internal/application/profile"
	"bedtime-story-api/internal/application/quota"
	"bedtime-story-api/internal/application/story"
	"bedtime-story-api/internal/config"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/domain/service"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
	"bedtime-story-api/internal/infrastructure/persistence/redis"
	"bedtime-story-api/internal/interfaces/http/handler"
	"bedtime-story-api/internal/interfaces/http/router"
)

// InitializeDataLayer 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		LLMSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewChildProfileRepository,
	postgres.NewStoryRepository,
	postgres.NewLLMUsageEventRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.ChildProfileRepository), new(*postgres.ChildProfileRepository)),
	wire.Bind(new(repository.StoryRepository), new(*postgres.StoryRepository)),
	wire.Bind(new(repository.LLMUsageEventRepository), new(*postgres.LLMUsageEventRepository)),
)

// RedisSet 可选 Redis 缓存
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	redis.NewCache,
)

// LLMSet 上游模型客户端
var LLMSet = wire.NewSet(
	ProvideAnthropicClient,
	story.NewAnthropicGenerator,
	wire.Bind(new(story.Generator), new(*story.AnthropicGenerator)),
)

// ServiceSet 应用服务
var ServiceSet = wire.NewSet(
	quota.NewLLMUsageRecorder,
	wire.Bind(new(service.LLMUsageRecorder), new(*quota.LLMUsageRecorder)),
	profile.NewService,
	wire.Bind(new(story.ChildProfileResolver), new(*profile.Service)),
	ProvideStoryEventPublisher,
	ProvideStoryService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewChildProfileHandler,
	handler.NewStoryHandler,
	handler.NewDiagnosticHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
