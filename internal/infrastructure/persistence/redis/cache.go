// Package redis 提供 Redis 缓存实现
package redis

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"bedtime-story-api/pkg/logger"
	"bedtime-story-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// Loader 缓存未命中时加载原始数据，cacheable 为 false 时结果不写入缓存
type Loader func(ctx context.Context) (data []byte, cacheable bool, err error)

// Cache 读穿透缓存，client 为空时退化为直接调用 loader
type Cache struct {
	client *Client
	group  singleflight.Group
}

// NewCache 创建缓存服务
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Enabled 是否连接了 Redis
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetOrLoad Read-Through 缓存模式，使用 singleflight 合并并发加载
// Redis 故障时直接回源，不影响调用方
func (c *Cache) GetOrLoad(ctx context.Context, prefix, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if !c.Enabled() || ttl <= 0 {
		data, _, err := load(ctx)
		return data, err
	}

	fullKey := c.client.Key(prefix + ":" + key)
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", fullKey)))
	defer span.End()

	val, err := c.client.Get(ctx, fullKey)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.CacheRequestsTotal.WithLabelValues(prefix, "hit").Inc()
		return val, nil
	case IsNil(err):
		metrics.CacheRequestsTotal.WithLabelValues(prefix, "miss").Inc()
	default:
		span.RecordError(err)
		metrics.CacheRequestsTotal.WithLabelValues(prefix, "error").Inc()
		logger.Warn(ctx, "cache read failed, loading from source", "key", fullKey, "error", err.Error())
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := c.group.Do(fullKey, func() (any, error) {
		data, cacheable, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := c.client.Set(ctx, fullKey, data, ttl); err != nil {
				// 写缓存失败不影响返回结果
				logger.Warn(ctx, "cache write failed", "key", fullKey, "error", err.Error())
			}
		}
		return data, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]byte), nil
}
