package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bedtime-story-api/internal/domain/service"
)

var tracer = otel.Tracer("messaging")

const defaultMaxLen = 100000

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type": msg.Type,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishStoryEvent 发布故事生命周期事件
func (p *Producer) PublishStoryEvent(ctx context.Context, ev service.StoryEvent) error {
	msg, err := NewMessage(ev.StoryID, string(ev.Type), StoryEventMessage{
		StoryID:        ev.StoryID,
		UserID:         ev.UserID,
		ChildProfileID: ev.ChildProfileID,
		Language:       ev.Language,
		Title:          ev.Title,
		WordCount:      ev.WordCount,
		Model:          ev.Model,
		Error:          ev.Error,
	})
	if err != nil {
		return err
	}
	msg.SetMetadata("user_id", fmt.Sprintf("%d", ev.UserID))

	_, err = p.Publish(ctx, StreamStoryEvents, msg)
	return err
}
