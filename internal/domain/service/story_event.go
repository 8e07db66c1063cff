package service

import "context"

// StoryEventType 故事生命周期事件类型
type StoryEventType string

const (
	StoryEventGenerated StoryEventType = "story.generated"
	StoryEventFailed    StoryEventType = "story.failed"
)

// StoryEvent 故事生成结束后对外广播的事件
type StoryEvent struct {
	Type           StoryEventType
	StoryID        string
	UserID         int64
	ChildProfileID *int64
	Language       string
	Title          string
	WordCount      int
	Model          string
	Error          string
}

// StoryEventPublisher 发布故事事件，实现方失败不得影响请求结果
type StoryEventPublisher interface {
	PublishStoryEvent(ctx context.Context, ev StoryEvent) error
}
