// Package messaging 提供基于 Redis Streams 的事件发布
package messaging

import (
	"encoding/json"
	"time"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(id, msgType string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// Stream 流定义
type Stream string

const (
	StreamStoryEvents Stream = "stream:story:events"
)

// StoryEventMessage 故事事件载荷
type StoryEventMessage struct {
	StoryID        string `json:"story_id"`
	UserID         int64  `json:"user_id"`
	ChildProfileID *int64 `json:"child_profile_id,omitempty"`
	Language       string `json:"language"`
	Title          string `json:"title,omitempty"`
	WordCount      int    `json:"word_count,omitempty"`
	Model          string `json:"model,omitempty"`
	Error          string `json:"error,omitempty"`
}
