// Package entity 定义领域实体
package entity

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// 故事记录的文本状态
const (
	// StoryPlaceholderText 生成中占位文本（标题与正文）
	StoryPlaceholderText = "GENERATING..."
	// StoryFailureMarker 生成失败后写入正文的标记
	StoryFailureMarker = "FAILED: generation error"
	// StoryFallbackTitle 无法提取标题时使用的默认标题
	StoryFallbackTitle = "Masal"
	// StoryTitleMaxLen 标题最大长度（字符）
	StoryTitleMaxLen = 140
)

// StoryState 故事记录所处的文本状态
type StoryState string

const (
	StoryStateGenerating StoryState = "generating"
	StoryStateReady      StoryState = "ready"
	StoryStateFailed     StoryState = "failed"
)

// URLList 字符串数组，PostgreSQL 下映射为 text[]
type URLList []string

// Value 实现 driver.Valuer
func (l URLList) Value() (driver.Value, error) {
	if l == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(l).Value()
}

// Scan 实现 sql.Scanner
func (l *URLList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = URLList(arr)
	if *l == nil {
		*l = URLList{}
	}
	return nil
}

// GormDBDataType 按方言返回列类型
func (URLList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Story 故事实体
type Story struct {
	ID             int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	StoryID        string        `json:"storyId" gorm:"column:story_id;type:varchar(64);uniqueIndex;not null"`
	UserID         int64         `json:"userId" gorm:"index:idx_stories_user_created,priority:1;not null"`
	ChildProfileID *int64        `json:"childProfileId" gorm:"index"`
	VoiceProfileID *int64        `json:"voiceProfileId"`
	Title          string        `json:"title" gorm:"type:varchar(255);not null;default:''"`
	StoryText      string        `json:"storyText" gorm:"type:text;not null;default:''"`
	AudioURL       *string       `json:"audioUrl" gorm:"column:audio_url;type:text"`
	ImageURLs      URLList       `json:"imageUrls" gorm:"column:image_urls;not null"`
	CreatedAt      time.Time     `json:"createdAt" gorm:"autoCreateTime;index:idx_stories_user_created,priority:2"`
	ChildProfile   *ChildProfile `json:"-" gorm:"foreignKey:ChildProfileID"`
}

// TableName 指定表名
func (Story) TableName() string {
	return "stories"
}

// NewStoryID 生成对外暴露的短 ID（创建后不再变化）
func NewStoryID() string {
	return "st-" + uuid.NewString()[:12]
}

// NewPlaceholderStory 创建生成中的占位故事
func NewPlaceholderStory(userID int64, childProfileID *int64) *Story {
	return &Story{
		StoryID:        NewStoryID(),
		UserID:         userID,
		ChildProfileID: childProfileID,
		VoiceProfileID: nil,
		Title:          StoryPlaceholderText,
		StoryText:      StoryPlaceholderText,
		AudioURL:       nil,
		ImageURLs:      URLList{},
		CreatedAt:      time.Now(),
	}
}

// State 根据文本推断记录状态
func (s *Story) State() StoryState {
	switch {
	case s.StoryText == StoryFailureMarker:
		return StoryStateFailed
	case s.Title == StoryPlaceholderText && s.StoryText == StoryPlaceholderText:
		return StoryStateGenerating
	default:
		return StoryStateReady
	}
}

// WordCount 统计正文词数
func (s *Story) WordCount() int {
	return len(strings.Fields(s.StoryText))
}
