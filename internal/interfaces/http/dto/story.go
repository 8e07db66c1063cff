// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bedtime-story-api/internal/application/story"
	"bedtime-story-api/internal/domain/entity"
)

// CreateStoryRequest 创建故事请求
type CreateStoryRequest struct {
	UserID         *Int    `json:"userId" validate:"required,gt=0"`
	Theme          *string `json:"theme"`
	Age            *Int    `json:"age" validate:"omitempty,min=1,max=18"`
	Language       *string `json:"language" validate:"omitempty,oneof=tr en"`
	LengthSec      *Int    `json:"lengthSec" validate:"omitempty,min=30,max=300"`
	ChildProfileID *Int    `json:"childProfileId" validate:"omitempty,gt=0"`
	ChildName      *string `json:"childName" validate:"omitempty,min=1,max=40"`
}

// ToInput 转换为应用层输入，缺省字段使用默认值
func (r *CreateStoryRequest) ToInput() story.CreateStoryInput {
	in := story.CreateStoryInput{
		UserID:         r.UserID.Int64(),
		Age:            story.DefaultAge,
		Language:       story.DefaultLanguage,
		LengthSec:      story.DefaultLengthSec,
		ChildProfileID: int64Ptr(r.ChildProfileID),
		ChildName:      r.ChildName,
	}
	if r.Theme != nil {
		in.Theme = *r.Theme
	}
	if r.Age != nil {
		in.Age = int(*r.Age)
	}
	if r.Language != nil {
		in.Language = story.Language(*r.Language)
	}
	if r.LengthSec != nil {
		in.LengthSec = int(*r.LengthSec)
	}
	return in
}

// StoryResponse 故事详情
type StoryResponse struct {
	ID             int64     `json:"id"`
	StoryID        string    `json:"storyId"`
	UserID         int64     `json:"userId"`
	ChildProfileID *int64    `json:"childProfileId"`
	VoiceProfileID *int64    `json:"voiceProfileId"`
	Title          string    `json:"title"`
	StoryText      string    `json:"storyText"`
	AudioURL       *string   `json:"audioUrl"`
	ImageURLs      []string  `json:"imageUrls"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StoryListItem 故事列表项
type StoryListItem struct {
	ID             int64                `json:"id"`
	StoryID        string               `json:"storyId"`
	Title          string               `json:"title"`
	StoryText      string               `json:"storyText"`
	CreatedAt      time.Time            `json:"createdAt"`
	ChildProfileID *int64               `json:"childProfileId"`
	VoiceProfileID *int64               `json:"voiceProfileId"`
	AudioURL       *string              `json:"audioUrl"`
	ImageURLs      []string             `json:"imageUrls"`
	ChildProfile   *ChildProfileSummary `json:"childProfile"`
}

// StoryCreateResponse 创建故事响应
type StoryCreateResponse struct {
	Success bool           `json:"success"`
	Story   *StoryResponse `json:"story"`
}

// StoryListResponse 故事列表响应
type StoryListResponse struct {
	Success bool             `json:"success"`
	Items   []*StoryListItem `json:"items"`
}

func imageURLs(l entity.URLList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// ToStoryResponse 转换故事实体
func ToStoryResponse(s *entity.Story) *StoryResponse {
	return &StoryResponse{
		ID:             s.ID,
		StoryID:        s.StoryID,
		UserID:         s.UserID,
		ChildProfileID: s.ChildProfileID,
		VoiceProfileID: s.VoiceProfileID,
		Title:          s.Title,
		StoryText:      s.StoryText,
		AudioURL:       s.AudioURL,
		ImageURLs:      imageURLs(s.ImageURLs),
		CreatedAt:      s.CreatedAt,
	}
}

// ToStoryListItems 转换故事列表
func ToStoryListItems(stories []*entity.Story) []*StoryListItem {
	out := make([]*StoryListItem, 0, len(stories))
	for _, s := range stories {
		item := &StoryListItem{
			ID:             s.ID,
			StoryID:        s.StoryID,
			Title:          s.Title,
			StoryText:      s.StoryText,
			CreatedAt:      s.CreatedAt,
			ChildProfileID: s.ChildProfileID,
			VoiceProfileID: s.VoiceProfileID,
			AudioURL:       s.AudioURL,
			ImageURLs:      imageURLs(s.ImageURLs),
		}
		if s.ChildProfile != nil {
			item.ChildProfile = &ChildProfileSummary{ID: s.ChildProfile.ID, ChildName: s.ChildProfile.ChildName}
		}
		out = append(out, item)
	}
	return out
}
