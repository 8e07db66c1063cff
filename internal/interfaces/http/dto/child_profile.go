// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bedtime-story-api/internal/domain/entity"
)

// CreateChildProfileRequest 创建孩子档案请求
type CreateChildProfileRequest struct {
	UserID    *Int    `json:"userId" validate:"required,gt=0"`
	ChildName *string `json:"childName" validate:"required,min=1,max=40"`
}

// Normalize 去除名称首尾空白（在校验之前执行）
func (r *CreateChildProfileRequest) Normalize() {
	if r.ChildName != nil {
		name := entity.NormalizeChildName(*r.ChildName)
		r.ChildName = &name
	}
}

// ChildProfileResponse 孩子档案
type ChildProfileResponse struct {
	ID        int64     `json:"id"`
	ChildName string    `json:"childName"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChildProfileSummary 故事列表中的档案摘要
type ChildProfileSummary struct {
	ID        int64  `json:"id"`
	ChildName string `json:"childName"`
}

// ChildProfileListResponse 档案列表响应
type ChildProfileListResponse struct {
	Success bool                    `json:"success"`
	Items   []*ChildProfileResponse `json:"items"`
}

// ChildProfileCreateResponse 创建档案响应
type ChildProfileCreateResponse struct {
	Success bool                  `json:"success"`
	Item    *ChildProfileResponse `json:"item"`
	Created bool                  `json:"created"`
}

// ToChildProfileResponse 转换档案实体
func ToChildProfileResponse(p *entity.ChildProfile) *ChildProfileResponse {
	if p == nil {
		return nil
	}
	return &ChildProfileResponse{
		ID:        p.ID,
		ChildName: p.ChildName,
		CreatedAt: p.CreatedAt,
	}
}

// ToChildProfileResponses 转换档案列表
func ToChildProfileResponses(items []*entity.ChildProfile) []*ChildProfileResponse {
	out := make([]*ChildProfileResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToChildProfileResponse(p))
	}
	return out
}
