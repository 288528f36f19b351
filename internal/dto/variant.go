package dto

import "time"

// CreateVariantRequest 新建空方案请求
type CreateVariantRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// SaveVariantRequest 将当前计划保存为方案请求
type SaveVariantRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// VariantResponse 方案信息
type VariantResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TotalCredits int       `json:"total_credits"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoadVariantResponse 方案载入当前计划响应
type LoadVariantResponse struct {
	VariantID    string `json:"variant_id"`
	TotalCredits int    `json:"total_credits"`
}
