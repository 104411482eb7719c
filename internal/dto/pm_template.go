package dto

import "encoding/json"

// ── PM 模板模块 DTO ──

// CreatePMTemplateRequest 创建 PM 模板请求
type CreatePMTemplateRequest struct {
	WarehouseID       string          `json:"warehouse_id"        binding:"required,uuid"`
	Model             string          `json:"model"               binding:"required,min=1,max=100"`
	Component         string          `json:"component"           binding:"required,min=1,max=100"`
	Action            string          `json:"action"              binding:"required,min=1,max=255"`
	Frequency         string          `json:"frequency"           binding:"required,oneof=daily weekly monthly quarterly annually"`
	EstimatedMinutes  int             `json:"estimated_minutes"   binding:"omitempty,min=1,max=10080"`
	CustomFieldSchema json.RawMessage `json:"custom_field_schema" binding:"omitempty"`
}

// UpdatePMTemplateRequest 更新 PM 模板请求
type UpdatePMTemplateRequest struct {
	Model             *string         `json:"model"               binding:"omitempty,min=1,max=100"`
	Component         *string         `json:"component"           binding:"omitempty,min=1,max=100"`
	Action            *string         `json:"action"              binding:"omitempty,min=1,max=255"`
	Frequency         *string         `json:"frequency"           binding:"omitempty,oneof=daily weekly monthly quarterly annually"`
	EstimatedMinutes  *int            `json:"estimated_minutes"   binding:"omitempty,min=1,max=10080"`
	CustomFieldSchema json.RawMessage `json:"custom_field_schema" binding:"omitempty"`
	Active            *bool           `json:"active"`
}

// PMTemplateListRequest PM 模板列表查询参数
type PMTemplateListRequest struct {
	PaginationRequest
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	Model       string `form:"model"        binding:"omitempty,max=100"`
	Frequency   string `form:"frequency"    binding:"omitempty,oneof=daily weekly monthly quarterly annually"`
	Active      *bool  `form:"active"`
}

// PMTemplateResponse PM 模板信息响应
type PMTemplateResponse struct {
	ID                string          `json:"id"`
	WarehouseID       string          `json:"warehouse_id"`
	Model             string          `json:"model"`
	Component         string          `json:"component"`
	Action            string          `json:"action"`
	Frequency         string          `json:"frequency"`
	EstimatedMinutes  int             `json:"estimated_minutes"`
	CustomFieldSchema json.RawMessage `json:"custom_field_schema,omitempty"`
	Active            bool            `json:"active"`
	Version           int             `json:"version"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}
