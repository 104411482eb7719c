package dto

import "encoding/json"

// ── 工单模块 DTO ──

// CreateWorkOrderRequest 手工创建工单请求（CM/紧急，或手工 PM）
type CreateWorkOrderRequest struct {
	EquipmentID  string  `json:"equipment_id"   binding:"required,uuid"`
	Type         string  `json:"type"           binding:"required,oneof=preventive corrective emergency"`
	PMTemplateID *string `json:"pm_template_id" binding:"omitempty,uuid"` // 手工 PM 可关联模板
	Title        string  `json:"title"          binding:"required,min=1,max=200"`
	Description  string  `json:"description"    binding:"omitempty,max=5000"`
	DueDate      string  `json:"due_date"       binding:"required"` // YYYY-MM-DD
	Priority     string  `json:"priority"       binding:"omitempty,oneof=low medium high critical"`
	AssignedTo   *string `json:"assigned_to"    binding:"omitempty,uuid"`
}

// UpdateWorkOrderRequest 更新工单请求
type UpdateWorkOrderRequest struct {
	Title        *string         `json:"title"         binding:"omitempty,min=1,max=200"`
	Description  *string         `json:"description"   binding:"omitempty,max=5000"`
	DueDate      *string         `json:"due_date"      binding:"omitempty"` // YYYY-MM-DD
	Priority     *string         `json:"priority"      binding:"omitempty,oneof=low medium high critical"`
	CustomFields json.RawMessage `json:"custom_fields" binding:"omitempty"`
}

// UpdateWOStatusRequest 工单状态流转请求
type UpdateWOStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new assigned in_progress completed verified closed"`
}

// AssignWORequest 工单指派请求
type AssignWORequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

// WorkOrderListRequest 工单列表查询参数
type WorkOrderListRequest struct {
	PaginationRequest
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	EquipmentID string `form:"equipment_id" binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,oneof=new assigned in_progress completed verified closed"`
	Type        string `form:"type"         binding:"omitempty,oneof=preventive corrective emergency"`
	Priority    string `form:"priority"     binding:"omitempty,oneof=low medium high critical"`
	AssignedTo  string `form:"assigned_to"  binding:"omitempty,uuid"`
	DueFrom     string `form:"due_from"     binding:"omitempty"` // YYYY-MM-DD
	DueTo       string `form:"due_to"       binding:"omitempty"` // YYYY-MM-DD
	Escalated   *bool  `form:"escalated"`
}

// WorkOrderResponse 工单信息响应
type WorkOrderResponse struct {
	ID           string          `json:"id"`
	WONumber     string          `json:"wo_number"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority"`
	EquipmentID  string          `json:"equipment_id"`
	AssetTag     string          `json:"asset_tag,omitempty"`
	PMTemplateID *string         `json:"pm_template_id,omitempty"`
	WarehouseID  string          `json:"warehouse_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	DueDate      string          `json:"due_date"`
	AssignedTo   *string         `json:"assigned_to,omitempty"`
	AssigneeName string          `json:"assignee_name,omitempty"`
	CompletedAt  *string         `json:"completed_at,omitempty"`
	VerifiedAt   *string         `json:"verified_at,omitempty"`
	ClosedAt     *string         `json:"closed_at,omitempty"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"`
	Escalated    bool            `json:"escalated"`
	Version      int             `json:"version"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}
