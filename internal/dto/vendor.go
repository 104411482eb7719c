package dto

// ── 供应商模块 DTO ──

// CreateVendorRequest 创建供应商请求
type CreateVendorRequest struct {
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	Type        string `json:"type"         binding:"omitempty,oneof=supplier contractor"`
	ContactName string `json:"contact_name" binding:"omitempty,max=100"`
	Email       string `json:"email"        binding:"omitempty,email"`
	Phone       string `json:"phone"        binding:"omitempty,max=30"`
}

// UpdateVendorRequest 更新供应商请求
type UpdateVendorRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=1,max=100"`
	Type        *string `json:"type"         binding:"omitempty,oneof=supplier contractor"`
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Phone       *string `json:"phone"        binding:"omitempty,max=30"`
	Active      *bool   `json:"active"`
}

// VendorListRequest 供应商列表查询参数
type VendorListRequest struct {
	PaginationRequest
	Type string `form:"type" binding:"omitempty,oneof=supplier contractor"`
}

// VendorResponse 供应商信息响应
type VendorResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Active      bool   `json:"active"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
