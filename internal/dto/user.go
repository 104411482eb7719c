package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	Role        string `form:"role"         binding:"omitempty,oneof=admin manager supervisor technician inventory_clerk viewer"`
}

// UpdateUserRequest 更新用户信息请求（管理端）
type UpdateUserRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=2,max=50"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	WarehouseID *string `json:"warehouse_id" binding:"omitempty,uuid"`
	Active      *bool   `json:"active"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager supervisor technician inventory_clerk viewer"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
