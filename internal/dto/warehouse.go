package dto

// ── 仓库模块 DTO ──

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Code     string `json:"code"     binding:"required,min=2,max=20"`
	Address  string `json:"address"  binding:"omitempty,max=255"`
	Timezone string `json:"timezone" binding:"omitempty,max=50"`
}

// UpdateWarehouseRequest 更新仓库请求
type UpdateWarehouseRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Code     *string `json:"code"     binding:"omitempty,min=2,max=20"`
	Address  *string `json:"address"  binding:"omitempty,max=255"`
	Timezone *string `json:"timezone" binding:"omitempty,max=50"`
	Active   *bool   `json:"active"`
}

// WarehouseResponse 仓库信息响应
type WarehouseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address,omitempty"`
	Timezone  string `json:"timezone"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
