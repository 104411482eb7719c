package dto

// ── 设备模块 DTO ──

// CreateEquipmentRequest 创建设备请求
type CreateEquipmentRequest struct {
	AssetTag         string  `json:"asset_tag"         binding:"required,min=1,max=50"`
	WarehouseID      string  `json:"warehouse_id"      binding:"required,uuid"`
	Model            string  `json:"model"             binding:"required,min=1,max=100"`
	Description      string  `json:"description"       binding:"omitempty,max=2000"`
	Area             string  `json:"area"              binding:"omitempty,max=100"`
	Status           string  `json:"status"            binding:"omitempty,oneof=active inactive maintenance retired"`
	Criticality      string  `json:"criticality"       binding:"omitempty,oneof=low medium high critical"`
	Manufacturer     string  `json:"manufacturer"      binding:"omitempty,max=100"`
	SerialNumber     string  `json:"serial_number"     binding:"omitempty,max=100"`
	InstallationDate *string `json:"installation_date" binding:"omitempty"` // YYYY-MM-DD
	WarrantyExpiry   *string `json:"warranty_expiry"   binding:"omitempty"` // YYYY-MM-DD
}

// UpdateEquipmentRequest 更新设备请求
type UpdateEquipmentRequest struct {
	AssetTag         *string `json:"asset_tag"         binding:"omitempty,min=1,max=50"`
	Model            *string `json:"model"             binding:"omitempty,min=1,max=100"`
	Description      *string `json:"description"       binding:"omitempty,max=2000"`
	Area             *string `json:"area"              binding:"omitempty,max=100"`
	Status           *string `json:"status"            binding:"omitempty,oneof=active inactive maintenance retired"`
	Criticality      *string `json:"criticality"       binding:"omitempty,oneof=low medium high critical"`
	Manufacturer     *string `json:"manufacturer"      binding:"omitempty,max=100"`
	SerialNumber     *string `json:"serial_number"     binding:"omitempty,max=100"`
	InstallationDate *string `json:"installation_date" binding:"omitempty"`
	WarrantyExpiry   *string `json:"warranty_expiry"   binding:"omitempty"`
}

// EquipmentListRequest 设备列表查询参数
type EquipmentListRequest struct {
	PaginationRequest
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,oneof=active inactive maintenance retired"`
	Criticality string `form:"criticality"  binding:"omitempty,oneof=low medium high critical"`
	Model       string `form:"model"        binding:"omitempty,max=100"`
	Area        string `form:"area"         binding:"omitempty,max=100"`
	Keyword     string `form:"keyword"      binding:"omitempty,max=50"`
}

// ImportEquipmentError 导入失败的行及原因
type ImportEquipmentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportEquipmentResponse 批量导入结果
type ImportEquipmentResponse struct {
	Total   int                    `json:"total"`
	Success int                    `json:"success"`
	Failed  int                    `json:"failed"`
	Errors  []ImportEquipmentError `json:"errors,omitempty"`
}

// EquipmentResponse 设备信息响应
type EquipmentResponse struct {
	ID               string  `json:"id"`
	AssetTag         string  `json:"asset_tag"`
	WarehouseID      string  `json:"warehouse_id"`
	Model            string  `json:"model"`
	Description      string  `json:"description,omitempty"`
	Area             string  `json:"area,omitempty"`
	Status           string  `json:"status"`
	Criticality      string  `json:"criticality"`
	Manufacturer     string  `json:"manufacturer,omitempty"`
	SerialNumber     string  `json:"serial_number,omitempty"`
	InstallationDate *string `json:"installation_date,omitempty"`
	WarrantyExpiry   *string `json:"warranty_expiry,omitempty"`
	Version          int     `json:"version"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
