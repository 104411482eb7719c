package dto

// ── 备件模块 DTO ──

// CreatePartRequest 创建备件请求
type CreatePartRequest struct {
	PartNumber   string  `json:"part_number"   binding:"required,min=1,max=50"`
	WarehouseID  string  `json:"warehouse_id"  binding:"required,uuid"`
	Name         string  `json:"name"          binding:"required,min=1,max=100"`
	Description  string  `json:"description"   binding:"omitempty,max=2000"`
	StockLevel   int     `json:"stock_level"   binding:"omitempty,min=0"`
	ReorderPoint int     `json:"reorder_point" binding:"omitempty,min=0"`
	UnitCost     float64 `json:"unit_cost"     binding:"omitempty,min=0"`
	VendorID     *string `json:"vendor_id"     binding:"omitempty,uuid"`
}

// UpdatePartRequest 更新备件请求
type UpdatePartRequest struct {
	PartNumber   *string  `json:"part_number"   binding:"omitempty,min=1,max=50"`
	Name         *string  `json:"name"          binding:"omitempty,min=1,max=100"`
	Description  *string  `json:"description"   binding:"omitempty,max=2000"`
	ReorderPoint *int     `json:"reorder_point" binding:"omitempty,min=0"`
	UnitCost     *float64 `json:"unit_cost"     binding:"omitempty,min=0"`
	VendorID     *string  `json:"vendor_id"     binding:"omitempty,uuid"`
	Active       *bool    `json:"active"`
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta       int     `json:"delta"         binding:"required"`
	Reason      string  `json:"reason"        binding:"required,oneof=receipt issue adjustment wo_consumption"`
	WorkOrderID *string `json:"work_order_id" binding:"omitempty,uuid"` // reason=wo_consumption 时必填
	Note        *string `json:"note"          binding:"omitempty,max=255"`
}

// PartListRequest 备件列表查询参数
type PartListRequest struct {
	PaginationRequest
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	VendorID    string `form:"vendor_id"    binding:"omitempty,uuid"`
	Keyword     string `form:"keyword"      binding:"omitempty,max=50"`
	BelowStock  bool   `form:"below_stock"`
}

// PartResponse 备件信息响应
type PartResponse struct {
	ID           string  `json:"id"`
	PartNumber   string  `json:"part_number"`
	WarehouseID  string  `json:"warehouse_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	StockLevel   int     `json:"stock_level"`
	ReorderPoint int     `json:"reorder_point"`
	UnitCost     float64 `json:"unit_cost"`
	VendorID     *string `json:"vendor_id,omitempty"`
	VendorName   string  `json:"vendor_name,omitempty"`
	Active       bool    `json:"active"`
	Version      int     `json:"version"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// StockMovementResponse 库存流水响应
type StockMovementResponse struct {
	ID             string  `json:"id"`
	PartID         string  `json:"part_id"`
	Delta          int     `json:"delta"`
	Reason         string  `json:"reason"`
	WorkOrderID    *string `json:"work_order_id,omitempty"`
	ResultingLevel int     `json:"resulting_level"`
	Note           *string `json:"note,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
