package model

import "time"

// Equipment 设备台账表 — 对应 equipment
type Equipment struct {
	EquipmentID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"       json:"equipment_id"`
	AssetTag         string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_equipment_wh_asset_tag"   json:"asset_tag"`
	WarehouseID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_equipment_wh_asset_tag"          json:"warehouse_id"`
	Model            string     `gorm:"type:varchar(100);not null;index"                     json:"model"`
	Description      string     `gorm:"type:text"                                            json:"description,omitempty"`
	Area             string     `gorm:"type:varchar(100)"                                    json:"area,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'active'"           json:"status"` // active | inactive | maintenance | retired
	Criticality      string     `gorm:"type:varchar(20);not null;default:'medium'"           json:"criticality"` // low | medium | high | critical
	Manufacturer     string     `gorm:"type:varchar(100)"                                    json:"manufacturer,omitempty"`
	SerialNumber     string     `gorm:"type:varchar(100)"                                    json:"serial_number,omitempty"`
	InstallationDate *time.Time `gorm:"type:date"                                            json:"installation_date,omitempty"`
	WarrantyExpiry   *time.Time `gorm:"type:date"                                            json:"warranty_expiry,omitempty"`
	VersionedModel

	// 关联
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID;references:WarehouseID" json:"warehouse,omitempty"`
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// [自证通过] internal/model/equipment.go
