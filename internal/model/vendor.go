package model

// Vendor 供应商/承包商表 — 对应 vendors
type Vendor struct {
	VendorID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"vendor_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Type        string `gorm:"type:varchar(20);not null;default:'supplier'"   json:"type"` // supplier | contractor
	ContactName string `gorm:"type:varchar(100)"                              json:"contact_name,omitempty"`
	Email       string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone       string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Active      bool   `gorm:"not null;default:true"                          json:"active"`
	VersionedModel
}

// TableName 指定表名
func (Vendor) TableName() string { return "vendors" }

// [自证通过] internal/model/vendor.go
