package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
)

// VendorRepository 供应商数据访问接口
type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	GetByID(ctx context.Context, id string) (*model.Vendor, error)
	List(ctx context.Context, vendorType string, offset, limit int) ([]model.Vendor, int64, error)
	Update(ctx context.Context, vendor *model.Vendor) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type vendorRepo struct {
	db *gorm.DB
}

// NewVendorRepo 创建 VendorRepository 实例
func NewVendorRepo(db *gorm.DB) VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, vendor *model.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepo) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	var vendor model.Vendor
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", id).
		First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepo) List(ctx context.Context, vendorType string, offset, limit int) ([]model.Vendor, int64, error) {
	var items []model.Vendor
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Vendor{})
	if vendorType != "" {
		db = db.Where("type = ?", vendorType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&items).Error
	return items, total, err
}

func (r *vendorRepo) Update(ctx context.Context, vendor *model.Vendor) error {
	oldVersion := vendor.Version
	result := r.db.WithContext(ctx).
		Model(vendor).
		Where("vendor_id = ? AND version = ?", vendor.VendorID, oldVersion).
		Updates(map[string]interface{}{
			"name":         vendor.Name,
			"type":         vendor.Type,
			"contact_name": vendor.ContactName,
			"email":        vendor.Email,
			"phone":        vendor.Phone,
			"active":       vendor.Active,
			"updated_by":   vendor.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	vendor.Version = oldVersion + 1
	return nil
}

func (r *vendorRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Vendor{}).
		Where("vendor_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
