package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
)

// EquipmentFilter 设备列表查询条件
type EquipmentFilter struct {
	WarehouseID string
	Status      string
	Criticality string
	Model       string
	Area        string
	Keyword     string // 模糊匹配 asset_tag / description
}

// EquipmentRepository 设备数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	GetByAssetTag(ctx context.Context, warehouseID, assetTag string) (*model.Equipment, error)
	List(ctx context.Context, filter EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error)
	// ListActiveByWarehouse 仅返回 status=active 的设备，PM 引擎的设备输入源
	ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.Equipment, error)
	CountByWarehouse(ctx context.Context, warehouseID string) (int64, error)
	Update(ctx context.Context, equipment *model.Equipment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, equipment *model.Equipment) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	var equipment model.Equipment
	err := r.db.WithContext(ctx).
		Preload("Warehouse").
		Where("equipment_id = ?", id).
		First(&equipment).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepo) GetByAssetTag(ctx context.Context, warehouseID, assetTag string) (*model.Equipment, error) {
	var equipment model.Equipment
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND asset_tag = ?", warehouseID, assetTag).
		First(&equipment).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepo) List(ctx context.Context, filter EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error) {
	var items []model.Equipment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Equipment{})
	if filter.WarehouseID != "" {
		db = db.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Criticality != "" {
		db = db.Where("criticality = ?", filter.Criticality)
	}
	if filter.Model != "" {
		db = db.Where("model = ?", filter.Model)
	}
	if filter.Area != "" {
		db = db.Where("area = ?", filter.Area)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("asset_tag ILIKE ? OR description ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("asset_tag ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *equipmentRepo) ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.Equipment, error) {
	var items []model.Equipment
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND status = ?", warehouseID, model.EquipmentStatusActive).
		Order("asset_tag ASC").
		Find(&items).Error
	return items, err
}

func (r *equipmentRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("warehouse_id = ?", warehouseID).
		Count(&count).Error
	return count, err
}

func (r *equipmentRepo) Update(ctx context.Context, equipment *model.Equipment) error {
	oldVersion := equipment.Version
	result := r.db.WithContext(ctx).
		Model(equipment).
		Where("equipment_id = ? AND version = ?", equipment.EquipmentID, oldVersion).
		Updates(map[string]interface{}{
			"asset_tag":         equipment.AssetTag,
			"model":             equipment.Model,
			"description":       equipment.Description,
			"area":              equipment.Area,
			"status":            equipment.Status,
			"criticality":       equipment.Criticality,
			"manufacturer":      equipment.Manufacturer,
			"serial_number":     equipment.SerialNumber,
			"installation_date": equipment.InstallationDate,
			"warranty_expiry":   equipment.WarrantyExpiry,
			"updated_by":        equipment.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	equipment.Version = oldVersion + 1
	return nil
}

func (r *equipmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("equipment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
