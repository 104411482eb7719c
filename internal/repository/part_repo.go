package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
)

// PartFilter 备件列表查询条件
type PartFilter struct {
	WarehouseID string
	VendorID    string
	Keyword     string // 模糊匹配 part_number / name
	BelowStock  bool   // 仅返回库存低于再订货点的备件
}

// PartRepository 备件数据访问接口
type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	GetByID(ctx context.Context, id string) (*model.Part, error)
	GetByPartNumber(ctx context.Context, warehouseID, partNumber string) (*model.Part, error)
	List(ctx context.Context, filter PartFilter, offset, limit int) ([]model.Part, int64, error)
	Update(ctx context.Context, part *model.Part) error
	// UpdateStockLevel 以乐观锁方式仅更新库存量
	UpdateStockLevel(ctx context.Context, part *model.Part, newLevel int) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type partRepo struct {
	db *gorm.DB
}

// NewPartRepo 创建 PartRepository 实例
func NewPartRepo(db *gorm.DB) PartRepository {
	return &partRepo{db: db}
}

func (r *partRepo) Create(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *partRepo) GetByID(ctx context.Context, id string) (*model.Part, error) {
	var part model.Part
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("part_id = ?", id).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepo) GetByPartNumber(ctx context.Context, warehouseID, partNumber string) (*model.Part, error) {
	var part model.Part
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND part_number = ?", warehouseID, partNumber).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepo) List(ctx context.Context, filter PartFilter, offset, limit int) ([]model.Part, int64, error) {
	var items []model.Part
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Part{})
	if filter.WarehouseID != "" {
		db = db.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.VendorID != "" {
		db = db.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("part_number ILIKE ? OR name ILIKE ?", like, like)
	}
	if filter.BelowStock {
		db = db.Where("stock_level < reorder_point")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Vendor").
		Offset(offset).Limit(limit).
		Order("part_number ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *partRepo) Update(ctx context.Context, part *model.Part) error {
	oldVersion := part.Version
	result := r.db.WithContext(ctx).
		Model(part).
		Where("part_id = ? AND version = ?", part.PartID, oldVersion).
		Updates(map[string]interface{}{
			"part_number":   part.PartNumber,
			"name":          part.Name,
			"description":   part.Description,
			"reorder_point": part.ReorderPoint,
			"unit_cost":     part.UnitCost,
			"vendor_id":     part.VendorID,
			"active":        part.Active,
			"updated_by":    part.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	part.Version = oldVersion + 1
	return nil
}

func (r *partRepo) UpdateStockLevel(ctx context.Context, part *model.Part, newLevel int) error {
	oldVersion := part.Version
	result := r.db.WithContext(ctx).
		Model(part).
		Where("part_id = ? AND version = ?", part.PartID, oldVersion).
		Updates(map[string]interface{}{
			"stock_level": newLevel,
			"updated_by":  part.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	part.StockLevel = newLevel
	part.Version = oldVersion + 1
	return nil
}

func (r *partRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Part{}).
		Where("part_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ── StockMovement Repository ──

// StockMovementRepository 库存流水数据访问接口（只追加）
type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	ListByPart(ctx context.Context, partID string, offset, limit int) ([]model.StockMovement, int64, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

// NewStockMovementRepo 创建 StockMovementRepository 实例
func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *stockMovementRepo) ListByPart(ctx context.Context, partID string, offset, limit int) ([]model.StockMovement, int64, error) {
	var items []model.StockMovement
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("part_id = ?", partID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&items).Error
	return items, total, err
}
