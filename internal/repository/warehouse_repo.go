package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
)

// WarehouseRepository 仓库数据访问接口
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *model.Warehouse) error
	GetByID(ctx context.Context, id string) (*model.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*model.Warehouse, error)
	List(ctx context.Context) ([]model.Warehouse, error)
	ListActive(ctx context.Context) ([]model.Warehouse, error)
	Update(ctx context.Context, warehouse *model.Warehouse) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type warehouseRepo struct {
	db *gorm.DB
}

// NewWarehouseRepo 创建 WarehouseRepository 实例
func NewWarehouseRepo(db *gorm.DB) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, warehouse *model.Warehouse) error {
	return r.db.WithContext(ctx).Create(warehouse).Error
}

func (r *warehouseRepo) GetByID(ctx context.Context, id string) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", id).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepo) GetByCode(ctx context.Context, code string) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) ListActive(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) Update(ctx context.Context, warehouse *model.Warehouse) error {
	oldVersion := warehouse.Version
	result := r.db.WithContext(ctx).
		Model(warehouse).
		Where("warehouse_id = ? AND version = ?", warehouse.WarehouseID, oldVersion).
		Updates(map[string]interface{}{
			"name":       warehouse.Name,
			"code":       warehouse.Code,
			"address":    warehouse.Address,
			"timezone":   warehouse.Timezone,
			"active":     warehouse.Active,
			"updated_by": warehouse.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	warehouse.Version = oldVersion + 1
	return nil
}

func (r *warehouseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Warehouse{}).
		Where("warehouse_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
