package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
)

// PMTemplateFilter PM 模板列表查询条件
type PMTemplateFilter struct {
	WarehouseID string
	Model       string
	Frequency   string
	Active      *bool
}

// PMTemplateRepository PM 模板数据访问接口
type PMTemplateRepository interface {
	Create(ctx context.Context, template *model.PMTemplate) error
	GetByID(ctx context.Context, id string) (*model.PMTemplate, error)
	List(ctx context.Context, filter PMTemplateFilter, offset, limit int) ([]model.PMTemplate, int64, error)
	// ListActiveByWarehouse 仅返回 active=true 的模板，PM 引擎的模板输入源
	ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.PMTemplate, error)
	Update(ctx context.Context, template *model.PMTemplate) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type pmTemplateRepo struct {
	db *gorm.DB
}

// NewPMTemplateRepo 创建 PMTemplateRepository 实例
func NewPMTemplateRepo(db *gorm.DB) PMTemplateRepository {
	return &pmTemplateRepo{db: db}
}

func (r *pmTemplateRepo) Create(ctx context.Context, template *model.PMTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *pmTemplateRepo) GetByID(ctx context.Context, id string) (*model.PMTemplate, error) {
	var template model.PMTemplate
	err := r.db.WithContext(ctx).
		Where("pm_template_id = ?", id).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *pmTemplateRepo) List(ctx context.Context, filter PMTemplateFilter, offset, limit int) ([]model.PMTemplate, int64, error) {
	var items []model.PMTemplate
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PMTemplate{})
	if filter.WarehouseID != "" {
		db = db.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Model != "" {
		db = db.Where("model = ?", filter.Model)
	}
	if filter.Frequency != "" {
		db = db.Where("frequency = ?", filter.Frequency)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("model ASC, component ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *pmTemplateRepo) ListActiveByWarehouse(ctx context.Context, warehouseID string) ([]model.PMTemplate, error) {
	var items []model.PMTemplate
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND active = ?", warehouseID, true).
		Order("model ASC, component ASC").
		Find(&items).Error
	return items, err
}

func (r *pmTemplateRepo) Update(ctx context.Context, template *model.PMTemplate) error {
	oldVersion := template.Version
	result := r.db.WithContext(ctx).
		Model(template).
		Where("pm_template_id = ? AND version = ?", template.PMTemplateID, oldVersion).
		Updates(map[string]interface{}{
			"model":               template.Model,
			"component":           template.Component,
			"action":              template.Action,
			"frequency":           template.Frequency,
			"estimated_minutes":   template.EstimatedMinutes,
			"custom_field_schema": template.CustomFieldSchema,
			"active":              template.Active,
			"updated_by":          template.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	template.Version = oldVersion + 1
	return nil
}

func (r *pmTemplateRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.PMTemplate{}).
		Where("pm_template_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
