package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── 仓库模块业务错误 ──

var (
	ErrWarehouseNotFound     = errors.New("仓库不存在")
	ErrWarehouseCodeExists   = errors.New("仓库编码已存在")
	ErrWarehouseHasEquipment = errors.New("仓库下存在设备，无法删除")
)

// WarehouseService 仓库业务接口
type WarehouseService interface {
	Create(ctx context.Context, req *dto.CreateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.WarehouseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type warehouseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWarehouseService 创建 WarehouseService 实例
func NewWarehouseService(repo *repository.Repository, logger *zap.Logger) WarehouseService {
	return &warehouseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *warehouseService) Create(ctx context.Context, req *dto.CreateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error) {
	// 检查编码唯一性
	existing, err := s.repo.Warehouse.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询仓库失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrWarehouseCodeExists
	}

	warehouse := &model.Warehouse{
		Name:     req.Name,
		Code:     req.Code,
		Address:  req.Address,
		Timezone: req.Timezone,
		Active:   true,
	}
	if warehouse.Timezone == "" {
		warehouse.Timezone = "UTC"
	}
	warehouse.CreatedBy = &callerID
	warehouse.UpdatedBy = &callerID

	if err := s.repo.Warehouse.Create(ctx, warehouse); err != nil {
		s.logger.Error("创建仓库失败", zap.Error(err))
		return nil, err
	}

	return toWarehouseResponse(warehouse), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *warehouseService) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := s.repo.Warehouse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toWarehouseResponse(warehouse), nil
}

// ────────────────────── List ──────────────────────

func (s *warehouseService) List(ctx context.Context, includeInactive bool) ([]dto.WarehouseResponse, error) {
	var warehouses []model.Warehouse
	var err error

	if includeInactive {
		warehouses, err = s.repo.Warehouse.List(ctx)
	} else {
		warehouses, err = s.repo.Warehouse.ListActive(ctx)
	}
	if err != nil {
		s.logger.Error("列出仓库失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		result = append(result, *toWarehouseResponse(&warehouses[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *warehouseService) Update(ctx context.Context, id string, req *dto.UpdateWarehouseRequest, callerID string) (*dto.WarehouseResponse, error) {
	warehouse, err := s.repo.Warehouse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新编码，检查唯一性
	if req.Code != nil && *req.Code != warehouse.Code {
		existing, err := s.repo.Warehouse.GetByCode(ctx, *req.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrWarehouseCodeExists
		}
		warehouse.Code = *req.Code
	}

	if req.Name != nil {
		warehouse.Name = *req.Name
	}
	if req.Address != nil {
		warehouse.Address = *req.Address
	}
	if req.Timezone != nil {
		warehouse.Timezone = *req.Timezone
	}
	if req.Active != nil {
		warehouse.Active = *req.Active
	}

	warehouse.UpdatedBy = &callerID

	if err := s.repo.Warehouse.Update(ctx, warehouse); err != nil {
		s.logger.Error("更新仓库失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toWarehouseResponse(warehouse), nil
}

// ────────────────────── Delete ──────────────────────

func (s *warehouseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Warehouse.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 检查仓库下是否有设备
	count, err := s.repo.Equipment.CountByWarehouse(ctx, id)
	if err != nil {
		s.logger.Error("查询仓库设备数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrWarehouseHasEquipment
	}

	if err := s.repo.Warehouse.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除仓库失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toWarehouseResponse(warehouse *model.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        warehouse.WarehouseID,
		Name:      warehouse.Name,
		Code:      warehouse.Code,
		Address:   warehouse.Address,
		Timezone:  warehouse.Timezone,
		Active:    warehouse.Active,
		CreatedAt: warehouse.CreatedAt.Format(time.RFC3339),
		UpdatedAt: warehouse.UpdatedAt.Format(time.RFC3339),
	}
}
