package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── 备件模块业务错误 ──

var (
	ErrPartNotFound        = errors.New("备件不存在")
	ErrPartNumberExists    = errors.New("该仓库下备件编号已存在")
	ErrInsufficientStock   = errors.New("库存不足")
	ErrWorkOrderRequired   = errors.New("工单领用必须关联工单")
	ErrZeroStockAdjustment = errors.New("库存调整量不能为零")
)

// PartService 备件业务接口
type PartService interface {
	Create(ctx context.Context, req *dto.CreatePartRequest, callerID string) (*dto.PartResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PartResponse, error)
	List(ctx context.Context, req *dto.PartListRequest) ([]dto.PartResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdatePartRequest, callerID string) (*dto.PartResponse, error)
	// AdjustStock 调整库存：库存变更与流水写入在同一事务内完成
	AdjustStock(ctx context.Context, id string, req *dto.AdjustStockRequest, callerID string) (*dto.PartResponse, error)
	ListMovements(ctx context.Context, partID string, page *dto.PaginationRequest) ([]dto.StockMovementResponse, int64, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type partService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	transact txFunc
}

// NewPartService 创建 PartService 实例
func NewPartService(repo *repository.Repository, logger *zap.Logger) PartService {
	return &partService{repo: repo, logger: logger, transact: runInTx(repo, logger)}
}

// ────────────────────── Create ──────────────────────

func (s *partService) Create(ctx context.Context, req *dto.CreatePartRequest, callerID string) (*dto.PartResponse, error) {
	// 检查仓库存在
	if _, err := s.repo.Warehouse.GetByID(ctx, req.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	// 检查备件编号在仓库内唯一
	if _, err := s.repo.Part.GetByPartNumber(ctx, req.WarehouseID, req.PartNumber); err == nil {
		return nil, ErrPartNumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 检查供应商存在
	if req.VendorID != nil {
		if _, err := s.repo.Vendor.GetByID(ctx, *req.VendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVendorNotFound
			}
			return nil, err
		}
	}

	part := &model.Part{
		PartNumber:   req.PartNumber,
		WarehouseID:  req.WarehouseID,
		Name:         req.Name,
		Description:  req.Description,
		StockLevel:   req.StockLevel,
		ReorderPoint: req.ReorderPoint,
		UnitCost:     req.UnitCost,
		VendorID:     req.VendorID,
		Active:       true,
	}
	part.CreatedBy = &callerID
	part.UpdatedBy = &callerID

	// 初始库存与入库流水在同一事务内写入
	err := s.transact(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Part.Create(ctx, part); err != nil {
			s.logger.Error("创建备件失败", zap.Error(err))
			return err
		}

		if part.StockLevel > 0 {
			movement := &model.StockMovement{
				PartID:         part.PartID,
				Delta:          part.StockLevel,
				Reason:         model.MovementReceipt,
				ResultingLevel: part.StockLevel,
			}
			movement.CreatedBy = &callerID
			if err := txRepo.StockMovement.Create(ctx, movement); err != nil {
				s.logger.Error("写入初始库存流水失败", zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPartResponse(part), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *partService) GetByID(ctx context.Context, id string) (*dto.PartResponse, error) {
	part, err := s.repo.Part.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		s.logger.Error("查询备件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPartResponse(part), nil
}

// ────────────────────── List ──────────────────────

func (s *partService) List(ctx context.Context, req *dto.PartListRequest) ([]dto.PartResponse, int64, error) {
	filter := repository.PartFilter{
		WarehouseID: req.WarehouseID,
		VendorID:    req.VendorID,
		Keyword:     req.Keyword,
		BelowStock:  req.BelowStock,
	}

	items, total, err := s.repo.Part.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出备件失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PartResponse, 0, len(items))
	for i := range items {
		result = append(result, *toPartResponse(&items[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *partService) Update(ctx context.Context, id string, req *dto.UpdatePartRequest, callerID string) (*dto.PartResponse, error) {
	part, err := s.repo.Part.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		s.logger.Error("查询备件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新编号，检查仓库内唯一性
	if req.PartNumber != nil && *req.PartNumber != part.PartNumber {
		existing, err := s.repo.Part.GetByPartNumber(ctx, part.WarehouseID, *req.PartNumber)
		if err == nil && existing.PartID != id {
			return nil, ErrPartNumberExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		part.PartNumber = *req.PartNumber
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.ReorderPoint != nil {
		part.ReorderPoint = *req.ReorderPoint
	}
	if req.UnitCost != nil {
		part.UnitCost = *req.UnitCost
	}
	if req.VendorID != nil {
		if _, err := s.repo.Vendor.GetByID(ctx, *req.VendorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVendorNotFound
			}
			return nil, err
		}
		part.VendorID = req.VendorID
	}
	if req.Active != nil {
		part.Active = *req.Active
	}

	part.UpdatedBy = &callerID

	if err := s.repo.Part.Update(ctx, part); err != nil {
		s.logger.Error("更新备件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPartResponse(part), nil
}

// ────────────────────── AdjustStock ──────────────────────

func (s *partService) AdjustStock(ctx context.Context, id string, req *dto.AdjustStockRequest, callerID string) (*dto.PartResponse, error) {
	if req.Delta == 0 {
		return nil, ErrZeroStockAdjustment
	}
	if req.Reason == model.MovementWOConsumption {
		if req.WorkOrderID == nil {
			return nil, ErrWorkOrderRequired
		}
		if _, err := s.repo.WorkOrder.GetByID(ctx, *req.WorkOrderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWorkOrderNotFound
			}
			return nil, err
		}
	}

	part, err := s.repo.Part.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		s.logger.Error("查询备件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	newLevel := part.StockLevel + req.Delta
	if newLevel < 0 {
		return nil, ErrInsufficientStock
	}
	oldLevel := part.StockLevel

	// 库存变更与流水写入必须原子：乐观锁冲突时整体回滚由调用方重试
	err = s.transact(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Part.UpdateStockLevel(ctx, part, newLevel); err != nil {
			s.logger.Error("更新库存失败", zap.String("id", id), zap.Error(err))
			return err
		}

		movement := &model.StockMovement{
			PartID:         part.PartID,
			Delta:          req.Delta,
			Reason:         req.Reason,
			WorkOrderID:    req.WorkOrderID,
			ResultingLevel: newLevel,
			Note:           req.Note,
		}
		movement.CreatedBy = &callerID

		if err := txRepo.StockMovement.Create(ctx, movement); err != nil {
			s.logger.Error("写入库存流水失败", zap.String("id", id), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	part.StockLevel = newLevel

	// 跌破再订货点时通知库管（仅在下穿时触发一次）
	if newLevel <= part.ReorderPoint && oldLevel > part.ReorderPoint {
		if err := s.notifyLowStock(ctx, part); err != nil {
			s.logger.Warn("发送低库存通知失败", zap.String("id", id), zap.Error(err))
		}
	}

	return toPartResponse(part), nil
}

// ────────────────────── ListMovements ──────────────────────

func (s *partService) ListMovements(ctx context.Context, partID string, page *dto.PaginationRequest) ([]dto.StockMovementResponse, int64, error) {
	if _, err := s.repo.Part.GetByID(ctx, partID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrPartNotFound
		}
		return nil, 0, err
	}

	movements, total, err := s.repo.StockMovement.ListByPart(ctx, partID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询库存流水失败", zap.String("part_id", partID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		result = append(result, dto.StockMovementResponse{
			ID:             m.MovementID,
			PartID:         m.PartID,
			Delta:          m.Delta,
			Reason:         m.Reason,
			WorkOrderID:    m.WorkOrderID,
			ResultingLevel: m.ResultingLevel,
			Note:           m.Note,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		})
	}

	return result, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *partService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Part.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPartNotFound
		}
		s.logger.Error("查询备件失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Part.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除备件失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// notifyLowStock 通知仓库库管与主管库存告警，尊重用户通知偏好
func (s *partService) notifyLowStock(ctx context.Context, part *model.Part) error {
	recipients, err := s.repo.User.ListByWarehouseAndRoles(ctx, part.WarehouseID,
		[]string{model.RoleInventoryClerk, model.RoleSupervisor})
	if err != nil {
		return err
	}

	relatedType := "part"
	notifications := make([]model.Notification, 0, len(recipients))
	for _, u := range recipients {
		pref, err := s.repo.Notification.GetPreference(ctx, u.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if pref != nil && !pref.PartLowStock {
			continue
		}
		notifications = append(notifications, model.Notification{
			UserID: u.UserID,
			Type:   model.NotificationPartLowStock,
			Title:  "备件库存告警",
			Content: fmt.Sprintf("备件 %s（%s）库存 %d 已低于再订货点 %d",
				part.PartNumber, part.Name, part.StockLevel, part.ReorderPoint),
			RelatedType: &relatedType,
			RelatedID:   &part.PartID,
		})
	}
	return s.repo.Notification.BatchCreate(ctx, notifications)
}

// toPartResponse 将 model.Part 转换为 dto.PartResponse
func toPartResponse(part *model.Part) *dto.PartResponse {
	resp := &dto.PartResponse{
		ID:           part.PartID,
		PartNumber:   part.PartNumber,
		WarehouseID:  part.WarehouseID,
		Name:         part.Name,
		Description:  part.Description,
		StockLevel:   part.StockLevel,
		ReorderPoint: part.ReorderPoint,
		UnitCost:     part.UnitCost,
		VendorID:     part.VendorID,
		Active:       part.Active,
		Version:      part.Version,
		CreatedAt:    part.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    part.UpdatedAt.Format(time.RFC3339),
	}
	if part.Vendor != nil {
		resp.VendorName = part.Vendor.Name
	}
	return resp
}
