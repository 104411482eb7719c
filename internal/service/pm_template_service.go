package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── PM 模板模块业务错误 ──

var (
	ErrPMTemplateNotFound = errors.New("PM 模板不存在")
)

// PMTemplateService PM 模板业务接口
type PMTemplateService interface {
	Create(ctx context.Context, req *dto.CreatePMTemplateRequest, callerID string) (*dto.PMTemplateResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PMTemplateResponse, error)
	List(ctx context.Context, req *dto.PMTemplateListRequest) ([]dto.PMTemplateResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdatePMTemplateRequest, callerID string) (*dto.PMTemplateResponse, error)
	// Delete 软删除模板；历史工单保留模板引用，合规统计不受影响
	Delete(ctx context.Context, id string, callerID string) error
}

type pmTemplateService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPMTemplateService 创建 PMTemplateService 实例
func NewPMTemplateService(repo *repository.Repository, logger *zap.Logger) PMTemplateService {
	return &pmTemplateService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *pmTemplateService) Create(ctx context.Context, req *dto.CreatePMTemplateRequest, callerID string) (*dto.PMTemplateResponse, error) {
	// 检查仓库存在
	if _, err := s.repo.Warehouse.GetByID(ctx, req.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	freq := model.Frequency(req.Frequency)
	if !freq.Valid() {
		return nil, ErrInvalidFrequency
	}

	template := &model.PMTemplate{
		WarehouseID:      req.WarehouseID,
		Model:            req.Model,
		Component:        req.Component,
		Action:           req.Action,
		Frequency:        freq,
		EstimatedMinutes: req.EstimatedMinutes,
		Active:           true,
	}
	if template.EstimatedMinutes <= 0 {
		template.EstimatedMinutes = 30
	}
	if len(req.CustomFieldSchema) > 0 {
		template.CustomFieldSchema = datatypes.JSON(req.CustomFieldSchema)
	}
	template.CreatedBy = &callerID
	template.UpdatedBy = &callerID

	if err := s.repo.PMTemplate.Create(ctx, template); err != nil {
		s.logger.Error("创建 PM 模板失败", zap.Error(err))
		return nil, err
	}

	return toPMTemplateResponse(template), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *pmTemplateService) GetByID(ctx context.Context, id string) (*dto.PMTemplateResponse, error) {
	template, err := s.repo.PMTemplate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPMTemplateNotFound
		}
		s.logger.Error("查询 PM 模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPMTemplateResponse(template), nil
}

// ────────────────────── List ──────────────────────

func (s *pmTemplateService) List(ctx context.Context, req *dto.PMTemplateListRequest) ([]dto.PMTemplateResponse, int64, error) {
	filter := repository.PMTemplateFilter{
		WarehouseID: req.WarehouseID,
		Model:       req.Model,
		Frequency:   req.Frequency,
		Active:      req.Active,
	}

	items, total, err := s.repo.PMTemplate.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出 PM 模板失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PMTemplateResponse, 0, len(items))
	for i := range items {
		result = append(result, *toPMTemplateResponse(&items[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *pmTemplateService) Update(ctx context.Context, id string, req *dto.UpdatePMTemplateRequest, callerID string) (*dto.PMTemplateResponse, error) {
	template, err := s.repo.PMTemplate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPMTemplateNotFound
		}
		s.logger.Error("查询 PM 模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Model != nil {
		template.Model = *req.Model
	}
	if req.Component != nil {
		template.Component = *req.Component
	}
	if req.Action != nil {
		template.Action = *req.Action
	}
	if req.Frequency != nil {
		freq := model.Frequency(*req.Frequency)
		if !freq.Valid() {
			return nil, ErrInvalidFrequency
		}
		template.Frequency = freq
	}
	if req.EstimatedMinutes != nil {
		template.EstimatedMinutes = *req.EstimatedMinutes
	}
	if len(req.CustomFieldSchema) > 0 {
		template.CustomFieldSchema = datatypes.JSON(req.CustomFieldSchema)
	}
	if req.Active != nil {
		template.Active = *req.Active
	}

	template.UpdatedBy = &callerID

	if err := s.repo.PMTemplate.Update(ctx, template); err != nil {
		s.logger.Error("更新 PM 模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPMTemplateResponse(template), nil
}

// ────────────────────── Delete ──────────────────────

func (s *pmTemplateService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.PMTemplate.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPMTemplateNotFound
		}
		s.logger.Error("查询 PM 模板失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.PMTemplate.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除 PM 模板失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toPMTemplateResponse(template *model.PMTemplate) *dto.PMTemplateResponse {
	resp := &dto.PMTemplateResponse{
		ID:               template.PMTemplateID,
		WarehouseID:      template.WarehouseID,
		Model:            template.Model,
		Component:        template.Component,
		Action:           template.Action,
		Frequency:        string(template.Frequency),
		EstimatedMinutes: template.EstimatedMinutes,
		Active:           template.Active,
		Version:          template.Version,
		CreatedAt:        template.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        template.UpdatedAt.Format(time.RFC3339),
	}
	if len(template.CustomFieldSchema) > 0 {
		resp.CustomFieldSchema = []byte(template.CustomFieldSchema)
	}
	return resp
}
