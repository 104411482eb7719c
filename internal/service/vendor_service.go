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

// ── 供应商模块业务错误 ──

var (
	ErrVendorNotFound = errors.New("供应商不存在")
)

// VendorService 供应商业务接口
type VendorService interface {
	Create(ctx context.Context, req *dto.CreateVendorRequest, callerID string) (*dto.VendorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.VendorResponse, error)
	List(ctx context.Context, req *dto.VendorListRequest) ([]dto.VendorResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateVendorRequest, callerID string) (*dto.VendorResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type vendorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVendorService 创建 VendorService 实例
func NewVendorService(repo *repository.Repository, logger *zap.Logger) VendorService {
	return &vendorService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *vendorService) Create(ctx context.Context, req *dto.CreateVendorRequest, callerID string) (*dto.VendorResponse, error) {
	vendor := &model.Vendor{
		Name:        req.Name,
		Type:        req.Type,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Active:      true,
	}
	if vendor.Type == "" {
		vendor.Type = "supplier"
	}
	vendor.CreatedBy = &callerID
	vendor.UpdatedBy = &callerID

	if err := s.repo.Vendor.Create(ctx, vendor); err != nil {
		s.logger.Error("创建供应商失败", zap.Error(err))
		return nil, err
	}

	return toVendorResponse(vendor), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *vendorService) GetByID(ctx context.Context, id string) (*dto.VendorResponse, error) {
	vendor, err := s.repo.Vendor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		s.logger.Error("查询供应商失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toVendorResponse(vendor), nil
}

// ────────────────────── List ──────────────────────

func (s *vendorService) List(ctx context.Context, req *dto.VendorListRequest) ([]dto.VendorResponse, int64, error) {
	items, total, err := s.repo.Vendor.List(ctx, req.Type, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出供应商失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.VendorResponse, 0, len(items))
	for i := range items {
		result = append(result, *toVendorResponse(&items[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *vendorService) Update(ctx context.Context, id string, req *dto.UpdateVendorRequest, callerID string) (*dto.VendorResponse, error) {
	vendor, err := s.repo.Vendor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		s.logger.Error("查询供应商失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.Type != nil {
		vendor.Type = *req.Type
	}
	if req.ContactName != nil {
		vendor.ContactName = *req.ContactName
	}
	if req.Email != nil {
		vendor.Email = *req.Email
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Active != nil {
		vendor.Active = *req.Active
	}

	vendor.UpdatedBy = &callerID

	if err := s.repo.Vendor.Update(ctx, vendor); err != nil {
		s.logger.Error("更新供应商失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toVendorResponse(vendor), nil
}

// ────────────────────── Delete ──────────────────────

func (s *vendorService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Vendor.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVendorNotFound
		}
		s.logger.Error("查询供应商失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Vendor.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除供应商失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func toVendorResponse(vendor *model.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:          vendor.VendorID,
		Name:        vendor.Name,
		Type:        vendor.Type,
		ContactName: vendor.ContactName,
		Email:       vendor.Email,
		Phone:       vendor.Phone,
		Active:      vendor.Active,
		Version:     vendor.Version,
		CreatedAt:   vendor.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   vendor.UpdatedAt.Format(time.RFC3339),
	}
}
