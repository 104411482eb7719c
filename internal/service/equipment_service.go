package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── 设备模块业务错误 ──

var (
	ErrEquipmentNotFound = errors.New("设备不存在")
	ErrAssetTagExists    = errors.New("该仓库下资产标签已存在")
	ErrInvalidDateFormat = errors.New("日期格式错误，应为 YYYY-MM-DD")
)

// EquipmentService 设备业务接口
type EquipmentService interface {
	Create(ctx context.Context, req *dto.CreateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error)
	List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// ParseImportFile 解析设备台账 Excel 文件
	ParseImportFile(reader io.Reader) ([]ImportEquipmentRow, error)
	// ImportEquipment 批量导入设备，校验全部通过的行在单事务内写入
	ImportEquipment(ctx context.Context, warehouseID string, rows []ImportEquipmentRow, callerID string) (*dto.ImportEquipmentResponse, error)
}

// ImportEquipmentRow Excel 导入解析后的单行数据
type ImportEquipmentRow struct {
	Row          int
	AssetTag     string
	Model        string
	Description  string
	Area         string
	Criticality  string
	Manufacturer string
	SerialNumber string
}

type equipmentService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	transact txFunc
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(repo *repository.Repository, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, logger: logger, transact: runInTx(repo, logger)}
}

// ────────────────────── Create ──────────────────────

func (s *equipmentService) Create(ctx context.Context, req *dto.CreateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error) {
	// 检查仓库存在
	if _, err := s.repo.Warehouse.GetByID(ctx, req.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	// 检查资产标签在仓库内唯一
	if _, err := s.repo.Equipment.GetByAssetTag(ctx, req.WarehouseID, req.AssetTag); err == nil {
		return nil, ErrAssetTagExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	installDate, err := parseDatePtr(req.InstallationDate)
	if err != nil {
		return nil, err
	}
	warrantyExpiry, err := parseDatePtr(req.WarrantyExpiry)
	if err != nil {
		return nil, err
	}

	equipment := &model.Equipment{
		AssetTag:         req.AssetTag,
		WarehouseID:      req.WarehouseID,
		Model:            req.Model,
		Description:      req.Description,
		Area:             req.Area,
		Status:           req.Status,
		Criticality:      req.Criticality,
		Manufacturer:     req.Manufacturer,
		SerialNumber:     req.SerialNumber,
		InstallationDate: installDate,
		WarrantyExpiry:   warrantyExpiry,
	}
	if equipment.Status == "" {
		equipment.Status = model.EquipmentStatusActive
	}
	if equipment.Criticality == "" {
		equipment.Criticality = model.CriticalityMedium
	}
	equipment.CreatedBy = &callerID
	equipment.UpdatedBy = &callerID

	if err := s.repo.Equipment.Create(ctx, equipment); err != nil {
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}

	return toEquipmentResponse(equipment), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *equipmentService) GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	equipment, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toEquipmentResponse(equipment), nil
}

// ────────────────────── List ──────────────────────

func (s *equipmentService) List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, int64, error) {
	filter := repository.EquipmentFilter{
		WarehouseID: req.WarehouseID,
		Status:      req.Status,
		Criticality: req.Criticality,
		Model:       req.Model,
		Area:        req.Area,
		Keyword:     req.Keyword,
	}

	items, total, err := s.repo.Equipment.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出设备失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EquipmentResponse, 0, len(items))
	for i := range items {
		result = append(result, *toEquipmentResponse(&items[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *equipmentService) Update(ctx context.Context, id string, req *dto.UpdateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error) {
	equipment, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新资产标签，检查仓库内唯一性
	if req.AssetTag != nil && *req.AssetTag != equipment.AssetTag {
		existing, err := s.repo.Equipment.GetByAssetTag(ctx, equipment.WarehouseID, *req.AssetTag)
		if err == nil && existing.EquipmentID != id {
			return nil, ErrAssetTagExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		equipment.AssetTag = *req.AssetTag
	}

	if req.Model != nil {
		equipment.Model = *req.Model
	}
	if req.Description != nil {
		equipment.Description = *req.Description
	}
	if req.Area != nil {
		equipment.Area = *req.Area
	}
	if req.Status != nil {
		equipment.Status = *req.Status
	}
	if req.Criticality != nil {
		equipment.Criticality = *req.Criticality
	}
	if req.Manufacturer != nil {
		equipment.Manufacturer = *req.Manufacturer
	}
	if req.SerialNumber != nil {
		equipment.SerialNumber = *req.SerialNumber
	}
	if req.InstallationDate != nil {
		d, err := parseDatePtr(req.InstallationDate)
		if err != nil {
			return nil, err
		}
		equipment.InstallationDate = d
	}
	if req.WarrantyExpiry != nil {
		d, err := parseDatePtr(req.WarrantyExpiry)
		if err != nil {
			return nil, err
		}
		equipment.WarrantyExpiry = d
	}

	equipment.UpdatedBy = &callerID

	if err := s.repo.Equipment.Update(ctx, equipment); err != nil {
		s.logger.Error("更新设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toEquipmentResponse(equipment), nil
}

// ────────────────────── Delete ──────────────────────

func (s *equipmentService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Equipment.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Equipment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除设备失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（资产标签/型号）")
)

// ParseImportFile 解析设备台账 Excel 文件，返回解析后的行数据
func (s *equipmentService) ParseImportFile(reader io.Reader) ([]ImportEquipmentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseEquipmentHeaderIndex(excelRows[0])
	if colIndex["asset_tag"] < 0 || colIndex["model"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportEquipmentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportEquipmentRow{
			Row:          i + 1,
			AssetTag:     cell(row, "asset_tag"),
			Model:        cell(row, "model"),
			Description:  cell(row, "description"),
			Area:         cell(row, "area"),
			Criticality:  strings.ToLower(cell(row, "criticality")),
			Manufacturer: cell(row, "manufacturer"),
			SerialNumber: cell(row, "serial_number"),
		}

		// 跳过全空行
		if item.AssetTag == "" && item.Model == "" && item.Description == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseEquipmentHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseEquipmentHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"asset_tag":     -1,
		"model":         -1,
		"description":   -1,
		"area":          -1,
		"criticality":   -1,
		"manufacturer":  -1,
		"serial_number": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "资产标签" || lower == "asset_tag":
			idx["asset_tag"] = i
		case lower == "型号" || lower == "model":
			idx["model"] = i
		case lower == "描述" || lower == "description":
			idx["description"] = i
		case lower == "区域" || lower == "area":
			idx["area"] = i
		case lower == "重要度" || lower == "criticality":
			idx["criticality"] = i
		case lower == "制造商" || lower == "manufacturer":
			idx["manufacturer"] = i
		case lower == "序列号" || lower == "serial_number":
			idx["serial_number"] = i
		}
	}
	return idx
}

// ────────────────────── ImportEquipment ──────────────────────

func (s *equipmentService) ImportEquipment(ctx context.Context, warehouseID string, rows []ImportEquipmentRow, callerID string) (*dto.ImportEquipmentResponse, error) {
	// 校验仓库存在
	if _, err := s.repo.Warehouse.GetByID(ctx, warehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	resp := &dto.ImportEquipmentResponse{Total: len(rows)}

	// 第一阶段：数据预校验（不接触数据库写操作）
	var validRows []ImportEquipmentRow
	seenTags := make(map[string]bool)

	for _, row := range rows {
		if row.AssetTag == "" || row.Model == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportEquipmentError{
				Row: row.Row, Reason: "必填字段为空（资产标签/型号）",
			})
			continue
		}

		if row.Criticality != "" && !isValidCriticality(row.Criticality) {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportEquipmentError{
				Row: row.Row, Reason: fmt.Sprintf("重要度非法: %s", row.Criticality),
			})
			continue
		}

		// 文件内部重复
		if seenTags[row.AssetTag] {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportEquipmentError{
				Row: row.Row, Reason: fmt.Sprintf("资产标签在文件中重复: %s", row.AssetTag),
			})
			continue
		}
		seenTags[row.AssetTag] = true

		// 与现有台账重复
		if _, err := s.repo.Equipment.GetByAssetTag(ctx, warehouseID, row.AssetTag); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportEquipmentError{
				Row: row.Row, Reason: fmt.Sprintf("资产标签已存在: %s", row.AssetTag),
			})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		validRows = append(validRows, row)
	}

	// 第二阶段：在事务中批量创建所有通过校验的设备，任一写入失败则全部回滚
	if len(validRows) > 0 {
		err := s.transact(ctx, func(txRepo *repository.Repository) error {
			for _, row := range validRows {
				criticality := row.Criticality
				if criticality == "" {
					criticality = model.CriticalityMedium
				}

				equipment := &model.Equipment{
					AssetTag:     row.AssetTag,
					WarehouseID:  warehouseID,
					Model:        row.Model,
					Description:  row.Description,
					Area:         row.Area,
					Status:       model.EquipmentStatusActive,
					Criticality:  criticality,
					Manufacturer: row.Manufacturer,
					SerialNumber: row.SerialNumber,
				}
				equipment.CreatedBy = &callerID

				if err := txRepo.Equipment.Create(ctx, equipment); err != nil {
					s.logger.Error("导入设备写入失败，事务回滚",
						zap.Int("row", row.Row), zap.Error(err))
					return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", row.Row, err)
				}
				resp.Success++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// toEquipmentResponse 将 model.Equipment 转换为 dto.EquipmentResponse
func toEquipmentResponse(equipment *model.Equipment) *dto.EquipmentResponse {
	resp := &dto.EquipmentResponse{
		ID:           equipment.EquipmentID,
		AssetTag:     equipment.AssetTag,
		WarehouseID:  equipment.WarehouseID,
		Model:        equipment.Model,
		Description:  equipment.Description,
		Area:         equipment.Area,
		Status:       equipment.Status,
		Criticality:  equipment.Criticality,
		Manufacturer: equipment.Manufacturer,
		SerialNumber: equipment.SerialNumber,
		Version:      equipment.Version,
		CreatedAt:    equipment.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    equipment.UpdatedAt.Format(time.RFC3339),
	}
	if equipment.InstallationDate != nil {
		d := equipment.InstallationDate.Format("2006-01-02")
		resp.InstallationDate = &d
	}
	if equipment.WarrantyExpiry != nil {
		d := equipment.WarrantyExpiry.Format("2006-01-02")
		resp.WarrantyExpiry = &d
	}
	return resp
}

func isValidCriticality(criticality string) bool {
	switch criticality {
	case model.CriticalityLow, model.CriticalityMedium, model.CriticalityHigh, model.CriticalityCritical:
		return true
	}
	return false
}

// parseDatePtr 解析 YYYY-MM-DD 日期指针，nil 或空串返回 nil
func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	return &t, nil
}
