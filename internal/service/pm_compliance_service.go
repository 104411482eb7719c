package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
)

// ── PM 合规统计 ──

// PMComplianceService PM 合规统计业务接口
type PMComplianceService interface {
	// ComputeForEquipment 计算单设备在时间窗内的 PM 合规率，windowDays<=0 时用配置默认值
	ComputeForEquipment(ctx context.Context, equipmentID string, windowDays int) (*dto.ComplianceRecordResponse, error)
	// ComputeForWarehouse 计算仓库全部在用设备的合规汇总
	ComputeForWarehouse(ctx context.Context, warehouseID string, windowDays int) (*dto.FleetComplianceResponse, error)
}

type pmComplianceService struct {
	repo       *repository.Repository
	logger     *zap.Logger
	metrics    *metrics.Metrics
	windowDays int
	graceDays  int
	now        func() time.Time
}

// NewPMComplianceService 创建 PMComplianceService 实例
func NewPMComplianceService(cfg *config.Config, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) PMComplianceService {
	return &pmComplianceService{
		repo:       repo,
		logger:     logger,
		metrics:    m,
		windowDays: cfg.PM.ComplianceWindowDays,
		graceDays:  cfg.PM.ComplianceGraceDays,
		now:        time.Now,
	}
}

// ────────────────────── ComputeForEquipment ──────────────────────

func (s *pmComplianceService) ComputeForEquipment(ctx context.Context, equipmentID string, windowDays int) (*dto.ComplianceRecordResponse, error) {
	equipment, err := s.repo.Equipment.GetByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("equipment_id", equipmentID), zap.Error(err))
		return nil, err
	}

	templates, err := s.repo.PMTemplate.ListActiveByWarehouse(ctx, equipment.WarehouseID)
	if err != nil {
		s.logger.Error("查询 PM 模板失败", zap.String("warehouse_id", equipment.WarehouseID), zap.Error(err))
		return nil, err
	}

	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	today := truncateToDate(s.now())

	record, err := s.computeRecord(ctx, equipment, templates, windowDays, today)
	if err != nil {
		s.logger.Error("计算设备合规率失败", zap.String("equipment_id", equipmentID), zap.Error(err))
		return nil, err
	}
	return record, nil
}

// ────────────────────── ComputeForWarehouse ──────────────────────

func (s *pmComplianceService) ComputeForWarehouse(ctx context.Context, warehouseID string, windowDays int) (*dto.FleetComplianceResponse, error) {
	if _, err := s.repo.Warehouse.GetByID(ctx, warehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}

	// 仅统计在用设备，停用/退役设备不计入合规
	equipments, err := s.repo.Equipment.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("查询在用设备失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}
	templates, err := s.repo.PMTemplate.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("查询 PM 模板失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}

	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	today := truncateToDate(s.now())

	resp := &dto.FleetComplianceResponse{
		WarehouseID: warehouseID,
		WindowDays:  windowDays,
		Equipment:   make([]dto.ComplianceRecordResponse, 0, len(equipments)),
	}

	var sum float64
	for i := range equipments {
		record, err := s.computeRecord(ctx, &equipments[i], templates, windowDays, today)
		if err != nil {
			s.logger.Error("计算设备合规率失败",
				zap.String("equipment_id", equipments[i].EquipmentID),
				zap.Error(err))
			return nil, err
		}
		resp.Equipment = append(resp.Equipment, *record)
		resp.TotalPMCount += record.TotalPMCount
		resp.MissedPMCount += record.MissedPMCount
		sum += record.CompliancePercentage
	}

	// 无设备时视为全合规
	resp.AveragePercentage = 100.0
	if len(equipments) > 0 {
		resp.AveragePercentage = round1(sum / float64(len(equipments)))
	}

	if s.metrics != nil {
		s.metrics.PMComplianceGauge.WithLabelValues(warehouseID).Set(resp.AveragePercentage)
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// computeRecord 计算单设备的合规记录，时间窗为 [today-windowDays, today]
func (s *pmComplianceService) computeRecord(ctx context.Context, eq *model.Equipment, templates []model.PMTemplate, windowDays int, today time.Time) (*dto.ComplianceRecordResponse, error) {
	from := today.AddDate(0, 0, -windowDays)
	wos, err := s.repo.WorkOrder.ListPMByEquipmentDueBetween(ctx, eq.EquipmentID, from, today)
	if err != nil {
		return nil, err
	}

	missed := 0
	for i := range wos {
		if isMissedPM(&wos[i], today, s.graceDays) {
			missed++
		}
	}

	total := len(wos)
	pct := 100.0
	if total > 0 {
		pct = round1(float64(total-missed) / float64(total) * 100)
	}

	record := &dto.ComplianceRecordResponse{
		EquipmentID:          eq.EquipmentID,
		AssetTag:             eq.AssetTag,
		WindowDays:           windowDays,
		CompliancePercentage: pct,
		MissedPMCount:        missed,
		TotalPMCount:         total,
	}

	latest, err := s.repo.WorkOrder.GetLatestCompletedPMByEquipment(ctx, eq.EquipmentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if latest.CompletedAt != nil {
		d := latest.CompletedAt.Format("2006-01-02")
		record.LastPMDate = &d
	}

	nextDue, err := s.earliestNextDue(ctx, eq, templates, today)
	if err != nil {
		return nil, err
	}
	if nextDue != nil {
		d := nextDue.Format("2006-01-02")
		record.NextPMDate = &d
	}

	return record, nil
}

// earliestNextDue 计算设备全部适用模板中最早的下次到期日，无适用模板返回 nil
func (s *pmComplianceService) earliestNextDue(ctx context.Context, eq *model.Equipment, templates []model.PMTemplate, today time.Time) (*time.Time, error) {
	var earliest *time.Time
	for i := range templates {
		tmpl := &templates[i]
		if tmpl.Model != eq.Model {
			continue
		}

		var last *time.Time
		wo, err := s.repo.WorkOrder.GetLatestCompletedPM(ctx, eq.EquipmentID, tmpl.PMTemplateID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else if wo.CompletedAt != nil {
			d := truncateToDate(*wo.CompletedAt)
			last = &d
		}

		nextDue, _, err := resolveEntry(last, tmpl.Frequency, today, 0)
		if err != nil {
			return nil, err
		}
		if earliest == nil || nextDue.Before(*earliest) {
			d := nextDue
			earliest = &d
		}
	}
	return earliest, nil
}

// isMissedPM 判定单张 PM 工单是否错失：
// 未完结且已过期，或完成时间晚于到期日加宽限期
func isMissedPM(wo *model.WorkOrder, today time.Time, graceDays int) bool {
	due := truncateToDate(wo.DueDate)
	if wo.CompletedAt == nil {
		return model.IsOpenWOStatus(wo.Status) && due.Before(today)
	}
	deadline := due.AddDate(0, 0, graceDays)
	return truncateToDate(*wo.CompletedAt).After(deadline)
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
