package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── PM 计划解析 ──

// ScheduleEntry 解析得到的单个（设备×模板）计划项
type ScheduleEntry struct {
	Template          model.PMTemplate
	LastCompletedDate *time.Time
	NextDueDate       time.Time
	Status            model.ComplianceStatus
}

// PMScheduleService PM 计划解析业务接口
type PMScheduleService interface {
	// GetSchedule 返回设备全部适用模板的维护计划，只读、无副作用
	GetSchedule(ctx context.Context, equipmentID string) (*dto.EquipmentScheduleResponse, error)
}

type pmScheduleService struct {
	repo          *repository.Repository
	logger        *zap.Logger
	lookaheadDays int
	now           func() time.Time
}

// NewPMScheduleService 创建 PMScheduleService 实例
func NewPMScheduleService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) PMScheduleService {
	return &pmScheduleService{
		repo:          repo,
		logger:        logger,
		lookaheadDays: cfg.PM.DueLookaheadDays,
		now:           time.Now,
	}
}

// ────────────────────── GetSchedule ──────────────────────

func (s *pmScheduleService) GetSchedule(ctx context.Context, equipmentID string) (*dto.EquipmentScheduleResponse, error) {
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

	today := truncateToDate(s.now())
	entries := make([]dto.ScheduleEntryResponse, 0)

	for i := range templates {
		tmpl := &templates[i]
		if tmpl.Model != equipment.Model {
			continue
		}

		entry, err := s.resolvePair(ctx, equipment.EquipmentID, tmpl, today)
		if err != nil {
			s.logger.Error("解析维护计划失败",
				zap.String("equipment_id", equipment.EquipmentID),
				zap.String("pm_template_id", tmpl.PMTemplateID),
				zap.Error(err))
			return nil, err
		}

		entries = append(entries, toScheduleEntryResponse(entry))
	}

	return &dto.EquipmentScheduleResponse{
		EquipmentID: equipment.EquipmentID,
		AssetTag:    equipment.AssetTag,
		Model:       equipment.Model,
		Entries:     entries,
	}, nil
}

// resolvePair 解析单个配对：查询最近完成记录并推导到期日与合规状态
func (s *pmScheduleService) resolvePair(ctx context.Context, equipmentID string, tmpl *model.PMTemplate, today time.Time) (*ScheduleEntry, error) {
	var last *time.Time
	wo, err := s.repo.WorkOrder.GetLatestCompletedPM(ctx, equipmentID, tmpl.PMTemplateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 从未维护：立即到期
	} else if wo.CompletedAt != nil {
		d := truncateToDate(*wo.CompletedAt)
		last = &d
	}

	nextDue, status, err := resolveEntry(last, tmpl.Frequency, today, s.lookaheadDays)
	if err != nil {
		return nil, err
	}

	return &ScheduleEntry{
		Template:          *tmpl,
		LastCompletedDate: last,
		NextDueDate:       nextDue,
		Status:            status,
	}, nil
}

// ── 内部辅助方法 ──

// resolveEntry 纯函数：由上次完成日期推导下次到期日与合规状态。
// last 为 nil 表示从未维护，立即到期（下次到期日 = 今天）。
func resolveEntry(last *time.Time, freq model.Frequency, today time.Time, lookaheadDays int) (time.Time, model.ComplianceStatus, error) {
	today = truncateToDate(today)

	var nextDue time.Time
	if last == nil {
		nextDue = today
	} else {
		var err error
		nextDue, err = NextDueDate(*last, freq)
		if err != nil {
			return time.Time{}, "", err
		}
	}

	return nextDue, complianceStatusFor(nextDue, today, lookaheadDays), nil
}

// complianceStatusFor 按到期日与前瞻窗口判定合规状态
func complianceStatusFor(nextDue, today time.Time, lookaheadDays int) model.ComplianceStatus {
	switch {
	case nextDue.Before(today):
		return model.ComplianceOverdue
	case !nextDue.After(today.AddDate(0, 0, lookaheadDays)):
		return model.ComplianceDue
	default:
		return model.ComplianceCompliant
	}
}

func toScheduleEntryResponse(entry *ScheduleEntry) dto.ScheduleEntryResponse {
	resp := dto.ScheduleEntryResponse{
		PMTemplateID:     entry.Template.PMTemplateID,
		Component:        entry.Template.Component,
		Action:           entry.Template.Action,
		Frequency:        string(entry.Template.Frequency),
		NextDueDate:      entry.NextDueDate.Format("2006-01-02"),
		ComplianceStatus: string(entry.Status),
	}
	if entry.LastCompletedDate != nil {
		d := entry.LastCompletedDate.Format("2006-01-02")
		resp.LastCompletedDate = &d
	}
	return resp
}
