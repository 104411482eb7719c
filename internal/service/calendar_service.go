package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── PM 日历订阅 ──────────────────────────────────────────────
//
// 职责：将仓库内即将到期（含已逾期）的 PM 生成标准 iCalendar
// (RFC 5545) 订阅源，技师可在日历客户端中订阅。
//
// 设计决策：
//   - 每个（设备 × 模板）配对一个全天 VEVENT，日期为解析出的下次到期日
//   - UID 按配对稳定生成，客户端刷新订阅时更新事件而非重复累加
//   - 已逾期的配对保留原到期日并在标题加「逾期」前缀
//   - 空仓库返回合法的空日历：订阅源不存在数据时也不能 404
// ─────────────────────────────────────────────────────────────

const (
	defaultCalendarHorizonDays = 30
	maxCalendarHorizonDays     = 365
)

// CalendarService PM 日历订阅接口
type CalendarService interface {
	// BuildWarehouseCalendar 生成仓库 PM 日历，返回 ICS 内容与建议文件名
	BuildWarehouseCalendar(ctx context.Context, warehouseID string, horizonDays int) (string, string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── BuildWarehouseCalendar ──────────────────────

func (s *calendarService) BuildWarehouseCalendar(ctx context.Context, warehouseID string, horizonDays int) (string, string, error) {
	if horizonDays <= 0 {
		horizonDays = defaultCalendarHorizonDays
	}
	if horizonDays > maxCalendarHorizonDays {
		horizonDays = maxCalendarHorizonDays
	}

	warehouse, err := s.repo.Warehouse.GetByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", warehouseID), zap.Error(err))
		return "", "", err
	}

	equipments, err := s.repo.Equipment.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("查询仓库设备失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return "", "", err
	}
	templates, err := s.repo.PMTemplate.ListActiveByWarehouse(ctx, warehouseID)
	if err != nil {
		s.logger.Error("查询仓库模板失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return "", "", err
	}

	templatesByModel := make(map[string][]*model.PMTemplate)
	for i := range templates {
		tmpl := &templates[i]
		templatesByModel[tmpl.Model] = append(templatesByModel[tmpl.Model], tmpl)
	}

	now := s.now()
	today := truncateToDate(now)
	horizonEnd := today.AddDate(0, 0, horizonDays)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//MaintainPro//PM Calendar//ZH")
	cal.SetName(fmt.Sprintf("%s PM 计划", warehouse.Name))

	for i := range equipments {
		eq := &equipments[i]
		for _, tmpl := range templatesByModel[eq.Model] {
			nextDue, ok := s.resolveNextDue(ctx, eq, tmpl, today)
			if !ok || nextDue.After(horizonEnd) {
				continue
			}
			s.appendEvent(cal, eq, tmpl, nextDue, today, now)
		}
	}

	filename := fmt.Sprintf("pm_%s.ics", warehouse.Code)
	return cal.Serialize(), filename, nil
}

// ── 内部辅助方法 ──

// resolveNextDue 解析配对的下次到期日；单配对失败仅告警跳过，不中断整个订阅源
func (s *calendarService) resolveNextDue(ctx context.Context, eq *model.Equipment, tmpl *model.PMTemplate, today time.Time) (time.Time, bool) {
	var last *time.Time
	wo, err := s.repo.WorkOrder.GetLatestCompletedPM(ctx, eq.EquipmentID, tmpl.PMTemplateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询最近完成 PM 失败",
				zap.String("equipment_id", eq.EquipmentID),
				zap.String("pm_template_id", tmpl.PMTemplateID),
				zap.Error(err))
			return time.Time{}, false
		}
	} else if wo.CompletedAt != nil {
		t := truncateToDate(*wo.CompletedAt)
		last = &t
	}

	nextDue, _, err := resolveEntry(last, tmpl.Frequency, today, 0)
	if err != nil {
		s.logger.Warn("解析到期日失败",
			zap.String("pm_template_id", tmpl.PMTemplateID),
			zap.Error(err))
		return time.Time{}, false
	}
	return nextDue, true
}

func (s *calendarService) appendEvent(cal *ics.Calendar, eq *model.Equipment, tmpl *model.PMTemplate, nextDue, today, now time.Time) {
	summary := fmt.Sprintf("PM：%s — %s %s", eq.AssetTag, tmpl.Component, tmpl.Action)
	if nextDue.Before(today) {
		summary = "【逾期】" + summary
	}

	event := cal.AddEvent(fmt.Sprintf("pm-%s-%s@maintainpro", eq.EquipmentID, tmpl.PMTemplateID))
	event.SetDtStampTime(now)
	event.SetAllDayStartAt(nextDue)
	event.SetAllDayEndAt(nextDue.AddDate(0, 0, 1))
	event.SetSummary(summary)
	event.SetDescription(fmt.Sprintf("设备型号: %s\n维护频率: %s\n预计时长: %d 分钟",
		eq.Model, tmpl.Frequency, tmpl.EstimatedMinutes))
	if eq.Area != "" {
		event.SetLocation(eq.Area)
	}
}
