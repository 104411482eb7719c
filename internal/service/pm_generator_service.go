package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
)

// ── PM 工单生成 ──

// 配对跳过原因
const (
	SkipReasonNotDue      = "not-due"
	SkipReasonDuplicateWO = "duplicate-open-work-order"
	SkipReasonNoTemplate  = "no-matching-template"
)

// PMGeneratorService PM 工单生成业务接口
type PMGeneratorService interface {
	// GenerateForWarehouse 对仓库执行一次生成通道：逐配对判定到期并创建 PM 工单
	GenerateForWarehouse(ctx context.Context, warehouseID string) (*dto.GenerationResultResponse, error)
}

type pmGeneratorService struct {
	repo          *repository.Repository
	logger        *zap.Logger
	metrics       *metrics.Metrics
	lookaheadDays int
	now           func() time.Time
}

// NewPMGeneratorService 创建 PMGeneratorService 实例
func NewPMGeneratorService(cfg *config.Config, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) PMGeneratorService {
	return &pmGeneratorService{
		repo:          repo,
		logger:        logger,
		metrics:       m,
		lookaheadDays: cfg.PM.DueLookaheadDays,
		now:           time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// GenerateForWarehouse — 3 阶段生成通道
// ════════════════════════════════════════════════════════════

func (s *pmGeneratorService) GenerateForWarehouse(ctx context.Context, warehouseID string) (*dto.GenerationResultResponse, error) {
	// 0. 校验仓库
	if _, err := s.repo.Warehouse.GetByID(ctx, warehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		return nil, err
	}

	// ── 阶段1: 数据准备（任一查询失败整体失败，不进入逐配对处理）──

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

	// 模板按设备型号索引: model → []*PMTemplate
	templatesByModel := make(map[string][]*model.PMTemplate)
	for i := range templates {
		templatesByModel[templates[i].Model] = append(templatesByModel[templates[i].Model], &templates[i])
	}

	today := truncateToDate(s.now())
	result := &dto.GenerationResultResponse{
		WarehouseID: warehouseID,
		Created:     make([]dto.GeneratedWO, 0),
		Skipped:     make([]dto.SkippedPair, 0),
	}

	// ── 阶段2: 逐配对判定与创建（单配对失败只记录，不中断批次）──

	for i := range equipments {
		eq := &equipments[i]

		matched := templatesByModel[eq.Model]
		if len(matched) == 0 {
			result.Skipped = append(result.Skipped, dto.SkippedPair{
				EquipmentID: eq.EquipmentID,
				Reason:      SkipReasonNoTemplate,
			})
			s.countSkip(warehouseID, SkipReasonNoTemplate)
			continue
		}

		for _, tmpl := range matched {
			created, skipReason, err := s.generateForPair(ctx, eq, tmpl, today)
			switch {
			case err != nil:
				result.Errors = append(result.Errors, dto.PairError{
					EquipmentID:  eq.EquipmentID,
					PMTemplateID: tmpl.PMTemplateID,
					Message:      err.Error(),
				})
				s.logger.Error("配对处理失败",
					zap.String("equipment_id", eq.EquipmentID),
					zap.String("pm_template_id", tmpl.PMTemplateID),
					zap.Error(err))
				if s.metrics != nil {
					s.metrics.PMPairErrors.WithLabelValues(warehouseID).Inc()
				}
			case skipReason != "":
				result.Skipped = append(result.Skipped, dto.SkippedPair{
					EquipmentID:  eq.EquipmentID,
					PMTemplateID: tmpl.PMTemplateID,
					Reason:       skipReason,
				})
				s.countSkip(warehouseID, skipReason)
			default:
				result.Created = append(result.Created, dto.GeneratedWO{
					WorkOrderID:  created.WorkOrderID,
					WONumber:     created.WONumber,
					EquipmentID:  eq.EquipmentID,
					PMTemplateID: tmpl.PMTemplateID,
					DueDate:      created.DueDate.Format("2006-01-02"),
					Priority:     created.Priority,
				})
				if s.metrics != nil {
					s.metrics.PMWorkOrdersGenerated.WithLabelValues(warehouseID).Inc()
				}
			}
		}
	}

	// ── 阶段3: 通知与汇总 ──

	if len(result.Created) > 0 {
		if err := s.notifyGenerated(ctx, warehouseID, len(result.Created)); err != nil {
			s.logger.Warn("发送生成通知失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
		}
	}

	s.logger.Info("PM 生成通道完成",
		zap.String("warehouse_id", warehouseID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// generateForPair 判定单配对是否到期并创建工单。
// 返回值（新工单、跳过原因、错误）三者互斥。
func (s *pmGeneratorService) generateForPair(ctx context.Context, eq *model.Equipment, tmpl *model.PMTemplate, today time.Time) (*model.WorkOrder, string, error) {
	// 2.1 推导到期状态
	var last *time.Time
	latest, err := s.repo.WorkOrder.GetLatestCompletedPM(ctx, eq.EquipmentID, tmpl.PMTemplateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
	} else if latest.CompletedAt != nil {
		d := truncateToDate(*latest.CompletedAt)
		last = &d
	}

	nextDue, status, err := resolveEntry(last, tmpl.Frequency, today, s.lookaheadDays)
	if err != nil {
		return nil, "", err
	}
	if status == model.ComplianceCompliant {
		return nil, SkipReasonNotDue, nil
	}

	// 2.2 去重：同配对已存在未完结 PM 工单则跳过
	open, err := s.repo.WorkOrder.ListOpenPMByPair(ctx, eq.EquipmentID, tmpl.PMTemplateID)
	if err != nil {
		return nil, "", err
	}
	if len(open) > 0 {
		return nil, SkipReasonDuplicateWO, nil
	}

	// 2.3 创建工单
	templateID := tmpl.PMTemplateID
	wo := &model.WorkOrder{
		WONumber:     newWONumber(s.now()),
		Type:         model.WOTypePreventive,
		Status:       model.WOStatusNew,
		Priority:     priorityForCriticality(eq.Criticality),
		EquipmentID:  eq.EquipmentID,
		PMTemplateID: &templateID,
		WarehouseID:  eq.WarehouseID,
		Title:        fmt.Sprintf("%s - %s", tmpl.Component, tmpl.Action),
		Description:  fmt.Sprintf("设备 %s（%s）的周期性维护：%s", eq.AssetTag, eq.Model, tmpl.Action),
		DueDate:      nextDue,
	}
	if len(tmpl.CustomFieldSchema) > 0 {
		wo.CustomFields = datatypes.JSON([]byte("{}"))
	}

	if err := s.repo.WorkOrder.Create(ctx, wo); err != nil {
		return nil, "", err
	}
	return wo, "", nil
}

// notifyGenerated 通知仓库主管与经理本次生成结果，尊重用户通知偏好
func (s *pmGeneratorService) notifyGenerated(ctx context.Context, warehouseID string, created int) error {
	recipients, err := s.repo.User.ListByWarehouseAndRoles(ctx, warehouseID, []string{model.RoleSupervisor, model.RoleManager})
	if err != nil {
		return err
	}

	relatedType := "warehouse"
	notifications := make([]model.Notification, 0, len(recipients))
	for _, u := range recipients {
		pref, err := s.repo.Notification.GetPreference(ctx, u.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if pref != nil && !pref.PMGenerated {
			continue
		}
		notifications = append(notifications, model.Notification{
			UserID:      u.UserID,
			Type:        model.NotificationPMGenerated,
			Title:       "PM 工单已生成",
			Content:     fmt.Sprintf("本次预防性维护通道共生成 %d 张工单", created),
			RelatedType: &relatedType,
			RelatedID:   &warehouseID,
		})
	}
	return s.repo.Notification.BatchCreate(ctx, notifications)
}

// ── 内部辅助方法 ──

func (s *pmGeneratorService) countSkip(warehouseID, reason string) {
	if s.metrics != nil {
		s.metrics.PMPairsSkipped.WithLabelValues(warehouseID, reason).Inc()
	}
}

// priorityForCriticality 设备重要度与工单优先级一一对应
func priorityForCriticality(criticality string) string {
	switch criticality {
	case model.CriticalityLow:
		return model.WOPriorityLow
	case model.CriticalityMedium:
		return model.WOPriorityMedium
	case model.CriticalityHigh:
		return model.WOPriorityHigh
	case model.CriticalityCritical:
		return model.WOPriorityCritical
	default:
		return model.WOPriorityMedium
	}
}
