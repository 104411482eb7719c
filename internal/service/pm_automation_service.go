package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
)

// ── PM 自动化调度业务错误 ──

var (
	// ErrRunAlreadyInProgress 同一仓库的运行尚未结束，拒绝并发触发
	ErrRunAlreadyInProgress = errors.New("该仓库的 PM 运行正在进行中")
)

// PMAutomationService PM 自动化调度业务接口。
// 每个仓库同一时刻至多一次运行，槽位随运行结束（含超时与异常）释放。
type PMAutomationService interface {
	// Run 对单个仓库执行一次受看门狗保护的生成运行
	Run(ctx context.Context, warehouseID string) (*dto.RunReportResponse, error)
	// RunAll 对全部启用仓库各执行一次运行，运行中的仓库跳过，定时器入口
	RunAll(ctx context.Context)
}

type pmAutomationService struct {
	repo       *repository.Repository
	generator  PMGeneratorService
	logger     *zap.Logger
	metrics    *metrics.Metrics
	runTimeout time.Duration
	now        func() time.Time

	mu      sync.Mutex
	running map[string]bool
}

// NewPMAutomationService 创建 PMAutomationService 实例
func NewPMAutomationService(cfg *config.Config, repo *repository.Repository, generator PMGeneratorService, m *metrics.Metrics, logger *zap.Logger) PMAutomationService {
	return &pmAutomationService{
		repo:       repo,
		generator:  generator,
		logger:     logger,
		metrics:    m,
		runTimeout: cfg.PM.RunTimeout,
		now:        time.Now,
		running:    make(map[string]bool),
	}
}

// ────────────────────── Run ──────────────────────

func (s *pmAutomationService) Run(ctx context.Context, warehouseID string) (*dto.RunReportResponse, error) {
	if !s.acquire(warehouseID) {
		return nil, ErrRunAlreadyInProgress
	}
	// 释放必须覆盖 panic 路径，否则仓库槽位永久占用
	defer s.release(warehouseID)

	started := s.now()
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	result, err := s.generator.GenerateForWarehouse(runCtx, warehouseID)
	finished := s.now()

	outcome := "success"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	case runCtx.Err() != nil:
		// 超时发生在逐配对阶段：已创建的工单保留，剩余配对计入失败
		outcome = "timeout"
	}
	if s.metrics != nil {
		s.metrics.PMRunDuration.WithLabelValues(warehouseID, outcome).Observe(finished.Sub(started).Seconds())
	}

	if err != nil {
		s.logger.Error("PM 自动化运行失败",
			zap.String("warehouse_id", warehouseID),
			zap.String("outcome", outcome),
			zap.Error(err))
		return nil, err
	}

	report := &dto.RunReportResponse{
		WarehouseID:  warehouseID,
		Generated:    len(result.Created),
		SkippedCount: len(result.Skipped),
		ErrorCount:   len(result.Errors),
		StartedAt:    started.Format(time.RFC3339),
		FinishedAt:   finished.Format(time.RFC3339),
	}
	for _, e := range result.Errors {
		report.Errors = append(report.Errors, fmt.Sprintf("%s/%s: %s", e.EquipmentID, e.PMTemplateID, e.Message))
	}

	// 通知走外层 ctx，避免被已超时的运行上下文连带取消
	if err := s.notifyRunCompleted(ctx, warehouseID, report); err != nil {
		s.logger.Warn("发送运行完成通知失败", zap.String("warehouse_id", warehouseID), zap.Error(err))
	}

	s.logger.Info("PM 自动化运行完成",
		zap.String("warehouse_id", warehouseID),
		zap.String("outcome", outcome),
		zap.Int("generated", report.Generated),
		zap.Duration("elapsed", finished.Sub(started)))

	return report, nil
}

// ────────────────────── RunAll ──────────────────────

func (s *pmAutomationService) RunAll(ctx context.Context) {
	warehouses, err := s.repo.Warehouse.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询启用仓库失败", zap.Error(err))
		return
	}

	for i := range warehouses {
		wh := &warehouses[i]
		if _, err := s.Run(ctx, wh.WarehouseID); err != nil {
			if errors.Is(err, ErrRunAlreadyInProgress) {
				s.logger.Info("仓库运行中，本轮跳过", zap.String("warehouse_id", wh.WarehouseID))
				continue
			}
			s.logger.Error("仓库自动化运行失败", zap.String("warehouse_id", wh.WarehouseID), zap.Error(err))
		}
	}
}

// ── 内部辅助方法 ──

// acquire 占用仓库运行槽位，已占用时返回 false
func (s *pmAutomationService) acquire(warehouseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[warehouseID] {
		return false
	}
	s.running[warehouseID] = true
	return true
}

func (s *pmAutomationService) release(warehouseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, warehouseID)
}

func (s *pmAutomationService) notifyRunCompleted(ctx context.Context, warehouseID string, report *dto.RunReportResponse) error {
	recipients, err := s.repo.User.ListByWarehouseAndRoles(ctx, warehouseID, []string{model.RoleSupervisor, model.RoleManager})
	if err != nil {
		return err
	}

	relatedType := "warehouse"
	notifications := make([]model.Notification, 0, len(recipients))
	for _, u := range recipients {
		notifications = append(notifications, model.Notification{
			UserID: u.UserID,
			Type:   model.NotificationRunCompleted,
			Title:  "PM 自动化运行完成",
			Content: fmt.Sprintf("本次运行生成 %d 张工单，跳过 %d 个配对，失败 %d 个",
				report.Generated, report.SkippedCount, report.ErrorCount),
			RelatedType: &relatedType,
			RelatedID:   &warehouseID,
		})
	}
	return s.repo.Notification.BatchCreate(ctx, notifications)
}
