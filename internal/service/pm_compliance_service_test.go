package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
)

// ── 测试辅助 ──

func setupTestPMComplianceService() (PMComplianceService, *mocks) {
	repo, m := newTestRepository()
	svc := NewPMComplianceService(testPMConfig(), repo, metrics.NewMetrics(), zap.NewNop())
	svc.(*pmComplianceService).now = func() time.Time { return date(2026, 3, 10) }

	m.warehouse.warehouses["wh-1"] = &model.Warehouse{
		WarehouseID: "wh-1", Name: "主仓库", Code: "MAIN", Active: true,
	}
	return svc, m
}

// seedPMWO 播种一张窗口内的 PM 工单；completedAt 为 nil 表示未完结
func seedPMWO(m *mocks, id, equipmentID string, due time.Time, completedAt *time.Time) {
	status := model.WOStatusNew
	if completedAt != nil {
		status = model.WOStatusClosed
	}
	templateID := "tmpl-belt"
	m.workOrder.orders[id] = &model.WorkOrder{
		WorkOrderID: id, WONumber: "WO-TEST-" + id,
		Type: model.WOTypePreventive, Status: status,
		EquipmentID: equipmentID, PMTemplateID: &templateID, WarehouseID: "wh-1",
		DueDate: due, CompletedAt: completedAt,
	}
}

// ── ComputeForEquipment 测试 ──

func TestPMComplianceService_Equipment_NoObligations(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 0)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	// 窗口内无任何 PM 义务 → 100%
	if record.CompliancePercentage != 100.0 {
		t.Errorf("期望合规率=100，实际=%.1f", record.CompliancePercentage)
	}
	if record.TotalPMCount != 0 || record.MissedPMCount != 0 {
		t.Errorf("期望 total=0 missed=0，实际 total=%d missed=%d", record.TotalPMCount, record.MissedPMCount)
	}
	// windowDays<=0 时用配置默认值
	if record.WindowDays != 90 {
		t.Errorf("期望WindowDays=90，实际=%d", record.WindowDays)
	}
	if record.LastPMDate != nil {
		t.Errorf("从未维护不应有 LastPMDate，实际=%s", *record.LastPMDate)
	}
	// 有适用模板且从未维护 → 下次到期 = 今天
	if record.NextPMDate == nil || *record.NextPMDate != "2026-03-10" {
		t.Errorf("期望NextPMDate=2026-03-10，实际=%v", record.NextPMDate)
	}
}

func TestPMComplianceService_Equipment_MissedOpenOverdue(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)

	onTime := date(2026, 2, 1)
	seedPMWO(m, "wo-ok", "eq-conv-1", date(2026, 2, 1), &onTime)
	// 3月1日到期的工单仍未完结 → 错失
	seedPMWO(m, "wo-late", "eq-conv-1", date(2026, 3, 1), nil)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 0)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	if record.TotalPMCount != 2 {
		t.Fatalf("期望 total=2，实际=%d", record.TotalPMCount)
	}
	if record.MissedPMCount != 1 {
		t.Errorf("期望 missed=1，实际=%d", record.MissedPMCount)
	}
	if record.CompliancePercentage != 50.0 {
		t.Errorf("期望合规率=50，实际=%.1f", record.CompliancePercentage)
	}
}

func TestPMComplianceService_Equipment_GraceBoundary(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	svc.(*pmComplianceService).graceDays = 2
	seedSchedulePair(m, model.FrequencyMonthly)

	// 恰好在宽限期最后一天完成 → 合规
	inGrace := date(2026, 2, 12)
	seedPMWO(m, "wo-grace", "eq-conv-1", date(2026, 2, 10), &inGrace)
	// 超出宽限期一天 → 错失
	pastGrace := date(2026, 2, 23)
	seedPMWO(m, "wo-miss", "eq-conv-1", date(2026, 2, 20), &pastGrace)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 0)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	if record.MissedPMCount != 1 {
		t.Errorf("期望 missed=1（仅超宽限期那张），实际=%d", record.MissedPMCount)
	}
	if record.CompliancePercentage != 50.0 {
		t.Errorf("期望合规率=50，实际=%.1f", record.CompliancePercentage)
	}
}

func TestPMComplianceService_Equipment_RoundsToOneDecimal(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)

	done := date(2026, 1, 15)
	seedPMWO(m, "wo-1", "eq-conv-1", date(2026, 1, 15), &done)
	done2 := date(2026, 2, 15)
	seedPMWO(m, "wo-2", "eq-conv-1", date(2026, 2, 15), &done2)
	seedPMWO(m, "wo-3", "eq-conv-1", date(2026, 3, 1), nil)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 0)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	// 2/3 → 66.666... → 66.7
	if record.CompliancePercentage != 66.7 {
		t.Errorf("期望合规率=66.7，实际=%.1f", record.CompliancePercentage)
	}
}

func TestPMComplianceService_Equipment_WindowExcludesOld(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)

	// 到期日在 30 天窗口之外的工单不计入
	seedPMWO(m, "wo-ancient", "eq-conv-1", date(2026, 1, 5), nil)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 30)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	if record.WindowDays != 30 {
		t.Errorf("期望WindowDays=30，实际=%d", record.WindowDays)
	}
	if record.TotalPMCount != 0 {
		t.Errorf("窗口外工单不应计入，实际 total=%d", record.TotalPMCount)
	}
	if record.CompliancePercentage != 100.0 {
		t.Errorf("期望合规率=100，实际=%.1f", record.CompliancePercentage)
	}
}

func TestPMComplianceService_Equipment_LastAndNextPMDate(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)

	done := date(2026, 2, 20)
	seedPMWO(m, "wo-done", "eq-conv-1", date(2026, 2, 20), &done)

	record, err := svc.ComputeForEquipment(context.Background(), "eq-conv-1", 0)
	if err != nil {
		t.Fatalf("ComputeForEquipment 应成功: %v", err)
	}
	if record.LastPMDate == nil || *record.LastPMDate != "2026-02-20" {
		t.Errorf("期望LastPMDate=2026-02-20，实际=%v", record.LastPMDate)
	}
	if record.NextPMDate == nil || *record.NextPMDate != "2026-03-20" {
		t.Errorf("期望NextPMDate=2026-03-20，实际=%v", record.NextPMDate)
	}
}

func TestPMComplianceService_Equipment_NotFound(t *testing.T) {
	svc, _ := setupTestPMComplianceService()

	_, err := svc.ComputeForEquipment(context.Background(), "eq-missing", 0)
	if !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际: %v", err)
	}
}

// ── ComputeForWarehouse 测试 ──

func TestPMComplianceService_Warehouse_AveragesFleet(t *testing.T) {
	svc, m := setupTestPMComplianceService()
	seedSchedulePair(m, model.FrequencyMonthly)
	m.equipment.equipments["eq-conv-2"] = &model.Equipment{
		EquipmentID: "eq-conv-2", AssetTag: "CONV-002", WarehouseID: "wh-1",
		Model: "X200", Status: model.EquipmentStatusActive,
	}
	// 已退役设备不计入合规
	m.equipment.equipments["eq-conv-3"] = &model.Equipment{
		EquipmentID: "eq-conv-3", AssetTag: "CONV-003", WarehouseID: "wh-1",
		Model: "X200", Status: model.EquipmentStatusRetired,
	}

	// eq-conv-1: 1/2 合规 = 50%；eq-conv-2: 无义务 = 100%
	done := date(2026, 2, 1)
	seedPMWO(m, "wo-ok", "eq-conv-1", date(2026, 2, 1), &done)
	seedPMWO(m, "wo-late", "eq-conv-1", date(2026, 3, 1), nil)

	result, err := svc.ComputeForWarehouse(context.Background(), "wh-1", 0)
	if err != nil {
		t.Fatalf("ComputeForWarehouse 应成功: %v", err)
	}
	if len(result.Equipment) != 2 {
		t.Fatalf("期望 2 台设备的记录，实际 %d", len(result.Equipment))
	}
	if result.TotalPMCount != 2 || result.MissedPMCount != 1 {
		t.Errorf("期望汇总 total=2 missed=1，实际 total=%d missed=%d", result.TotalPMCount, result.MissedPMCount)
	}
	if result.AveragePercentage != 75.0 {
		t.Errorf("期望平均合规率=75，实际=%.1f", result.AveragePercentage)
	}
}

func TestPMComplianceService_Warehouse_NoEquipment(t *testing.T) {
	svc, _ := setupTestPMComplianceService()

	result, err := svc.ComputeForWarehouse(context.Background(), "wh-1", 0)
	if err != nil {
		t.Fatalf("ComputeForWarehouse 应成功: %v", err)
	}
	// 无设备视为全合规
	if result.AveragePercentage != 100.0 {
		t.Errorf("期望平均合规率=100，实际=%.1f", result.AveragePercentage)
	}
	if len(result.Equipment) != 0 {
		t.Errorf("期望空设备列表，实际 %d", len(result.Equipment))
	}
}

func TestPMComplianceService_Warehouse_NotFound(t *testing.T) {
	svc, _ := setupTestPMComplianceService()

	_, err := svc.ComputeForWarehouse(context.Background(), "wh-missing", 0)
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("期望 ErrWarehouseNotFound，实际: %v", err)
	}
}

// ── isMissedPM 测试 ──

func TestIsMissedPM(t *testing.T) {
	today := date(2026, 3, 10)
	completedOnTime := date(2026, 3, 1)
	completedLate := date(2026, 3, 5)

	tests := []struct {
		wo       model.WorkOrder
		grace    int
		expected bool
	}{
		// 未完结且已过期
		{model.WorkOrder{Status: model.WOStatusNew, DueDate: date(2026, 3, 1)}, 0, true},
		// 未完结但今天才到期
		{model.WorkOrder{Status: model.WOStatusInProgress, DueDate: date(2026, 3, 10)}, 0, false},
		// 按期完成
		{model.WorkOrder{Status: model.WOStatusClosed, DueDate: date(2026, 3, 1), CompletedAt: &completedOnTime}, 0, false},
		// 迟于宽限期完成
		{model.WorkOrder{Status: model.WOStatusClosed, DueDate: date(2026, 3, 1), CompletedAt: &completedLate}, 2, true},
		// 宽限期内完成
		{model.WorkOrder{Status: model.WOStatusClosed, DueDate: date(2026, 3, 1), CompletedAt: &completedLate}, 4, false},
	}
	for i, tt := range tests {
		result := isMissedPM(&tt.wo, today, tt.grace)
		if result != tt.expected {
			t.Errorf("用例 %d: isMissedPM = %v, 期望 %v", i, result, tt.expected)
		}
	}
}
