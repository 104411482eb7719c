package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *mocks) {
	repo, m := newTestRepository()
	compliance := NewPMComplianceService(testPMConfig(), repo, metrics.NewMetrics(), zap.NewNop())
	compliance.(*pmComplianceService).now = func() time.Time { return date(2026, 3, 10) }
	svc := NewExportService(repo, compliance, zap.NewNop())

	m.warehouse.warehouses["wh-1"] = &model.Warehouse{
		WarehouseID: "wh-1", Name: "主仓库", Code: "MAIN", Active: true,
	}
	return svc, m
}

func seedExportWO(m *mocks, id, woNumber, status string, due time.Time, eq *model.Equipment) {
	wo := &model.WorkOrder{
		WorkOrderID: id,
		WONumber:    woNumber,
		Type:        model.WOTypeCorrective,
		Status:      status,
		Priority:    model.WOPriorityMedium,
		Title:       "更换传送带轴承",
		WarehouseID: "wh-1",
		DueDate:     due,
	}
	if eq != nil {
		wo.EquipmentID = eq.EquipmentID
		wo.Equipment = eq
	} else {
		wo.EquipmentID = "eq-gone"
	}
	if status == model.WOStatusCompleted {
		completed := due
		wo.CompletedAt = &completed
	}
	m.workOrder.orders[id] = wo
}

// ── ExportComplianceReport 测试 ──

func TestExportService_ComplianceReport_WarehouseNotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportComplianceReport(context.Background(), "wh-missing", 0)
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("期望 ErrWarehouseNotFound，实际: %v", err)
	}
}

func TestExportService_ComplianceReport_NoData(t *testing.T) {
	svc, _ := setupTestExportService()

	// 仓库存在但没有在用设备
	_, _, err := svc.ExportComplianceReport(context.Background(), "wh-1", 0)
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("期望 ErrExportNoData，实际: %v", err)
	}
}

func TestExportService_ComplianceReport_Success(t *testing.T) {
	svc, m := setupTestExportService()
	seedSchedulePair(m, model.FrequencyMonthly)

	// 一张按期完成、一张逾期未完成的 PM 工单
	completed := date(2026, 2, 10)
	seedPMWO(m, "wo-1", "eq-conv-1", date(2026, 2, 10), &completed)
	seedPMWO(m, "wo-2", "eq-conv-1", date(2026, 3, 5), nil)

	buf, filename, err := svc.ExportComplianceReport(context.Background(), "wh-1", 0)
	if err != nil {
		t.Fatalf("ExportComplianceReport 应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出的 Excel buffer 不应为空")
	}
	if filename != "合规报告_MAIN.xlsx" {
		t.Errorf("期望文件名=合规报告_MAIN.xlsx，实际=%s", filename)
	}
	// Excel .xlsx 文件以 PK (0x504B) 开头
	header := buf.Bytes()[:2]
	if header[0] != 0x50 || header[1] != 0x4B {
		t.Error("输出内容不是有效的 xlsx 文件格式（应以 PK 开头）")
	}
}

func TestExportService_ComplianceReport_RowPerEquipment(t *testing.T) {
	svc, m := setupTestExportService()
	seedSchedulePair(m, model.FrequencyMonthly)
	m.equipment.equipments["eq-pump-1"] = &model.Equipment{
		EquipmentID: "eq-pump-1",
		AssetTag:    "PUMP-001",
		WarehouseID: "wh-1",
		Model:       "X200",
		Status:      model.EquipmentStatusActive,
		Criticality: model.CriticalityMedium,
	}

	buf, _, err := svc.ExportComplianceReport(context.Background(), "wh-1", 30)
	if err != nil {
		t.Fatalf("ExportComplianceReport 应成功: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("读取导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("合规报告")
	if err != nil {
		t.Fatalf("读取合规报告工作表失败: %v", err)
	}
	// 标题行 + 汇总行 + 空行 + 表头行 + 每设备一行明细
	if len(rows) != 6 {
		t.Fatalf("期望 6 行（含 2 行设备明细），实际 %d", len(rows))
	}
	if rows[4][0] != "CONV-001" {
		t.Errorf("期望首行明细资产标签=CONV-001，实际=%s", rows[4][0])
	}
	if rows[5][0] != "PUMP-001" {
		t.Errorf("期望次行明细资产标签=PUMP-001，实际=%s", rows[5][0])
	}
}

// ── ExportWorkOrders 测试 ──

func TestExportService_WorkOrders_WarehouseNotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportWorkOrders(context.Background(), "wh-missing", "")
	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("期望 ErrWarehouseNotFound，实际: %v", err)
	}
}

func TestExportService_WorkOrders_NoData(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportWorkOrders(context.Background(), "wh-1", "")
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("期望 ErrExportNoData，实际: %v", err)
	}
}

func TestExportService_WorkOrders_Success(t *testing.T) {
	svc, m := setupTestExportService()
	eq, _ := seedSchedulePair(m, model.FrequencyMonthly)

	seedExportWO(m, "wo-1", "WO-2026-0001", model.WOStatusNew, date(2026, 3, 12), eq)
	// 无关联设备的工单，资产标签输出为 -
	seedExportWO(m, "wo-2", "WO-2026-0002", model.WOStatusCompleted, date(2026, 3, 8), nil)

	buf, filename, err := svc.ExportWorkOrders(context.Background(), "wh-1", "")
	if err != nil {
		t.Fatalf("ExportWorkOrders 应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出的 Excel buffer 不应为空")
	}
	if filename != "工单清单_MAIN.xlsx" {
		t.Errorf("期望文件名=工单清单_MAIN.xlsx，实际=%s", filename)
	}
	header := buf.Bytes()[:2]
	if header[0] != 0x50 || header[1] != 0x4B {
		t.Error("输出内容不是有效的 xlsx 文件格式（应以 PK 开头）")
	}
}

func TestExportService_WorkOrders_StatusFilter(t *testing.T) {
	svc, m := setupTestExportService()
	eq, _ := seedSchedulePair(m, model.FrequencyMonthly)

	seedExportWO(m, "wo-1", "WO-2026-0001", model.WOStatusNew, date(2026, 3, 12), eq)
	seedExportWO(m, "wo-2", "WO-2026-0002", model.WOStatusNew, date(2026, 3, 15), eq)
	seedExportWO(m, "wo-3", "WO-2026-0003", model.WOStatusCompleted, date(2026, 3, 8), eq)

	buf, _, err := svc.ExportWorkOrders(context.Background(), "wh-1", model.WOStatusNew)
	if err != nil {
		t.Fatalf("ExportWorkOrders 应成功: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("读取导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("工单清单")
	if err != nil {
		t.Fatalf("读取工单清单工作表失败: %v", err)
	}
	// 标题行 + 表头行 + 2 行新建工单，已完成工单被过滤掉
	if len(rows) != 4 {
		t.Fatalf("期望 4 行（含 2 行工单明细），实际 %d", len(rows))
	}
	// 按到期日升序排列
	if rows[2][0] != "WO-2026-0001" {
		t.Errorf("期望首行工单号=WO-2026-0001，实际=%s", rows[2][0])
	}
	if rows[3][0] != "WO-2026-0002" {
		t.Errorf("期望次行工单号=WO-2026-0002，实际=%s", rows[3][0])
	}
}
