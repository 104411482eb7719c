package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 合规报告：仓库汇总行 + 每设备一行明细
//   - 工单清单：按筛选条件全量导出，不分页
type ExportService interface {
	// ExportComplianceReport 导出仓库合规报告为 Excel
	ExportComplianceReport(ctx context.Context, warehouseID string, windowDays int) (*bytes.Buffer, string, error)
	// ExportWorkOrders 导出工单清单为 Excel
	ExportWorkOrders(ctx context.Context, warehouseID, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo       *repository.Repository
	compliance PMComplianceService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, compliance PMComplianceService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, compliance: compliance, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportComplianceReport — 导出仓库合规报告为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：仓库名 — PM 合规报告（近 N 天）
//   - 汇总行：平均合规率 / 到期 PM 总数 / 漏检总数
//   - 明细行：每台在用设备一行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportComplianceReport(ctx context.Context, warehouseID string, windowDays int) (*bytes.Buffer, string, error) {
	warehouse, err := s.repo.Warehouse.GetByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", warehouseID), zap.Error(err))
		return nil, "", err
	}

	fleet, err := s.compliance.ComputeForWarehouse(ctx, warehouseID, windowDays)
	if err != nil {
		return nil, "", err
	}
	if len(fleet.Equipment) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "合规报告"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 38)
	f.SetColWidth(sheetName, "C", "G", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — PM 合规报告（近 %d 天）", warehouse.Name, fleet.WindowDays))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 汇总行
	f.SetCellValue(sheetName, "A2", "平均合规率")
	f.SetCellValue(sheetName, "B2", fmt.Sprintf("%.1f%%", fleet.AveragePercentage))
	f.SetCellValue(sheetName, "C2", "到期 PM 总数")
	f.SetCellValue(sheetName, "D2", fleet.TotalPMCount)
	f.SetCellValue(sheetName, "E2", "漏检总数")
	f.SetCellValue(sheetName, "F2", fleet.MissedPMCount)

	// 表头
	row := 4
	headers := []string{"资产标签", "设备 ID", "合规率(%)", "到期 PM 数", "漏检数", "最近完成", "下次到期"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
		f.SetCellStyle(sheetName, cell(colName(i), row), cell(colName(i), row), headerStyle)
	}

	// 数据行
	row = 5
	for _, rec := range fleet.Equipment {
		f.SetCellValue(sheetName, cell("A", row), rec.AssetTag)
		f.SetCellValue(sheetName, cell("B", row), rec.EquipmentID)
		f.SetCellValue(sheetName, cell("C", row), rec.CompliancePercentage)
		f.SetCellValue(sheetName, cell("D", row), rec.TotalPMCount)
		f.SetCellValue(sheetName, cell("E", row), rec.MissedPMCount)
		f.SetCellValue(sheetName, cell("F", row), strOrDash(rec.LastPMDate))
		f.SetCellValue(sheetName, cell("G", row), strOrDash(rec.NextPMDate))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("合规报告_%s.xlsx", warehouse.Code)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportWorkOrders — 导出工单清单为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWorkOrders(ctx context.Context, warehouseID, status string) (*bytes.Buffer, string, error) {
	warehouse, err := s.repo.Warehouse.GetByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWarehouseNotFound
		}
		s.logger.Error("查询仓库失败", zap.String("id", warehouseID), zap.Error(err))
		return nil, "", err
	}

	// 导出不分页，-1 取消 GORM 的 Offset/Limit 条件
	items, _, err := s.repo.WorkOrder.List(ctx, repository.WorkOrderFilter{
		WarehouseID: warehouseID,
		Status:      status,
	}, -1, -1)
	if err != nil {
		s.logger.Error("查询工单清单失败", zap.Error(err))
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工单清单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 16)
	f.SetColWidth(sheetName, "F", "F", 36)
	f.SetColWidth(sheetName, "G", "H", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 工单清单", warehouse.Name))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	headers := []string{"工单号", "类型", "状态", "优先级", "资产标签", "标题", "到期日", "完成时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
		f.SetCellStyle(sheetName, cell(colName(i), row), cell(colName(i), row), headerStyle)
	}

	// 数据行
	row = 3
	for i := range items {
		wo := &items[i]
		assetTag := "-"
		if wo.Equipment != nil {
			assetTag = wo.Equipment.AssetTag
		}
		completedAt := "-"
		if wo.CompletedAt != nil {
			completedAt = wo.CompletedAt.Format("2006-01-02 15:04")
		}

		f.SetCellValue(sheetName, cell("A", row), wo.WONumber)
		f.SetCellValue(sheetName, cell("B", row), woTypeNames[wo.Type])
		f.SetCellValue(sheetName, cell("C", row), woStatusNames[wo.Status])
		f.SetCellValue(sheetName, cell("D", row), woPriorityNames[wo.Priority])
		f.SetCellValue(sheetName, cell("E", row), assetTag)
		f.SetCellValue(sheetName, cell("F", row), wo.Title)
		f.SetCellValue(sheetName, cell("G", row), wo.DueDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("H", row), completedAt)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("工单清单_%s.xlsx", warehouse.Code)
	return buf, filename, nil
}

// ── 辅助函数 ──

var woTypeNames = map[string]string{
	"preventive": "预防性",
	"corrective": "纠正性",
	"emergency":  "紧急",
}

var woStatusNames = map[string]string{
	"new":         "新建",
	"assigned":    "已指派",
	"in_progress": "进行中",
	"completed":   "已完成",
	"verified":    "已验证",
	"closed":      "已关闭",
}

var woPriorityNames = map[string]string{
	"low":      "低",
	"medium":   "中",
	"high":     "高",
	"critical": "最高",
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
