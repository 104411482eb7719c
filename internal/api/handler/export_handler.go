package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCompliance 导出仓库合规报告
// GET /api/v1/export/compliance?warehouse_id=xxx&window_days=90
func (h *ExportHandler) ExportCompliance(c *gin.Context) {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		response.BadRequest(c, 10001, "warehouse_id 不能为空")
		return
	}

	var req dto.ComplianceQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportComplianceReport(c.Request.Context(), warehouseID, req.WindowDays)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// ExportWorkOrders 导出仓库工单清单
// GET /api/v1/export/work-orders?warehouse_id=xxx&status=new
func (h *ExportHandler) ExportWorkOrders(c *gin.Context) {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		response.BadRequest(c, 10001, "warehouse_id 不能为空")
		return
	}
	status := c.Query("status")

	buf, filename, err := h.exportSvc.ExportWorkOrders(c.Request.Context(), warehouseID, status)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, filename, buf.Bytes())
}

// writeXLSX 设置下载响应头并写入 Excel 内容
func writeXLSX(c *gin.Context, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 21001, "仓库不存在")
	case errors.Is(err, service.ErrExportNoData):
		response.BadRequest(c, 21002, "没有可导出的数据")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
