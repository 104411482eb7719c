package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// PMHandler PM 引擎 HTTP 处理器：计划查询、生成通道、合规统计、自动化运行、日历订阅
type PMHandler struct {
	scheduleSvc   service.PMScheduleService
	generatorSvc  service.PMGeneratorService
	complianceSvc service.PMComplianceService
	automationSvc service.PMAutomationService
	calendarSvc   service.CalendarService
}

// NewPMHandler 创建 PMHandler
func NewPMHandler(
	scheduleSvc service.PMScheduleService,
	generatorSvc service.PMGeneratorService,
	complianceSvc service.PMComplianceService,
	automationSvc service.PMAutomationService,
	calendarSvc service.CalendarService,
) *PMHandler {
	return &PMHandler{
		scheduleSvc:   scheduleSvc,
		generatorSvc:  generatorSvc,
		complianceSvc: complianceSvc,
		automationSvc: automationSvc,
		calendarSvc:   calendarSvc,
	}
}

// GetSchedule 获取设备维护计划（只读预览，不创建工单）
// GET /api/v1/pm/schedule/:equipmentId
func (h *PMHandler) GetSchedule(c *gin.Context) {
	equipmentID := c.Param("equipmentId")
	if equipmentID == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	schedule, err := h.scheduleSvc.GetSchedule(c.Request.Context(), equipmentID)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	response.OK(c, schedule)
}

// Generate 手动触发仓库生成通道
// POST /api/v1/pm/generate
func (h *PMHandler) Generate(c *gin.Context) {
	var req dto.PMTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.generatorSvc.GenerateForWarehouse(c.Request.Context(), req.WarehouseID)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	response.OK(c, result)
}

// Run 手动触发仓库自动化运行（带单飞互斥与超时看门狗）
// POST /api/v1/pm/run
func (h *PMHandler) Run(c *gin.Context) {
	var req dto.PMTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	report, err := h.automationSvc.Run(c.Request.Context(), req.WarehouseID)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	response.OK(c, report)
}

// GetEquipmentCompliance 单设备合规统计
// GET /api/v1/pm/compliance/equipment/:id?window_days=90
func (h *PMHandler) GetEquipmentCompliance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	var req dto.ComplianceQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	record, err := h.complianceSvc.ComputeForEquipment(c.Request.Context(), id, req.WindowDays)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	response.OK(c, record)
}

// GetWarehouseCompliance 仓库级合规汇总
// GET /api/v1/pm/compliance/warehouse/:id?window_days=90
func (h *PMHandler) GetWarehouseCompliance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "仓库ID不能为空")
		return
	}

	var req dto.ComplianceQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	fleet, err := h.complianceSvc.ComputeForWarehouse(c.Request.Context(), id, req.WindowDays)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	response.OK(c, fleet)
}

// GetCalendar 仓库 PM 日历订阅（iCalendar）
// GET /api/v1/pm/calendar/:warehouseId?horizon_days=30
func (h *PMHandler) GetCalendar(c *gin.Context) {
	warehouseID := c.Param("warehouseId")
	if warehouseID == "" {
		response.BadRequest(c, 10001, "仓库ID不能为空")
		return
	}

	var req dto.CalendarQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	content, filename, err := h.calendarSvc.BuildWarehouseCalendar(c.Request.Context(), warehouseID, req.HorizonDays)
	if err != nil {
		h.handlePMError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}

// handlePMError 统一处理 PM 引擎业务错误
func (h *PMHandler) handlePMError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, 20001, "设备不存在")
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 20002, "仓库不存在")
	case errors.Is(err, service.ErrInvalidFrequency):
		response.BadRequest(c, 20003, "无效的维护频率")
	case errors.Is(err, service.ErrRunAlreadyInProgress):
		response.Conflict(c, 20004, "该仓库的 PM 运行正在进行中")
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, 20005, "运行超时，已生成的工单保留")
	default:
		response.InternalError(c)
	}
}
