package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// WorkOrderHandler 工单模块 HTTP 处理器
type WorkOrderHandler struct {
	woSvc service.WorkOrderService
}

// NewWorkOrderHandler 创建 WorkOrderHandler
func NewWorkOrderHandler(woSvc service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{woSvc: woSvc}
}

// ListWorkOrders 获取工单列表
// GET /api/v1/work-orders
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	var req dto.WorkOrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.woSvc.List(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateFormat) {
			response.BadRequest(c, 16006, "日期格式无效，应为 YYYY-MM-DD")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetWorkOrder 获取工单详情
// GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) GetWorkOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工单ID不能为空")
		return
	}

	wo, err := h.woSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// CreateWorkOrder 创建工单（手工 CM/紧急工单或手工 PM）
// POST /api/v1/work-orders
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	var req dto.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	wo, err := h.woSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.Created(c, wo)
}

// UpdateWorkOrder 更新工单基础字段
// PUT /api/v1/work-orders/:id
func (h *WorkOrderHandler) UpdateWorkOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工单ID不能为空")
		return
	}

	var req dto.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	wo, err := h.woSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// UpdateWorkOrderStatus 推进工单状态
// PUT /api/v1/work-orders/:id/status
func (h *WorkOrderHandler) UpdateWorkOrderStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工单ID不能为空")
		return
	}

	var req dto.UpdateWOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	wo, err := h.woSvc.UpdateStatus(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// AssignWorkOrder 指派工单
// PUT /api/v1/work-orders/:id/assign
func (h *WorkOrderHandler) AssignWorkOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工单ID不能为空")
		return
	}

	var req dto.AssignWORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	wo, err := h.woSvc.Assign(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// DeleteWorkOrder 删除工单
// DELETE /api/v1/work-orders/:id
func (h *WorkOrderHandler) DeleteWorkOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工单ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.woSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleWorkOrderError 统一处理工单模块业务错误
func (h *WorkOrderHandler) handleWorkOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkOrderNotFound):
		response.NotFound(c, 16001, "工单不存在")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		response.BadRequest(c, 16002, "非法的状态流转")
	case errors.Is(err, service.ErrWONotAssigned):
		response.BadRequest(c, 16003, "工单未指派，不能进入 assigned 状态")
	case errors.Is(err, service.ErrAssigneeNotFound):
		response.NotFound(c, 16004, "指派的用户不存在")
	case errors.Is(err, service.ErrAssigneeDisabled):
		response.BadRequest(c, 16005, "指派的用户已停用")
	case errors.Is(err, service.ErrInvalidDateFormat):
		response.BadRequest(c, 16006, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrWOClosed):
		response.BadRequest(c, 16007, "工单已关闭，不可修改")
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, 16008, "设备不存在")
	case errors.Is(err, service.ErrPMTemplateNotFound):
		response.NotFound(c, 16009, "PM 模板不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16010, "工单已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
