package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// WarehouseHandler 仓库模块 HTTP 处理器
type WarehouseHandler struct {
	warehouseSvc service.WarehouseService
}

// NewWarehouseHandler 创建 WarehouseHandler
func NewWarehouseHandler(warehouseSvc service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseSvc: warehouseSvc}
}

// ListWarehouses 获取仓库列表
// GET /api/v1/warehouses?include_inactive=true
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	warehouses, err := h.warehouseSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": warehouses})
}

// GetWarehouse 获取仓库详情
// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "仓库ID不能为空")
		return
	}

	warehouse, err := h.warehouseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleWarehouseError(c, err)
		return
	}

	response.OK(c, warehouse)
}

// CreateWarehouse 创建仓库
// POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	warehouse, err := h.warehouseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleWarehouseError(c, err)
		return
	}

	response.Created(c, warehouse)
}

// UpdateWarehouse 更新仓库
// PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "仓库ID不能为空")
		return
	}

	var req dto.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	warehouse, err := h.warehouseSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleWarehouseError(c, err)
		return
	}

	response.OK(c, warehouse)
}

// DeleteWarehouse 删除仓库
// DELETE /api/v1/warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "仓库ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.warehouseSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleWarehouseError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleWarehouseError 统一处理仓库模块业务错误
func (h *WarehouseHandler) handleWarehouseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 13001, "仓库不存在")
	case errors.Is(err, service.ErrWarehouseCodeExists):
		response.BadRequest(c, 13002, "仓库编码已存在")
	case errors.Is(err, service.ErrWarehouseHasEquipment):
		response.BadRequest(c, 13003, "仓库下存在设备，无法删除")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
