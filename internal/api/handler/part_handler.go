package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// PartHandler 备件模块 HTTP 处理器
type PartHandler struct {
	partSvc service.PartService
}

// NewPartHandler 创建 PartHandler
func NewPartHandler(partSvc service.PartService) *PartHandler {
	return &PartHandler{partSvc: partSvc}
}

// ListParts 获取备件列表
// GET /api/v1/parts
func (h *PartHandler) ListParts(c *gin.Context) {
	var req dto.PartListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.partSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetPart 获取备件详情
// GET /api/v1/parts/:id
func (h *PartHandler) GetPart(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备件ID不能为空")
		return
	}

	part, err := h.partSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePartError(c, err)
		return
	}

	response.OK(c, part)
}

// CreatePart 创建备件
// POST /api/v1/parts
func (h *PartHandler) CreatePart(c *gin.Context) {
	var req dto.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	part, err := h.partSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePartError(c, err)
		return
	}

	response.Created(c, part)
}

// UpdatePart 更新备件
// PUT /api/v1/parts/:id
func (h *PartHandler) UpdatePart(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备件ID不能为空")
		return
	}

	var req dto.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	part, err := h.partSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePartError(c, err)
		return
	}

	response.OK(c, part)
}

// AdjustStock 调整备件库存
// POST /api/v1/parts/:id/adjust-stock
func (h *PartHandler) AdjustStock(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备件ID不能为空")
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	part, err := h.partSvc.AdjustStock(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePartError(c, err)
		return
	}

	response.OK(c, part)
}

// ListMovements 备件库存流水
// GET /api/v1/parts/:id/movements
func (h *PartHandler) ListMovements(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备件ID不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	movements, total, err := h.partSvc.ListMovements(c.Request.Context(), id, &page)
	if err != nil {
		h.handlePartError(c, err)
		return
	}

	response.OKPage(c, movements, total, page.GetPage(), page.GetPageSize())
}

// DeletePart 删除备件
// DELETE /api/v1/parts/:id
func (h *PartHandler) DeletePart(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备件ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.partSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handlePartError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePartError 统一处理备件模块业务错误
func (h *PartHandler) handlePartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPartNotFound):
		response.NotFound(c, 17001, "备件不存在")
	case errors.Is(err, service.ErrPartNumberExists):
		response.BadRequest(c, 17002, "备件编号在该仓库已存在")
	case errors.Is(err, service.ErrInsufficientStock):
		response.BadRequest(c, 17003, "库存不足")
	case errors.Is(err, service.ErrWorkOrderRequired):
		response.BadRequest(c, 17004, "工单消耗类型必须关联工单")
	case errors.Is(err, service.ErrZeroStockAdjustment):
		response.BadRequest(c, 17005, "调整数量不能为 0")
	case errors.Is(err, service.ErrWorkOrderNotFound):
		response.NotFound(c, 17006, "关联工单不存在")
	case errors.Is(err, service.ErrVendorNotFound):
		response.NotFound(c, 17007, "供应商不存在")
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 17008, "仓库不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 17009, "库存已被其他操作修改，请重试")
	default:
		response.InternalError(c)
	}
}
