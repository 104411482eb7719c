package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// PMTemplateHandler PM 模板模块 HTTP 处理器
type PMTemplateHandler struct {
	templateSvc service.PMTemplateService
}

// NewPMTemplateHandler 创建 PMTemplateHandler
func NewPMTemplateHandler(templateSvc service.PMTemplateService) *PMTemplateHandler {
	return &PMTemplateHandler{templateSvc: templateSvc}
}

// ListPMTemplates 获取 PM 模板列表
// GET /api/v1/pm-templates
func (h *PMTemplateHandler) ListPMTemplates(c *gin.Context) {
	var req dto.PMTemplateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.templateSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetPMTemplate 获取 PM 模板详情
// GET /api/v1/pm-templates/:id
func (h *PMTemplateHandler) GetPMTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	tmpl, err := h.templateSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePMTemplateError(c, err)
		return
	}

	response.OK(c, tmpl)
}

// CreatePMTemplate 创建 PM 模板
// POST /api/v1/pm-templates
func (h *PMTemplateHandler) CreatePMTemplate(c *gin.Context) {
	var req dto.CreatePMTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tmpl, err := h.templateSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePMTemplateError(c, err)
		return
	}

	response.Created(c, tmpl)
}

// UpdatePMTemplate 更新 PM 模板
// PUT /api/v1/pm-templates/:id
func (h *PMTemplateHandler) UpdatePMTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	var req dto.UpdatePMTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tmpl, err := h.templateSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePMTemplateError(c, err)
		return
	}

	response.OK(c, tmpl)
}

// DeletePMTemplate 删除 PM 模板（软删除，历史工单保留引用）
// DELETE /api/v1/pm-templates/:id
func (h *PMTemplateHandler) DeletePMTemplate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.templateSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handlePMTemplateError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePMTemplateError 统一处理 PM 模板模块业务错误
func (h *PMTemplateHandler) handlePMTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPMTemplateNotFound):
		response.NotFound(c, 15001, "PM 模板不存在")
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 15002, "仓库不存在")
	case errors.Is(err, service.ErrInvalidFrequency):
		response.BadRequest(c, 15003, "无效的维护频率")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
