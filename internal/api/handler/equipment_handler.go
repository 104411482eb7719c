package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/response"
)

// EquipmentHandler 设备模块 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// ListEquipment 获取设备列表
// GET /api/v1/equipment
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	var req dto.EquipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.equipmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetEquipment 获取设备详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	equipment, err := h.equipmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, equipment)
}

// CreateEquipment 创建设备
// POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	equipment, err := h.equipmentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, equipment)
}

// UpdateEquipment 更新设备
// PUT /api/v1/equipment/:id
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	equipment, err := h.equipmentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, equipment)
}

// DeleteEquipment 删除设备
// DELETE /api/v1/equipment/:id
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "设备ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.equipmentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportEquipment 批量导入设备台账
// POST /api/v1/equipment/import
// multipart/form-data: file=<xlsx>, warehouse_id=<uuid>
func (h *EquipmentHandler) ImportEquipment(c *gin.Context) {
	warehouseID := c.PostForm("warehouse_id")
	if warehouseID == "" {
		response.BadRequest(c, 10001, "warehouse_id 不能为空")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.equipmentSvc.ParseImportFile(file)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	result, err := h.equipmentSvc.ImportEquipment(c.Request.Context(), warehouseID, rows, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, result)
}

// handleEquipmentError 统一处理设备模块业务错误
func (h *EquipmentHandler) handleEquipmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, 14001, "设备不存在")
	case errors.Is(err, service.ErrAssetTagExists):
		response.BadRequest(c, 14002, "资产标签在该仓库已存在")
	case errors.Is(err, service.ErrWarehouseNotFound):
		response.NotFound(c, 14003, "仓库不存在")
	case errors.Is(err, service.ErrInvalidDateFormat):
		response.BadRequest(c, 14004, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 14005, "Excel 文件中无有效数据")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 14006, "单次导入行数超过上限")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 14007, "Excel 表头缺少必要列")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14008, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
