package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── 工单模块业务错误 ──

var (
	ErrWorkOrderNotFound       = errors.New("工单不存在")
	ErrInvalidStatusTransition = errors.New("非法的工单状态流转")
	ErrWONotAssigned           = errors.New("工单尚未指派维修人员")
	ErrAssigneeNotFound        = errors.New("指派对象不存在")
	ErrAssigneeDisabled        = errors.New("指派对象已停用")
	ErrWOClosed                = errors.New("工单已关闭，不可修改")
)

// validTransitions 工单状态机的合法流转
// new → assigned → in_progress → completed → verified → closed
var validTransitions = map[string][]string{
	model.WOStatusNew:        {model.WOStatusAssigned},
	model.WOStatusAssigned:   {model.WOStatusInProgress},
	model.WOStatusInProgress: {model.WOStatusCompleted},
	model.WOStatusCompleted:  {model.WOStatusVerified},
	model.WOStatusVerified:   {model.WOStatusClosed},
	model.WOStatusClosed:     {},
}

// WorkOrderService 工单业务接口
type WorkOrderService interface {
	Create(ctx context.Context, req *dto.CreateWorkOrderRequest, callerID string) (*dto.WorkOrderResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WorkOrderResponse, error)
	List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkOrderRequest, callerID string) (*dto.WorkOrderResponse, error)
	// UpdateStatus 沿状态机单向推进；completed/verified/closed 时落对应时间戳
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateWOStatusRequest, callerID string) (*dto.WorkOrderResponse, error)
	// Assign 指派维修人员并推进到 assigned，触发 wo_assigned 通知
	Assign(ctx context.Context, id string, req *dto.AssignWORequest, callerID string) (*dto.WorkOrderResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type workOrderService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewWorkOrderService 创建 WorkOrderService 实例
func NewWorkOrderService(repo *repository.Repository, logger *zap.Logger) WorkOrderService {
	return &workOrderService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *workOrderService) Create(ctx context.Context, req *dto.CreateWorkOrderRequest, callerID string) (*dto.WorkOrderResponse, error) {
	// 校验设备
	equipment, err := s.repo.Equipment.GetByID(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("equipment_id", req.EquipmentID), zap.Error(err))
		return nil, err
	}

	// 校验模板（手工 PM 关联模板时）
	if req.PMTemplateID != nil {
		if _, err := s.repo.PMTemplate.GetByID(ctx, *req.PMTemplateID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPMTemplateNotFound
			}
			return nil, err
		}
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	wo := &model.WorkOrder{
		WONumber:     newWONumber(s.now()),
		Type:         req.Type,
		Status:       model.WOStatusNew,
		Priority:     req.Priority,
		EquipmentID:  equipment.EquipmentID,
		PMTemplateID: req.PMTemplateID,
		WarehouseID:  equipment.WarehouseID,
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      dueDate,
	}
	if wo.Priority == "" {
		wo.Priority = priorityForCriticality(equipment.Criticality)
	}
	wo.CreatedBy = &callerID

	if err := s.repo.WorkOrder.Create(ctx, wo); err != nil {
		s.logger.Error("创建工单失败", zap.Error(err))
		return nil, err
	}

	// 创建即指派
	if req.AssignedTo != nil {
		assigned, err := s.Assign(ctx, wo.WorkOrderID, &dto.AssignWORequest{AssignedTo: *req.AssignedTo}, callerID)
		if err != nil {
			return nil, err
		}
		return assigned, nil
	}

	return toWorkOrderResponse(wo), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workOrderService) GetByID(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toWorkOrderResponse(wo), nil
}

// ────────────────────── List ──────────────────────

func (s *workOrderService) List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	filter := repository.WorkOrderFilter{
		WarehouseID: req.WarehouseID,
		EquipmentID: req.EquipmentID,
		Status:      req.Status,
		Type:        req.Type,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Escalated:   req.Escalated,
	}
	if req.DueFrom != "" {
		from, err := time.Parse("2006-01-02", req.DueFrom)
		if err != nil {
			return nil, 0, ErrInvalidDateFormat
		}
		filter.DueFrom = &from
	}
	if req.DueTo != "" {
		to, err := time.Parse("2006-01-02", req.DueTo)
		if err != nil {
			return nil, 0, ErrInvalidDateFormat
		}
		filter.DueTo = &to
	}

	items, total, err := s.repo.WorkOrder.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出工单失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.WorkOrderResponse, 0, len(items))
	for i := range items {
		result = append(result, *toWorkOrderResponse(&items[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *workOrderService) Update(ctx context.Context, id string, req *dto.UpdateWorkOrderRequest, callerID string) (*dto.WorkOrderResponse, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if wo.Status == model.WOStatusClosed {
		return nil, ErrWOClosed
	}

	if req.Title != nil {
		wo.Title = *req.Title
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		wo.DueDate = dueDate
	}
	if req.Priority != nil {
		wo.Priority = *req.Priority
	}
	if len(req.CustomFields) > 0 {
		wo.CustomFields = datatypes.JSON(req.CustomFields)
	}

	wo.UpdatedBy = &callerID

	if err := s.repo.WorkOrder.Update(ctx, wo); err != nil {
		s.logger.Error("更新工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toWorkOrderResponse(wo), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *workOrderService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateWOStatusRequest, callerID string) (*dto.WorkOrderResponse, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !canTransition(wo.Status, req.Status) {
		return nil, ErrInvalidStatusTransition
	}
	// 未指派不可进入 assigned，指派走 Assign 接口
	if req.Status == model.WOStatusAssigned && wo.AssignedTo == nil {
		return nil, ErrWONotAssigned
	}

	now := s.now()
	wo.Status = req.Status
	switch req.Status {
	case model.WOStatusCompleted:
		// 完成时间驱动下一轮 PM 到期推导
		wo.CompletedAt = &now
	case model.WOStatusVerified:
		wo.VerifiedAt = &now
	case model.WOStatusClosed:
		wo.ClosedAt = &now
	}

	wo.UpdatedBy = &callerID

	if err := s.repo.WorkOrder.Update(ctx, wo); err != nil {
		s.logger.Error("流转工单状态失败",
			zap.String("id", id),
			zap.String("status", req.Status),
			zap.Error(err))
		return nil, err
	}

	return toWorkOrderResponse(wo), nil
}

// ────────────────────── Assign ──────────────────────

func (s *workOrderService) Assign(ctx context.Context, id string, req *dto.AssignWORequest, callerID string) (*dto.WorkOrderResponse, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 仅未完结工单可改派
	if !model.IsOpenWOStatus(wo.Status) {
		return nil, ErrInvalidStatusTransition
	}

	assignee, err := s.repo.User.GetByID(ctx, req.AssignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		s.logger.Error("查询指派对象失败", zap.String("user_id", req.AssignedTo), zap.Error(err))
		return nil, err
	}
	if !assignee.Active {
		return nil, ErrAssigneeDisabled
	}

	wo.AssignedTo = &assignee.UserID
	if wo.Status == model.WOStatusNew {
		wo.Status = model.WOStatusAssigned
	}
	wo.UpdatedBy = &callerID

	if err := s.repo.WorkOrder.Update(ctx, wo); err != nil {
		s.logger.Error("指派工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.notifyAssigned(ctx, wo, assignee); err != nil {
		s.logger.Warn("发送指派通知失败", zap.String("id", id), zap.Error(err))
	}

	return toWorkOrderResponse(wo), nil
}

// ────────────────────── Delete ──────────────────────

func (s *workOrderService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.WorkOrder.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.WorkOrder.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除工单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func canTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// newWONumber 生成工单编号 WO-YYYYMM-XXXXXX，后缀取自随机 UUID
func newWONumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("WO-%s-%s", t.Format("200601"), suffix)
}

// notifyAssigned 通知被指派人，尊重用户通知偏好
func (s *workOrderService) notifyAssigned(ctx context.Context, wo *model.WorkOrder, assignee *model.User) error {
	pref, err := s.repo.Notification.GetPreference(ctx, assignee.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if pref != nil && !pref.WOAssigned {
		return nil
	}

	relatedType := "work_order"
	return s.repo.Notification.Create(ctx, &model.Notification{
		UserID:      assignee.UserID,
		Type:        model.NotificationWOAssigned,
		Title:       "新工单指派",
		Content:     fmt.Sprintf("工单 %s（%s）已指派给您，截止日期 %s", wo.WONumber, wo.Title, wo.DueDate.Format("2006-01-02")),
		RelatedType: &relatedType,
		RelatedID:   &wo.WorkOrderID,
	})
}

// toWorkOrderResponse 将 model.WorkOrder 转换为 dto.WorkOrderResponse
func toWorkOrderResponse(wo *model.WorkOrder) *dto.WorkOrderResponse {
	resp := &dto.WorkOrderResponse{
		ID:           wo.WorkOrderID,
		WONumber:     wo.WONumber,
		Type:         wo.Type,
		Status:       wo.Status,
		Priority:     wo.Priority,
		EquipmentID:  wo.EquipmentID,
		PMTemplateID: wo.PMTemplateID,
		WarehouseID:  wo.WarehouseID,
		Title:        wo.Title,
		Description:  wo.Description,
		DueDate:      wo.DueDate.Format("2006-01-02"),
		AssignedTo:   wo.AssignedTo,
		Escalated:    wo.Escalated,
		Version:      wo.Version,
		CreatedAt:    wo.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    wo.UpdatedAt.Format(time.RFC3339),
	}
	if wo.Equipment != nil {
		resp.AssetTag = wo.Equipment.AssetTag
	}
	if wo.Assignee != nil {
		resp.AssigneeName = wo.Assignee.Name
	}
	if wo.CompletedAt != nil {
		t := wo.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	if wo.VerifiedAt != nil {
		t := wo.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &t
	}
	if wo.ClosedAt != nil {
		t := wo.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	if len(wo.CustomFields) > 0 {
		resp.CustomFields = []byte(wo.CustomFields)
	}
	return resp
}
