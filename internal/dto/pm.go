package dto

// ── PM 引擎 DTO ──

// ScheduleEntryResponse 单个（设备×模板）计划项
type ScheduleEntryResponse struct {
	PMTemplateID      string  `json:"pm_template_id"`
	Component         string  `json:"component"`
	Action            string  `json:"action"`
	Frequency         string  `json:"frequency"`
	LastCompletedDate *string `json:"last_completed_date"` // null 表示从未维护
	NextDueDate       string  `json:"next_due_date"`
	ComplianceStatus  string  `json:"compliance_status"` // compliant | due | overdue
}

// EquipmentScheduleResponse 设备维护计划响应
type EquipmentScheduleResponse struct {
	EquipmentID string                  `json:"equipment_id"`
	AssetTag    string                  `json:"asset_tag"`
	Model       string                  `json:"model"`
	Entries     []ScheduleEntryResponse `json:"entries"`
}

// GeneratedWO 本次生成的工单摘要
type GeneratedWO struct {
	WorkOrderID  string `json:"work_order_id"`
	WONumber     string `json:"wo_number"`
	EquipmentID  string `json:"equipment_id"`
	PMTemplateID string `json:"pm_template_id"`
	DueDate      string `json:"due_date"`
	Priority     string `json:"priority"`
}

// SkippedPair 被跳过的配对及原因
type SkippedPair struct {
	EquipmentID  string `json:"equipment_id"`
	PMTemplateID string `json:"pm_template_id,omitempty"` // 无匹配模板时为空
	Reason       string `json:"reason"`                   // not-due | duplicate-open-work-order | no-matching-template
}

// PairError 单配对处理失败详情
type PairError struct {
	EquipmentID  string `json:"equipment_id"`
	PMTemplateID string `json:"pm_template_id"`
	Message      string `json:"message"`
}

// GenerationResultResponse 一次生成通道的完整结果
type GenerationResultResponse struct {
	WarehouseID string        `json:"warehouse_id"`
	Created     []GeneratedWO `json:"created"`
	Skipped     []SkippedPair `json:"skipped"`
	Errors      []PairError   `json:"errors,omitempty"`
}

// PMTriggerRequest 手动触发生成/运行请求
type PMTriggerRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
}

// ComplianceQueryRequest 合规查询参数
type ComplianceQueryRequest struct {
	WindowDays int `form:"window_days" binding:"omitempty,min=1,max=3650"`
}

// CalendarQueryRequest 日历订阅查询参数
type CalendarQueryRequest struct {
	HorizonDays int `form:"horizon_days" binding:"omitempty,min=1,max=365"`
}

// ComplianceRecordResponse 单设备合规记录
type ComplianceRecordResponse struct {
	EquipmentID          string  `json:"equipment_id"`
	AssetTag             string  `json:"asset_tag,omitempty"`
	WindowDays           int     `json:"window_days"`
	CompliancePercentage float64 `json:"compliance_percentage"`
	MissedPMCount        int     `json:"missed_pm_count"`
	TotalPMCount         int     `json:"total_pm_count"`
	LastPMDate           *string `json:"last_pm_date"` // null 表示从未完成过 PM
	NextPMDate           *string `json:"next_pm_date"` // null 表示无适用模板
}

// FleetComplianceResponse 仓库级合规汇总
type FleetComplianceResponse struct {
	WarehouseID       string                     `json:"warehouse_id"`
	WindowDays        int                        `json:"window_days"`
	AveragePercentage float64                    `json:"average_percentage"`
	TotalPMCount      int                        `json:"total_pm_count"`
	MissedPMCount     int                        `json:"missed_pm_count"`
	Equipment         []ComplianceRecordResponse `json:"equipment"`
}

// RunReportResponse 一次自动化运行的报告
type RunReportResponse struct {
	WarehouseID  string   `json:"warehouse_id"`
	Generated    int      `json:"generated"`
	SkippedCount int      `json:"skipped_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
	StartedAt    string   `json:"started_at"`
	FinishedAt   string   `json:"finished_at"`
}
