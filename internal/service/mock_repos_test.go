package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ── Mock WarehouseRepository ──

type mockWarehouseRepo struct {
	warehouses map[string]*model.Warehouse
}

func newMockWarehouseRepo() *mockWarehouseRepo {
	return &mockWarehouseRepo{warehouses: make(map[string]*model.Warehouse)}
}

func (m *mockWarehouseRepo) Create(_ context.Context, warehouse *model.Warehouse) error {
	if warehouse.WarehouseID == "" {
		warehouse.WarehouseID = "wh-" + warehouse.Code
	}
	m.warehouses[warehouse.WarehouseID] = warehouse
	return nil
}

func (m *mockWarehouseRepo) GetByID(_ context.Context, id string) (*model.Warehouse, error) {
	if w, ok := m.warehouses[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWarehouseRepo) GetByCode(_ context.Context, code string) (*model.Warehouse, error) {
	for _, w := range m.warehouses {
		if w.Code == code {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWarehouseRepo) List(_ context.Context) ([]model.Warehouse, error) {
	var result []model.Warehouse
	for _, w := range m.warehouses {
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockWarehouseRepo) ListActive(_ context.Context) ([]model.Warehouse, error) {
	var result []model.Warehouse
	for _, w := range m.warehouses {
		if w.Active {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockWarehouseRepo) Update(_ context.Context, warehouse *model.Warehouse) error {
	warehouse.Version++
	m.warehouses[warehouse.WarehouseID] = warehouse
	return nil
}

func (m *mockWarehouseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.warehouses, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, warehouseID, role string, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if warehouseID != "" && u.WarehouseID != warehouseID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		filtered = append(filtered, *u)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Email < filtered[j].Email })
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockUserRepo) ListByWarehouseAndRoles(_ context.Context, warehouseID string, roles []string) ([]model.User, error) {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	var result []model.User
	for _, u := range m.users {
		if u.WarehouseID == warehouseID && roleSet[u.Role] && u.Active {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	equipments map[string]*model.Equipment
	idCounter  int
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{equipments: make(map[string]*model.Equipment)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, equipment *model.Equipment) error {
	if equipment.EquipmentID == "" {
		// 真实库主键由 gen_random_uuid() 生成，不会覆盖已有记录；生成ID跳过已播种占用的键
		for {
			m.idCounter++
			id := fmt.Sprintf("eq-%d", m.idCounter)
			if _, ok := m.equipments[id]; !ok {
				equipment.EquipmentID = id
				break
			}
		}
	}
	m.equipments[equipment.EquipmentID] = equipment
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	if e, ok := m.equipments[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) GetByAssetTag(_ context.Context, warehouseID, assetTag string) (*model.Equipment, error) {
	for _, e := range m.equipments {
		if e.WarehouseID == warehouseID && e.AssetTag == assetTag {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) List(_ context.Context, filter repository.EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error) {
	var filtered []model.Equipment
	for _, e := range m.equipments {
		if filter.WarehouseID != "" && e.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Criticality != "" && e.Criticality != filter.Criticality {
			continue
		}
		if filter.Model != "" && e.Model != filter.Model {
			continue
		}
		if filter.Area != "" && e.Area != filter.Area {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(e.AssetTag, filter.Keyword) &&
			!strings.Contains(e.Description, filter.Keyword) {
			continue
		}
		filtered = append(filtered, *e)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].AssetTag < filtered[j].AssetTag })
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockEquipmentRepo) ListActiveByWarehouse(_ context.Context, warehouseID string) ([]model.Equipment, error) {
	var result []model.Equipment
	for _, e := range m.equipments {
		if e.WarehouseID == warehouseID && e.Status == model.EquipmentStatusActive {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssetTag < result[j].AssetTag })
	return result, nil
}

func (m *mockEquipmentRepo) CountByWarehouse(_ context.Context, warehouseID string) (int64, error) {
	var count int64
	for _, e := range m.equipments {
		if e.WarehouseID == warehouseID {
			count++
		}
	}
	return count, nil
}

func (m *mockEquipmentRepo) Update(_ context.Context, equipment *model.Equipment) error {
	equipment.Version++
	m.equipments[equipment.EquipmentID] = equipment
	return nil
}

func (m *mockEquipmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.equipments, id)
	return nil
}

// ── Mock PMTemplateRepository ──

type mockPMTemplateRepo struct {
	templates map[string]*model.PMTemplate
	idCounter int
}

func newMockPMTemplateRepo() *mockPMTemplateRepo {
	return &mockPMTemplateRepo{templates: make(map[string]*model.PMTemplate)}
}

func (m *mockPMTemplateRepo) Create(_ context.Context, template *model.PMTemplate) error {
	if template.PMTemplateID == "" {
		m.idCounter++
		template.PMTemplateID = fmt.Sprintf("tmpl-%d", m.idCounter)
	}
	m.templates[template.PMTemplateID] = template
	return nil
}

func (m *mockPMTemplateRepo) GetByID(_ context.Context, id string) (*model.PMTemplate, error) {
	if t, ok := m.templates[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPMTemplateRepo) List(_ context.Context, filter repository.PMTemplateFilter, offset, limit int) ([]model.PMTemplate, int64, error) {
	var filtered []model.PMTemplate
	for _, t := range m.templates {
		if filter.WarehouseID != "" && t.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Model != "" && t.Model != filter.Model {
			continue
		}
		if filter.Frequency != "" && string(t.Frequency) != filter.Frequency {
			continue
		}
		if filter.Active != nil && t.Active != *filter.Active {
			continue
		}
		filtered = append(filtered, *t)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].PMTemplateID < filtered[j].PMTemplateID })
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockPMTemplateRepo) ListActiveByWarehouse(_ context.Context, warehouseID string) ([]model.PMTemplate, error) {
	var result []model.PMTemplate
	for _, t := range m.templates {
		if t.WarehouseID == warehouseID && t.Active {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PMTemplateID < result[j].PMTemplateID })
	return result, nil
}

func (m *mockPMTemplateRepo) Update(_ context.Context, template *model.PMTemplate) error {
	template.Version++
	m.templates[template.PMTemplateID] = template
	return nil
}

func (m *mockPMTemplateRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.templates, id)
	return nil
}

// ── Mock WorkOrderRepository ──

type mockWorkOrderRepo struct {
	orders    map[string]*model.WorkOrder
	idCounter int
}

func newMockWorkOrderRepo() *mockWorkOrderRepo {
	return &mockWorkOrderRepo{orders: make(map[string]*model.WorkOrder)}
}

func (m *mockWorkOrderRepo) Create(_ context.Context, wo *model.WorkOrder) error {
	if wo.WorkOrderID == "" {
		m.idCounter++
		wo.WorkOrderID = fmt.Sprintf("wo-%d", m.idCounter)
	}
	if wo.Version == 0 {
		wo.Version = 1
	}
	wo.CreatedAt = time.Now()
	m.orders[wo.WorkOrderID] = wo
	return nil
}

func (m *mockWorkOrderRepo) GetByID(_ context.Context, id string) (*model.WorkOrder, error) {
	if wo, ok := m.orders[id]; ok {
		return wo, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) GetByNumber(_ context.Context, woNumber string) (*model.WorkOrder, error) {
	for _, wo := range m.orders {
		if wo.WONumber == woNumber {
			return wo, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) List(_ context.Context, filter repository.WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error) {
	var filtered []model.WorkOrder
	for _, wo := range m.orders {
		if filter.WarehouseID != "" && wo.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.EquipmentID != "" && wo.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.Status != "" && wo.Status != filter.Status {
			continue
		}
		if filter.Type != "" && wo.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && wo.Priority != filter.Priority {
			continue
		}
		if filter.AssignedTo != "" && (wo.AssignedTo == nil || *wo.AssignedTo != filter.AssignedTo) {
			continue
		}
		if filter.DueFrom != nil && wo.DueDate.Before(*filter.DueFrom) {
			continue
		}
		if filter.DueTo != nil && wo.DueDate.After(*filter.DueTo) {
			continue
		}
		if filter.Escalated != nil && wo.Escalated != *filter.Escalated {
			continue
		}
		filtered = append(filtered, *wo)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].DueDate.Equal(filtered[j].DueDate) {
			return filtered[i].DueDate.Before(filtered[j].DueDate)
		}
		return filtered[i].WONumber < filtered[j].WONumber
	})
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockWorkOrderRepo) ListOpenPMByPair(_ context.Context, equipmentID, templateID string) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if wo.EquipmentID == equipmentID &&
			wo.PMTemplateID != nil && *wo.PMTemplateID == templateID &&
			wo.Type == model.WOTypePreventive &&
			model.IsOpenWOStatus(wo.Status) {
			result = append(result, *wo)
		}
	}
	return result, nil
}

func (m *mockWorkOrderRepo) GetLatestCompletedPM(_ context.Context, equipmentID, templateID string) (*model.WorkOrder, error) {
	var latest *model.WorkOrder
	for _, wo := range m.orders {
		if wo.EquipmentID != equipmentID || wo.Type != model.WOTypePreventive || wo.CompletedAt == nil {
			continue
		}
		if wo.PMTemplateID == nil || *wo.PMTemplateID != templateID {
			continue
		}
		if latest == nil || wo.CompletedAt.After(*latest.CompletedAt) {
			latest = wo
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockWorkOrderRepo) GetLatestCompletedPMByEquipment(_ context.Context, equipmentID string) (*model.WorkOrder, error) {
	var latest *model.WorkOrder
	for _, wo := range m.orders {
		if wo.EquipmentID != equipmentID || wo.Type != model.WOTypePreventive || wo.CompletedAt == nil {
			continue
		}
		if latest == nil || wo.CompletedAt.After(*latest.CompletedAt) {
			latest = wo
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockWorkOrderRepo) ListPMByEquipmentDueBetween(_ context.Context, equipmentID string, from, to time.Time) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if wo.EquipmentID != equipmentID || wo.Type != model.WOTypePreventive {
			continue
		}
		if wo.DueDate.Before(from) || wo.DueDate.After(to) {
			continue
		}
		result = append(result, *wo)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (m *mockWorkOrderRepo) ListOpenOverdue(_ context.Context, warehouseID string, asOf time.Time) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if wo.WarehouseID == warehouseID && model.IsOpenWOStatus(wo.Status) && wo.DueDate.Before(asOf) {
			result = append(result, *wo)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (m *mockWorkOrderRepo) Update(_ context.Context, wo *model.WorkOrder) error {
	if _, ok := m.orders[wo.WorkOrderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	wo.Version++
	m.orders[wo.WorkOrderID] = wo
	return nil
}

func (m *mockWorkOrderRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.orders, id)
	return nil
}

// ── Mock PartRepository ──

type mockPartRepo struct {
	parts     map[string]*model.Part
	idCounter int
}

func newMockPartRepo() *mockPartRepo {
	return &mockPartRepo{parts: make(map[string]*model.Part)}
}

func (m *mockPartRepo) Create(_ context.Context, part *model.Part) error {
	if part.PartID == "" {
		m.idCounter++
		part.PartID = fmt.Sprintf("part-%d", m.idCounter)
	}
	if part.Version == 0 {
		part.Version = 1
	}
	m.parts[part.PartID] = part
	return nil
}

func (m *mockPartRepo) GetByID(_ context.Context, id string) (*model.Part, error) {
	if p, ok := m.parts[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPartRepo) GetByPartNumber(_ context.Context, warehouseID, partNumber string) (*model.Part, error) {
	for _, p := range m.parts {
		if p.WarehouseID == warehouseID && p.PartNumber == partNumber {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPartRepo) List(_ context.Context, filter repository.PartFilter, offset, limit int) ([]model.Part, int64, error) {
	var filtered []model.Part
	for _, p := range m.parts {
		if filter.WarehouseID != "" && p.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.VendorID != "" && (p.VendorID == nil || *p.VendorID != filter.VendorID) {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(p.PartNumber, filter.Keyword) &&
			!strings.Contains(p.Name, filter.Keyword) {
			continue
		}
		if filter.BelowStock && p.StockLevel >= p.ReorderPoint {
			continue
		}
		filtered = append(filtered, *p)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].PartNumber < filtered[j].PartNumber })
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockPartRepo) Update(_ context.Context, part *model.Part) error {
	part.Version++
	m.parts[part.PartID] = part
	return nil
}

func (m *mockPartRepo) UpdateStockLevel(_ context.Context, part *model.Part, newLevel int) error {
	stored, ok := m.parts[part.PartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.StockLevel = newLevel
	stored.Version++
	part.StockLevel = newLevel
	part.Version = stored.Version
	return nil
}

func (m *mockPartRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.parts, id)
	return nil
}

// ── Mock StockMovementRepository ──

type mockStockMovementRepo struct {
	movements []model.StockMovement
	idCounter int
}

func newMockStockMovementRepo() *mockStockMovementRepo {
	return &mockStockMovementRepo{}
}

func (m *mockStockMovementRepo) Create(_ context.Context, movement *model.StockMovement) error {
	m.idCounter++
	if movement.MovementID == "" {
		movement.MovementID = fmt.Sprintf("mv-%d", m.idCounter)
	}
	movement.CreatedAt = time.Now()
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *mockStockMovementRepo) ListByPart(_ context.Context, partID string, offset, limit int) ([]model.StockMovement, int64, error) {
	var filtered []model.StockMovement
	for _, mv := range m.movements {
		if mv.PartID == partID {
			filtered = append(filtered, mv)
		}
	}
	// 真实仓储按创建时间倒序返回
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

// ── Mock VendorRepository ──

type mockVendorRepo struct {
	vendors   map[string]*model.Vendor
	idCounter int
}

func newMockVendorRepo() *mockVendorRepo {
	return &mockVendorRepo{vendors: make(map[string]*model.Vendor)}
}

func (m *mockVendorRepo) Create(_ context.Context, vendor *model.Vendor) error {
	if vendor.VendorID == "" {
		m.idCounter++
		vendor.VendorID = fmt.Sprintf("vendor-%d", m.idCounter)
	}
	m.vendors[vendor.VendorID] = vendor
	return nil
}

func (m *mockVendorRepo) GetByID(_ context.Context, id string) (*model.Vendor, error) {
	if v, ok := m.vendors[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVendorRepo) List(_ context.Context, vendorType string, offset, limit int) ([]model.Vendor, int64, error) {
	var filtered []model.Vendor
	for _, v := range m.vendors {
		if vendorType != "" && v.Type != vendorType {
			continue
		}
		filtered = append(filtered, *v)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockVendorRepo) Update(_ context.Context, vendor *model.Vendor) error {
	vendor.Version++
	m.vendors[vendor.VendorID] = vendor
	return nil
}

func (m *mockVendorRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.vendors, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	prefs         map[string]*model.NotificationPreference
	idCounter     int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{prefs: make(map[string]*model.NotificationPreference)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.idCounter++
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notif-%d", m.idCounter)
	}
	notification.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, notifications []model.Notification) error {
	for i := range notifications {
		if err := m.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var filtered []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		filtered = append(filtered, n)
	}
	// 真实仓储按创建时间倒序返回
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	return paginate(filtered, offset, limit), int64(len(filtered)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	for i, n := range m.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i, n := range m.notifications {
		if n.UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetPreference(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) UpsertPreference(_ context.Context, pref *model.NotificationPreference) error {
	m.prefs[pref.UserID] = pref
	return nil
}

// ── 共享辅助 ──

// paginate 模拟 GORM 的 Offset/Limit：负值取消对应条件
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	if limit < 0 {
		return items[offset:]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// passthroughTx 直通事务边界：mock 仓储没有真实数据库，fn 直接在聚合上执行
func passthroughTx(repo *repository.Repository) txFunc {
	return func(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
		return fn(repo)
	}
}

// newTestRepository 组装全部 mock 仓储的聚合
func newTestRepository() (*repository.Repository, *mocks) {
	m := &mocks{
		warehouse:     newMockWarehouseRepo(),
		user:          newMockUserRepo(),
		equipment:     newMockEquipmentRepo(),
		pmTemplate:    newMockPMTemplateRepo(),
		workOrder:     newMockWorkOrderRepo(),
		part:          newMockPartRepo(),
		stockMovement: newMockStockMovementRepo(),
		vendor:        newMockVendorRepo(),
		notification:  newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		Warehouse:     m.warehouse,
		User:          m.user,
		Equipment:     m.equipment,
		PMTemplate:    m.pmTemplate,
		WorkOrder:     m.workOrder,
		Part:          m.part,
		StockMovement: m.stockMovement,
		Vendor:        m.vendor,
		Notification:  m.notification,
	}
	return repo, m
}

// mocks 聚合全部 mock 仓储，便于测试用例直接播种数据
type mocks struct {
	warehouse     *mockWarehouseRepo
	user          *mockUserRepo
	equipment     *mockEquipmentRepo
	pmTemplate    *mockPMTemplateRepo
	workOrder     *mockWorkOrderRepo
	part          *mockPartRepo
	stockMovement *mockStockMovementRepo
	vendor        *mockVendorRepo
	notification  *mockNotificationRepo
}
