//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/errors"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=maintainpro password=maintainpro_password dbname=maintainpro_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Warehouse{},
		&model.User{},
		&model.Vendor{},
		&model.Equipment{},
		&model.PMTemplate{},
		&model.WorkOrder{},
		&model.Part{},
		&model.StockMovement{},
		&model.Notification{},
		&model.NotificationPreference{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (warehouse *model.Warehouse, user *model.User, equipment *model.Equipment, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	warehouse = &model.Warehouse{
		Name:     fmt.Sprintf("测试仓库-%d", time.Now().UnixNano()),
		Code:     fmt.Sprintf("WH%d", time.Now().UnixNano()),
		Timezone: "UTC",
		Active:   true,
	}
	if err := testDB.WithContext(ctx).Create(warehouse).Error; err != nil {
		t.Fatalf("创建仓库失败: %v", err)
	}

	user = &model.User{
		Name:         "测试用户",
		Email:        fmt.Sprintf("test%d@maintainpro.io", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleTechnician,
		WarehouseID:  warehouse.WarehouseID,
		Active:       true,
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	equipment = &model.Equipment{
		AssetTag:    fmt.Sprintf("CONV-%d", time.Now().UnixNano()),
		WarehouseID: warehouse.WarehouseID,
		Model:       "X200",
		Status:      model.EquipmentStatusActive,
		Criticality: model.CriticalityHigh,
	}
	if err := testDB.WithContext(ctx).Create(equipment).Error; err != nil {
		t.Fatalf("创建设备失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("equipment_id = ?", equipment.EquipmentID).Delete(&model.Equipment{})
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
		testDB.Unscoped().Where("warehouse_id = ?", warehouse.WarehouseID).Delete(&model.Warehouse{})
	}
	return
}

// newTestWO 构造一张最小合法工单，WONumber 以纳秒保证唯一
func newTestWO(warehouse *model.Warehouse, equipment *model.Equipment, woType string, due time.Time) *model.WorkOrder {
	return &model.WorkOrder{
		WONumber:    fmt.Sprintf("WO-IT-%d", time.Now().UnixNano()),
		Type:        woType,
		Status:      model.WOStatusNew,
		Priority:    model.WOPriorityMedium,
		EquipmentID: equipment.EquipmentID,
		WarehouseID: warehouse.WarehouseID,
		Title:       "集成测试工单",
		DueDate:     due,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback / Commit
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 开启事务
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}

	txRepo := repo.WithTx(tx)

	// 在事务内创建工单
	wo := newTestWO(warehouse, equipment, model.WOTypeCorrective, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := txRepo.WorkOrder.Create(ctx, wo); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建工单失败: %v", err)
	}

	// 回滚事务
	tx.Rollback()

	// 验证数据未持久化
	_, err = repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
	if err == nil {
		// 手动清理
		testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).Delete(&model.WorkOrder{})
		t.Fatal("期望回滚后查不到工单，但实际查到了")
	}
}

func TestTransaction_Commit(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}

	txRepo := repo.WithTx(tx)

	wo := newTestWO(warehouse, equipment, model.WOTypeCorrective, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := txRepo.WorkOrder.Create(ctx, wo); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建工单失败: %v", err)
	}

	// 提交事务
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit 失败: %v", err)
	}
	defer testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).Delete(&model.WorkOrder{})

	// 验证数据已持久化
	found, err := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
	if err != nil {
		t.Fatalf("提交后查询工单失败: %v", err)
	}
	if found.WorkOrderID != wo.WorkOrderID {
		t.Errorf("ID 不匹配: expected %s, got %s", wo.WorkOrderID, found.WorkOrderID)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_WorkOrder_ConflictDetected(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	wo := newTestWO(warehouse, equipment, model.WOTypeCorrective, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := repo.WorkOrder.Create(ctx, wo); err != nil {
		t.Fatalf("创建工单失败: %v", err)
	}
	defer testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).Delete(&model.WorkOrder{})

	// 模拟并发：获取两份副本
	copy1, _ := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
	copy2, _ := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)

	// 第一次更新成功
	copy1.Priority = model.WOPriorityHigh
	if err := repo.WorkOrder.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Priority = model.WOPriorityLow
	err := repo.WorkOrder.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_PartStock_ConflictDetected(t *testing.T) {
	warehouse, _, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	part := &model.Part{
		PartNumber:   fmt.Sprintf("BRG-%d", time.Now().UnixNano()),
		WarehouseID:  warehouse.WarehouseID,
		Name:         "深沟球轴承",
		StockLevel:   10,
		ReorderPoint: 5,
		Active:       true,
	}
	if err := repo.Part.Create(ctx, part); err != nil {
		t.Fatalf("创建备件失败: %v", err)
	}
	defer testDB.Unscoped().Where("part_id = ?", part.PartID).Delete(&model.Part{})

	// 两个并发的出入库操作各持一份副本
	copy1, _ := repo.Part.GetByID(ctx, part.PartID)
	copy2, _ := repo.Part.GetByID(ctx, part.PartID)

	if err := repo.Part.UpdateStockLevel(ctx, copy1, 8); err != nil {
		t.Fatalf("第一次库存更新应成功: %v", err)
	}

	err := repo.Part.UpdateStockLevel(ctx, copy2, 3)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}

	// 库存应停留在第一次更新的结果
	final, _ := repo.Part.GetByID(ctx, part.PartID)
	if final.StockLevel != 8 {
		t.Errorf("期望库存=8，得到: %d", final.StockLevel)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	wo := newTestWO(warehouse, equipment, model.WOTypeCorrective, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := repo.WorkOrder.Create(ctx, wo); err != nil {
		t.Fatalf("创建工单失败: %v", err)
	}
	defer testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).Delete(&model.WorkOrder{})

	if wo.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", wo.Version)
	}

	// 连续更新 3 次
	for i := 0; i < 3; i++ {
		got, _ := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
		got.Title = fmt.Sprintf("集成测试工单-%d", i+1)
		if err := repo.WorkOrder.Update(ctx, got); err != nil {
			t.Fatalf("第 %d 次更新失败: %v", i+1, err)
		}
	}

	// 验证 version 递增到 4
	final, _ := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
	if final.Version != 4 {
		t.Errorf("期望 version=4，得到: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Unique Constraint (asset tag per warehouse)
// ═══════════════════════════════════════════════════════════

func TestUniqueAssetTagPerWarehouse(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 同仓库同资产标签——应违反唯一约束
	dup := &model.Equipment{
		AssetTag:    equipment.AssetTag,
		WarehouseID: warehouse.WarehouseID,
		Model:       "X200",
		Status:      model.EquipmentStatusActive,
		Criticality: model.CriticalityMedium,
	}
	err := repo.Equipment.Create(ctx, dup)
	if err == nil {
		testDB.Unscoped().Where("equipment_id = ?", dup.EquipmentID).Delete(&model.Equipment{})
		t.Fatal("期望唯一约束违反，但创建成功了")
	}

	// 不同仓库可复用同一资产标签
	warehouse2 := &model.Warehouse{
		Name:     fmt.Sprintf("第二仓库-%d", time.Now().UnixNano()),
		Code:     fmt.Sprintf("WH2%d", time.Now().UnixNano()),
		Timezone: "UTC",
		Active:   true,
	}
	if err := testDB.WithContext(ctx).Create(warehouse2).Error; err != nil {
		t.Fatalf("创建第二仓库失败: %v", err)
	}
	defer testDB.Unscoped().Where("warehouse_id = ?", warehouse2.WarehouseID).Delete(&model.Warehouse{})

	other := &model.Equipment{
		AssetTag:    equipment.AssetTag,
		WarehouseID: warehouse2.WarehouseID,
		Model:       "X200",
		Status:      model.EquipmentStatusActive,
		Criticality: model.CriticalityMedium,
	}
	if err := repo.Equipment.Create(ctx, other); err != nil {
		t.Fatalf("跨仓库复用资产标签应成功: %v", err)
	}
	testDB.Unscoped().Where("equipment_id = ?", other.EquipmentID).Delete(&model.Equipment{})
}

// ═══════════════════════════════════════════════════════════
// Test: Stock Movement Ledger
// ═══════════════════════════════════════════════════════════

func TestStockMovement_ListByPart_NewestFirst(t *testing.T) {
	warehouse, _, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	part := &model.Part{
		PartNumber:   fmt.Sprintf("FLT-%d", time.Now().UnixNano()),
		WarehouseID:  warehouse.WarehouseID,
		Name:         "液压滤芯",
		StockLevel:   15,
		ReorderPoint: 5,
		Active:       true,
	}
	if err := repo.Part.Create(ctx, part); err != nil {
		t.Fatalf("创建备件失败: %v", err)
	}
	defer testDB.Unscoped().Where("part_id = ?", part.PartID).Delete(&model.Part{})

	// 两条流水，显式错开 created_at 保证排序可断言
	older := &model.StockMovement{
		PartID:         part.PartID,
		Delta:          5,
		Reason:         model.MovementReceipt,
		ResultingLevel: 15,
	}
	older.CreatedAt = time.Now().Add(-time.Minute)
	if err := repo.StockMovement.Create(ctx, older); err != nil {
		t.Fatalf("创建入库流水失败: %v", err)
	}

	newer := &model.StockMovement{
		PartID:         part.PartID,
		Delta:          -3,
		Reason:         model.MovementIssue,
		ResultingLevel: 12,
	}
	newer.CreatedAt = time.Now()
	if err := repo.StockMovement.Create(ctx, newer); err != nil {
		t.Fatalf("创建出库流水失败: %v", err)
	}
	defer testDB.Unscoped().Where("part_id = ?", part.PartID).Delete(&model.StockMovement{})

	items, total, err := repo.StockMovement.ListByPart(ctx, part.PartID, 0, 20)
	if err != nil {
		t.Fatalf("ListByPart 失败: %v", err)
	}
	if total != 2 {
		t.Fatalf("期望 2 条流水，得到 %d 条", total)
	}
	if items[0].Delta != -3 {
		t.Errorf("最新流水应排在最前，期望 delta=-3，得到: %d", items[0].Delta)
	}
	if items[1].Delta != 5 {
		t.Errorf("期望第二条流水 delta=5，得到: %d", items[1].Delta)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: PM Compliance Window Query
// ═══════════════════════════════════════════════════════════

func TestWorkOrder_ListPMByEquipmentDueBetween(t *testing.T) {
	warehouse, _, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	dues := []time.Time{
		time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), // 窗口外
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),  // 窗口内
		time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), // 窗口内
	}
	ids := make([]string, 0, len(dues))
	for _, due := range dues {
		wo := newTestWO(warehouse, equipment, model.WOTypePreventive, due)
		if err := repo.WorkOrder.Create(ctx, wo); err != nil {
			t.Fatalf("创建 PM 工单失败: %v", err)
		}
		ids = append(ids, wo.WorkOrderID)
	}
	defer func() {
		for _, id := range ids {
			testDB.Unscoped().Where("work_order_id = ?", id).Delete(&model.WorkOrder{})
		}
	}()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	items, err := repo.WorkOrder.ListPMByEquipmentDueBetween(ctx, equipment.EquipmentID, from, to)
	if err != nil {
		t.Fatalf("ListPMByEquipmentDueBetween 失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望窗口内 2 张工单，得到 %d 张", len(items))
	}
	// 按到期日升序
	if !items[0].DueDate.Before(items[1].DueDate) {
		t.Error("工单应按到期日升序排列")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestWorkOrder_SoftDelete(t *testing.T) {
	warehouse, user, equipment, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	wo := newTestWO(warehouse, equipment, model.WOTypeCorrective, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := repo.WorkOrder.Create(ctx, wo); err != nil {
		t.Fatalf("创建工单失败: %v", err)
	}
	defer testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).Delete(&model.WorkOrder{})

	// 软删除并记录操作人
	if err := repo.WorkOrder.Delete(ctx, wo.WorkOrderID, user.UserID); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	_, err := repo.WorkOrder.GetByID(ctx, wo.WorkOrderID)
	if err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到，且审计字段已落
	var found model.WorkOrder
	err = testDB.Unscoped().Where("work_order_id = ?", wo.WorkOrderID).First(&found).Error
	if err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
	if found.DeletedBy == nil || *found.DeletedBy != user.UserID {
		t.Error("DeletedBy 应记录删除操作人")
	}
}
