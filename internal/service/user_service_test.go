package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *mocks) {
	repo, m := newTestRepository()
	svc := NewUserService(repo, zap.NewNop())

	m.warehouse.warehouses["wh-1"] = &model.Warehouse{
		WarehouseID: "wh-1", Name: "主仓库", Code: "MAIN", Active: true,
	}
	m.warehouse.warehouses["wh-2"] = &model.Warehouse{
		WarehouseID: "wh-2", Name: "东区仓库", Code: "EAST", Active: true,
	}
	return svc, m
}

func seedUser(m *mocks, id, email, role, warehouseID string) *model.User {
	u := &model.User{
		UserID: id, Name: "用户" + id, Email: email,
		Role: role, WarehouseID: warehouseID, Active: true,
	}
	m.user.users[id] = u
	return u
}

// ── GetByID 测试 ──

func TestUserService_GetByID_Success(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	result, err := svc.GetByID(context.Background(), "u-tech")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.Email != "tech@maintainpro.dev" {
		t.Errorf("期望Email=tech@maintainpro.dev，实际=%s", result.Email)
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.GetByID(context.Background(), "u-missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestUserService_List_SupervisorScopedToOwnWarehouse(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-1", "a@maintainpro.dev", model.RoleTechnician, "wh-1")
	seedUser(m, "u-2", "b@maintainpro.dev", model.RoleTechnician, "wh-2")

	// 主管查询其他仓库时被强制收敛到本仓库
	result, total, err := svc.List(context.Background(), &dto.UserListRequest{
		WarehouseID: "wh-2",
	}, model.RoleSupervisor, "wh-1")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Fatalf("期望 1 个用户，实际 total=%d len=%d", total, len(result))
	}
	if result[0].Email != "a@maintainpro.dev" {
		t.Errorf("期望仅返回本仓库用户，实际=%s", result[0].Email)
	}
}

func TestUserService_List_AdminSeesRequestedWarehouse(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-1", "a@maintainpro.dev", model.RoleTechnician, "wh-1")
	seedUser(m, "u-2", "b@maintainpro.dev", model.RoleTechnician, "wh-2")

	result, total, err := svc.List(context.Background(), &dto.UserListRequest{
		WarehouseID: "wh-2",
	}, model.RoleAdmin, "wh-1")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || result[0].Email != "b@maintainpro.dev" {
		t.Errorf("管理员应能查询任意仓库，实际: %+v", result)
	}
}

func TestUserService_List_FilterByRole(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-1", "a@maintainpro.dev", model.RoleTechnician, "wh-1")
	seedUser(m, "u-2", "b@maintainpro.dev", model.RoleSupervisor, "wh-1")

	result, total, err := svc.List(context.Background(), &dto.UserListRequest{
		Role: model.RoleSupervisor,
	}, model.RoleAdmin, "wh-1")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || result[0].Role != model.RoleSupervisor {
		t.Errorf("期望仅返回主管角色，实际: %+v", result)
	}
}

// ── Update 测试 ──

func TestUserService_Update_AdminDeactivates(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	active := false
	result, err := svc.Update(context.Background(), "u-tech", &dto.UpdateUserRequest{
		Active: &active,
	}, "u-admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Active {
		t.Error("用户应已停用")
	}
}

func TestUserService_Update_NonAdminCannotTouchOthers(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")
	seedUser(m, "u-other", "other@maintainpro.dev", model.RoleTechnician, "wh-1")

	name := "改名"
	_, err := svc.Update(context.Background(), "u-other", &dto.UpdateUserRequest{
		Name: &name,
	}, "u-tech", model.RoleTechnician)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestUserService_Update_NonAdminCannotChangeWarehouse(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	wh := "wh-2"
	_, err := svc.Update(context.Background(), "u-tech", &dto.UpdateUserRequest{
		WarehouseID: &wh,
	}, "u-tech", model.RoleTechnician)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestUserService_Update_DuplicateEmail(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")
	seedUser(m, "u-other", "other@maintainpro.dev", model.RoleTechnician, "wh-1")

	email := "other@maintainpro.dev"
	_, err := svc.Update(context.Background(), "u-tech", &dto.UpdateUserRequest{
		Email: &email,
	}, "u-admin", model.RoleAdmin)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete_Success(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	if err := svc.Delete(context.Background(), "u-tech", "u-admin"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := m.user.users["u-tech"]; ok {
		t.Error("用户应已删除")
	}
}

func TestUserService_Delete_Self(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-admin", "admin@maintainpro.dev", model.RoleAdmin, "wh-1")

	err := svc.Delete(context.Background(), "u-admin", "u-admin")
	if !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}
}

// ── AssignRole 测试 ──

func TestUserService_AssignRole_Success(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	err := svc.AssignRole(context.Background(), "u-tech", &dto.AssignRoleRequest{
		Role: model.RoleSupervisor,
	}, "u-admin")
	if err != nil {
		t.Fatalf("AssignRole 应成功: %v", err)
	}
	if m.user.users["u-tech"].Role != model.RoleSupervisor {
		t.Errorf("期望Role=supervisor，实际=%s", m.user.users["u-tech"].Role)
	}
}

func TestUserService_AssignRole_Self(t *testing.T) {
	svc, m := setupTestUserService()
	seedUser(m, "u-admin", "admin@maintainpro.dev", model.RoleAdmin, "wh-1")

	err := svc.AssignRole(context.Background(), "u-admin", &dto.AssignRoleRequest{
		Role: model.RoleViewer,
	}, "u-admin")
	if !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("期望 ErrUserSelfRoleChange，实际: %v", err)
	}
}

// ── ResetPassword 测试 ──

func TestUserService_ResetPassword_Success(t *testing.T) {
	svc, m := setupTestUserService()
	user := seedUser(m, "u-tech", "tech@maintainpro.dev", model.RoleTechnician, "wh-1")

	result, err := svc.ResetPassword(context.Background(), "u-tech", "u-admin")
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if len(result.TempPassword) != 8 {
		t.Errorf("期望临时密码长度=8，实际=%d", len(result.TempPassword))
	}

	// 临时密码即时生效，且强制下次改密
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(result.TempPassword)); err != nil {
		t.Error("临时密码应与新哈希匹配")
	}
	if !user.MustChangePassword {
		t.Error("重置后应标记 MustChangePassword")
	}
}

func TestUserService_ResetPassword_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.ResetPassword(context.Background(), "u-missing", "u-admin")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 临时密码生成测试 ──

func TestGenerateTempPassword(t *testing.T) {
	pw, err := generateTempPassword(8)
	if err != nil {
		t.Fatalf("generateTempPassword 应成功: %v", err)
	}
	if len(pw) != 8 {
		t.Errorf("期望长度=8，实际=%d", len(pw))
	}

	var hasLetter, hasDigit bool
	for _, c := range pw {
		switch {
		case c >= '2' && c <= '9':
			hasDigit = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		t.Errorf("临时密码应同时包含字母和数字: %s", pw)
	}
}
