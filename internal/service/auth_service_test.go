package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/dto"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mocks) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}

	repo, m := newTestRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// rdb 传 nil：降级运行，黑名单逻辑跳过
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())

	m.warehouse.warehouses["wh-1"] = &model.Warehouse{
		WarehouseID: "wh-1", Name: "主仓库", Code: "MAIN", Active: true,
	}
	return svc, m
}

func createTestUser(m *mocks, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "u-" + email[:4],
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleTechnician,
		WarehouseID:  "wh-1",
		Active:       true,
	}
	m.user.users[user.UserID] = user
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, m := setupTestAuthService()
	createTestUser(m, "tech@maintainpro.dev", "password123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "password123",
	})

	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken 不应为空")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken 不应为空")
	}
	if result.User.Email != "tech@maintainpro.dev" {
		t.Errorf("期望 Email=tech@maintainpro.dev，实际=%s", result.User.Email)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, m := setupTestAuthService()
	createTestUser(m, "tech@maintainpro.dev", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "wrong_password",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	// 不存在的账号与密码错误返回同一错误，不暴露账号是否存在
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@maintainpro.dev",
		Password: "password123",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	svc, m := setupTestAuthService()
	user := createTestUser(m, "tech@maintainpro.dev", "password123")
	user.Active = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "password123",
	})

	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── 注册测试 ──

func TestRegister_Success(t *testing.T) {
	svc, m := setupTestAuthService()

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:        "新技工",
		Email:       "new@maintainpro.dev",
		Password:    "password123",
		Role:        model.RoleTechnician,
		WarehouseID: "wh-1",
	}, "u-admin")

	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if result.Name != "新技工" {
		t.Errorf("期望Name=新技工，实际=%s", result.Name)
	}
	if result.Email != "new@maintainpro.dev" {
		t.Errorf("期望Email=new@maintainpro.dev，实际=%s", result.Email)
	}

	// 管理员创建的账号强制首次改密
	stored, err := m.user.GetByEmail(context.Background(), "new@maintainpro.dev")
	if err != nil {
		t.Fatalf("新用户应已落库: %v", err)
	}
	if !stored.MustChangePassword {
		t.Error("新账号应标记 MustChangePassword")
	}
	if !stored.Active {
		t.Error("新账号应默认启用")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, m := setupTestAuthService()
	createTestUser(m, "tech@maintainpro.dev", "password123")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:        "重复用户",
		Email:       "tech@maintainpro.dev",
		Password:    "password123",
		Role:        model.RoleViewer,
		WarehouseID: "wh-1",
	}, "u-admin")

	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestRegister_WarehouseNotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:        "新技工",
		Email:       "new@maintainpro.dev",
		Password:    "password123",
		Role:        model.RoleTechnician,
		WarehouseID: "wh-missing",
	}, "u-admin")

	if !errors.Is(err, ErrWarehouseNotFound) {
		t.Errorf("期望 ErrWarehouseNotFound，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestRefreshToken_Success(t *testing.T) {
	svc, m := setupTestAuthService()
	createTestUser(m, "tech@maintainpro.dev", "password123")

	loginResult, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	result, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: loginResult.RefreshToken,
	})
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}

	if result.AccessToken == "" {
		t.Error("新 AccessToken 不应为空")
	}
	if result.User.Email != "tech@maintainpro.dev" {
		t.Errorf("期望 Email=tech@maintainpro.dev，实际=%s", result.User.Email)
	}
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "invalid.token.string",
	})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestRefreshToken_AccessTokenNotAllowed(t *testing.T) {
	svc, m := setupTestAuthService()
	createTestUser(m, "tech@maintainpro.dev", "password123")

	loginResult, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "password123",
	})

	// access token 不能充当 refresh token
	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: loginResult.AccessToken,
	})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestRefreshToken_DisabledUser(t *testing.T) {
	svc, m := setupTestAuthService()
	user := createTestUser(m, "tech@maintainpro.dev", "password123")

	loginResult, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "password123",
	})

	// 停用后持有的 refresh token 立即失效
	user.Active = false

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: loginResult.RefreshToken,
	})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── ChangePassword 测试 ──

func TestChangePassword_Success(t *testing.T) {
	svc, m := setupTestAuthService()
	user := createTestUser(m, "tech@maintainpro.dev", "password123")
	user.MustChangePassword = true

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpass456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 改密后清除首次改密标记
	if user.MustChangePassword {
		t.Error("改密后 MustChangePassword 应清除")
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@maintainpro.dev",
		Password: "newpass456",
	}); err != nil {
		t.Fatalf("修改密码后应能用新密码登录: %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, m := setupTestAuthService()
	user := createTestUser(m, "tech@maintainpro.dev", "password123")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong_old",
		NewPassword: "newpass456",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── GetProfile 测试 ──

func TestGetProfile_Success(t *testing.T) {
	svc, m := setupTestAuthService()
	user := createTestUser(m, "tech@maintainpro.dev", "password123")
	user.Warehouse = m.warehouse.warehouses["wh-1"]

	result, err := svc.GetProfile(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetProfile 应成功: %v", err)
	}

	if result.Email != "tech@maintainpro.dev" {
		t.Errorf("期望 Email=tech@maintainpro.dev，实际=%s", result.Email)
	}
	if result.Warehouse == nil || result.Warehouse.Code != "MAIN" {
		t.Error("期望包含所属仓库信息")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.GetProfile(context.Background(), "u-missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestLogout_ToleratesInvalidTokens(t *testing.T) {
	svc, _ := setupTestAuthService()

	// 非法或过期令牌登出静默成功
	if err := svc.Logout(context.Background(), "garbage", ""); err != nil {
		t.Errorf("Logout 对非法令牌应静默成功: %v", err)
	}
}
