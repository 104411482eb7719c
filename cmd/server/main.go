package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/api/handler"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/api/router"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/repository"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/service"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/database"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/jwt"
	applogger "github.com/Coding-Krakken/ReplitMaint-sub003/pkg/logger"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/redis"
)

func main() {
	// 0. 本地开发时加载 .env（不存在则忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与指标注册表
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.NewMetrics()

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)

	// 6.1 首次启动引导：创建初始仓库与管理员
	if err := bootstrapAdmin(context.Background(), cfg, repo, logger); err != nil {
		logger.Fatal("初始管理员引导失败", zap.Error(err))
	}

	svc := service.NewService(cfg, repo, jwtMgr, rdb, m, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, m, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8.1 定时 PM 自动化（auto_run_interval > 0 时开启）
	stopAutoRun := make(chan struct{})
	if cfg.PM.AutoRunInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.PM.AutoRunInterval)
			defer ticker.Stop()
			logger.Info("定时 PM 自动化已开启", zap.Duration("interval", cfg.PM.AutoRunInterval))
			for {
				select {
				case <-ticker.C:
					svc.PMAutomation.RunAll(context.Background())
				case <-stopAutoRun:
					return
				}
			}
		}()
	}

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	close(stopAutoRun)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// bootstrapAdmin 按配置创建初始仓库与管理员账号
// 管理员已存在时静默跳过；bootstrap.admin_email 为空时不执行
func bootstrapAdmin(ctx context.Context, cfg *config.Config, repo *repository.Repository, logger *zap.Logger) error {
	if cfg.Bootstrap.AdminEmail == "" {
		return nil
	}

	if _, err := repo.User.GetByEmail(ctx, cfg.Bootstrap.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询引导管理员失败: %w", err)
	}

	warehouse, err := repo.Warehouse.GetByCode(ctx, cfg.Bootstrap.WarehouseCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		warehouse = &model.Warehouse{
			Name:     "主仓库",
			Code:     cfg.Bootstrap.WarehouseCode,
			Timezone: "UTC",
			Active:   true,
		}
		if err := repo.Warehouse.Create(ctx, warehouse); err != nil {
			return fmt.Errorf("创建引导仓库失败: %w", err)
		}
		logger.Info("已创建引导仓库", zap.String("code", warehouse.Code))
	} else if err != nil {
		return fmt.Errorf("查询引导仓库失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Bootstrap.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成密码哈希失败: %w", err)
	}

	admin := &model.User{
		Name:               "Administrator",
		Email:              cfg.Bootstrap.AdminEmail,
		PasswordHash:       string(hash),
		Role:               model.RoleAdmin,
		WarehouseID:        warehouse.WarehouseID,
		Active:             true,
		MustChangePassword: true,
	}
	if err := repo.User.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建引导管理员失败: %w", err)
	}

	logger.Info("已创建引导管理员", zap.String("email", admin.Email))
	return nil
}
