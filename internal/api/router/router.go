package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Coding-Krakken/ReplitMaint-sub003/config"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/api/handler"
	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/api/middleware"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/jwt"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/metrics"
	"github.com/Coding-Krakken/ReplitMaint-sub003/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口做 IP 限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Server.LoginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证；注册由管理员代办）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/register", middleware.RoleAuth("admin"), h.Auth.Register)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin", "manager", "supervisor"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("admin", "manager", "supervisor"), h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // admin 或本人（Service 层鉴权）
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
				users.PUT("/:id/role", middleware.RoleAuth("admin"), h.User.AssignRole)
				users.POST("/:id/reset-password", middleware.RoleAuth("admin"), h.User.ResetPassword)
			}

			// 仓库模块
			warehouses := authorized.Group("/warehouses")
			{
				warehouses.GET("", h.Warehouse.ListWarehouses)
				warehouses.GET("/:id", h.Warehouse.GetWarehouse)
				warehouses.POST("", middleware.RoleAuth("admin"), h.Warehouse.CreateWarehouse)
				warehouses.PUT("/:id", middleware.RoleAuth("admin", "manager"), h.Warehouse.UpdateWarehouse)
				warehouses.DELETE("/:id", middleware.RoleAuth("admin"), h.Warehouse.DeleteWarehouse)
			}

			// 设备模块
			equipment := authorized.Group("/equipment")
			{
				equipment.GET("", h.Equipment.ListEquipment)
				equipment.GET("/:id", h.Equipment.GetEquipment)
				equipment.POST("", middleware.RoleAuth("admin", "manager", "supervisor"), h.Equipment.CreateEquipment)
				equipment.PUT("/:id", middleware.RoleAuth("admin", "manager", "supervisor"), h.Equipment.UpdateEquipment)
				equipment.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.Equipment.DeleteEquipment)
				equipment.POST("/import", middleware.RoleAuth("admin", "manager", "supervisor"), h.Equipment.ImportEquipment)
			}

			// PM 模板模块
			pmTemplates := authorized.Group("/pm-templates")
			{
				pmTemplates.GET("", h.PMTemplate.ListPMTemplates)
				pmTemplates.GET("/:id", h.PMTemplate.GetPMTemplate)
				pmTemplates.POST("", middleware.RoleAuth("admin", "manager", "supervisor"), h.PMTemplate.CreatePMTemplate)
				pmTemplates.PUT("/:id", middleware.RoleAuth("admin", "manager", "supervisor"), h.PMTemplate.UpdatePMTemplate)
				pmTemplates.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.PMTemplate.DeletePMTemplate)
			}

			// 工单模块
			workOrders := authorized.Group("/work-orders")
			{
				workOrders.GET("", h.WorkOrder.ListWorkOrders)
				workOrders.GET("/:id", h.WorkOrder.GetWorkOrder)
				workOrders.POST("", middleware.RoleAuth("admin", "manager", "supervisor", "technician"), h.WorkOrder.CreateWorkOrder)
				workOrders.PUT("/:id", middleware.RoleAuth("admin", "manager", "supervisor", "technician"), h.WorkOrder.UpdateWorkOrder)
				workOrders.PUT("/:id/status", middleware.RoleAuth("admin", "manager", "supervisor", "technician"), h.WorkOrder.UpdateWorkOrderStatus)
				workOrders.PUT("/:id/assign", middleware.RoleAuth("admin", "manager", "supervisor"), h.WorkOrder.AssignWorkOrder)
				workOrders.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.WorkOrder.DeleteWorkOrder)
			}

			// 备件模块
			parts := authorized.Group("/parts")
			{
				parts.GET("", h.Part.ListParts)
				parts.GET("/:id", h.Part.GetPart)
				parts.POST("", middleware.RoleAuth("admin", "manager", "inventory_clerk"), h.Part.CreatePart)
				parts.PUT("/:id", middleware.RoleAuth("admin", "manager", "inventory_clerk"), h.Part.UpdatePart)
				parts.POST("/:id/adjust-stock", middleware.RoleAuth("admin", "manager", "inventory_clerk", "technician"), h.Part.AdjustStock)
				parts.GET("/:id/movements", h.Part.ListMovements)
				parts.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.Part.DeletePart)
			}

			// 供应商模块
			vendors := authorized.Group("/vendors")
			{
				vendors.GET("", h.Vendor.ListVendors)
				vendors.GET("/:id", h.Vendor.GetVendor)
				vendors.POST("", middleware.RoleAuth("admin", "manager", "inventory_clerk"), h.Vendor.CreateVendor)
				vendors.PUT("/:id", middleware.RoleAuth("admin", "manager", "inventory_clerk"), h.Vendor.UpdateVendor)
				vendors.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.Vendor.DeleteVendor)
			}

			// 通知模块（仅限本人数据，Service 层按 user_id 过滤）
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.CountUnread)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.GET("/preferences", h.Notification.GetPreference)
				notifications.PUT("/preferences", h.Notification.UpdatePreference)
			}

			// PM 引擎模块
			pm := authorized.Group("/pm")
			{
				pm.GET("/schedule/:equipmentId", h.PM.GetSchedule)
				pm.POST("/generate", middleware.RoleAuth("admin", "manager", "supervisor"), h.PM.Generate)
				pm.POST("/run", middleware.RoleAuth("admin", "manager", "supervisor"), h.PM.Run)
				pm.GET("/compliance/equipment/:id", h.PM.GetEquipmentCompliance)
				pm.GET("/compliance/warehouse/:id", h.PM.GetWarehouseCompliance)
				pm.GET("/calendar/:warehouseId", h.PM.GetCalendar)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/compliance", middleware.RoleAuth("admin", "manager", "supervisor"), h.Export.ExportCompliance)
				export.GET("/work-orders", middleware.RoleAuth("admin", "manager", "supervisor"), h.Export.ExportWorkOrders)
			}
		}
	}

	return r
}
