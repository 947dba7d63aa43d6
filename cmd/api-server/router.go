// Package main 是应用程序入口
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/config"
	"github.com/qingliu2025/stock-admin-backend/internal/common/jwt"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	commonMiddleware "github.com/qingliu2025/stock-admin-backend/internal/common/middleware"
	adminHandler "github.com/qingliu2025/stock-admin-backend/internal/handler/admin"
	stockHandler "github.com/qingliu2025/stock-admin-backend/internal/handler/stock"
	"github.com/qingliu2025/stock-admin-backend/internal/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
	authService "github.com/qingliu2025/stock-admin-backend/internal/service/auth"
	stockService "github.com/qingliu2025/stock-admin-backend/internal/service/stock"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	opLogger *commonMiddleware.OperationLogger,
) {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	adminRepo := repository.NewAdminRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	logRepo := repository.NewOperationLogRepository(db)
	stockRepo := repository.NewStockRepository(db)

	// 初始化服务
	permCache := system.NewPermissionCache(cfg.Perm.CacheTTLDuration())
	permService := system.NewPermissionService(adminRepo, permCache)
	adminSvc := system.NewAdminService(adminRepo, roleRepo, permService)
	roleSvc := system.NewRoleService(roleRepo, adminRepo, menuRepo, permService)
	menuSvc := system.NewMenuService(menuRepo, permService)
	logSvc := system.NewOperationLogService(logRepo)
	authSvc := authService.NewAuthService(adminRepo, jwtManager)
	stockSvc := stockService.NewStockService(stockRepo, redisClient, cfg.Stock.QuoteCacheTTLDuration())

	// 初始化处理器
	authH := adminHandler.NewAuthHandler(authSvc, menuSvc, permService)
	adminH := adminHandler.NewAdminHandler(adminSvc)
	roleH := adminHandler.NewRoleHandler(roleSvc)
	menuH := adminHandler.NewMenuHandler(menuSvc)
	logH := adminHandler.NewOperationLogHandler(logSvc)
	stockConfigH := adminHandler.NewStockConfigHandler(stockSvc)
	quoteH := stockHandler.NewQuoteHandler(stockSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
	}
	r.Use(middleware.AccessLog(logger))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.IPRateLimit(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.WindowDuration()))
	}
	// 认证中间件对无效令牌不拒绝，仅在解析成功时注入身份
	r.Use(middleware.Auth(jwtManager))

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Prometheus 指标
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组，写操作全部留痕
	v1 := r.Group("/api/v1")
	v1.Use(opLogger.Middleware())
	{
		// 认证接口
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimit(redisClient, 10, cfg.RateLimit.WindowDuration()), authH.Login)
			auth.POST("/refresh", authH.Refresh)

			authed := auth.Group("")
			authed.Use(middleware.RequireLogin())
			{
				authed.POST("/logout", authH.Logout)
				authed.GET("/info", authH.Info)
				authed.GET("/menus", authH.Menus)
				authed.PUT("/password", authH.ChangePassword)
			}
		}

		// 系统管理接口（需要登录 + 权限）
		sys := v1.Group("/system")
		sys.Use(middleware.RequireLogin())
		{
			admins := sys.Group("/admins")
			{
				admins.GET("", middleware.RequirePermission(permService, "system:admin:list"), adminH.List)
				admins.POST("", middleware.RequirePermission(permService, "system:admin:create"), adminH.Create)
				admins.GET("/:id", middleware.RequirePermission(permService, "system:admin:list"), adminH.Get)
				admins.PUT("/:id", middleware.RequirePermission(permService, "system:admin:update"), adminH.Update)
				admins.DELETE("/:id", middleware.RequirePermission(permService, "system:admin:delete"), adminH.Delete)
				admins.PUT("/:id/roles", middleware.RequirePermission(permService, "system:admin:assign"), adminH.SetRoles)
				admins.PUT("/:id/password", middleware.RequirePermission(permService, "system:admin:reset"), adminH.ResetPassword)
			}

			roles := sys.Group("/roles")
			{
				roles.GET("", middleware.RequirePermission(permService, "system:role:list"), roleH.List)
				roles.GET("/all", middleware.RequirePermission(permService, "system:role:list"), roleH.ListAll)
				roles.POST("", middleware.RequirePermission(permService, "system:role:create"), roleH.Create)
				roles.GET("/:id", middleware.RequirePermission(permService, "system:role:list"), roleH.Get)
				roles.PUT("/:id", middleware.RequirePermission(permService, "system:role:update"), roleH.Update)
				roles.DELETE("/:id", middleware.RequirePermission(permService, "system:role:delete"), roleH.Delete)
				roles.GET("/:id/menus", middleware.RequirePermission(permService, "system:role:list"), roleH.GetMenus)
				roles.PUT("/:id/menus", middleware.RequirePermission(permService, "system:role:assign"), roleH.SetMenus)
			}

			menus := sys.Group("/menus")
			{
				menus.GET("/tree", middleware.RequirePermission(permService, "system:menu:list"), menuH.Tree)
				menus.POST("", middleware.RequirePermission(permService, "system:menu:create"), menuH.Create)
				menus.GET("/:id", middleware.RequirePermission(permService, "system:menu:list"), menuH.Get)
				menus.PUT("/:id", middleware.RequirePermission(permService, "system:menu:update"), menuH.Update)
				menus.DELETE("/:id", middleware.RequirePermission(permService, "system:menu:delete"), menuH.Delete)
			}

			logs := sys.Group("/operation-logs")
			{
				logs.GET("", middleware.RequirePermission(permService, "system:oplog:list"), logH.List)
				logs.GET("/:id", middleware.RequirePermission(permService, "system:oplog:list"), logH.Get)
				logs.DELETE("/:id", middleware.RequirePermission(permService, "system:oplog:delete"), logH.Delete)
				logs.POST("/purge", middleware.RequirePermission(permService, "system:oplog:delete"), logH.Purge)
			}
		}

		// 股票配置接口（需要登录 + 权限）
		configs := v1.Group("/stock/configs")
		configs.Use(middleware.RequireLogin())
		{
			configs.GET("", middleware.RequirePermission(permService, "stock:config:list"), stockConfigH.List)
			configs.POST("", middleware.RequirePermission(permService, "stock:config:create"), stockConfigH.Create)
			configs.GET("/:id", middleware.RequirePermission(permService, "stock:config:list"), stockConfigH.Get)
			configs.PUT("/:id", middleware.RequirePermission(permService, "stock:config:update"), stockConfigH.Update)
			configs.DELETE("/:id", middleware.RequirePermission(permService, "stock:config:delete"), stockConfigH.Delete)
		}

		// 行情接口
		quotes := v1.Group("/stock/quotes")
		{
			// 采集端推送走共享密钥，不走管理员认证
			quotes.POST("", middleware.SharedSecret(cfg.Stock.IngestSecret), quoteH.Ingest)
			quotes.GET("/:symbol", quoteH.GetLatest)
			quotes.GET("/:symbol/history", quoteH.List)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    404,
			"message": "接口不存在",
		})
	})
}
