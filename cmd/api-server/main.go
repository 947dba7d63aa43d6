// Package main 是应用程序入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qingliu2025/stock-admin-backend/internal/common/cache"
	"github.com/qingliu2025/stock-admin-backend/internal/common/config"
	"github.com/qingliu2025/stock-admin-backend/internal/common/database"
	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	commonMiddleware "github.com/qingliu2025/stock-admin-backend/internal/common/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
	"github.com/qingliu2025/stock-admin-backend/internal/scheduler"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

func main() {
	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting Stock Admin Backend",
		zap.String("version", "1.0.0"),
		zap.String("env", cfg.Server.Mode),
	)

	// 初始化指标收集
	metrics.Init("stock_admin")

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// 初始化 Redis 连接
	redisClient, err := cache.Init(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Redis connected successfully")

	// 启动操作日志异步写入
	logRepo := repository.NewOperationLogRepository(db)
	opLogger := commonMiddleware.NewOperationLogger(logRepo, cfg.Audit.QueueSize)
	opLogger.Start()

	// 启动定时任务：按保留期清理操作日志
	logService := system.NewOperationLogService(logRepo)
	retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
	sched := scheduler.NewScheduler()
	sched.AddTask("operation_log_purge", time.Duration(cfg.Audit.PurgeInterval)*time.Minute, func(ctx context.Context) error {
		deleted, err := logService.PurgeOlderThan(ctx, retention)
		if err != nil {
			return err
		}
		if deleted > 0 {
			log.Info("Purged expired operation logs", zap.Int64("deleted", deleted))
		}
		return nil
	})
	sched.Start()

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" || cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 设置路由
	setupRouter(engine, cfg, log, db, redisClient, opLogger)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// 创建超时上下文用于优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 停止定时任务和日志写入，排空队列后退出
	sched.Stop()
	opLogger.Stop()

	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}

	log.Info("Server exited")
}
