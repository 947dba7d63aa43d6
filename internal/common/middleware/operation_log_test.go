// Package middleware 操作日志中间件单元测试
package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// setupOpLogTest 创建内存数据库和日志记录器
func setupOpLogTest(t *testing.T) (*gorm.DB, *OperationLogger) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&models.OperationLog{}))

	opLogger := NewOperationLogger(repository.NewOperationLogRepository(db), 16)
	return db, opLogger
}

// opLogRouter 挂载审计中间件的测试路由
func opLogRouter(opLogger *OperationLogger, adminID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if adminID > 0 {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyAdminID, adminID)
			c.Set(middleware.ContextKeyUsername, "operator")
			c.Next()
		})
	}
	r.Use(opLogger.Middleware())

	v1 := r.Group("/api/v1")
	v1.POST("/system/admins", func(c *gin.Context) {
		response.Success(c, gin.H{"id": 1})
	})
	v1.GET("/system/admins", func(c *gin.Context) {
		response.Success(c, nil)
	})
	v1.DELETE("/system/roles/:id", func(c *gin.Context) {
		response.Error(c, 3102, "角色正在使用中")
	})
	v1.POST("/system/menus", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})
	return r
}

// fetchLogs 排空队列后读出全部日志
func fetchLogs(t *testing.T, db *gorm.DB, opLogger *OperationLogger) []*models.OperationLog {
	opLogger.Stop()

	var logs []*models.OperationLog
	require.NoError(t, db.Order("id ASC").Find(&logs).Error)
	return logs
}

func TestOperationLogger_RecordsWriteOperations(t *testing.T) {
	db, opLogger := setupOpLogTest(t)
	opLogger.Start()
	r := opLogRouter(opLogger, 2)

	// 写操作入库，读操作不入库
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/system/admins",
		strings.NewReader(`{"username":"newbie","password":"secret123","name":"新人"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/admins", nil))
	require.Equal(t, http.StatusOK, w.Code)

	logs := fetchLogs(t, db, opLogger)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "admin", entry.Module)
	assert.Equal(t, "create", entry.Action)
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/api/v1/system/admins", entry.Path)
	assert.Equal(t, "203.0.113.5", entry.IP)
	assert.True(t, entry.Success)
	require.NotNil(t, entry.AdminID)
	assert.Equal(t, int64(2), *entry.AdminID)
	require.NotNil(t, entry.AdminName)
	assert.Equal(t, "operator", *entry.AdminName)

	// 敏感字段脱敏，普通字段保留
	require.NotNil(t, entry.Params)
	assert.Equal(t, "***", entry.Params["password"])
	assert.Equal(t, "newbie", entry.Params["username"])
}

func TestOperationLogger_BusinessFailure(t *testing.T) {
	db, opLogger := setupOpLogTest(t)
	opLogger.Start()
	r := opLogRouter(opLogger, 2)

	// HTTP 200 但信封 code 非 0 记为失败
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/system/roles/5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	logs := fetchLogs(t, db, opLogger)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "role", entry.Module)
	assert.Equal(t, "delete", entry.Action)
	assert.False(t, entry.Success)
	require.NotNil(t, entry.ErrorMessage)
	assert.Equal(t, "角色正在使用中", *entry.ErrorMessage)
}

func TestOperationLogger_HTTPFailure(t *testing.T) {
	db, opLogger := setupOpLogTest(t)
	opLogger.Start()
	r := opLogRouter(opLogger, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/system/menus", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	logs := fetchLogs(t, db, opLogger)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.False(t, entry.Success)
	// 匿名请求同样留痕，操作者为空
	assert.Nil(t, entry.AdminID)
}

func TestOperationLogger_EnqueueDropsWhenFull(t *testing.T) {
	_, opLogger := setupOpLogTest(t)

	// 写入协程未启动，容量 16 写满后丢弃且不阻塞
	for i := 0; i < 32; i++ {
		opLogger.enqueue(&models.OperationLog{Module: "test", Action: "create", Path: "/x"})
	}
	assert.Equal(t, 16, len(opLogger.ch))
}

func TestLookupRouteFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var got OperationConfig
	r.PUT("/api/v1/stock/configs/:id/unknown-op", func(c *gin.Context) {
		got = lookupRoute(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/stock/configs/3/unknown-op", nil))

	// 未注册的路由按路径和方法推断
	assert.Equal(t, "stock", got.Module)
	assert.Equal(t, "update", got.Action)
}

func TestRedact(t *testing.T) {
	input := map[string]interface{}{
		"username": "operator",
		"password": "secret",
		"nested": map[string]interface{}{
			"api_secret": "key",
			"note":       "plain",
		},
		"list": []interface{}{
			map[string]interface{}{"refresh_token": "abc", "id": float64(1)},
		},
	}

	out := redact(input).(map[string]interface{})
	assert.Equal(t, "operator", out["username"])
	assert.Equal(t, "***", out["password"])

	nested := out["nested"].(map[string]interface{})
	assert.Equal(t, "***", nested["api_secret"])
	assert.Equal(t, "plain", nested["note"])

	item := out["list"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "***", item["refresh_token"])
	assert.Equal(t, float64(1), item["id"])
}
