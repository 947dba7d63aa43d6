// Package middleware 提供依赖存储层的横切中间件
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	"github.com/qingliu2025/stock-admin-backend/internal/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// OperationLogger 操作日志记录器
// 持有一个缓冲通道和后台写入协程，入队非阻塞：队列满时丢弃并告警，
// 日志记录的任何失败都不影响原始请求
type OperationLogger struct {
	repo      *repository.OperationLogRepository
	ch        chan *models.OperationLog
	stopOnce  sync.Once
	wg        sync.WaitGroup
	writeWait time.Duration
}

// NewOperationLogger 创建操作日志记录器
func NewOperationLogger(repo *repository.OperationLogRepository, queueSize int) *OperationLogger {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &OperationLogger{
		repo:      repo,
		ch:        make(chan *models.OperationLog, queueSize),
		writeWait: 5 * time.Second,
	}
}

// Start 启动后台写入协程
func (l *OperationLogger) Start() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for entry := range l.ch {
			ctx, cancel := context.WithTimeout(context.Background(), l.writeWait)
			if err := l.repo.Create(ctx, entry); err != nil {
				logger.Error("写入操作日志失败",
					logger.Module(entry.Module),
					logger.Action(entry.Action),
					logger.Err(err),
				)
			} else {
				metrics.GetMetrics().RecordOperationLog(entry.Module)
			}
			cancel()
		}
	}()
}

// Stop 停止写入协程，等待队列排空
func (l *OperationLogger) Stop() {
	l.stopOnce.Do(func() {
		close(l.ch)
	})
	l.wg.Wait()
}

// OperationConfig 路由对应的操作描述
type OperationConfig struct {
	Module      string
	Action      string
	Description string
}

// routeRegistry 路由到模块/操作的静态映射，键为 "METHOD 完整路由"
var routeRegistry = map[string]OperationConfig{
	"POST /api/v1/auth/login":    {Module: "auth", Action: "login", Description: "管理员登录"},
	"POST /api/v1/auth/logout":   {Module: "auth", Action: "logout", Description: "管理员登出"},
	"PUT /api/v1/auth/password":  {Module: "auth", Action: "change_password", Description: "修改密码"},
	"POST /api/v1/auth/refresh":  {Module: "auth", Action: "refresh_token", Description: "刷新令牌"},

	"POST /api/v1/system/admins":                {Module: "admin", Action: "create", Description: "创建管理员"},
	"PUT /api/v1/system/admins/:id":             {Module: "admin", Action: "update", Description: "更新管理员"},
	"DELETE /api/v1/system/admins/:id":          {Module: "admin", Action: "delete", Description: "删除管理员"},
	"PUT /api/v1/system/admins/:id/roles":       {Module: "admin", Action: "assign_roles", Description: "分配角色"},
	"PUT /api/v1/system/admins/:id/password":    {Module: "admin", Action: "reset_password", Description: "重置密码"},

	"POST /api/v1/system/roles":           {Module: "role", Action: "create", Description: "创建角色"},
	"PUT /api/v1/system/roles/:id":        {Module: "role", Action: "update", Description: "更新角色"},
	"DELETE /api/v1/system/roles/:id":     {Module: "role", Action: "delete", Description: "删除角色"},
	"PUT /api/v1/system/roles/:id/menus":  {Module: "role", Action: "assign_menus", Description: "分配菜单"},

	"POST /api/v1/system/menus":       {Module: "menu", Action: "create", Description: "创建菜单"},
	"PUT /api/v1/system/menus/:id":    {Module: "menu", Action: "update", Description: "更新菜单"},
	"DELETE /api/v1/system/menus/:id": {Module: "menu", Action: "delete", Description: "删除菜单"},

	"DELETE /api/v1/system/operation-logs/:id":   {Module: "oplog", Action: "delete", Description: "删除操作日志"},
	"POST /api/v1/system/operation-logs/purge":   {Module: "oplog", Action: "purge", Description: "批量清理操作日志"},

	"POST /api/v1/stock/configs":       {Module: "stock", Action: "create", Description: "创建股票配置"},
	"PUT /api/v1/stock/configs/:id":    {Module: "stock", Action: "update", Description: "更新股票配置"},
	"DELETE /api/v1/stock/configs/:id": {Module: "stock", Action: "delete", Description: "删除股票配置"},
}

// sensitiveFields 参数脱敏字段
var sensitiveFields = []string{
	"password", "old_password", "new_password", "confirm_password",
	"token", "access_token", "refresh_token",
	"secret", "api_key", "api_secret",
}

// auditWriter 捕获响应体以提取业务错误消息
type auditWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *auditWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware 操作日志中间件，仅记录写操作
func (l *OperationLogger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}

		// 在 Handler 消费前捕获请求体
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		aw := &auditWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = aw

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		entry := l.buildEntry(c, requestBody, aw.body.Bytes(), duration)
		l.enqueue(entry)
	}
}

// buildEntry 组装日志条目
func (l *OperationLogger) buildEntry(c *gin.Context, requestBody, responseBody []byte, duration time.Duration) *models.OperationLog {
	config := lookupRoute(c)

	entry := &models.OperationLog{
		Module:     config.Module,
		Action:     config.Action,
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         middleware.ClientIP(c),
		DurationMs: duration.Milliseconds(),
		Success:    c.Writer.Status() < 400,
	}

	if config.Description != "" {
		desc := config.Description
		entry.Description = &desc
	}

	// 操作者可为空：匿名或认证失败的请求同样留痕
	if adminID := middleware.GetAdminID(c); adminID > 0 {
		entry.AdminID = &adminID
		if username := middleware.GetUsername(c); username != "" {
			entry.AdminName = &username
		}
	}

	if ua := c.Request.UserAgent(); ua != "" {
		entry.UserAgent = &ua
	}

	if len(requestBody) > 0 {
		var data interface{}
		if err := json.Unmarshal(requestBody, &data); err == nil {
			if mapData, ok := redact(data).(map[string]interface{}); ok {
				entry.Params = mapData
			}
		}
	}

	// 业务错误：HTTP 200 但信封 code 非 0
	if len(responseBody) > 0 {
		var envelope struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Code != 0 {
			entry.Success = false
			if envelope.Message != "" {
				msg := envelope.Message
				entry.ErrorMessage = &msg
			}
		}
	}

	return entry
}

// enqueue 非阻塞入队，队列满时丢弃
func (l *OperationLogger) enqueue(entry *models.OperationLog) {
	select {
	case l.ch <- entry:
	default:
		metrics.GetMetrics().RecordOperationLogDropped()
		logger.Warn("操作日志队列已满，丢弃日志",
			logger.Module(entry.Module),
			logger.Action(entry.Action),
			logger.Path(entry.Path),
		)
	}
}

func isWriteMethod(method string) bool {
	return method == "POST" || method == "PUT" || method == "PATCH" || method == "DELETE"
}

// lookupRoute 查询路由注册表，未命中时从路径和方法推断
func lookupRoute(c *gin.Context) OperationConfig {
	routeKey := c.Request.Method + " " + c.FullPath()
	if config, ok := routeRegistry[routeKey]; ok {
		return config
	}

	path := c.FullPath()
	module := "unknown"
	switch {
	case strings.Contains(path, "/admins"):
		module = "admin"
	case strings.Contains(path, "/roles"):
		module = "role"
	case strings.Contains(path, "/menus"):
		module = "menu"
	case strings.Contains(path, "/operation-logs"):
		module = "oplog"
	case strings.Contains(path, "/stock"):
		module = "stock"
	case strings.Contains(path, "/auth"):
		module = "auth"
	}

	action := "unknown"
	switch c.Request.Method {
	case "POST":
		action = "create"
	case "PUT", "PATCH":
		action = "update"
	case "DELETE":
		action = "delete"
	}

	return OperationConfig{Module: module, Action: action}
}

// redact 递归脱敏敏感字段
func redact(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			lowerKey := strings.ToLower(key)
			isSensitive := false
			for _, sf := range sensitiveFields {
				if strings.Contains(lowerKey, sf) {
					isSensitive = true
					break
				}
			}
			if isSensitive {
				result[key] = "***"
			} else {
				result[key] = redact(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redact(item)
		}
		return result
	default:
		return data
	}
}
