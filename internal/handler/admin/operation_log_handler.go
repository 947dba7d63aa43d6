// Package admin 管理端 HTTP Handler
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// OperationLogHandler 操作日志处理器
type OperationLogHandler struct {
	logService *system.OperationLogService
}

// NewOperationLogHandler 创建操作日志处理器
func NewOperationLogHandler(logService *system.OperationLogService) *OperationLogHandler {
	return &OperationLogHandler{logService: logService}
}

// List 获取操作日志列表
// @Summary 获取操作日志列表
// @Tags 系统-操作日志
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param admin_id query int false "操作人ID"
// @Param module query string false "模块"
// @Param action query string false "动作"
// @Param success query bool false "是否成功"
// @Param start_time query string false "开始时间 RFC3339"
// @Param end_time query string false "结束时间 RFC3339"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/system/operation-logs [get]
func (h *OperationLogHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{
		"module":     c.Query("module"),
		"action":     c.Query("action"),
		"start_time": c.Query("start_time"),
		"end_time":   c.Query("end_time"),
	}
	if v := c.Query("admin_id"); v != "" {
		if adminID, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters["admin_id"] = adminID
		}
	}
	if v := c.Query("success"); v != "" {
		if success, err := strconv.ParseBool(v); err == nil {
			filters["success"] = success
		}
	}

	logs, total, err := h.logService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, logs, total, p.Page, p.PageSize)
}

// Get 获取操作日志详情
// @Summary 获取操作日志详情
// @Tags 系统-操作日志
// @Produce json
// @Security Bearer
// @Param id path int true "日志ID"
// @Success 200 {object} response.Response{data=models.OperationLog}
// @Router /api/v1/system/operation-logs/{id} [get]
func (h *OperationLogHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "日志")
	if !ok {
		return
	}

	log, err := h.logService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, log)
}

// Delete 删除操作日志
// @Summary 删除单条操作日志
// @Tags 系统-操作日志
// @Produce json
// @Security Bearer
// @Param id path int true "日志ID"
// @Success 200 {object} response.Response
// @Router /api/v1/system/operation-logs/{id} [delete]
func (h *OperationLogHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "日志")
	if !ok {
		return
	}

	err := h.logService.Delete(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// PurgeResult 批量清理结果
type PurgeResult struct {
	Deleted int64 `json:"deleted"`
}

// Purge 批量清理操作日志
// @Summary 批量清理操作日志
// @Tags 系统-操作日志
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body system.PurgeRequest true "清理请求"
// @Success 200 {object} response.Response{data=PurgeResult}
// @Router /api/v1/system/operation-logs/purge [post]
func (h *OperationLogHandler) Purge(c *gin.Context) {
	var req system.PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deleted, err := h.logService.Purge(c.Request.Context(), &req)
	handler.MustSucceed(c, err, &PurgeResult{Deleted: deleted})
}
