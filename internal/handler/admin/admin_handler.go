// Package admin 管理端 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// AdminHandler 管理员管理处理器
type AdminHandler struct {
	adminService *system.AdminService
}

// NewAdminHandler 创建管理员管理处理器
func NewAdminHandler(adminService *system.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Create 创建管理员
// @Summary 创建管理员
// @Tags 系统-管理员
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body system.CreateAdminRequest true "创建管理员请求"
// @Success 200 {object} response.Response{data=models.Admin}
// @Router /api/v1/system/admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req system.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	admin, err := h.adminService.Create(c.Request.Context(), &req)
	handler.MustSucceed(c, err, admin)
}

// Get 获取管理员详情
// @Summary 获取管理员详情
// @Tags 系统-管理员
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Success 200 {object} response.Response{data=models.Admin}
// @Router /api/v1/system/admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	admin, err := h.adminService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, admin)
}

// List 获取管理员列表
// @Summary 获取管理员列表
// @Tags 系统-管理员
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param username query string false "用户名"
// @Param name query string false "姓名"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/system/admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{
		"username": c.Query("username"),
		"name":     c.Query("name"),
	}

	admins, total, err := h.adminService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, admins, total, p.Page, p.PageSize)
}

// Update 更新管理员
// @Summary 更新管理员
// @Tags 系统-管理员
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Param request body system.UpdateAdminRequest true "更新管理员请求"
// @Success 200 {object} response.Response{data=models.Admin}
// @Router /api/v1/system/admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	var req system.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	admin, err := h.adminService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, admin)
}

// Delete 删除管理员
// @Summary 删除管理员
// @Tags 系统-管理员
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Success 200 {object} response.Response
// @Router /api/v1/system/admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	operatorID, id, ok := handler.RequireAdminAndParseID(c, "管理员")
	if !ok {
		return
	}

	err := h.adminService.Delete(c.Request.Context(), id, operatorID)
	handler.MustSucceed(c, err, nil)
}

// SetRolesRequest 分配角色请求
type SetRolesRequest struct {
	RoleIDs []int64 `json:"role_ids"`
}

// SetRoles 分配角色
// @Summary 分配管理员角色
// @Tags 系统-管理员
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Param request body SetRolesRequest true "分配角色请求"
// @Success 200 {object} response.Response
// @Router /api/v1/system/admins/{id}/roles [put]
func (h *AdminHandler) SetRoles(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	var req SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.adminService.SetRoles(c.Request.Context(), id, req.RoleIDs)
	handler.MustSucceed(c, err, nil)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// ResetPassword 重置密码
// @Summary 重置管理员密码
// @Tags 系统-管理员
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "管理员ID"
// @Param request body ResetPasswordRequest true "重置密码请求"
// @Success 200 {object} response.Response
// @Router /api/v1/system/admins/{id}/password [put]
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, ok := handler.ParseID(c, "管理员")
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.adminService.ResetPassword(c.Request.Context(), id, req.Password)
	handler.MustSucceedWithMessage(c, err, "密码重置成功", nil)
}
