// Package admin 管理端 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// RoleHandler 角色管理处理器
type RoleHandler struct {
	roleService *system.RoleService
}

// NewRoleHandler 创建角色管理处理器
func NewRoleHandler(roleService *system.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create 创建角色
// @Summary 创建角色
// @Tags 系统-角色
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body system.CreateRoleRequest true "创建角色请求"
// @Success 200 {object} response.Response{data=models.Role}
// @Router /api/v1/system/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req system.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), &req)
	handler.MustSucceed(c, err, role)
}

// Get 获取角色详情
// @Summary 获取角色详情
// @Tags 系统-角色
// @Produce json
// @Security Bearer
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response{data=models.Role}
// @Router /api/v1/system/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "角色")
	if !ok {
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, role)
}

// List 获取角色列表
// @Summary 获取角色列表
// @Tags 系统-角色
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param name query string false "角色名称"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/system/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{
		"name": c.Query("name"),
	}

	roles, total, err := h.roleService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, roles, total, p.Page, p.PageSize)
}

// ListAll 获取全部角色
// @Summary 获取全部角色（下拉选项）
// @Tags 系统-角色
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.Role}
// @Router /api/v1/system/roles/all [get]
func (h *RoleHandler) ListAll(c *gin.Context) {
	roles, err := h.roleService.ListAll(c.Request.Context())
	handler.MustSucceed(c, err, roles)
}

// Update 更新角色
// @Summary 更新角色
// @Tags 系统-角色
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "角色ID"
// @Param request body system.UpdateRoleRequest true "更新角色请求"
// @Success 200 {object} response.Response{data=models.Role}
// @Router /api/v1/system/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "角色")
	if !ok {
		return
	}

	var req system.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, role)
}

// Delete 删除角色
// @Summary 删除角色
// @Tags 系统-角色
// @Produce json
// @Security Bearer
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response
// @Router /api/v1/system/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "角色")
	if !ok {
		return
	}

	err := h.roleService.Delete(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// GetMenus 获取角色的菜单 ID 集合
// @Summary 获取角色已分配的菜单
// @Tags 系统-角色
// @Produce json
// @Security Bearer
// @Param id path int true "角色ID"
// @Success 200 {object} response.Response{data=[]int64}
// @Router /api/v1/system/roles/{id}/menus [get]
func (h *RoleHandler) GetMenus(c *gin.Context) {
	id, ok := handler.ParseID(c, "角色")
	if !ok {
		return
	}

	menuIDs, err := h.roleService.GetMenuIDs(c.Request.Context(), id)
	handler.MustSucceed(c, err, menuIDs)
}

// SetMenusRequest 分配菜单请求
type SetMenusRequest struct {
	MenuIDs []int64 `json:"menu_ids"`
}

// SetMenus 分配菜单
// @Summary 分配角色菜单
// @Tags 系统-角色
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "角色ID"
// @Param request body SetMenusRequest true "分配菜单请求"
// @Success 200 {object} response.Response
// @Router /api/v1/system/roles/{id}/menus [put]
func (h *RoleHandler) SetMenus(c *gin.Context) {
	id, ok := handler.ParseID(c, "角色")
	if !ok {
		return
	}

	var req SetMenusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.roleService.SetMenus(c.Request.Context(), id, req.MenuIDs)
	handler.MustSucceed(c, err, nil)
}
