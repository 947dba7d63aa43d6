// Package admin 管理端 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// MenuHandler 菜单管理处理器
type MenuHandler struct {
	menuService *system.MenuService
}

// NewMenuHandler 创建菜单管理处理器
func NewMenuHandler(menuService *system.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// Create 创建菜单
// @Summary 创建菜单
// @Tags 系统-菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body system.CreateMenuRequest true "创建菜单请求"
// @Success 200 {object} response.Response{data=models.Menu}
// @Router /api/v1/system/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req system.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	menu, err := h.menuService.Create(c.Request.Context(), &req)
	handler.MustSucceed(c, err, menu)
}

// Get 获取菜单详情
// @Summary 获取菜单详情
// @Tags 系统-菜单
// @Produce json
// @Security Bearer
// @Param id path int true "菜单ID"
// @Success 200 {object} response.Response{data=models.Menu}
// @Router /api/v1/system/menus/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "菜单")
	if !ok {
		return
	}

	menu, err := h.menuService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, menu)
}

// Tree 获取完整菜单树
// @Summary 获取完整菜单树
// @Tags 系统-菜单
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]system.MenuNode}
// @Router /api/v1/system/menus/tree [get]
func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.menuService.Tree(c.Request.Context())
	handler.MustSucceed(c, err, tree)
}

// Update 更新菜单
// @Summary 更新菜单
// @Tags 系统-菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "菜单ID"
// @Param request body system.UpdateMenuRequest true "更新菜单请求"
// @Success 200 {object} response.Response{data=models.Menu}
// @Router /api/v1/system/menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "菜单")
	if !ok {
		return
	}

	var req system.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	menu, err := h.menuService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, menu)
}

// Delete 删除菜单
// @Summary 删除菜单
// @Tags 系统-菜单
// @Produce json
// @Security Bearer
// @Param id path int true "菜单ID"
// @Success 200 {object} response.Response
// @Router /api/v1/system/menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "菜单")
	if !ok {
		return
	}

	err := h.menuService.Delete(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}
