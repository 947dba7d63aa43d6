// Package admin 管理端 HTTP Handler
package admin

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	authService "github.com/qingliu2025/stock-admin-backend/internal/service/auth"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *authService.AuthService
	menuService *system.MenuService
	permService *system.PermissionService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *authService.AuthService, menuService *system.MenuService, permService *system.PermissionService) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		menuService: menuService,
		permService: permService,
	}
}

// Login 登录
// @Summary 管理员登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "登录请求"
// @Success 200 {object} response.Response{data=auth.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, middleware.ClientIP(c))
	handler.MustSucceed(c, err, result)
}

// Logout 登出
// @Summary 管理员登出
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// 无服务端会话，登出由客户端丢弃令牌完成，此处仅留审计痕迹
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}
	response.Success(c, nil)
}

// InfoResponse 当前管理员信息
type InfoResponse struct {
	Admin       *models.Admin `json:"admin"`
	Permissions []string      `json:"permissions"`
}

// Info 获取当前管理员信息
// 返回档案和当前持有的权限标识集合，前端据此控制按钮可见性
// @Summary 获取当前管理员信息
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=InfoResponse}
// @Router /api/v1/auth/info [get]
func (h *AuthHandler) Info(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	admin, err := h.authService.GetProfile(c.Request.Context(), adminID)
	if handler.HandleError(c, err) {
		return
	}

	permSet, err := h.permService.GetPermissions(c.Request.Context(), adminID)
	if handler.HandleError(c, err) {
		return
	}

	permissions := make([]string, 0, len(permSet))
	for p := range permSet {
		permissions = append(permissions, p)
	}
	sort.Strings(permissions)

	response.Success(c, &InfoResponse{
		Admin:       admin,
		Permissions: permissions,
	})
}

// Menus 获取当前管理员可见菜单树
// @Summary 获取当前管理员可见菜单树
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]system.MenuNode}
// @Router /api/v1/auth/menus [get]
func (h *AuthHandler) Menus(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	tree, err := h.menuService.GetAdminMenuTree(c.Request.Context(), adminID, middleware.GetRoleIDs(c))
	handler.MustSucceed(c, err, tree)
}

// ChangePassword 修改密码
// @Summary 修改当前管理员密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body auth.ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID, ok := handler.RequireAdminID(c)
	if !ok {
		return
	}

	var req authService.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), adminID, &req)
	handler.MustSucceedWithMessage(c, err, "密码修改成功", nil)
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh 刷新令牌
// @Summary 刷新令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "刷新令牌请求"
// @Success 200 {object} response.Response{data=jwt.TokenPair}
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, pair)
}
