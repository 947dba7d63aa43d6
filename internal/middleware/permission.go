// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// PermissionProvider 权限提供者接口
// 返回指定管理员当前持有的权限标识集合
type PermissionProvider interface {
	GetPermissions(ctx context.Context, adminID int64) (map[string]struct{}, error)
}

// RequirePermission 要求指定权限
// 匿名请求返回 401，已登录但权限不足返回 403，集合中含通配权限始终放行
func RequirePermission(provider PermissionProvider, permission string) gin.HandlerFunc {
	return requirePermissions(provider, []string{permission}, false)
}

// RequireAnyPermission 要求任一权限
func RequireAnyPermission(provider PermissionProvider, permissions ...string) gin.HandlerFunc {
	return requirePermissions(provider, permissions, false)
}

// RequireAllPermissions 要求全部权限
func RequireAllPermissions(provider PermissionProvider, permissions ...string) gin.HandlerFunc {
	return requirePermissions(provider, permissions, true)
}

func requirePermissions(provider PermissionProvider, permissions []string, requireAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := GetAdminID(c)
		if adminID == 0 {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		held, err := provider.GetPermissions(c.Request.Context(), adminID)
		if err != nil {
			// 权限加载失败不能静默放行或拒绝，按内部错误处理
			logger.Error("加载权限失败",
				logger.AdminID(adminID),
				logger.Err(err),
			)
			response.InternalError(c, "")
			c.Abort()
			return
		}

		if _, ok := held[models.PermissionWildcard]; ok {
			c.Next()
			return
		}

		if requireAll {
			for _, p := range permissions {
				if _, ok := held[p]; !ok {
					response.Forbidden(c, "权限不足")
					c.Abort()
					return
				}
			}
			c.Next()
			return
		}

		for _, p := range permissions {
			if _, ok := held[p]; ok {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "权限不足")
		c.Abort()
	}
}
