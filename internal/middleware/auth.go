// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/jwt"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
)

// 上下文键
const (
	ContextKeyAdminID  = "admin_id"
	ContextKeyUsername = "username"
	ContextKeyRoleIDs  = "role_ids"
	ContextKeyClaims   = "claims"
)

// Auth 认证中间件
// 解析成功则在上下文写入身份信息；令牌缺失或无效时保持匿名继续，
// 由后续的权限门决定是否拒绝，公开接口因此无需单独放行
func Auth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			claims, err := jwtManager.ParseToken(token)
			// 刷新令牌不能当访问令牌用，按匿名处理
			if err == nil && claims.TokenType == jwt.TokenTypeAccess {
				c.Set(ContextKeyAdminID, claims.AdminID)
				c.Set(ContextKeyUsername, claims.Username)
				c.Set(ContextKeyRoleIDs, claims.RoleIDs)
				c.Set(ContextKeyClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireLogin 要求已登录
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsLoggedIn(c) {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 优先从 Authorization 头获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 其次从查询参数获取
	token := c.Query("token")
	if token != "" {
		return token
	}

	// 最后从 Cookie 获取
	token, _ = c.Cookie("token")
	return token
}

// GetAdminID 从上下文获取管理员 ID
func GetAdminID(c *gin.Context) int64 {
	adminID, exists := c.Get(ContextKeyAdminID)
	if !exists {
		return 0
	}
	return adminID.(int64)
}

// GetUsername 从上下文获取用户名
func GetUsername(c *gin.Context) string {
	username, exists := c.Get(ContextKeyUsername)
	if !exists {
		return ""
	}
	return username.(string)
}

// GetRoleIDs 从上下文获取角色 ID 列表
func GetRoleIDs(c *gin.Context) []int64 {
	roleIDs, exists := c.Get(ContextKeyRoleIDs)
	if !exists {
		return nil
	}
	return roleIDs.([]int64)
}

// GetClaims 从上下文获取完整的 Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	claims, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	return claims.(*jwt.Claims)
}

// IsLoggedIn 判断是否已登录
func IsLoggedIn(c *gin.Context) bool {
	_, exists := c.Get(ContextKeyAdminID)
	return exists
}
