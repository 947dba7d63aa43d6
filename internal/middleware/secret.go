// Package middleware 提供 HTTP 中间件
package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
)

// IngestSecretHeader 数据推送密钥请求头
const IngestSecretHeader = "X-Ingest-Secret"

// SharedSecret 共享密钥认证中间件
// 用于机器对机器的数据推送通道，与管理端的 JWT 认证相互独立：
// 未携带密钥返回 401，密钥不匹配返回 403
func SharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			// 未配置密钥时通道关闭
			response.Forbidden(c, "数据推送通道未开放")
			c.Abort()
			return
		}

		provided := c.GetHeader(IngestSecretHeader)
		if provided == "" {
			response.Unauthorized(c, "缺少推送密钥")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			response.Forbidden(c, "推送密钥错误")
			c.Abort()
			return
		}

		c.Next()
	}
}
