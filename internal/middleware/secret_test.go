// Package middleware 共享密钥中间件单元测试
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// doSecretRequest 携带指定密钥头经过共享密钥门发起请求
func doSecretRequest(configured, provided string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ingest", SharedSecret(configured), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	if provided != "" {
		req.Header.Set(IngestSecretHeader, provided)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSharedSecret(t *testing.T) {
	// 密钥匹配放行
	w := doSecretRequest("s3cret", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	// 未携带密钥
	w = doSecretRequest("s3cret", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 密钥不匹配
	w = doSecretRequest("s3cret", "wrong")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 未配置密钥时通道关闭，正确的猜测也进不来
	w = doSecretRequest("", "s3cret")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
