// Package middleware 权限门中间件单元测试
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// stubProvider 固定返回权限集合的测试提供者
type stubProvider struct {
	permissions map[string]struct{}
	err         error
}

func (p *stubProvider) GetPermissions(ctx context.Context, adminID int64) (map[string]struct{}, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.permissions, nil
}

// doRequest 以指定身份经过权限门发起请求
func doRequest(handler gin.HandlerFunc, adminID int64) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if adminID > 0 {
			c.Set(ContextKeyAdminID, adminID)
		}
		c.Next()
	}, handler, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePermission_Anonymous(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{"system:admin:list": {}}}

	w := doRequest(RequirePermission(provider, "system:admin:list"), 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermission_Held(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{"system:admin:list": {}}}

	w := doRequest(RequirePermission(provider, "system:admin:list"), 2)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_Lacking(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{"system:role:list": {}}}

	w := doRequest(RequirePermission(provider, "system:admin:list"), 2)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermission_Wildcard(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{models.PermissionWildcard: {}}}

	w := doRequest(RequirePermission(provider, "system:admin:list"), 1)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermission_ProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("db down")}

	// 权限加载失败既不放行也不按无权处理
	w := doRequest(RequirePermission(provider, "system:admin:list"), 2)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAnyPermission(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{"system:role:list": {}}}

	w := doRequest(RequireAnyPermission(provider, "system:admin:list", "system:role:list"), 2)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(RequireAnyPermission(provider, "system:admin:list", "system:menu:list"), 2)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAllPermissions(t *testing.T) {
	provider := &stubProvider{permissions: map[string]struct{}{
		"system:admin:list": {},
		"system:role:list":  {},
	}}

	w := doRequest(RequireAllPermissions(provider, "system:admin:list", "system:role:list"), 2)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(RequireAllPermissions(provider, "system:admin:list", "system:menu:list"), 2)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
