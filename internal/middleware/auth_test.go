// Package middleware 认证中间件单元测试
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingliu2025/stock-admin-backend/internal/common/jwt"
)

// newTestJWTManager 创建测试 JWT 管理器
func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test",
	})
}

// authRouter 认证中间件 + 回显身份的测试路由
func authRouter(jwtManager *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(jwtManager))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"admin_id":  GetAdminID(c),
			"logged_in": IsLoggedIn(c),
		})
	})
	r.GET("/private", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestAuth_ValidBearerToken(t *testing.T) {
	jwtManager := newTestJWTManager()
	pair, err := jwtManager.GenerateTokenPair(2, "operator", []int64{3})
	require.NoError(t, err)

	r := authRouter(jwtManager)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_TokenFromQueryAndCookie(t *testing.T) {
	jwtManager := newTestJWTManager()
	pair, err := jwtManager.GenerateTokenPair(2, "operator", nil)
	require.NoError(t, err)

	r := authRouter(jwtManager)

	// 查询参数
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private?token="+pair.AccessToken, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Cookie
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: pair.AccessToken})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_InvalidTokenStaysAnonymous(t *testing.T) {
	jwtManager := newTestJWTManager()
	r := authRouter(jwtManager)

	// 无效令牌不中断请求，仅保持匿名
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logged_in":false`)

	// 但匿名进不了需要登录的接口
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RefreshTokenStaysAnonymous(t *testing.T) {
	jwtManager := newTestJWTManager()
	pair, err := jwtManager.GenerateTokenPair(2, "operator", nil)
	require.NoError(t, err)

	// 长效刷新令牌不能当访问令牌用
	r := authRouter(jwtManager)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecretRejected(t *testing.T) {
	otherManager := jwt.NewManager(&jwt.Config{
		Secret:            "other-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test",
	})
	pair, err := otherManager.GenerateTokenPair(2, "operator", nil)
	require.NoError(t, err)

	r := authRouter(newTestJWTManager())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "XFF 优先取第一个",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			want:       "203.0.113.5",
		},
		{
			name:       "其次 X-Real-IP",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "回退 RemoteAddr 并去掉端口",
			remoteAddr: "10.0.0.1:1234",
			want:       "10.0.0.1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(c))
		})
	}
}
