// Package admin 认证 Handler 单元测试
package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qingliu2025/stock-admin-backend/internal/common/crypto"
	"github.com/qingliu2025/stock-admin-backend/internal/common/jwt"
	"github.com/qingliu2025/stock-admin-backend/internal/middleware"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
	authService "github.com/qingliu2025/stock-admin-backend/internal/service/auth"
	"github.com/qingliu2025/stock-admin-backend/internal/service/system"
)

// setupAuthHandlerTest 组装数据库、服务和带认证链的路由
func setupAuthHandlerTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Role{},
		&models.Menu{},
		&models.AdminRole{},
		&models.RoleMenu{},
	))

	adminRepo := repository.NewAdminRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test",
	})

	permCache := system.NewPermissionCache(time.Minute)
	permService := system.NewPermissionService(adminRepo, permCache)
	menuSvc := system.NewMenuService(menuRepo, permService)
	authSvc := authService.NewAuthService(adminRepo, jwtManager)

	authH := NewAuthHandler(authSvc, menuSvc, permService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(jwtManager))
	r.POST("/api/v1/auth/login", authH.Login)
	authed := r.Group("/api/v1/auth", middleware.RequireLogin())
	{
		authed.GET("/info", authH.Info)
		authed.GET("/menus", authH.Menus)
	}
	return db, r
}

// seedOperator 创建带角色和菜单权限的普通管理员
func seedOperator(t *testing.T, db *gorm.DB) {
	hash, err := crypto.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{
		ID:           2,
		Username:     "operator",
		PasswordHash: hash,
		Name:         "运营",
		Status:       models.AdminStatusActive,
	}).Error)

	role := &models.Role{Name: "运营角色", Status: models.RoleStatusActive}
	require.NoError(t, db.Create(role).Error)
	require.NoError(t, db.Create(&models.AdminRole{AdminID: 2, RoleID: role.ID}).Error)

	perms := []struct {
		name       string
		permission string
		status     int8
	}{
		{"管理员列表", "system:admin:list", models.MenuStatusActive},
		{"角色列表", "system:role:list", models.MenuStatusActive},
		{"菜单删除", "system:menu:delete", models.MenuStatusDisabled},
	}
	for _, p := range perms {
		permission := p.permission
		m := &models.Menu{
			ParentID:   models.MenuRootParentID,
			Type:       models.MenuTypeButton,
			Name:       p.name,
			Permission: &permission,
			Status:     p.status,
		}
		require.NoError(t, db.Create(m).Error)
		require.NoError(t, db.Create(&models.RoleMenu{RoleID: role.ID, MenuID: m.ID}).Error)
	}
}

// login 执行登录并返回访问令牌
func login(t *testing.T, r *gin.Engine, username, password string) string {
	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Code int `json:"code"`
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 0, envelope.Code)
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

func TestAuthHandler_InfoReturnsPermissions(t *testing.T) {
	db, r := setupAuthHandlerTest(t)
	seedOperator(t, db)

	token := login(t, r, "operator", "password123")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/info", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Code int `json:"code"`
		Data struct {
			Admin struct {
				ID       int64  `json:"id"`
				Username string `json:"username"`
			} `json:"admin"`
			Permissions []string `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 0, envelope.Code)

	assert.Equal(t, int64(2), envelope.Data.Admin.ID)
	assert.Equal(t, "operator", envelope.Data.Admin.Username)

	// 启用菜单上的全部权限标识都在集合中，禁用菜单的权限不在
	assert.ElementsMatch(t, []string{"system:admin:list", "system:role:list"}, envelope.Data.Permissions)
}

func TestAuthHandler_InfoRequiresLogin(t *testing.T) {
	_, r := setupAuthHandlerTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/info", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
