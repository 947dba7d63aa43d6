// Package system 服务层测试公共设施
package system

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qingliu2025/stock-admin-backend/internal/common/crypto"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// setupTestDB 创建内存数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(
		&models.Admin{},
		&models.Role{},
		&models.Menu{},
		&models.AdminRole{},
		&models.RoleMenu{},
		&models.OperationLog{},
	)
	require.NoError(t, err)

	return db
}

// testServices 打包好的被测服务
type testServices struct {
	db          *gorm.DB
	adminRepo   *repository.AdminRepository
	roleRepo    *repository.RoleRepository
	menuRepo    *repository.MenuRepository
	permCache   *PermissionCache
	permService *PermissionService
	adminSvc    *AdminService
	roleSvc     *RoleService
	menuSvc     *MenuService
}

// newTestServices 创建全套被测服务
func newTestServices(t *testing.T) *testServices {
	db := setupTestDB(t)

	adminRepo := repository.NewAdminRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	permCache := NewPermissionCache(time.Minute)
	permService := NewPermissionService(adminRepo, permCache)

	return &testServices{
		db:          db,
		adminRepo:   adminRepo,
		roleRepo:    roleRepo,
		menuRepo:    menuRepo,
		permCache:   permCache,
		permService: permService,
		adminSvc:    NewAdminService(adminRepo, roleRepo, permService),
		roleSvc:     NewRoleService(roleRepo, adminRepo, menuRepo, permService),
		menuSvc:     NewMenuService(menuRepo, permService),
	}
}

// createTestAdmin 创建测试管理员
func createTestAdmin(t *testing.T, db *gorm.DB, id int64, username string) *models.Admin {
	hash, err := crypto.HashPassword("password123")
	require.NoError(t, err)

	admin := &models.Admin{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Name:         "测试管理员",
		Status:       models.AdminStatusActive,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// createTestRole 创建测试角色
func createTestRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	role := &models.Role{
		Name:   name,
		Status: models.RoleStatusActive,
	}
	require.NoError(t, db.Create(role).Error)
	return role
}

// createTestMenu 创建测试菜单节点
func createTestMenu(t *testing.T, db *gorm.DB, parentID int64, name, permission string) *models.Menu {
	m := &models.Menu{
		ParentID: parentID,
		Type:     models.MenuTypeMenu,
		Name:     name,
		Visible:  true,
		Status:   models.MenuStatusActive,
	}
	if permission != "" {
		m.Permission = &permission
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// assignRole 给管理员分配角色
func assignRole(t *testing.T, db *gorm.DB, adminID, roleID int64) {
	require.NoError(t, db.Create(&models.AdminRole{AdminID: adminID, RoleID: roleID}).Error)
}

// assignMenu 给角色分配菜单
func assignMenu(t *testing.T, db *gorm.DB, roleID, menuID int64) {
	require.NoError(t, db.Create(&models.RoleMenu{RoleID: roleID, MenuID: menuID}).Error)
}
