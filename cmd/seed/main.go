// Package main 初始化数据库表结构和基础数据
// 幂等：已存在的超级管理员、菜单、角色不会重复创建
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/config"
	"github.com/qingliu2025/stock-admin-backend/internal/common/crypto"
	"github.com/qingliu2025/stock-admin-backend/internal/common/database"
	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database migrated")

	if err := seedSuperAdmin(db); err != nil {
		log.Fatal("Failed to seed super admin", zap.Error(err))
	}

	if err := seedMenus(db); err != nil {
		log.Fatal("Failed to seed menus", zap.Error(err))
	}

	log.Info("Seed completed")
}

// migrate 创建表结构
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Role{},
		&models.Menu{},
		&models.AdminRole{},
		&models.RoleMenu{},
		&models.OperationLog{},
		&models.StockConfig{},
		&models.StockQuote{},
	)
}

// seedSuperAdmin 创建内置超级管理员
// 超级管理员隐式持有全部权限，不需要分配角色
func seedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Admin{}).Where("id = ?", models.SuperAdminID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := &models.Admin{
		ID:           models.SuperAdminID,
		Username:     "admin",
		PasswordHash: hash,
		Name:         "超级管理员",
		Status:       models.AdminStatusActive,
	}
	return db.Create(admin).Error
}

// menuSeed 菜单种子定义
type menuSeed struct {
	Name       string
	Type       int8
	Permission string
	Path       string
	Icon       string
	Sort       int
	Children   []menuSeed
}

var menuTree = []menuSeed{
	{
		Name: "系统管理", Type: models.MenuTypeDirectory, Path: "/system", Icon: "setting", Sort: 1,
		Children: []menuSeed{
			{
				Name: "管理员管理", Type: models.MenuTypeMenu, Permission: "system:admin:list", Path: "/system/admins", Sort: 1,
				Children: []menuSeed{
					{Name: "创建管理员", Type: models.MenuTypeButton, Permission: "system:admin:create", Sort: 1},
					{Name: "更新管理员", Type: models.MenuTypeButton, Permission: "system:admin:update", Sort: 2},
					{Name: "删除管理员", Type: models.MenuTypeButton, Permission: "system:admin:delete", Sort: 3},
					{Name: "分配角色", Type: models.MenuTypeButton, Permission: "system:admin:assign", Sort: 4},
					{Name: "重置密码", Type: models.MenuTypeButton, Permission: "system:admin:reset", Sort: 5},
				},
			},
			{
				Name: "角色管理", Type: models.MenuTypeMenu, Permission: "system:role:list", Path: "/system/roles", Sort: 2,
				Children: []menuSeed{
					{Name: "创建角色", Type: models.MenuTypeButton, Permission: "system:role:create", Sort: 1},
					{Name: "更新角色", Type: models.MenuTypeButton, Permission: "system:role:update", Sort: 2},
					{Name: "删除角色", Type: models.MenuTypeButton, Permission: "system:role:delete", Sort: 3},
					{Name: "分配菜单", Type: models.MenuTypeButton, Permission: "system:role:assign", Sort: 4},
				},
			},
			{
				Name: "菜单管理", Type: models.MenuTypeMenu, Permission: "system:menu:list", Path: "/system/menus", Sort: 3,
				Children: []menuSeed{
					{Name: "创建菜单", Type: models.MenuTypeButton, Permission: "system:menu:create", Sort: 1},
					{Name: "更新菜单", Type: models.MenuTypeButton, Permission: "system:menu:update", Sort: 2},
					{Name: "删除菜单", Type: models.MenuTypeButton, Permission: "system:menu:delete", Sort: 3},
				},
			},
			{
				Name: "操作日志", Type: models.MenuTypeMenu, Permission: "system:oplog:list", Path: "/system/operation-logs", Sort: 4,
				Children: []menuSeed{
					{Name: "清理日志", Type: models.MenuTypeButton, Permission: "system:oplog:delete", Sort: 1},
				},
			},
		},
	},
	{
		Name: "股票管理", Type: models.MenuTypeDirectory, Path: "/stock", Icon: "stock", Sort: 2,
		Children: []menuSeed{
			{
				Name: "股票配置", Type: models.MenuTypeMenu, Permission: "stock:config:list", Path: "/stock/configs", Sort: 1,
				Children: []menuSeed{
					{Name: "创建配置", Type: models.MenuTypeButton, Permission: "stock:config:create", Sort: 1},
					{Name: "更新配置", Type: models.MenuTypeButton, Permission: "stock:config:update", Sort: 2},
					{Name: "删除配置", Type: models.MenuTypeButton, Permission: "stock:config:delete", Sort: 3},
				},
			},
		},
	},
}

// seedMenus 创建基础菜单树
func seedMenus(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Menu{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return createMenus(tx, menuTree, models.MenuRootParentID)
	})
}

// createMenus 递归创建菜单节点
func createMenus(tx *gorm.DB, seeds []menuSeed, parentID int64) error {
	for _, seed := range seeds {
		menu := &models.Menu{
			ParentID: parentID,
			Type:     seed.Type,
			Name:     seed.Name,
			Sort:     seed.Sort,
			Visible:  seed.Type != models.MenuTypeButton,
			Status:   models.MenuStatusActive,
		}
		if seed.Permission != "" {
			p := seed.Permission
			menu.Permission = &p
		}
		if seed.Path != "" {
			p := seed.Path
			menu.Path = &p
		}
		if seed.Icon != "" {
			i := seed.Icon
			menu.Icon = &i
		}

		if err := tx.Create(menu).Error; err != nil {
			return err
		}
		if err := createMenus(tx, seed.Children, menu.ID); err != nil {
			return err
		}
	}
	return nil
}
