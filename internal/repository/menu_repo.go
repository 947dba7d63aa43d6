// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// MenuRepository 菜单仓储
type MenuRepository struct {
	db *gorm.DB
}

// NewMenuRepository 创建菜单仓储
func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Create 创建菜单
func (r *MenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	return r.db.WithContext(ctx).Create(menu).Error
}

// GetByID 根据 ID 获取菜单
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.Menu, error) {
	var menu models.Menu
	err := r.db.WithContext(ctx).First(&menu, id).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// Update 更新菜单
func (r *MenuRepository) Update(ctx context.Context, menu *models.Menu) error {
	return r.db.WithContext(ctx).Save(menu).Error
}

// Delete 删除菜单及其角色关联
func (r *MenuRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&models.RoleMenu{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Menu{}, id).Error
	})
}

// ListAll 获取全部菜单，按排序值升序
func (r *MenuRepository) ListAll(ctx context.Context) ([]*models.Menu, error) {
	var menus []*models.Menu
	err := r.db.WithContext(ctx).Order("sort ASC, id ASC").Find(&menus).Error
	return menus, err
}

// GetByIDs 根据 ID 列表批量获取菜单
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Menu, error) {
	var menus []*models.Menu
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("sort ASC, id ASC").Find(&menus).Error
	return menus, err
}

// HasChildren 检查菜单是否存在子节点
func (r *MenuRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}

// ExistsByID 检查菜单是否存在
func (r *MenuRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ExistsByPermission 检查权限标识是否已被使用
func (r *MenuRepository) ExistsByPermission(ctx context.Context, permission string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("permission = ?", permission).Count(&count).Error
	return count > 0, err
}

// ExistsByPermissionExcludeID 检查权限标识是否已被使用（排除指定 ID）
func (r *MenuRepository) ExistsByPermissionExcludeID(ctx context.Context, permission string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Menu{}).Where("permission = ? AND id != ?", permission, excludeID).Count(&count).Error
	return count > 0, err
}

// GetByRoleIDs 获取角色集合可见的启用菜单
func (r *MenuRepository) GetByRoleIDs(ctx context.Context, roleIDs []int64) ([]*models.Menu, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var menus []*models.Menu
	err := r.db.WithContext(ctx).
		Distinct("menus.*").
		Joins("JOIN role_menus ON role_menus.menu_id = menus.id").
		Where("role_menus.role_id IN ?", roleIDs).
		Where("menus.status = ?", models.MenuStatusActive).
		Order("menus.sort ASC, menus.id ASC").
		Find(&menus).Error
	return menus, err
}
