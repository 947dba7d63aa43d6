// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// AdminRepository 管理员仓储
type AdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓储
func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create 创建管理员
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// GetByID 根据 ID 获取管理员
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, id).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByIDWithRoles 根据 ID 获取管理员（包含角色）
func (r *AdminRepository) GetByIDWithRoles(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Preload("Roles").First(&admin, id).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsername 根据用户名获取管理员
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsernameWithRoles 根据用户名获取管理员（包含角色）
func (r *AdminRepository) GetByUsernameWithRoles(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Update 更新管理员
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Save(admin).Error
}

// UpdateFields 更新指定字段
func (r *AdminRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Updates(fields).Error
}

// UpdatePassword 更新密码
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}

// UpdateLoginInfo 更新登录信息
func (r *AdminRepository) UpdateLoginInfo(ctx context.Context, id int64, ip string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": ip,
	}).Error
}

// Delete 删除管理员及其角色关联
func (r *AdminRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", id).Delete(&models.AdminRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Admin{}, id).Error
	})
}

// List 获取管理员列表
func (r *AdminRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Admin, int64, error) {
	var admins []*models.Admin
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Admin{})

	if username, ok := filters["username"].(string); ok && username != "" {
		query = query.Where("username LIKE ?", "%"+username+"%")
	}
	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if status, ok := filters["status"].(int8); ok {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Roles").Order("id DESC").Offset(offset).Limit(limit).Find(&admins).Error; err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// ExistsByUsername 检查用户名是否存在
func (r *AdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByUsernameExcludeID 检查用户名是否存在（排除指定 ID）
func (r *AdminRepository) ExistsByUsernameExcludeID(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Where("username = ? AND id != ?", username, excludeID).Count(&count).Error
	return count > 0, err
}

// SetRoles 重置管理员的角色集合
func (r *AdminRepository) SetRoles(ctx context.Context, adminID int64, roleIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", adminID).Delete(&models.AdminRole{}).Error; err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		rows := make([]models.AdminRole, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			rows = append(rows, models.AdminRole{AdminID: adminID, RoleID: roleID})
		}
		return tx.Create(&rows).Error
	})
}

// GetRoleIDs 获取管理员的角色 ID 列表
func (r *AdminRepository) GetRoleIDs(ctx context.Context, adminID int64) ([]int64, error) {
	var roleIDs []int64
	err := r.db.WithContext(ctx).Model(&models.AdminRole{}).
		Where("admin_id = ?", adminID).
		Pluck("role_id", &roleIDs).Error
	return roleIDs, err
}

// GetPermissions 获取管理员通过角色持有的全部权限标识
// 仅统计启用角色下启用菜单的非空权限
func (r *AdminRepository) GetPermissions(ctx context.Context, adminID int64) ([]string, error) {
	var permissions []string
	err := r.db.WithContext(ctx).Model(&models.Menu{}).
		Distinct("menus.permission").
		Joins("JOIN role_menus ON role_menus.menu_id = menus.id").
		Joins("JOIN roles ON roles.id = role_menus.role_id").
		Joins("JOIN admin_roles ON admin_roles.role_id = roles.id").
		Where("admin_roles.admin_id = ?", adminID).
		Where("roles.status = ?", models.RoleStatusActive).
		Where("menus.status = ?", models.MenuStatusActive).
		Where("menus.permission IS NOT NULL AND menus.permission != ''").
		Pluck("menus.permission", &permissions).Error
	return permissions, err
}

// CountByRoleID 统计引用指定角色的管理员数量
func (r *AdminRepository) CountByRoleID(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminRole{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}
