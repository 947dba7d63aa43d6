// Package system 提供系统管理域服务
package system

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// RoleService 角色管理服务
type RoleService struct {
	roleRepo    *repository.RoleRepository
	adminRepo   *repository.AdminRepository
	menuRepo    *repository.MenuRepository
	permService *PermissionService
}

// NewRoleService 创建角色管理服务
func NewRoleService(roleRepo *repository.RoleRepository, adminRepo *repository.AdminRepository, menuRepo *repository.MenuRepository, permService *PermissionService) *RoleService {
	return &RoleService{
		roleRepo:    roleRepo,
		adminRepo:   adminRepo,
		menuRepo:    menuRepo,
		permService: permService,
	}
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name   string  `json:"name" binding:"required,max=50"`
	Sort   int     `json:"sort"`
	Status *int8   `json:"status"`
	Remark *string `json:"remark"`
}

// UpdateRoleRequest 更新角色请求
type UpdateRoleRequest struct {
	Name   *string `json:"name"`
	Sort   *int    `json:"sort"`
	Status *int8   `json:"status"`
	Remark *string `json:"remark"`
}

// Create 创建角色
func (s *RoleService) Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error) {
	exists, err := s.roleRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrRoleExists
	}

	role := &models.Role{
		Name:   req.Name,
		Sort:   req.Sort,
		Status: models.RoleStatusActive,
		Remark: req.Remark,
	}
	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return role, nil
}

// Get 获取角色详情
func (s *RoleService) Get(ctx context.Context, id int64) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoleNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return role, nil
}

// List 获取角色列表
func (s *RoleService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Role, int64, error) {
	roles, total, err := s.roleRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return roles, total, nil
}

// ListAll 获取全部角色（下拉选项用）
func (s *RoleService) ListAll(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roleRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return roles, nil
}

// Update 更新角色
func (s *RoleService) Update(ctx context.Context, id int64, req *UpdateRoleRequest) (*models.Role, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		exists, err := s.roleRepo.ExistsByNameExcludeID(ctx, *req.Name, id)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return nil, errors.ErrRoleExists
		}
		fields["name"] = *req.Name
	}
	if req.Sort != nil {
		fields["sort"] = *req.Sort
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Remark != nil {
		fields["remark"] = *req.Remark
	}

	if len(fields) > 0 {
		if err := s.roleRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		// 状态变化影响持有该角色的所有管理员
		if req.Status != nil {
			s.permService.InvalidateAll()
		}
	}

	return s.Get(ctx, id)
}

// Delete 删除角色
// 仍被管理员引用的角色不可删除
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.adminRepo.CountByRoleID(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if count > 0 {
		return errors.ErrRoleInUse
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.permService.InvalidateAll()
	return nil
}

// GetMenuIDs 获取角色当前分配的菜单 ID 集合
func (s *RoleService) GetMenuIDs(ctx context.Context, roleID int64) ([]int64, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}
	menuIDs, err := s.roleRepo.GetMenuIDs(ctx, roleID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return menuIDs, nil
}

// SetMenus 重新分配角色的菜单集合
// 落库前补齐缺失的祖先节点：子节点不允许在没有父节点的情况下存在
func (s *RoleService) SetMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	if _, err := s.Get(ctx, roleID); err != nil {
		return err
	}

	allMenus, err := s.menuRepo.ListAll(ctx)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	normalized := NormalizeMenuSelection(menuIDs, allMenus)

	if err := s.roleRepo.SetMenus(ctx, roleID, normalized); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.permService.InvalidateAll()
	return nil
}
