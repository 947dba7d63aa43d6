// Package system 提供系统管理域服务
package system

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/crypto"
	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/utils"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// AdminService 管理员管理服务
type AdminService struct {
	adminRepo   *repository.AdminRepository
	roleRepo    *repository.RoleRepository
	permService *PermissionService
}

// NewAdminService 创建管理员管理服务
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository, permService *PermissionService) *AdminService {
	return &AdminService{
		adminRepo:   adminRepo,
		roleRepo:    roleRepo,
		permService: permService,
	}
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=6,max=64"`
	Name     string  `json:"name" binding:"required,max=50"`
	Status   *int8   `json:"status"`
	RoleIDs  []int64 `json:"role_ids"`
	Remark   *string `json:"remark"`
}

// UpdateAdminRequest 更新管理员请求
type UpdateAdminRequest struct {
	Name   *string `json:"name"`
	Status *int8   `json:"status"`
	Remark *string `json:"remark"`
}

// Create 创建管理员
func (s *AdminService) Create(ctx context.Context, req *CreateAdminRequest) (*models.Admin, error) {
	exists, err := s.adminRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrAdminExists
	}

	if len(req.RoleIDs) > 0 {
		if err := s.checkRolesExist(ctx, req.RoleIDs); err != nil {
			return nil, err
		}
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	admin := &models.Admin{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Status:       models.AdminStatusActive,
		Remark:       req.Remark,
	}
	if req.Status != nil {
		admin.Status = *req.Status
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if len(req.RoleIDs) > 0 {
		if err := s.adminRepo.SetRoles(ctx, admin.ID, utils.Unique(req.RoleIDs)); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	return s.Get(ctx, admin.ID)
}

// Get 获取管理员详情（含角色）
func (s *AdminService) Get(ctx context.Context, id int64) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByIDWithRoles(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAdminNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return admin, nil
}

// List 获取管理员列表
func (s *AdminService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Admin, int64, error) {
	admins, total, err := s.adminRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return admins, total, nil
}

// Update 更新管理员基础信息
func (s *AdminService) Update(ctx context.Context, id int64, req *UpdateAdminRequest) (*models.Admin, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Status != nil {
		// 超级管理员不可禁用
		if id == models.SuperAdminID && *req.Status == models.AdminStatusDisabled {
			return nil, errors.ErrSuperAdminDisable
		}
		fields["status"] = *req.Status
	}
	if req.Remark != nil {
		fields["remark"] = *req.Remark
	}

	if len(fields) > 0 {
		if err := s.adminRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	return s.Get(ctx, id)
}

// Delete 删除管理员
// 超级管理员不可删除，也不允许删除当前登录账号
func (s *AdminService) Delete(ctx context.Context, id, operatorID int64) error {
	if id == models.SuperAdminID {
		return errors.ErrSuperAdminDelete
	}
	if id == operatorID {
		return errors.ErrAdminSelfDelete
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.adminRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.permService.Invalidate(id)
	return nil
}

// SetRoles 重新分配管理员的角色
// 超级管理员的角色集合不可修改
func (s *AdminService) SetRoles(ctx context.Context, adminID int64, roleIDs []int64) error {
	if adminID == models.SuperAdminID {
		return errors.ErrSuperAdminModify
	}

	if _, err := s.Get(ctx, adminID); err != nil {
		return err
	}

	roleIDs = utils.Unique(roleIDs)
	if len(roleIDs) > 0 {
		if err := s.checkRolesExist(ctx, roleIDs); err != nil {
			return err
		}
	}

	if err := s.adminRepo.SetRoles(ctx, adminID, roleIDs); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.permService.Invalidate(adminID)
	return nil
}

// ResetPassword 重置管理员密码
func (s *AdminService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, id, hash); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// checkRolesExist 校验角色 ID 均存在
func (s *AdminService) checkRolesExist(ctx context.Context, roleIDs []int64) error {
	roles, err := s.roleRepo.GetByIDs(ctx, roleIDs)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if len(roles) != len(utils.Unique(roleIDs)) {
		return errors.ErrRoleNotFound
	}
	return nil
}
