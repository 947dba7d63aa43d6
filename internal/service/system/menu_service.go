// Package system 提供系统管理域服务
package system

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/utils"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// MenuService 菜单管理服务
type MenuService struct {
	menuRepo    *repository.MenuRepository
	permService *PermissionService
}

// NewMenuService 创建菜单管理服务
func NewMenuService(menuRepo *repository.MenuRepository, permService *PermissionService) *MenuService {
	return &MenuService{
		menuRepo:    menuRepo,
		permService: permService,
	}
}

// CreateMenuRequest 创建菜单请求
type CreateMenuRequest struct {
	ParentID   int64   `json:"parent_id"`
	Type       int8    `json:"type" binding:"required,oneof=1 2 3"`
	Name       string  `json:"name" binding:"required,max=50"`
	Permission *string `json:"permission"`
	Path       *string `json:"path"`
	Component  *string `json:"component"`
	Icon       *string `json:"icon"`
	Sort       int     `json:"sort"`
	Visible    *bool   `json:"visible"`
	Status     *int8   `json:"status"`
	IsExternal bool    `json:"is_external"`
	KeepAlive  bool    `json:"keep_alive"`
	Remark     *string `json:"remark"`
}

// UpdateMenuRequest 更新菜单请求
type UpdateMenuRequest struct {
	ParentID   *int64  `json:"parent_id"`
	Name       *string `json:"name"`
	Permission *string `json:"permission"`
	Path       *string `json:"path"`
	Component  *string `json:"component"`
	Icon       *string `json:"icon"`
	Sort       *int    `json:"sort"`
	Visible    *bool   `json:"visible"`
	Status     *int8   `json:"status"`
	IsExternal *bool   `json:"is_external"`
	KeepAlive  *bool   `json:"keep_alive"`
	Remark     *string `json:"remark"`
}

// Create 创建菜单
func (s *MenuService) Create(ctx context.Context, req *CreateMenuRequest) (*models.Menu, error) {
	if req.ParentID != models.MenuRootParentID {
		exists, err := s.menuRepo.ExistsByID(ctx, req.ParentID)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if !exists {
			return nil, errors.ErrMenuParentNotFound
		}
	}

	if req.Permission != nil && *req.Permission != "" {
		if !utils.ValidatePermission(*req.Permission) {
			return nil, errors.ErrInvalidParams.WithMessage("权限标识格式错误，应为 module:resource:action")
		}
		exists, err := s.menuRepo.ExistsByPermission(ctx, *req.Permission)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return nil, errors.ErrMenuPermissionExists
		}
	}

	menu := &models.Menu{
		ParentID:   req.ParentID,
		Type:       req.Type,
		Name:       req.Name,
		Permission: req.Permission,
		Path:       req.Path,
		Component:  req.Component,
		Icon:       req.Icon,
		Sort:       req.Sort,
		Visible:    true,
		Status:     models.MenuStatusActive,
		IsExternal: req.IsExternal,
		KeepAlive:  req.KeepAlive,
		Remark:     req.Remark,
	}
	if req.Visible != nil {
		menu.Visible = *req.Visible
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}

	if err := s.menuRepo.Create(ctx, menu); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if menu.Permission != nil {
		s.permService.InvalidateAll()
	}
	return menu, nil
}

// Get 获取菜单详情
func (s *MenuService) Get(ctx context.Context, id int64) (*models.Menu, error) {
	menu, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMenuNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return menu, nil
}

// Tree 获取完整菜单树
func (s *MenuService) Tree(ctx context.Context) ([]*MenuNode, error) {
	menus, err := s.menuRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return BuildMenuTree(menus), nil
}

// Update 更新菜单
func (s *MenuService) Update(ctx context.Context, id int64, req *UpdateMenuRequest) (*models.Menu, error) {
	menu, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID != menu.ParentID {
		if err := s.checkParentChange(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		menu.ParentID = *req.ParentID
	}

	if req.Permission != nil {
		if *req.Permission != "" {
			if !utils.ValidatePermission(*req.Permission) {
				return nil, errors.ErrInvalidParams.WithMessage("权限标识格式错误，应为 module:resource:action")
			}
			exists, err := s.menuRepo.ExistsByPermissionExcludeID(ctx, *req.Permission, id)
			if err != nil {
				return nil, errors.ErrDatabaseError.WithError(err)
			}
			if exists {
				return nil, errors.ErrMenuPermissionExists
			}
			menu.Permission = req.Permission
		} else {
			menu.Permission = nil
		}
	}

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Path != nil {
		menu.Path = req.Path
	}
	if req.Component != nil {
		menu.Component = req.Component
	}
	if req.Icon != nil {
		menu.Icon = req.Icon
	}
	if req.Sort != nil {
		menu.Sort = *req.Sort
	}
	if req.Visible != nil {
		menu.Visible = *req.Visible
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}
	if req.IsExternal != nil {
		menu.IsExternal = *req.IsExternal
	}
	if req.KeepAlive != nil {
		menu.KeepAlive = *req.KeepAlive
	}
	if req.Remark != nil {
		menu.Remark = req.Remark
	}

	if err := s.menuRepo.Update(ctx, menu); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 权限标识或状态变动会影响已有授权
	s.permService.InvalidateAll()
	return menu, nil
}

// Delete 删除菜单
// 存在子节点时拒绝删除，必须先删除全部子节点
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.menuRepo.HasChildren(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if hasChildren {
		return errors.ErrMenuHasChildren
	}

	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.permService.InvalidateAll()
	return nil
}

// GetAdminMenuTree 获取管理员可见的菜单树
// 超级管理员可见全部启用菜单
func (s *MenuService) GetAdminMenuTree(ctx context.Context, adminID int64, roleIDs []int64) ([]*MenuNode, error) {
	var menus []*models.Menu
	var err error

	if adminID == models.SuperAdminID {
		menus, err = s.menuRepo.ListAll(ctx)
		if err == nil {
			active := menus[:0]
			for _, m := range menus {
				if m.Status == models.MenuStatusActive {
					active = append(active, m)
				}
			}
			menus = active
		}
	} else {
		menus, err = s.menuRepo.GetByRoleIDs(ctx, roleIDs)
	}
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return BuildMenuTree(menus), nil
}

// checkParentChange 校验父节点变更：父节点必须存在，且不能形成环
func (s *MenuService) checkParentChange(ctx context.Context, id, newParentID int64) error {
	if newParentID == models.MenuRootParentID {
		return nil
	}
	if newParentID == id {
		return errors.ErrMenuParentInvalid
	}

	exists, err := s.menuRepo.ExistsByID(ctx, newParentID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if !exists {
		return errors.ErrMenuParentNotFound
	}

	// 沿新父节点的祖先链向上，如果经过自身则会成环
	menus, err := s.menuRepo.ListAll(ctx)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	parents := buildParentIndex(menus)
	cur := newParentID
	for {
		parent, ok := parents[cur]
		if !ok {
			break
		}
		if parent == id {
			return errors.ErrMenuParentInvalid
		}
		cur = parent
	}
	return nil
}
