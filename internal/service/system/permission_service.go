// Package system 提供系统管理域服务
package system

import (
	"context"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// PermissionService 权限查询服务
// 实现 middleware.PermissionProvider，叠加 TTL 缓存
type PermissionService struct {
	adminRepo *repository.AdminRepository
	cache     *PermissionCache
}

// NewPermissionService 创建权限查询服务
func NewPermissionService(adminRepo *repository.AdminRepository, cache *PermissionCache) *PermissionService {
	return &PermissionService{
		adminRepo: adminRepo,
		cache:     cache,
	}
}

// wildcardSet 超级管理员的隐式权限集合
var wildcardSet = map[string]struct{}{models.PermissionWildcard: {}}

// GetPermissions 获取管理员当前持有的权限标识集合
// 超级管理员完全绕过缓存，始终返回通配集合；加载失败向上传播为内部错误
func (s *PermissionService) GetPermissions(ctx context.Context, adminID int64) (map[string]struct{}, error) {
	if adminID == models.SuperAdminID {
		return wildcardSet, nil
	}

	permissions, hit, err := s.cache.GetOrLoad(ctx, adminID, s.load)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	if hit {
		metrics.GetMetrics().RecordPermCacheHit()
	} else {
		metrics.GetMetrics().RecordPermCacheMiss()
	}

	return permissions, nil
}

// load 从数据库加载权限集合
func (s *PermissionService) load(ctx context.Context, adminID int64) (map[string]struct{}, error) {
	permissions, err := s.adminRepo.GetPermissions(ctx, adminID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return set, nil
}

// Invalidate 移除指定管理员的权限缓存
// 角色重新分配、管理员删除后调用
func (s *PermissionService) Invalidate(adminID int64) {
	s.cache.Invalidate(adminID)
}

// InvalidateAll 清空全部权限缓存
// 角色菜单变动、角色删除、菜单权限变动影响面不确定，整体失效保证正确性
func (s *PermissionService) InvalidateAll() {
	s.cache.InvalidateAll()
}
