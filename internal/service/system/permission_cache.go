// Package system 提供系统管理域服务
package system

import (
	"context"
	"sync"
	"time"
)

// DefaultPermissionCacheTTL 默认权限缓存有效期
const DefaultPermissionCacheTTL = 5 * time.Minute

// permCacheEntry 缓存条目
type permCacheEntry struct {
	permissions map[string]struct{}
	expiresAt   time.Time
}

// PermissionCache 管理员权限集合的进程内 TTL 缓存
// 加载函数是幂等的只读查询，并发未命中时允许重复加载，不做 single-flight
type PermissionCache struct {
	mu      sync.Mutex
	entries map[int64]permCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewPermissionCache 创建权限缓存
func NewPermissionCache(ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = DefaultPermissionCacheTTL
	}
	return &PermissionCache{
		entries: make(map[int64]permCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetOrLoad 获取缓存的权限集合，未命中或已过期时调用 loader 加载并回填
// loader 失败时错误向上传播，不缓存失败结果
func (c *PermissionCache) GetOrLoad(ctx context.Context, adminID int64, loader func(ctx context.Context, adminID int64) (map[string]struct{}, error)) (map[string]struct{}, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[adminID]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.permissions, true, nil
	}
	c.mu.Unlock()

	permissions, err := loader(ctx, adminID)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[adminID] = permCacheEntry{
		permissions: permissions,
		expiresAt:   c.now().Add(c.ttl),
	}
	c.mu.Unlock()

	return permissions, false, nil
}

// Invalidate 移除指定管理员的缓存
func (c *PermissionCache) Invalidate(adminID int64) {
	c.mu.Lock()
	delete(c.entries, adminID)
	c.mu.Unlock()
}

// InvalidateAll 清空全部缓存
func (c *PermissionCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[int64]permCacheEntry)
	c.mu.Unlock()
}

// Len 当前缓存条目数
func (c *PermissionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
