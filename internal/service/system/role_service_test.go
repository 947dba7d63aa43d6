// Package system 角色服务单元测试
package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
)

func TestRoleService_CreateDuplicateName(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.roleSvc.Create(context.Background(), &CreateRoleRequest{Name: "运营"})
	require.NoError(t, err)

	_, err = svc.roleSvc.Create(context.Background(), &CreateRoleRequest{Name: "运营"})
	assert.ErrorIs(t, err, errors.ErrRoleExists)
}

func TestRoleService_DeleteInUse(t *testing.T) {
	svc := newTestServices(t)
	admin := createTestAdmin(t, svc.db, 2, "operator")
	role := createTestRole(t, svc.db, "运营")
	assignRole(t, svc.db, admin.ID, role.ID)

	// 仍被管理员引用的角色不可删除
	err := svc.roleSvc.Delete(context.Background(), role.ID)
	assert.ErrorIs(t, err, errors.ErrRoleInUse)

	// 解除引用后可删除
	require.NoError(t, svc.adminRepo.SetRoles(context.Background(), admin.ID, nil))
	err = svc.roleSvc.Delete(context.Background(), role.ID)
	require.NoError(t, err)

	_, err = svc.roleSvc.Get(context.Background(), role.ID)
	assert.ErrorIs(t, err, errors.ErrRoleNotFound)
}

func TestRoleService_SetMenusNormalizesAncestors(t *testing.T) {
	svc := newTestServices(t)
	role := createTestRole(t, svc.db, "运营")

	dir := createTestMenu(t, svc.db, 0, "系统管理", "")
	page := createTestMenu(t, svc.db, dir.ID, "管理员管理", "system:admin:list")
	button := createTestMenu(t, svc.db, page.ID, "创建管理员", "system:admin:create")

	// 只提交按钮节点，服务端补齐全部祖先
	err := svc.roleSvc.SetMenus(context.Background(), role.ID, []int64{button.ID})
	require.NoError(t, err)

	menuIDs, err := svc.roleSvc.GetMenuIDs(context.Background(), role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{dir.ID, page.ID, button.ID}, menuIDs)
}

func TestRoleService_SetMenusDropsUnknownIDs(t *testing.T) {
	svc := newTestServices(t)
	role := createTestRole(t, svc.db, "运营")
	m := createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")

	err := svc.roleSvc.SetMenus(context.Background(), role.ID, []int64{m.ID, 999})
	require.NoError(t, err)

	menuIDs, err := svc.roleSvc.GetMenuIDs(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{m.ID}, menuIDs)
}

func TestRoleService_SetMenusReplacesExisting(t *testing.T) {
	svc := newTestServices(t)
	role := createTestRole(t, svc.db, "运营")
	m1 := createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")
	m2 := createTestMenu(t, svc.db, 0, "角色管理", "system:role:list")

	require.NoError(t, svc.roleSvc.SetMenus(context.Background(), role.ID, []int64{m1.ID}))
	require.NoError(t, svc.roleSvc.SetMenus(context.Background(), role.ID, []int64{m2.ID}))

	menuIDs, err := svc.roleSvc.GetMenuIDs(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{m2.ID}, menuIDs)
}

func TestRoleService_UpdateStatusInvalidatesPermissions(t *testing.T) {
	svc := newTestServices(t)
	admin := createTestAdmin(t, svc.db, 2, "operator")
	role := createTestRole(t, svc.db, "运营")
	m := createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")
	assignRole(t, svc.db, admin.ID, role.ID)
	assignMenu(t, svc.db, role.ID, m.ID)

	perms, err := svc.permService.GetPermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Len(t, perms, 1)

	// 禁用角色后权限立即收回
	disabled := int8(0)
	_, err = svc.roleSvc.Update(context.Background(), role.ID, &UpdateRoleRequest{Status: &disabled})
	require.NoError(t, err)

	perms, err = svc.permService.GetPermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}
