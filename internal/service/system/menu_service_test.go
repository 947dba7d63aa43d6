// Package system 菜单服务单元测试
package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/utils"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

func TestMenuService_CreateValidatesPermissionFormat(t *testing.T) {
	svc := newTestServices(t)

	bad := "SystemAdmin.List"
	_, err := svc.menuSvc.Create(context.Background(), &CreateMenuRequest{
		Type:       models.MenuTypeMenu,
		Name:       "管理员管理",
		Permission: &bad,
	})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidParams.Code, appErr.Code)
}

func TestMenuService_CreateDuplicatePermission(t *testing.T) {
	svc := newTestServices(t)
	createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")

	p := "system:admin:list"
	_, err := svc.menuSvc.Create(context.Background(), &CreateMenuRequest{
		Type:       models.MenuTypeMenu,
		Name:       "重复权限",
		Permission: &p,
	})
	assert.ErrorIs(t, err, errors.ErrMenuPermissionExists)
}

func TestMenuService_CreateParentMustExist(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.menuSvc.Create(context.Background(), &CreateMenuRequest{
		ParentID: 999,
		Type:     models.MenuTypeMenu,
		Name:     "挂在不存在的父节点下",
	})
	assert.ErrorIs(t, err, errors.ErrMenuParentNotFound)
}

func TestMenuService_DeleteWithChildren(t *testing.T) {
	svc := newTestServices(t)
	dir := createTestMenu(t, svc.db, 0, "系统管理", "")
	child := createTestMenu(t, svc.db, dir.ID, "管理员管理", "system:admin:list")

	// 有子节点拒绝删除
	err := svc.menuSvc.Delete(context.Background(), dir.ID)
	assert.ErrorIs(t, err, errors.ErrMenuHasChildren)

	// 先删子再删父
	require.NoError(t, svc.menuSvc.Delete(context.Background(), child.ID))
	require.NoError(t, svc.menuSvc.Delete(context.Background(), dir.ID))
}

func TestMenuService_DeleteCleansRoleMenus(t *testing.T) {
	svc := newTestServices(t)
	role := createTestRole(t, svc.db, "运营")
	m := createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")
	assignMenu(t, svc.db, role.ID, m.ID)

	require.NoError(t, svc.menuSvc.Delete(context.Background(), m.ID))

	menuIDs, err := svc.roleSvc.GetMenuIDs(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Empty(t, menuIDs)
}

func TestMenuService_UpdateRejectsCycle(t *testing.T) {
	svc := newTestServices(t)
	a := createTestMenu(t, svc.db, 0, "A", "")
	b := createTestMenu(t, svc.db, a.ID, "B", "")
	c := createTestMenu(t, svc.db, b.ID, "C", "")

	// 自身作为父节点
	_, err := svc.menuSvc.Update(context.Background(), a.ID, &UpdateMenuRequest{ParentID: &a.ID})
	assert.ErrorIs(t, err, errors.ErrMenuParentInvalid)

	// 把 A 挂到自己的后代 C 下会成环
	_, err = svc.menuSvc.Update(context.Background(), a.ID, &UpdateMenuRequest{ParentID: &c.ID})
	assert.ErrorIs(t, err, errors.ErrMenuParentInvalid)

	// 平移到合法位置
	root := models.MenuRootParentID
	_, err = svc.menuSvc.Update(context.Background(), c.ID, &UpdateMenuRequest{ParentID: &root})
	require.NoError(t, err)
}

func TestMenuService_GetAdminMenuTree(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, models.SuperAdminID, "admin")
	operator := createTestAdmin(t, svc.db, 2, "operator")
	role := createTestRole(t, svc.db, "运营")
	assignRole(t, svc.db, operator.ID, role.ID)

	dir := createTestMenu(t, svc.db, 0, "系统管理", "")
	visible := createTestMenu(t, svc.db, dir.ID, "管理员管理", "system:admin:list")
	hidden := createTestMenu(t, svc.db, dir.ID, "角色管理", "system:role:list")
	require.NoError(t, svc.db.Model(hidden).Update("status", models.MenuStatusDisabled).Error)

	assignMenu(t, svc.db, role.ID, dir.ID)
	assignMenu(t, svc.db, role.ID, visible.ID)
	assignMenu(t, svc.db, role.ID, hidden.ID)

	// 超级管理员看到全部启用菜单
	tree, err := svc.menuSvc.GetAdminMenuTree(context.Background(), models.SuperAdminID, nil)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, visible.ID, tree[0].Children[0].ID)

	// 普通管理员只看到授权的启用菜单
	tree, err = svc.menuSvc.GetAdminMenuTree(context.Background(), operator.ID, []int64{role.ID})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, visible.ID, tree[0].Children[0].ID)
}

func TestValidatePermission(t *testing.T) {
	valid := []string{
		"system:admin:list",
		"stock:config:create",
		"system:oplog:delete",
		"a:b:c",
		"mod_1:res_2:act_3",
	}
	for _, p := range valid {
		assert.True(t, utils.ValidatePermission(p), p)
	}

	invalid := []string{
		"",
		"*",
		"system:admin",
		"system:admin:list:extra",
		"System:admin:list",
		"system:Admin:list",
		"1system:admin:list",
		"system:admin:li st",
		"system::list",
	}
	for _, p := range invalid {
		assert.False(t, utils.ValidatePermission(p), p)
	}
}
