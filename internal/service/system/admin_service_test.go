// Package system 管理员服务单元测试
package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

func TestAdminService_Create(t *testing.T) {
	svc := newTestServices(t)
	role := createTestRole(t, svc.db, "运营")

	admin, err := svc.adminSvc.Create(context.Background(), &CreateAdminRequest{
		Username: "operator",
		Password: "password123",
		Name:     "运营人员",
		RoleIDs:  []int64{role.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "operator", admin.Username)
	require.Len(t, admin.Roles, 1)
	assert.Equal(t, role.ID, admin.Roles[0].ID)

	// 密码不以明文存储
	assert.NotEqual(t, "password123", admin.PasswordHash)
}

func TestAdminService_CreateDuplicateUsername(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, 2, "operator")

	_, err := svc.adminSvc.Create(context.Background(), &CreateAdminRequest{
		Username: "operator",
		Password: "password123",
		Name:     "重复用户名",
	})
	assert.ErrorIs(t, err, errors.ErrAdminExists)
}

func TestAdminService_CreateWithUnknownRole(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.adminSvc.Create(context.Background(), &CreateAdminRequest{
		Username: "operator",
		Password: "password123",
		Name:     "运营人员",
		RoleIDs:  []int64{999},
	})
	assert.ErrorIs(t, err, errors.ErrRoleNotFound)
}

func TestAdminService_DeleteGuards(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, models.SuperAdminID, "admin")
	createTestAdmin(t, svc.db, 2, "operator")

	// 超级管理员不可删除
	err := svc.adminSvc.Delete(context.Background(), models.SuperAdminID, 2)
	assert.ErrorIs(t, err, errors.ErrSuperAdminDelete)

	// 不允许删除当前登录账号
	err = svc.adminSvc.Delete(context.Background(), 2, 2)
	assert.ErrorIs(t, err, errors.ErrAdminSelfDelete)

	// 正常删除
	err = svc.adminSvc.Delete(context.Background(), 2, models.SuperAdminID)
	require.NoError(t, err)

	_, err = svc.adminSvc.Get(context.Background(), 2)
	assert.ErrorIs(t, err, errors.ErrAdminNotFound)
}

func TestAdminService_DeleteNotFound(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, models.SuperAdminID, "admin")

	err := svc.adminSvc.Delete(context.Background(), 999, models.SuperAdminID)
	assert.ErrorIs(t, err, errors.ErrAdminNotFound)
}

func TestAdminService_SuperAdminCannotBeDisabled(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, models.SuperAdminID, "admin")

	disabled := int8(models.AdminStatusDisabled)
	_, err := svc.adminSvc.Update(context.Background(), models.SuperAdminID, &UpdateAdminRequest{
		Status: &disabled,
	})
	assert.ErrorIs(t, err, errors.ErrSuperAdminDisable)

	// 名称等普通字段可以修改
	name := "管理员"
	admin, err := svc.adminSvc.Update(context.Background(), models.SuperAdminID, &UpdateAdminRequest{
		Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "管理员", admin.Name)
}

func TestAdminService_SetRoles(t *testing.T) {
	svc := newTestServices(t)
	createTestAdmin(t, svc.db, models.SuperAdminID, "admin")
	admin := createTestAdmin(t, svc.db, 2, "operator")
	r1 := createTestRole(t, svc.db, "运营")
	r2 := createTestRole(t, svc.db, "审计")

	// 超级管理员的角色集合不可修改
	err := svc.adminSvc.SetRoles(context.Background(), models.SuperAdminID, []int64{r1.ID})
	assert.ErrorIs(t, err, errors.ErrSuperAdminModify)

	// 重复 ID 去重后落库
	err = svc.adminSvc.SetRoles(context.Background(), admin.ID, []int64{r1.ID, r2.ID, r1.ID})
	require.NoError(t, err)

	roleIDs, err := svc.adminRepo.GetRoleIDs(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{r1.ID, r2.ID}, roleIDs)

	// 全量替换：空集合清空角色
	err = svc.adminSvc.SetRoles(context.Background(), admin.ID, nil)
	require.NoError(t, err)

	roleIDs, err = svc.adminRepo.GetRoleIDs(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Empty(t, roleIDs)
}

func TestAdminService_SetRolesInvalidatesCache(t *testing.T) {
	svc := newTestServices(t)
	admin := createTestAdmin(t, svc.db, 2, "operator")
	role := createTestRole(t, svc.db, "运营")
	m := createTestMenu(t, svc.db, 0, "管理员管理", "system:admin:list")
	assignMenu(t, svc.db, role.ID, m.ID)

	// 初始无角色，权限为空并进入缓存
	perms, err := svc.permService.GetPermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	// 分配角色后缓存失效，新权限即时可见
	err = svc.adminSvc.SetRoles(context.Background(), admin.ID, []int64{role.ID})
	require.NoError(t, err)

	perms, err = svc.permService.GetPermissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Contains(t, perms, "system:admin:list")
}

func TestAdminService_ResetPassword(t *testing.T) {
	svc := newTestServices(t)
	admin := createTestAdmin(t, svc.db, 2, "operator")
	oldHash := admin.PasswordHash

	err := svc.adminSvc.ResetPassword(context.Background(), admin.ID, "newpassword")
	require.NoError(t, err)

	updated, err := svc.adminRepo.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
}
