package service

import (
	"context"
	"testing"

	"go-rbacadmin/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_ToggleMenuPropagates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, _, btn := e.sampleMenus(t)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops"})
	require.NoError(t, err)

	got, err := e.roles.ToggleMenu(ctx, r.ID, menu, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu, btn}, got)

	got, err = e.roles.ToggleMenu(ctx, r.ID, menu, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir}, got)

	detail, err := e.roles.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir}, detail.MenuIDs)

	_, err = e.roles.ToggleMenu(ctx, r.ID, 999, true)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRoleService_SelectAllAlternates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, other, btn := e.sampleMenus(t)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops", MenuIDs: []int64{menu}})
	require.NoError(t, err)

	got, err := e.roles.SelectAllMenus(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu, other, btn}, got)

	got, err = e.roles.SelectAllMenus(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoleService_AssignMenusValidates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, _, _ := e.sampleMenus(t)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops"})
	require.NoError(t, err)

	got, err := e.roles.AssignMenus(ctx, r.ID, []int64{menu, dir, menu})
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu}, got)

	_, err = e.roles.AssignMenus(ctx, r.ID, []int64{dir, 999})
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, map[string][]int64{"menuIds": {999}}, ae.Details)

	// 失败时原有授权保持不变
	detail, err := e.roles.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu}, detail.MenuIDs)

	_, err = e.roles.AssignMenus(ctx, 404, []int64{dir})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRoleService_CRUD(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a, err := e.roles.Create(ctx, RoleCreate{RoleName: "a", Sort: 2})
	require.NoError(t, err)
	b, err := e.roles.Create(ctx, RoleCreate{RoleName: "b", Sort: 1, Status: int8p(0)})
	require.NoError(t, err)

	_, err = e.roles.Create(ctx, RoleCreate{RoleName: "a"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	list, total, err := e.roles.List(ctx, RoleQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, b.ID, list[0].ID)

	all, err := e.roles.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)

	upd, err := e.roles.Update(ctx, b.ID, RoleUpdate{Status: int8p(1), Remark: strp("启用")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, upd.Status)
	assert.Equal(t, "启用", upd.Remark)

	require.NoError(t, e.roles.Delete(ctx, a.ID))
	_, err = e.roles.Get(ctx, a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRoleService_DeleteCleansJoinsAndPermissions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, menu, _, _ := e.sampleMenus(t)
	_, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops", MenuIDs: []int64{menu}})
	require.NoError(t, err)
	op, err := e.admins.Create(ctx, AdminCreate{Username: "op", Password: "secret1", RoleIDs: []int64{r.ID}})
	require.NoError(t, err)

	perms, err := e.perm.Permissions(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"system:role:list"}, perms)

	require.NoError(t, e.roles.Delete(ctx, r.ID))
	detail, err := e.admins.Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.RoleIDs)
	perms, err = e.perm.Permissions(ctx, op.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestRoleService_ToggleReadsGrantsInsideTransaction(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, other, btn := e.sampleMenus(t)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops"})
	require.NoError(t, err)

	_, err = e.roles.ToggleMenu(ctx, r.ID, btn, true)
	require.NoError(t, err)
	// 另一路径直接写库，下一次切换必须基于最新授权计算
	require.NoError(t, e.roles.Roles.ReplaceMenus(ctx, r.ID, []int64{dir, menu, btn, other}))
	got, err := e.roles.ToggleMenu(ctx, r.ID, btn, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu, other}, got)

	_, err = e.roles.SelectAllMenus(ctx, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
