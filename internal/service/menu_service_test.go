package service

import (
	"context"
	"testing"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuService_TreeOrdering(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, other, btn := e.sampleMenus(t)
	_, err := e.menus.Update(ctx, other, MenuUpdate{Sort: intp(-1)})
	require.NoError(t, err)

	tree, err := e.menus.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, dir, tree[0].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, other, tree[0].Children[0].ID)
	assert.Equal(t, menu, tree[0].Children[1].ID)
	assert.Equal(t, btn, tree[0].Children[1].Children[0].ID)
}

func TestMenuService_TreeCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.sampleMenus(t)
	first, err := e.menus.Tree(ctx)
	require.NoError(t, err)
	v, _ := e.cache.Get(ctx, menuTreeKey)
	assert.NotEmpty(t, v)

	e.menu(t, 0, model.MenuTypeDir, "监控", "")
	v, _ = e.cache.Get(ctx, menuTreeKey)
	assert.Empty(t, v)
	second, err := e.menus.Tree(ctx)
	require.NoError(t, err)
	assert.Len(t, second, len(first)+1)
}

func TestMenuService_RejectsBadParents(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, _, btn := e.sampleMenus(t)

	_, err := e.menus.Create(ctx, MenuCreate{ParentID: 999, MenuType: model.MenuTypeMenu, MenuName: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.menus.Create(ctx, MenuCreate{ParentID: btn, MenuType: model.MenuTypeButton, MenuName: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.menus.Update(ctx, dir, MenuUpdate{ParentID: int64p(dir)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// 挂到自己的后代下面会成环
	_, err = e.menus.Update(ctx, dir, MenuUpdate{ParentID: int64p(menu)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.menus.Update(ctx, 999, MenuUpdate{MenuName: strp("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMenuService_DuplicatePermissionConflicts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, _, other, _ := e.sampleMenus(t)
	_, err := e.menus.Create(ctx, MenuCreate{ParentID: dir, MenuType: model.MenuTypeMenu, MenuName: "重复", Permission: "system:role:list"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = e.menus.Update(ctx, other, MenuUpdate{Permission: strp("system:role:list")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// 清空权限标识存为 NULL，可重复
	_, err = e.menus.Update(ctx, other, MenuUpdate{Permission: strp("")})
	require.NoError(t, err)
	got, err := e.menus.Get(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, got.Permission)
}

func TestMenuService_Delete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, _, btn := e.sampleMenus(t)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops", MenuIDs: []int64{dir, menu, btn}})
	require.NoError(t, err)

	err = e.menus.Delete(ctx, menu)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, e.menus.Delete(ctx, btn))
	detail, err := e.roles.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{dir, menu}, detail.MenuIDs)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(e.menus.Delete(ctx, btn)))
}

func TestMenuService_LoadReportsOrphans(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.sampleMenus(t)
	// 绕过校验直接写入悬空行
	require.NoError(t, e.db.Create(&model.SysMenu{ParentID: 404, MenuType: model.MenuTypeMenu, MenuName: "悬空", Status: 1}).Error)

	tr, err := e.menus.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Len())
	require.Len(t, tr.Orphans, 1)
	assert.Equal(t, "悬空", tr.Orphans[0].MenuName)
}

func TestVisibleMenuTree_DropsButtonsAndDisabled(t *testing.T) {
	rows := []model.SysMenu{
		{ID: 1, MenuType: model.MenuTypeDir, Status: 1},
		{ID: 2, ParentID: 1, MenuType: model.MenuTypeMenu, Status: 1},
		{ID: 3, ParentID: 1, MenuType: model.MenuTypeMenu, Status: 0},
		{ID: 4, ParentID: 2, MenuType: model.MenuTypeButton, Status: 1},
		{ID: 5, ParentID: 3, MenuType: model.MenuTypeMenu, Status: 1},
	}
	tree := VisibleMenuTree(rows)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, int64(2), tree[0].Children[0].ID)
	assert.Empty(t, tree[0].Children[0].Children)
}

func intp(v int) *int { return &v }
