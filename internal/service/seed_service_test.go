package service

import (
	"context"
	"testing"

	"go-rbacadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_IdempotentAndGrantsEverything(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	seeder := NewSeeder(e.db, "admin123")
	require.NoError(t, seeder.Run(ctx))

	var menus, roles, admins, configs int64
	e.db.Model(&model.SysMenu{}).Count(&menus)
	e.db.Model(&model.SysRole{}).Count(&roles)
	e.db.Model(&model.SysAdmin{}).Count(&admins)
	e.db.Model(&model.SysConfig{}).Count(&configs)

	// 已修改的配置不会被覆盖
	require.NoError(t, e.db.Model(&model.SysConfig{}).Where("config_key = ?", "site.name").Update("config_value", "Mine").Error)
	require.NoError(t, seeder.Run(ctx))

	var again int64
	e.db.Model(&model.SysMenu{}).Count(&again)
	assert.Equal(t, menus, again)
	e.db.Model(&model.SysRole{}).Count(&again)
	assert.Equal(t, roles, again)
	e.db.Model(&model.SysAdmin{}).Count(&again)
	assert.Equal(t, admins, again)
	e.db.Model(&model.SysConfig{}).Count(&again)
	assert.Equal(t, configs, again)
	v, err := e.configs.Value(ctx, "site.name")
	require.NoError(t, err)
	assert.Equal(t, "Mine", v.ConfigValue)

	res, err := e.auth.Login(ctx, LoginRequest{Username: "admin", Password: "admin123"}, "")
	require.NoError(t, err)
	assert.Equal(t, SuperAdminID, res.Admin.ID)
	assert.NotEmpty(t, res.Menus)

	roleIDs, err := e.admins.Admins.RoleIDs(ctx, SuperAdminID)
	require.NoError(t, err)
	require.Len(t, roleIDs, 1)
	granted, err := e.roles.Roles.MenuIDs(ctx, roleIDs[0])
	require.NoError(t, err)
	assert.EqualValues(t, menus, len(granted))

	tr, err := e.menus.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tr.Orphans)
	assert.EqualValues(t, menus, tr.Len())
}
