package service

import (
	"context"
	"testing"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigValue(t *testing.T) {
	cases := []struct {
		typ, val string
		ok       bool
	}{
		{model.ConfigTypeString, "anything", true},
		{model.ConfigTypeNumber, "3.14", true},
		{model.ConfigTypeNumber, "abc", false},
		{model.ConfigTypeBoolean, "true", true},
		{model.ConfigTypeBoolean, "yes", false},
		{model.ConfigTypeJSON, `{"a":1}`, true},
		{model.ConfigTypeJSON, `{a:1}`, false},
		{"xml", "<a/>", false},
	}
	for _, c := range cases {
		err := ValidateConfigValue(c.typ, c.val)
		if c.ok {
			assert.NoError(t, err, "%s=%s", c.typ, c.val)
		} else {
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%s=%s", c.typ, c.val)
		}
	}
}

func TestConfigService_WriteRefreshesCache(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c, err := e.configs.Create(ctx, ConfigCreate{ConfigKey: "site.title", ConfigValue: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, model.ConfigTypeString, c.ConfigType)
	assert.Equal(t, "general", c.ConfigGroup)

	v, err := e.configs.Value(ctx, "site.title")
	require.NoError(t, err)
	assert.Equal(t, "Admin", v.ConfigValue)

	_, err = e.configs.PatchValue(ctx, c.ID, ConfigValuePatch{ConfigValue: strp("Console")})
	require.NoError(t, err)
	v, err = e.configs.Value(ctx, "site.title")
	require.NoError(t, err)
	assert.Equal(t, "Console", v.ConfigValue)

	_, err = e.configs.PatchValue(ctx, c.ID, ConfigValuePatch{ConfigType: strp(model.ConfigTypeNumber)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.configs.PatchValue(ctx, c.ID, ConfigValuePatch{Status: int8p(0)})
	require.NoError(t, err)
	_, err = e.configs.Value(ctx, "site.title")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestConfigService_RenameDropsOldKey(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c, err := e.configs.Create(ctx, ConfigCreate{ConfigKey: "a.b", ConfigValue: "1", ConfigType: model.ConfigTypeNumber})
	require.NoError(t, err)
	_, err = e.configs.Update(ctx, c.ID, ConfigUpdate{ConfigKey: strp("a.c")})
	require.NoError(t, err)

	_, err = e.configs.Value(ctx, "a.b")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	v, err := e.configs.Value(ctx, "a.c")
	require.NoError(t, err)
	assert.Equal(t, "1", v.ConfigValue)
}

func TestConfigService_Guards(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	sys, err := e.configs.Create(ctx, ConfigCreate{ConfigKey: "sys", ConfigValue: "true", ConfigType: model.ConfigTypeBoolean, IsSystem: int8p(1)})
	require.NoError(t, err)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(e.configs.Delete(ctx, sys.ID)))

	_, err = e.configs.Create(ctx, ConfigCreate{ConfigKey: "sys", ConfigValue: "x"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = e.configs.Create(ctx, ConfigCreate{ConfigKey: "bad", ConfigValue: "[", ConfigType: model.ConfigTypeJSON})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	plain, err := e.configs.Create(ctx, ConfigCreate{ConfigKey: "plain", ConfigValue: "x"})
	require.NoError(t, err)
	require.NoError(t, e.configs.Delete(ctx, plain.ID))
	_, err = e.configs.Value(ctx, "plain")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestConfigService_Preload(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.db.Create(&model.SysConfig{ConfigKey: "k1", ConfigValue: "v1", ConfigType: "string", ConfigGroup: "g", Status: 1}).Error)
	require.NoError(t, e.db.Create(&model.SysConfig{ConfigKey: "k2", ConfigValue: "v2", ConfigType: "string", ConfigGroup: "g", Status: 0}).Error)

	n, err := e.configs.Preload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	raw, _ := e.cache.Get(ctx, configKeyPrefix+"k1")
	assert.Contains(t, raw, "v1")
	raw, _ = e.cache.Get(ctx, configKeyPrefix+"k2")
	assert.Empty(t, raw)
}

func TestConfigService_MissCachedUntilCreated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.configs.Value(ctx, "late.key")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = e.configs.Value(ctx, "late.key")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.configs.Create(ctx, ConfigCreate{ConfigKey: "late.key", ConfigValue: "on"})
	require.NoError(t, err)
	v, err := e.configs.Value(ctx, "late.key")
	require.NoError(t, err)
	assert.Equal(t, "on", v.ConfigValue)
}
