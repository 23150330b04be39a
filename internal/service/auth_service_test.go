package service

import (
	"context"
	"testing"

	"go-rbacadmin/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginAndMe(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	dir, menu, _, btn := e.sampleMenus(t)
	_, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	r, err := e.roles.Create(ctx, RoleCreate{RoleName: "ops", MenuIDs: []int64{dir, menu, btn}})
	require.NoError(t, err)
	op, err := e.admins.Create(ctx, AdminCreate{Username: "op", Password: "secret1", RoleIDs: []int64{r.ID}})
	require.NoError(t, err)

	res, err := e.auth.Login(ctx, LoginRequest{Username: "op", Password: "secret1"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.EqualValues(t, 3600, res.ExpiresIn)
	assert.Equal(t, op.ID, res.Admin.ID)
	assert.Equal(t, "10.0.0.1", res.Admin.LoginIP)
	assert.Equal(t, []string{"system:role:create", "system:role:list"}, res.Permissions)
	require.Len(t, res.Menus, 1)
	require.Len(t, res.Menus[0].Children, 1)
	assert.Equal(t, menu, res.Menus[0].Children[0].ID)
	assert.Empty(t, res.Menus[0].Children[0].Children, "按钮不进入菜单树")

	claims, err := e.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, op.ID, claims.AdminID)

	me, err := e.auth.Me(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Permissions, me.Permissions)
	require.NotNil(t, me.Admin.LoginTime)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	_, err = e.admins.Create(ctx, AdminCreate{Username: "off", Password: "secret1", Status: int8p(0)})
	require.NoError(t, err)

	_, err = e.auth.Login(ctx, LoginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = e.auth.Login(ctx, LoginRequest{Username: "ghost", Password: "secret1"}, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = e.auth.Login(ctx, LoginRequest{Username: "off", Password: "secret1"}, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	res, err := e.auth.Login(ctx, LoginRequest{Username: "admin", Password: "secret1"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{AllPermission}, res.Permissions)

	claims, err := e.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, e.auth.Logout(ctx, claims.JTI()))

	_, err = e.auth.Authenticate(ctx, res.Token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = e.auth.Authenticate(ctx, "garbage")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	err = e.auth.ChangePassword(ctx, a.ID, ChangePasswordRequest{OldPassword: "nope", NewPassword: "secret2"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, e.auth.ChangePassword(ctx, a.ID, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))
	_, err = e.auth.Login(ctx, LoginRequest{Username: "admin", Password: "secret1"}, "")
	assert.Error(t, err)
	_, err = e.auth.Login(ctx, LoginRequest{Username: "admin", Password: "secret2"}, "")
	assert.NoError(t, err)
}

func TestAuthService_RejectsDisabledDeletedAndResetSessions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.admins.Create(ctx, AdminCreate{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	op, err := e.admins.Create(ctx, AdminCreate{Username: "op", Password: "secret1"})
	require.NoError(t, err)

	login := func() string {
		res, err := e.auth.Login(ctx, LoginRequest{Username: "op", Password: "secret1"}, "")
		require.NoError(t, err)
		return res.Token
	}

	token := login()
	_, err = e.admins.Update(ctx, op.ID, AdminUpdate{Status: int8p(0)})
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = e.admins.Update(ctx, op.ID, AdminUpdate{Status: int8p(1)})
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, token)
	require.NoError(t, err, "重新启用后未吊销的会话恢复")

	require.NoError(t, e.admins.ResetPassword(ctx, op.ID, "secret1"))
	_, err = e.auth.Authenticate(ctx, token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	fresh := login()
	_, err = e.auth.Authenticate(ctx, fresh)
	require.NoError(t, err)

	require.NoError(t, e.admins.Delete(ctx, 1, op.ID))
	_, err = e.auth.Authenticate(ctx, fresh)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
