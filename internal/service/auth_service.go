package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/menutree"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/internal/security/jwt"
	"go-rbacadmin/pkg/crypto"

	"github.com/google/uuid"
)

// AuthService 登录、登出与当前用户信息。
// Sessions 保存已签发的 JTI（生产为 Redis）；为 nil 时仅校验签名与过期。
type AuthService struct {
	Admins    *dao.AdminDAO
	Perm      *PermissionService
	JWT       *jwt.Manager
	Sessions  cache.Cache
	JTIPrefix string
}

func NewAuthService(a *dao.AdminDAO, p *PermissionService, j *jwt.Manager, sessions cache.Cache, jtiPrefix string) *AuthService {
	if jtiPrefix == "" {
		jtiPrefix = "jwt:jti:"
	}
	return &AuthService{Admins: a, Perm: p, JWT: j, Sessions: sessions, JTIPrefix: jtiPrefix}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=64"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=64,nefield=OldPassword"`
}

// Profile 当前管理员、权限标识与可见菜单树（仅目录和菜单）
type Profile struct {
	Admin       *model.SysAdmin `json:"admin"`
	Permissions []string        `json:"permissions"`
	Menus       []MenuNode      `json:"menus"`
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Profile
}

func (s *AuthService) Login(ctx context.Context, in LoginRequest, ip string) (*LoginResult, error) {
	a, err := s.Admins.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if a == nil || !crypto.VerifyPassword(in.Password, a.Password) {
		metrics.LoginTotal.WithLabelValues("bad_credentials").Inc()
		return nil, apperr.Unauthorized("用户名或密码错误")
	}
	if a.Status != 1 {
		metrics.LoginTotal.WithLabelValues("disabled").Inc()
		return nil, apperr.Forbidden("账号已被禁用")
	}
	jti := uuid.NewString()
	token, err := s.JWT.Generate(a.ID, a.Username, jti)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := time.Now()
	if s.Sessions != nil {
		if err := s.Sessions.SetEX(ctx, s.JTIPrefix+jti, sessionValue(a.ID, now), s.JWT.ExpireDuration()); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	if err := s.Admins.UpdateLogin(ctx, a.ID, ip, now); err != nil {
		return nil, err
	}
	a.LoginIP, a.LoginTime = ip, &now
	p, err := s.profile(ctx, a)
	if err != nil {
		return nil, err
	}
	metrics.LoginTotal.WithLabelValues("ok").Inc()
	return &LoginResult{Token: token, ExpiresIn: int64(s.JWT.ExpireDuration() / time.Second), Profile: *p}, nil
}

// Authenticate 校验 token；JTI 已吊销、账号被禁用或已删除、会话早于密码重置都按未登录处理
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "登录已失效", err)
	}
	var issued time.Time
	if s.Sessions != nil {
		v, err := s.Sessions.Get(ctx, s.JTIPrefix+claims.JTI())
		if err != nil || v == "" {
			return nil, apperr.Unauthorized("登录已失效")
		}
		issued = parseSessionValue(v)
	}
	a, err := s.Admins.FindByID(ctx, claims.AdminID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.Status != 1 {
		return nil, apperr.Unauthorized("登录已失效")
	}
	if a.PwdResetAt != nil && !issued.IsZero() && issued.Before(*a.PwdResetAt) {
		return nil, apperr.Unauthorized("密码已重置，请重新登录")
	}
	return claims, nil
}

// 会话值为 "adminID:签发时间纳秒"
func sessionValue(adminID int64, at time.Time) string {
	return strconv.FormatInt(adminID, 10) + ":" + strconv.FormatInt(at.UnixNano(), 10)
}

func parseSessionValue(v string) time.Time {
	_, ns, ok := strings.Cut(v, ":")
	if !ok {
		return time.Time{}
	}
	n, err := strconv.ParseInt(ns, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func (s *AuthService) Logout(ctx context.Context, jti string) error {
	if jti == "" || s.Sessions == nil {
		return nil
	}
	return s.Sessions.Del(ctx, s.JTIPrefix+jti)
}

func (s *AuthService) Me(ctx context.Context, adminID int64) (*Profile, error) {
	a, err := s.Admins.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.Unauthorized("账号不存在")
	}
	return s.profile(ctx, a)
}

func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, in ChangePasswordRequest) error {
	a, err := s.Admins.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperr.Unauthorized("账号不存在")
	}
	if !crypto.VerifyPassword(in.OldPassword, a.Password) {
		return apperr.Validation("原密码错误", nil)
	}
	hash, err := crypto.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.Admins.UpdatePassword(ctx, adminID, hash)
}

func (s *AuthService) profile(ctx context.Context, a *model.SysAdmin) (*Profile, error) {
	perms, err := s.Perm.Permissions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	menus, err := s.Perm.GrantedMenus(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{Admin: a, Permissions: perms, Menus: VisibleMenuTree(menus)}, nil
}

// VisibleMenuTree 只保留启用的目录和菜单；父节点未授权的行不会出现
func VisibleMenuTree(menus []model.SysMenu) []MenuNode {
	rows := make([]model.SysMenu, 0, len(menus))
	for _, m := range menus {
		if m.Status == 1 && m.MenuType != model.MenuTypeButton {
			rows = append(rows, m)
		}
	}
	return toNodes(menutree.Build(rows, menuKey))
}
