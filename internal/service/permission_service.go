package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const permKeyPrefix = "perm:admin:"

// PermissionService 管理员权限集合的加载与缓存。
// 权限集合 = 管理员启用角色所授予的启用菜单的权限标识；超级管理员固定为 *:*:*。
type PermissionService struct {
	Admins *dao.AdminDAO
	Roles  *dao.RoleDAO
	Menus  *dao.MenuDAO
	Cache  cache.Cache
	TTL    time.Duration
}

func NewPermissionService(a *dao.AdminDAO, r *dao.RoleDAO, m *dao.MenuDAO, c cache.Cache) *PermissionService {
	return &PermissionService{Admins: a, Roles: r, Menus: m, Cache: c, TTL: 5 * time.Minute}
}

// GrantedMenus 管理员可见的启用菜单（含按钮），超级管理员为全部启用菜单
func (p *PermissionService) GrantedMenus(ctx context.Context, adminID int64) ([]model.SysMenu, error) {
	if adminID == SuperAdminID {
		enabled := int8(1)
		return p.Menus.List(ctx, dao.MenuFilter{Status: &enabled})
	}
	roleIDs, err := p.Roles.EnabledRoleIDsByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return p.Menus.ListByRoleIDs(ctx, roleIDs)
}

// Permissions 升序的权限标识列表
func (p *PermissionService) Permissions(ctx context.Context, adminID int64) ([]string, error) {
	ctx, span := tracer("permission").Start(ctx, "PermissionService.Permissions",
		trace.WithAttributes(attribute.Int64("admin.id", adminID)))
	defer span.End()
	if adminID == SuperAdminID {
		return []string{AllPermission}, nil
	}
	key := permKey(adminID)
	var cached []string
	if cache.GetJSON(ctx, p.Cache, key, &cached) {
		metrics.PermissionLoadTotal.WithLabelValues("cache").Inc()
		return cached, nil
	}
	menus, err := p.GrantedMenus(ctx, adminID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	set := make(map[string]struct{}, len(menus))
	for _, m := range menus {
		if k := m.PermissionKey(); k != "" {
			set[k] = struct{}{}
		}
	}
	perms := make([]string, 0, len(set))
	for k := range set {
		perms = append(perms, k)
	}
	sort.Strings(perms)
	metrics.PermissionLoadTotal.WithLabelValues("db").Inc()
	_ = cache.SetJSON(ctx, p.Cache, key, perms, p.TTL)
	return perms, nil
}

// HasPermission 超级管理员或持有通配权限时恒为 true
func (p *PermissionService) HasPermission(ctx context.Context, adminID int64, perm string) (bool, error) {
	if adminID == SuperAdminID {
		return true, nil
	}
	perms, err := p.Permissions(ctx, adminID)
	if err != nil {
		return false, err
	}
	for _, v := range perms {
		if v == perm || v == AllPermission {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateAdmin 管理员角色变更后调用
func (p *PermissionService) InvalidateAdmin(ctx context.Context, adminIDs ...int64) {
	if p.Cache == nil || len(adminIDs) == 0 {
		return
	}
	metrics.PermissionInvalidateTotal.WithLabelValues("admin").Inc()
	keys := make([]string, 0, len(adminIDs))
	for _, id := range adminIDs {
		keys = append(keys, permKey(id))
	}
	_ = p.Cache.Del(ctx, keys...)
}

// InvalidateRole 角色授权或状态变化后，失效其下全部管理员
func (p *PermissionService) InvalidateRole(ctx context.Context, roleID int64) {
	if p.Cache == nil {
		return
	}
	ids, err := p.Roles.AdminIDsByRole(ctx, roleID)
	if err != nil {
		p.InvalidateAll(ctx)
		return
	}
	metrics.PermissionInvalidateTotal.WithLabelValues("role").Inc()
	p.InvalidateAdmin(ctx, ids...)
}

// InvalidateAll 菜单变更影响所有人
func (p *PermissionService) InvalidateAll(ctx context.Context) {
	if p.Cache == nil {
		return
	}
	metrics.PermissionInvalidateTotal.WithLabelValues("all").Inc()
	ids, err := p.Admins.IDs(ctx)
	if err != nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, permKey(id))
	}
	if len(keys) > 0 {
		_ = p.Cache.Del(ctx, keys...)
	}
}

func permKey(adminID int64) string { return permKeyPrefix + strconv.FormatInt(adminID, 10) }
