package service

import (
	"context"
	"strings"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/menutree"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const menuTreeKey = "menu:tree"

// MenuNode 菜单树节点（JSON 平铺 SysMenu 字段 + children）
type MenuNode struct {
	model.SysMenu
	Children []MenuNode `json:"children"`
}

func menuKey(m model.SysMenu) (int64, int64, int) { return m.ID, m.ParentID, m.Sort }

// BuildMenuTree 扁平菜单 -> 树；返回无法挂到根上的行
func BuildMenuTree(rows []model.SysMenu) ([]MenuNode, []model.SysMenu) {
	t := menutree.Build(rows, menuKey)
	return toNodes(t), t.Orphans
}

func toNodes(t *menutree.Tree[model.SysMenu]) []MenuNode {
	return menutree.Map(t.Roots, func(m model.SysMenu, children []MenuNode) MenuNode {
		return MenuNode{SysMenu: m, Children: children}
	})
}

type MenuService struct {
	DB    *gorm.DB
	Menus *dao.MenuDAO
	Perm  *PermissionService
	Cache cache.Cache
}

func NewMenuService(db *gorm.DB, m *dao.MenuDAO, p *PermissionService, c cache.Cache) *MenuService {
	return &MenuService{DB: db, Menus: m, Perm: p, Cache: c}
}

type MenuQuery struct {
	MenuType string `form:"menuType" binding:"omitempty,oneof=D M B"`
	Status   *int8  `form:"status" binding:"omitempty,oneof=0 1"`
}

type MenuCreate struct {
	ParentID   int64  `json:"parentId" binding:"min=0"`
	MenuType   string `json:"menuType" binding:"required,oneof=D M B"`
	MenuName   string `json:"menuName" binding:"required,max=64"`
	Permission string `json:"permission" binding:"max=128"`
	Path       string `json:"path" binding:"max=255"`
	Component  string `json:"component" binding:"max=255"`
	Icon       string `json:"icon" binding:"max=64"`
	Sort       int    `json:"sort"`
	Visible    *int8  `json:"visible" binding:"omitempty,oneof=0 1"`
	Status     *int8  `json:"status" binding:"omitempty,oneof=0 1"`
}

type MenuUpdate struct {
	ParentID   *int64  `json:"parentId" binding:"omitempty,min=0"`
	MenuType   *string `json:"menuType" binding:"omitempty,oneof=D M B"`
	MenuName   *string `json:"menuName" binding:"omitempty,min=1,max=64"`
	Permission *string `json:"permission" binding:"omitempty,max=128"`
	Path       *string `json:"path" binding:"omitempty,max=255"`
	Component  *string `json:"component" binding:"omitempty,max=255"`
	Icon       *string `json:"icon" binding:"omitempty,max=64"`
	Sort       *int    `json:"sort"`
	Visible    *int8   `json:"visible" binding:"omitempty,oneof=0 1"`
	Status     *int8   `json:"status" binding:"omitempty,oneof=0 1"`
}

func (s *MenuService) List(ctx context.Context, q MenuQuery) ([]model.SysMenu, error) {
	return s.Menus.List(ctx, dao.MenuFilter{MenuType: q.MenuType, Status: q.Status})
}

// Load 全量菜单组装成树；孤儿行记录日志与指标后丢弃
func (s *MenuService) Load(ctx context.Context) (*menutree.Tree[model.SysMenu], error) {
	rows, err := s.Menus.List(ctx, dao.MenuFilter{})
	if err != nil {
		return nil, err
	}
	t := menutree.Build(rows, menuKey)
	metrics.MenuTreeOrphans.Set(float64(len(t.Orphans)))
	if len(t.Orphans) > 0 {
		ids := make([]int64, 0, len(t.Orphans))
		for _, o := range t.Orphans {
			ids = append(ids, o.ID)
		}
		logging.FromContext(ctx).Warn("menu_tree_orphans", zap.Int64s("menu_ids", ids))
	}
	return t, nil
}

// Tree 完整菜单树（含禁用节点），结果缓存到 menu:tree
func (s *MenuService) Tree(ctx context.Context) ([]MenuNode, error) {
	var nodes []MenuNode
	if cache.GetJSON(ctx, s.Cache, menuTreeKey, &nodes) {
		return nodes, nil
	}
	t, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	nodes = toNodes(t)
	_ = cache.SetJSON(ctx, s.Cache, menuTreeKey, nodes, 10*time.Minute)
	return nodes, nil
}

func (s *MenuService) Get(ctx context.Context, id int64) (*model.SysMenu, error) {
	m, err := s.Menus.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("菜单不存在")
	}
	return m, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuCreate) (*model.SysMenu, error) {
	if err := s.checkParent(ctx, 0, in.ParentID); err != nil {
		return nil, err
	}
	m := &model.SysMenu{
		ParentID:   in.ParentID,
		MenuType:   in.MenuType,
		MenuName:   strings.TrimSpace(in.MenuName),
		Permission: permissionPtr(in.Permission),
		Path:       in.Path,
		Component:  in.Component,
		Icon:       in.Icon,
		Sort:       in.Sort,
		Visible:    int8OrDefault(in.Visible, 1),
		Status:     int8OrDefault(in.Status, 1),
	}
	if err := s.Menus.Create(ctx, m); err != nil {
		return nil, menuConflict(err)
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *MenuService) Update(ctx context.Context, id int64, in MenuUpdate) (*model.SysMenu, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := map[string]interface{}{}
	if in.ParentID != nil && *in.ParentID != cur.ParentID {
		if err := s.checkParent(ctx, id, *in.ParentID); err != nil {
			return nil, err
		}
		cols["parent_id"] = *in.ParentID
	}
	if in.MenuType != nil {
		cols["menu_type"] = *in.MenuType
	}
	if in.MenuName != nil {
		cols["menu_name"] = strings.TrimSpace(*in.MenuName)
	}
	if in.Permission != nil {
		cols["permission"] = permissionPtr(*in.Permission)
	}
	if in.Path != nil {
		cols["path"] = *in.Path
	}
	if in.Component != nil {
		cols["component"] = *in.Component
	}
	if in.Icon != nil {
		cols["icon"] = *in.Icon
	}
	if in.Sort != nil {
		cols["sort"] = *in.Sort
	}
	if in.Visible != nil {
		cols["visible"] = *in.Visible
	}
	if in.Status != nil {
		cols["status"] = *in.Status
	}
	if err := s.Menus.Update(ctx, id, cols); err != nil {
		return nil, menuConflict(err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete 有子节点时拒绝；role_menu 关联同事务删除
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		menus := s.Menus.WithTx(tx)
		m, err := menus.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.NotFound("菜单不存在")
		}
		n, err := menus.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("存在子菜单，不允许删除")
		}
		return menus.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// checkParent 父节点必须存在，且不能是自身或自身后代
func (s *MenuService) checkParent(ctx context.Context, id, parentID int64) error {
	if parentID == menutree.RootParentID {
		return nil
	}
	if id != 0 && parentID == id {
		return apperr.Validation("上级菜单不能是自身", nil)
	}
	parent, err := s.Menus.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperr.Validation("上级菜单不存在", map[string]int64{"parentId": parentID})
	}
	if parent.MenuType == model.MenuTypeButton {
		return apperr.Validation("按钮下不能再挂菜单", map[string]int64{"parentId": parentID})
	}
	if id == 0 {
		return nil
	}
	t, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for _, d := range t.DescendantIDs(id) {
		if d == parentID {
			return apperr.Validation("上级菜单不能是自身的下级", map[string]int64{"parentId": parentID})
		}
	}
	return nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.Cache != nil {
		_ = s.Cache.Del(ctx, menuTreeKey)
	}
	if s.Perm != nil {
		s.Perm.InvalidateAll(ctx)
	}
}

func menuConflict(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("权限标识已存在")
	}
	return err
}

// permissionPtr 空串存 NULL，避免唯一索引冲突
func permissionPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func int8OrDefault(v *int8, def int8) int8 {
	if v == nil {
		return def
	}
	return *v
}
