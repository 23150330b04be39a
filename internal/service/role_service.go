package service

import (
	"context"
	"strings"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/repository/dao"

	"gorm.io/gorm"
)

type RoleService struct {
	DB    *gorm.DB
	Roles *dao.RoleDAO
	Menus *MenuService
	Perm  *PermissionService
}

func NewRoleService(db *gorm.DB, r *dao.RoleDAO, m *MenuService, p *PermissionService) *RoleService {
	return &RoleService{DB: db, Roles: r, Menus: m, Perm: p}
}

// RoleDetail 详情附带已分配菜单
type RoleDetail struct {
	model.SysRole
	MenuIDs []int64 `json:"menuIds"`
}

type RoleQuery struct {
	PageQuery
	RoleName string `form:"roleName"`
	Status   *int8  `form:"status" binding:"omitempty,oneof=0 1"`
}

type RoleCreate struct {
	RoleName string  `json:"roleName" binding:"required,max=64"`
	Sort     int     `json:"sort"`
	Status   *int8   `json:"status" binding:"omitempty,oneof=0 1"`
	Remark   string  `json:"remark" binding:"max=255"`
	MenuIDs  []int64 `json:"menuIds"`
}

type RoleUpdate struct {
	RoleName *string `json:"roleName" binding:"omitempty,min=1,max=64"`
	Sort     *int    `json:"sort"`
	Status   *int8   `json:"status" binding:"omitempty,oneof=0 1"`
	Remark   *string `json:"remark" binding:"omitempty,max=255"`
}

func (s *RoleService) List(ctx context.Context, q RoleQuery) ([]model.SysRole, int64, error) {
	return s.Roles.List(ctx, dao.RoleFilter{RoleName: q.RoleName, Status: q.Status}, q.paging())
}

// All 启用角色，不分页，供下拉选择
func (s *RoleService) All(ctx context.Context) ([]model.SysRole, error) {
	return s.Roles.ListEnabled(ctx)
}

func (s *RoleService) Get(ctx context.Context, id int64) (*RoleDetail, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.Roles.MenuIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RoleDetail{SysRole: *r, MenuIDs: ids}, nil
}

func (s *RoleService) Create(ctx context.Context, in RoleCreate) (*RoleDetail, error) {
	menuIDs, err := s.checkMenus(ctx, in.MenuIDs)
	if err != nil {
		return nil, err
	}
	r := &model.SysRole{
		RoleName: strings.TrimSpace(in.RoleName),
		Sort:     in.Sort,
		Status:   int8OrDefault(in.Status, 1),
		Remark:   in.Remark,
	}
	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		roles := s.Roles.WithTx(tx)
		if err := roles.Create(ctx, r); err != nil {
			return err
		}
		return roles.ReplaceMenus(ctx, r.ID, menuIDs)
	})
	if err != nil {
		return nil, roleConflict(err)
	}
	return &RoleDetail{SysRole: *r, MenuIDs: menuIDs}, nil
}

func (s *RoleService) Update(ctx context.Context, id int64, in RoleUpdate) (*RoleDetail, error) {
	cur, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	cols := map[string]interface{}{}
	if in.RoleName != nil {
		cols["role_name"] = strings.TrimSpace(*in.RoleName)
	}
	if in.Sort != nil {
		cols["sort"] = *in.Sort
	}
	if in.Status != nil {
		cols["status"] = *in.Status
	}
	if in.Remark != nil {
		cols["remark"] = *in.Remark
	}
	if err := s.Roles.Update(ctx, id, cols); err != nil {
		return nil, roleConflict(err)
	}
	if in.Status != nil && *in.Status != cur.Status {
		s.Perm.InvalidateRole(ctx, id)
	}
	return s.Get(ctx, id)
}

// Delete role_menu / admin_role 关联同事务删除
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	affected, err := s.Roles.AdminIDsByRole(ctx, id)
	if err != nil {
		return err
	}
	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		return s.Roles.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateAdmin(ctx, affected...)
	return nil
}

// AssignMenus 整体替换角色菜单；未知菜单 id 拒绝
func (s *RoleService) AssignMenus(ctx context.Context, id int64, menuIDs []int64) ([]int64, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.checkMenus(ctx, menuIDs)
	if err != nil {
		return nil, err
	}
	if err := s.replaceMenus(ctx, id, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ToggleMenu 在已保存的勾选集合上勾选/取消一个节点并保存
func (s *RoleService) ToggleMenu(ctx context.Context, id, menuID int64, checked bool) ([]int64, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	t, err := s.Menus.Load(ctx)
	if err != nil {
		return nil, err
	}
	if t.Find(menuID) == nil {
		return nil, apperr.Validation("菜单不存在", map[string]int64{"menuId": menuID})
	}
	return s.updateMenus(ctx, id, func(cur []int64) []int64 {
		return t.Toggle(cur, menuID, checked)
	})
}

// SelectAllMenus 已全选则清空，否则全选
func (s *RoleService) SelectAllMenus(ctx context.Context, id int64) ([]int64, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	t, err := s.Menus.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.updateMenus(ctx, id, t.SelectAll)
}

// updateMenus 锁定角色行后读取当前授权、计算并写回，读改写在同一事务内
func (s *RoleService) updateMenus(ctx context.Context, id int64, next func(cur []int64) []int64) ([]int64, error) {
	var out []int64
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		roles := s.Roles.WithTx(tx)
		r, err := roles.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.NotFound("角色不存在")
		}
		cur, err := roles.MenuIDs(ctx, id)
		if err != nil {
			return err
		}
		out = next(cur)
		return roles.ReplaceMenus(ctx, id, out)
	})
	if err != nil {
		return nil, err
	}
	s.Perm.InvalidateRole(ctx, id)
	return out, nil
}

func (s *RoleService) replaceMenus(ctx context.Context, id int64, menuIDs []int64) error {
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		return s.Roles.WithTx(tx).ReplaceMenus(ctx, id, menuIDs)
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateRole(ctx, id)
	return nil
}

func (s *RoleService) checkMenus(ctx context.Context, menuIDs []int64) ([]int64, error) {
	ids := uniqueIDs(menuIDs)
	existing, err := s.Menus.Menus.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, existing); len(missing) > 0 {
		return nil, apperr.Validation("菜单不存在", map[string][]int64{"menuIds": missing})
	}
	return ids, nil
}

func (s *RoleService) find(ctx context.Context, id int64) (*model.SysRole, error) {
	r, err := s.Roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("角色不存在")
	}
	return r, nil
}

func roleConflict(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("角色名称已存在")
	}
	return err
}
