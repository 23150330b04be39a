package service

import (
	"context"
	"strings"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/pkg/crypto"

	"gorm.io/gorm"
)

type AdminService struct {
	DB     *gorm.DB
	Admins *dao.AdminDAO
	Roles  *dao.RoleDAO
	Perm   *PermissionService
}

func NewAdminService(db *gorm.DB, a *dao.AdminDAO, r *dao.RoleDAO, p *PermissionService) *AdminService {
	return &AdminService{DB: db, Admins: a, Roles: r, Perm: p}
}

// AdminDetail 详情附带角色 id
type AdminDetail struct {
	model.SysAdmin
	RoleIDs []int64 `json:"roleIds"`
}

type AdminQuery struct {
	PageQuery
	Username string `form:"username"`
	Nickname string `form:"nickname"`
	Status   *int8  `form:"status" binding:"omitempty,oneof=0 1"`
}

type AdminCreate struct {
	Username string  `json:"username" binding:"required,min=3,max=64"`
	Password string  `json:"password" binding:"required,min=6,max=64"`
	Nickname string  `json:"nickname" binding:"max=64"`
	Status   *int8   `json:"status" binding:"omitempty,oneof=0 1"`
	Remark   string  `json:"remark" binding:"max=255"`
	RoleIDs  []int64 `json:"roleIds"`
}

type AdminUpdate struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=64"`
	Status   *int8   `json:"status" binding:"omitempty,oneof=0 1"`
	Remark   *string `json:"remark" binding:"omitempty,max=255"`
}

func (s *AdminService) List(ctx context.Context, q AdminQuery) ([]model.SysAdmin, int64, error) {
	return s.Admins.List(ctx, dao.AdminFilter{Username: q.Username, Nickname: q.Nickname, Status: q.Status}, q.paging())
}

func (s *AdminService) Get(ctx context.Context, id int64) (*AdminDetail, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.Admins.RoleIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AdminDetail{SysAdmin: *a, RoleIDs: ids}, nil
}

func (s *AdminService) Create(ctx context.Context, in AdminCreate) (*AdminDetail, error) {
	roleIDs, err := s.checkRoles(ctx, in.RoleIDs)
	if err != nil {
		return nil, err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a := &model.SysAdmin{
		Username: strings.TrimSpace(in.Username),
		Password: hash,
		Nickname: in.Nickname,
		Status:   int8OrDefault(in.Status, 1),
		Remark:   in.Remark,
	}
	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		admins := s.Admins.WithTx(tx)
		if err := admins.Create(ctx, a); err != nil {
			return err
		}
		return admins.ReplaceRoles(ctx, a.ID, roleIDs)
	})
	if err != nil {
		return nil, adminConflict(err)
	}
	return &AdminDetail{SysAdmin: *a, RoleIDs: roleIDs}, nil
}

func (s *AdminService) Update(ctx context.Context, id int64, in AdminUpdate) (*AdminDetail, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if id == SuperAdminID && in.Status != nil && *in.Status != 1 {
		return nil, apperr.Validation("不能禁用超级管理员", nil)
	}
	cols := map[string]interface{}{}
	if in.Nickname != nil {
		cols["nickname"] = *in.Nickname
	}
	if in.Status != nil {
		cols["status"] = *in.Status
	}
	if in.Remark != nil {
		cols["remark"] = *in.Remark
	}
	if err := s.Admins.Update(ctx, id, cols); err != nil {
		return nil, err
	}
	// 状态变化后权限缓存作废，禁用账号的已签发 token 由 Authenticate 拒绝
	if in.Status != nil {
		s.Perm.InvalidateAdmin(ctx, id)
	}
	return s.Get(ctx, id)
}

// Delete 不能删除自己或超级管理员；admin_role 同事务删除
func (s *AdminService) Delete(ctx context.Context, actorID, id int64) error {
	if id == actorID {
		return apperr.Validation("不能删除当前登录账号", nil)
	}
	if id == SuperAdminID {
		return apperr.Validation("不能删除超级管理员", nil)
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	err := inTx(ctx, s.DB, func(tx *gorm.DB) error {
		admins := s.Admins.WithTx(tx)
		if err := admins.ReplaceRoles(ctx, id, nil); err != nil {
			return err
		}
		return admins.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateAdmin(ctx, id)
	return nil
}

// AssignRoles 整体替换管理员角色
func (s *AdminService) AssignRoles(ctx context.Context, id int64, roleIDs []int64) ([]int64, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.checkRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	err = inTx(ctx, s.DB, func(tx *gorm.DB) error {
		return s.Admins.WithTx(tx).ReplaceRoles(ctx, id, ids)
	})
	if err != nil {
		return nil, err
	}
	s.Perm.InvalidateAdmin(ctx, id)
	return ids, nil
}

func (s *AdminService) ResetPassword(ctx context.Context, id int64, password string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.Admins.ResetPassword(ctx, id, hash, time.Now())
}

func (s *AdminService) checkRoles(ctx context.Context, roleIDs []int64) ([]int64, error) {
	ids := uniqueIDs(roleIDs)
	existing, err := s.Roles.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, existing); len(missing) > 0 {
		return nil, apperr.Validation("角色不存在", map[string][]int64{"roleIds": missing})
	}
	return ids, nil
}

func (s *AdminService) find(ctx context.Context, id int64) (*model.SysAdmin, error) {
	a, err := s.Admins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("管理员不存在")
	}
	return a, nil
}

func adminConflict(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("用户名已存在")
	}
	return err
}
