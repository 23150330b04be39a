package dao

import (
	"context"
	"errors"
	"fmt"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleDAO struct{ DB *gorm.DB }

func NewRoleDAO(db *gorm.DB) *RoleDAO { return &RoleDAO{DB: db} }

func (d *RoleDAO) WithTx(tx *gorm.DB) *RoleDAO {
	if tx == nil {
		return d
	}
	return &RoleDAO{DB: tx}
}

type RoleFilter struct {
	RoleName string
	Status   *int8
}

func (d *RoleDAO) FindByID(ctx context.Context, id int64) (*model.SysRole, error) {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.FindByID")
	defer span.End()
	var r model.SysRole
	if err := d.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, fmt.Errorf("find role id=%d: %w", id, err))
	}
	return &r, nil
}

func (d *RoleDAO) List(ctx context.Context, f RoleFilter, p Paging) ([]model.SysRole, int64, error) {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysRole{})
	if f.RoleName != "" {
		q = q.Where("role_name LIKE ?", like(f.RoleName))
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("count roles: %w", err))
	}
	var list []model.SysRole
	if err := p.apply(q).Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("list roles: %w", err))
	}
	return list, total, nil
}

// ListEnabled 下拉框使用的启用角色
func (d *RoleDAO) ListEnabled(ctx context.Context) ([]model.SysRole, error) {
	enabled := int8(1)
	list, _, err := d.List(ctx, RoleFilter{Status: &enabled}, Paging{})
	return list, err
}

// ExistingIDs 返回 ids 中实际存在的角色 id
func (d *RoleDAO) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := []int64{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysRole{}).Where("id IN ?", ids).Pluck("id", &out).Error; err != nil {
		return nil, fmt.Errorf("existing role ids: %w", err)
	}
	return out, nil
}

// LockByID 事务内对角色行加 FOR UPDATE，串行化同一角色的菜单改动
func (d *RoleDAO) LockByID(ctx context.Context, id int64) (*model.SysRole, error) {
	var r model.SysRole
	err := d.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock role id=%d: %w", id, err)
	}
	return &r, nil
}

func (d *RoleDAO) Create(ctx context.Context, r *model.SysRole) error {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fail(span, fmt.Errorf("create role: %w", err))
	}
	return nil
}

func (d *RoleDAO) Update(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.Update")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysRole{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, fmt.Errorf("update role id=%d: %w", id, err))
	}
	return nil
}

// Delete 同时清理 role_menu / admin_role 关联；需在事务中调用
func (d *RoleDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.Delete")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("role_id = ?", id).Delete(&model.SysRoleMenu{}).Error; err != nil {
		return fail(span, fmt.Errorf("clear role menus role=%d: %w", id, err))
	}
	if err := db.Where("role_id = ?", id).Delete(&model.SysAdminRole{}).Error; err != nil {
		return fail(span, fmt.Errorf("clear admin roles role=%d: %w", id, err))
	}
	if err := db.Delete(&model.SysRole{}, id).Error; err != nil {
		return fail(span, fmt.Errorf("delete role id=%d: %w", id, err))
	}
	return nil
}

func (d *RoleDAO) MenuIDs(ctx context.Context, roleID int64) ([]int64, error) {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.MenuIDs")
	defer span.End()
	ids := []int64{}
	if err := d.DB.WithContext(ctx).Model(&model.SysRoleMenu{}).Where("role_id = ?", roleID).Order("menu_id").Pluck("menu_id", &ids).Error; err != nil {
		return nil, fail(span, fmt.Errorf("role menu ids role=%d: %w", roleID, err))
	}
	return ids, nil
}

// ReplaceMenus 先删后插；需在事务中调用
func (d *RoleDAO) ReplaceMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.ReplaceMenus")
	defer span.End()
	if err := d.DB.WithContext(ctx).Where("role_id = ?", roleID).Delete(&model.SysRoleMenu{}).Error; err != nil {
		return fail(span, fmt.Errorf("clear role menus role=%d: %w", roleID, err))
	}
	if len(menuIDs) == 0 {
		return nil
	}
	rows := make([]model.SysRoleMenu, 0, len(menuIDs))
	for _, mid := range menuIDs {
		rows = append(rows, model.SysRoleMenu{RoleID: roleID, MenuID: mid})
	}
	if err := d.DB.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return fail(span, fmt.Errorf("insert role menus role=%d: %w", roleID, err))
	}
	return nil
}

// EnabledRoleIDsByAdmin 管理员绑定且启用的角色；管理员本身被禁用时为空
func (d *RoleDAO) EnabledRoleIDsByAdmin(ctx context.Context, adminID int64) ([]int64, error) {
	ctx, span := tracer("role").Start(ctx, "RoleDAO.EnabledRoleIDsByAdmin")
	defer span.End()
	ids := []int64{}
	err := d.DB.WithContext(ctx).Table("sys_admin_role ar").
		Joins("JOIN sys_role r ON r.id = ar.role_id").
		Joins("JOIN sys_admin a ON a.id = ar.admin_id").
		Where("ar.admin_id = ? AND r.status = 1 AND a.status = 1", adminID).
		Order("ar.role_id").
		Pluck("ar.role_id", &ids).Error
	if err != nil {
		return nil, fail(span, fmt.Errorf("enabled roles admin=%d: %w", adminID, err))
	}
	return ids, nil
}

// AdminIDsByRole 角色下的管理员，用于权限缓存失效
func (d *RoleDAO) AdminIDsByRole(ctx context.Context, roleID int64) ([]int64, error) {
	ids := []int64{}
	if err := d.DB.WithContext(ctx).Model(&model.SysAdminRole{}).Where("role_id = ?", roleID).Pluck("admin_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("admins of role=%d: %w", roleID, err)
	}
	return ids, nil
}
