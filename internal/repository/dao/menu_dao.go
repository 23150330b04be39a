package dao

import (
	"context"
	"errors"
	"fmt"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuDAO struct{ DB *gorm.DB }

func NewMenuDAO(db *gorm.DB) *MenuDAO { return &MenuDAO{DB: db} }

func (d *MenuDAO) WithTx(tx *gorm.DB) *MenuDAO {
	if tx == nil {
		return d
	}
	return &MenuDAO{DB: tx}
}

type MenuFilter struct {
	MenuType string
	Status   *int8
}

// List 扁平列表，按 sort、id 排序
func (d *MenuDAO) List(ctx context.Context, f MenuFilter) ([]model.SysMenu, error) {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysMenu{})
	if f.MenuType != "" {
		q = q.Where("menu_type = ?", f.MenuType)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	list := []model.SysMenu{}
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fail(span, fmt.Errorf("list menus: %w", err))
	}
	return list, nil
}

func (d *MenuDAO) FindByID(ctx context.Context, id int64) (*model.SysMenu, error) {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.FindByID")
	defer span.End()
	var m model.SysMenu
	if err := d.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, fmt.Errorf("find menu id=%d: %w", id, err))
	}
	return &m, nil
}

// ExistingIDs 返回 ids 中实际存在的菜单 id
func (d *MenuDAO) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := []int64{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).Where("id IN ?", ids).Pluck("id", &out).Error; err != nil {
		return nil, fmt.Errorf("existing menu ids: %w", err)
	}
	return out, nil
}

// LockByID 事务内锁定菜单行，删除前的子节点检查与删除在同一把锁下完成
func (d *MenuDAO) LockByID(ctx context.Context, id int64) (*model.SysMenu, error) {
	var m model.SysMenu
	err := d.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock menu id=%d: %w", id, err)
	}
	return &m, nil
}

func (d *MenuDAO) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count children menu=%d: %w", id, err)
	}
	return n, nil
}

func (d *MenuDAO) Create(ctx context.Context, m *model.SysMenu) error {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(m).Error; err != nil {
		return fail(span, fmt.Errorf("create menu: %w", err))
	}
	return nil
}

func (d *MenuDAO) Update(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.Update")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, fmt.Errorf("update menu id=%d: %w", id, err))
	}
	return nil
}

// Delete 同时删除 role_menu 关联；需在事务中调用
func (d *MenuDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.Delete")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("menu_id = ?", id).Delete(&model.SysRoleMenu{}).Error; err != nil {
		return fail(span, fmt.Errorf("clear role menus menu=%d: %w", id, err))
	}
	if err := db.Delete(&model.SysMenu{}, id).Error; err != nil {
		return fail(span, fmt.Errorf("delete menu id=%d: %w", id, err))
	}
	return nil
}

// ListByRoleIDs 角色集合授予的启用菜单（去重）
func (d *MenuDAO) ListByRoleIDs(ctx context.Context, roleIDs []int64) ([]model.SysMenu, error) {
	ctx, span := tracer("menu").Start(ctx, "MenuDAO.ListByRoleIDs")
	defer span.End()
	list := []model.SysMenu{}
	if len(roleIDs) == 0 {
		return list, nil
	}
	sub := d.DB.Model(&model.SysRoleMenu{}).Select("menu_id").Where("role_id IN ?", roleIDs)
	err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).
		Where("id IN (?) AND status = 1", sub).
		Order("sort ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fail(span, fmt.Errorf("menus by roles: %w", err))
	}
	return list, nil
}
