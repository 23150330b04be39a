package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/gorm"
)

type AdminDAO struct{ DB *gorm.DB }

func NewAdminDAO(db *gorm.DB) *AdminDAO { return &AdminDAO{DB: db} }

// WithTx 绑定事务（tx 为 nil 时返回自身）
func (d *AdminDAO) WithTx(tx *gorm.DB) *AdminDAO {
	if tx == nil {
		return d
	}
	return &AdminDAO{DB: tx}
}

type AdminFilter struct {
	Username string
	Nickname string
	Status   *int8
}

// FindByID 不存在返回 nil, nil
func (d *AdminDAO) FindByID(ctx context.Context, id int64) (*model.SysAdmin, error) {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.FindByID")
	defer span.End()
	var a model.SysAdmin
	if err := d.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, fmt.Errorf("find admin id=%d: %w", id, err))
	}
	return &a, nil
}

func (d *AdminDAO) FindByUsername(ctx context.Context, username string) (*model.SysAdmin, error) {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.FindByUsername")
	defer span.End()
	var a model.SysAdmin
	if err := d.DB.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, fmt.Errorf("find admin username=%s: %w", username, err))
	}
	return &a, nil
}

func (d *AdminDAO) List(ctx context.Context, f AdminFilter, p Paging) ([]model.SysAdmin, int64, error) {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysAdmin{})
	if f.Username != "" {
		q = q.Where("username LIKE ?", like(f.Username))
	}
	if f.Nickname != "" {
		q = q.Where("nickname LIKE ?", like(f.Nickname))
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("count admins: %w", err))
	}
	var list []model.SysAdmin
	if err := p.apply(q).Order("id ASC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("list admins: %w", err))
	}
	return list, total, nil
}

func (d *AdminDAO) Create(ctx context.Context, a *model.SysAdmin) error {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(a).Error; err != nil {
		return fail(span, fmt.Errorf("create admin: %w", err))
	}
	return nil
}

// Update 只更新传入的列
func (d *AdminDAO) Update(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.Update")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysAdmin{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, fmt.Errorf("update admin id=%d: %w", id, err))
	}
	return nil
}

func (d *AdminDAO) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return d.Update(ctx, id, map[string]interface{}{"password": hash})
}

// ResetPassword 同时记录重置时间，用于吊销重置前签发的会话
func (d *AdminDAO) ResetPassword(ctx context.Context, id int64, hash string, at time.Time) error {
	return d.Update(ctx, id, map[string]interface{}{"password": hash, "pwd_reset_at": at})
}

func (d *AdminDAO) UpdateLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	return d.Update(ctx, id, map[string]interface{}{"login_ip": ip, "login_time": at})
}

func (d *AdminDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.SysAdmin{}, id).Error; err != nil {
		return fail(span, fmt.Errorf("delete admin id=%d: %w", id, err))
	}
	return nil
}

// RoleIDs 管理员绑定的全部角色 id（不过滤状态）
func (d *AdminDAO) RoleIDs(ctx context.Context, adminID int64) ([]int64, error) {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.RoleIDs")
	defer span.End()
	ids := []int64{}
	if err := d.DB.WithContext(ctx).Model(&model.SysAdminRole{}).Where("admin_id = ?", adminID).Order("role_id").Pluck("role_id", &ids).Error; err != nil {
		return nil, fail(span, fmt.Errorf("admin role ids admin=%d: %w", adminID, err))
	}
	return ids, nil
}

// ReplaceRoles 先删后插；需在事务中调用
func (d *AdminDAO) ReplaceRoles(ctx context.Context, adminID int64, roleIDs []int64) error {
	ctx, span := tracer("admin").Start(ctx, "AdminDAO.ReplaceRoles")
	defer span.End()
	if err := d.DB.WithContext(ctx).Where("admin_id = ?", adminID).Delete(&model.SysAdminRole{}).Error; err != nil {
		return fail(span, fmt.Errorf("clear admin roles admin=%d: %w", adminID, err))
	}
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]model.SysAdminRole, 0, len(roleIDs))
	for _, rid := range roleIDs {
		rows = append(rows, model.SysAdminRole{AdminID: adminID, RoleID: rid})
	}
	if err := d.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return fail(span, fmt.Errorf("insert admin roles admin=%d: %w", adminID, err))
	}
	return nil
}

// IDs 全部管理员 id，用于权限缓存全量失效
func (d *AdminDAO) IDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := d.DB.WithContext(ctx).Model(&model.SysAdmin{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("admin ids: %w", err)
	}
	return ids, nil
}
