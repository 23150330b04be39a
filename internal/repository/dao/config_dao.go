package dao

import (
	"context"
	"errors"
	"fmt"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/gorm"
)

type ConfigDAO struct{ DB *gorm.DB }

func NewConfigDAO(db *gorm.DB) *ConfigDAO { return &ConfigDAO{DB: db} }

type ConfigFilter struct {
	ConfigKey   string
	ConfigName  string
	ConfigGroup string
	Status      *int8
}

func (d *ConfigDAO) List(ctx context.Context, f ConfigFilter, p Paging) ([]model.SysConfig, int64, error) {
	ctx, span := tracer("config").Start(ctx, "ConfigDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysConfig{})
	if f.ConfigKey != "" {
		q = q.Where("config_key LIKE ?", like(f.ConfigKey))
	}
	if f.ConfigName != "" {
		q = q.Where("config_name LIKE ?", like(f.ConfigName))
	}
	if f.ConfigGroup != "" {
		q = q.Where("config_group = ?", f.ConfigGroup)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("count configs: %w", err))
	}
	var list []model.SysConfig
	if err := p.apply(q).Order("config_group ASC, id ASC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("list configs: %w", err))
	}
	return list, total, nil
}

// ListActive status=1 的全部配置，用于预热缓存
func (d *ConfigDAO) ListActive(ctx context.Context) ([]model.SysConfig, error) {
	active := int8(1)
	list, _, err := d.List(ctx, ConfigFilter{Status: &active}, Paging{})
	return list, err
}

func (d *ConfigDAO) FindByID(ctx context.Context, id int64) (*model.SysConfig, error) {
	ctx, span := tracer("config").Start(ctx, "ConfigDAO.FindByID")
	defer span.End()
	var c model.SysConfig
	if err := d.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, fmt.Errorf("find config id=%d: %w", id, err))
	}
	return &c, nil
}

func (d *ConfigDAO) FindByKey(ctx context.Context, key string) (*model.SysConfig, error) {
	var c model.SysConfig
	if err := d.DB.WithContext(ctx).Where("config_key = ?", key).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find config key=%s: %w", key, err)
	}
	return &c, nil
}

func (d *ConfigDAO) Create(ctx context.Context, c *model.SysConfig) error {
	ctx, span := tracer("config").Start(ctx, "ConfigDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fail(span, fmt.Errorf("create config: %w", err))
	}
	return nil
}

func (d *ConfigDAO) Update(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := tracer("config").Start(ctx, "ConfigDAO.Update")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.SysConfig{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, fmt.Errorf("update config id=%d: %w", id, err))
	}
	return nil
}

func (d *ConfigDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer("config").Start(ctx, "ConfigDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.SysConfig{}, id).Error; err != nil {
		return fail(span, fmt.Errorf("delete config id=%d: %w", id, err))
	}
	return nil
}
