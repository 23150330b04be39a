package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/gorm"
)

type OperationLogDAO struct{ DB *gorm.DB }

func NewOperationLogDAO(db *gorm.DB) *OperationLogDAO { return &OperationLogDAO{DB: db} }

type OperationLogFilter struct {
	AdminName string
	Module    string
	Status    *int8
	StartTime *time.Time
	EndTime   *time.Time
}

func (d *OperationLogDAO) Create(ctx context.Context, l *model.SysOperationLog) error {
	ctx, span := tracer("operation_log").Start(ctx, "OperationLogDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(l).Error; err != nil {
		return fail(span, fmt.Errorf("create operation log: %w", err))
	}
	return nil
}

// CreateBatch 消费端批量落库
func (d *OperationLogDAO) CreateBatch(ctx context.Context, logs []model.SysOperationLog) error {
	if len(logs) == 0 {
		return nil
	}
	ctx, span := tracer("operation_log").Start(ctx, "OperationLogDAO.CreateBatch")
	defer span.End()
	if err := d.DB.WithContext(ctx).CreateInBatches(&logs, 100).Error; err != nil {
		return fail(span, fmt.Errorf("batch create operation logs: %w", err))
	}
	return nil
}

// List 按时间倒序
func (d *OperationLogDAO) List(ctx context.Context, f OperationLogFilter, p Paging) ([]model.SysOperationLog, int64, error) {
	ctx, span := tracer("operation_log").Start(ctx, "OperationLogDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysOperationLog{})
	if f.AdminName != "" {
		q = q.Where("admin_name LIKE ?", like(f.AdminName))
	}
	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.StartTime != nil {
		q = q.Where("created_at >= ?", *f.StartTime)
	}
	if f.EndTime != nil {
		q = q.Where("created_at <= ?", *f.EndTime)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("count operation logs: %w", err))
	}
	var list []model.SysOperationLog
	if err := p.apply(q).Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, fmt.Errorf("list operation logs: %w", err))
	}
	return list, total, nil
}

func (d *OperationLogDAO) FindByID(ctx context.Context, id int64) (*model.SysOperationLog, error) {
	var l model.SysOperationLog
	if err := d.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find operation log id=%d: %w", id, err)
	}
	return &l, nil
}

func (d *OperationLogDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer("operation_log").Start(ctx, "OperationLogDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.SysOperationLog{}, id).Error; err != nil {
		return fail(span, fmt.Errorf("delete operation log id=%d: %w", id, err))
	}
	return nil
}
