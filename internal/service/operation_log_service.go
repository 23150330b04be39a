package service

import (
	"context"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/repository/dao"
)

type OperationLogService struct {
	Logs *dao.OperationLogDAO
}

func NewOperationLogService(d *dao.OperationLogDAO) *OperationLogService {
	return &OperationLogService{Logs: d}
}

type OperationLogQuery struct {
	PageQuery
	AdminName string     `form:"adminName"`
	Module    string     `form:"module"`
	Status    *int8      `form:"status" binding:"omitempty,oneof=0 1"`
	StartTime *time.Time `form:"startTime" time_format:"2006-01-02 15:04:05" time_location:"Local"`
	EndTime   *time.Time `form:"endTime" time_format:"2006-01-02 15:04:05" time_location:"Local"`
}

func (s *OperationLogService) List(ctx context.Context, q OperationLogQuery) ([]model.SysOperationLog, int64, error) {
	if q.StartTime != nil && q.EndTime != nil && q.EndTime.Before(*q.StartTime) {
		return nil, 0, apperr.Validation("结束时间不能早于开始时间", nil)
	}
	f := dao.OperationLogFilter{AdminName: q.AdminName, Module: q.Module, Status: q.Status, StartTime: q.StartTime, EndTime: q.EndTime}
	return s.Logs.List(ctx, f, q.paging())
}

func (s *OperationLogService) Get(ctx context.Context, id int64) (*model.SysOperationLog, error) {
	l, err := s.Logs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.NotFound("日志不存在")
	}
	return l, nil
}

func (s *OperationLogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Logs.Delete(ctx, id)
}
