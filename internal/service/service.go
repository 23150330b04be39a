package service

import (
	"context"
	"fmt"
	"sort"

	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	// SuperAdminID 内置超级管理员，跳过权限校验且不可删除
	SuperAdminID int64 = 1
	// AllPermission 超级管理员持有的通配权限
	AllPermission = "*:*:*"

	defaultPageSize = 10
	maxPageSize     = 100
)

// PageQuery 列表分页参数，page 从 1 开始
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1"` // 超过 maxPageSize 时按上限截断
}

// Normalize 填充默认值并返回 (page, pageSize)
func (q *PageQuery) Normalize() (int, int) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q.Page, q.PageSize
}

func (q *PageQuery) paging() dao.Paging {
	page, size := q.Normalize()
	return dao.Paging{Offset: (page - 1) * size, Limit: size}
}

func tracer(name string) trace.Tracer { return otel.Tracer("service." + name) }

func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if err := db.WithContext(ctx).Transaction(fn); err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	return nil
}

// uniqueIDs 去重、去掉非正数并升序
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// missingIDs want 中不在 have 里的 id
func missingIDs(want, have []int64) []int64 {
	set := make(map[int64]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	var out []int64
	for _, id := range want {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
