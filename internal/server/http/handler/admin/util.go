package admin

import (
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"
)

func page[T any](items []T, total int64, q service.PageQuery) response.Page[T] {
	p, size := q.Normalize()
	return response.NewPage(items, total, p, size)
}
