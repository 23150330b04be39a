package dao

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Paging offset/limit；Limit<=0 时不分页
type Paging struct {
	Offset int
	Limit  int
}

func (p Paging) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Offset(p.Offset).Limit(p.Limit)
	}
	return q
}

func tracer(name string) trace.Tracer { return otel.Tracer("dao." + name) }

// fail 记录到 span 后原样返回
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func like(s string) string { return "%" + s + "%" }
