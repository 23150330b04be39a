package admin

import (
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type LogHandler struct{ d Dependencies }

func NewLogHandler(d Dependencies) *LogHandler { return &LogHandler{d: d} }

// CRUD 操作日志只读，仅列表、详情、删除
func (h *LogHandler) CRUD() crud.Handlers[model.SysOperationLog, *model.SysOperationLog, struct{}, struct{}, service.OperationLogQuery] {
	return crud.Handlers[model.SysOperationLog, *model.SysOperationLog, struct{}, struct{}, service.OperationLogQuery]{
		List: func(c *gin.Context, q service.OperationLogQuery) (response.Page[model.SysOperationLog], error) {
			items, total, err := h.d.Log.List(c.Request.Context(), q)
			if err != nil {
				return response.Page[model.SysOperationLog]{}, err
			}
			return page(items, total, q.PageQuery), nil
		},
		Detail: func(c *gin.Context, id int64) (*model.SysOperationLog, error) {
			return h.d.Log.Get(c.Request.Context(), id)
		},
		Delete: func(c *gin.Context, id int64) error {
			return h.d.Log.Delete(c.Request.Context(), id)
		},
	}
}
