package admin

import (
	"net/http"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct{ d Dependencies }

func NewConfigHandler(d Dependencies) *ConfigHandler { return &ConfigHandler{d: d} }

func (h *ConfigHandler) CRUD() crud.Handlers[model.SysConfig, *model.SysConfig, service.ConfigCreate, service.ConfigUpdate, service.ConfigQuery] {
	return crud.Handlers[model.SysConfig, *model.SysConfig, service.ConfigCreate, service.ConfigUpdate, service.ConfigQuery]{
		List: func(c *gin.Context, q service.ConfigQuery) (response.Page[model.SysConfig], error) {
			items, total, err := h.d.Config.List(c.Request.Context(), q)
			if err != nil {
				return response.Page[model.SysConfig]{}, err
			}
			return page(items, total, q.PageQuery), nil
		},
		Detail: func(c *gin.Context, id int64) (*model.SysConfig, error) {
			return h.d.Config.Get(c.Request.Context(), id)
		},
		Create: func(c *gin.Context, in service.ConfigCreate) (*model.SysConfig, error) {
			return h.d.Config.Create(c.Request.Context(), in)
		},
		Update: func(c *gin.Context, id int64, in service.ConfigUpdate) (*model.SysConfig, error) {
			return h.d.Config.Update(c.Request.Context(), id, in)
		},
		Delete: func(c *gin.Context, id int64) error {
			return h.d.Config.Delete(c.Request.Context(), id)
		},
	}
}

// PatchValue PATCH /configs/key/:id 只改值、类型、状态
func (h *ConfigHandler) PatchValue(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req service.ConfigValuePatch
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	cfg, err := h.d.Config.PatchValue(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "更新成功", cfg)
}

// Public GET /configs/public/:key 按 key 读取启用配置，走缓存
func (h *ConfigHandler) Public(c *gin.Context) {
	v, err := h.d.Config.Value(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, v)
}
