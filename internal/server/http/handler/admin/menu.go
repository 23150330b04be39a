package admin

import (
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct{ d Dependencies }

func NewMenuHandler(d Dependencies) *MenuHandler { return &MenuHandler{d: d} }

// CRUD 菜单列表不分页，由 List 单独注册
func (h *MenuHandler) CRUD() crud.Handlers[model.SysMenu, *model.SysMenu, service.MenuCreate, service.MenuUpdate, service.MenuQuery] {
	return crud.Handlers[model.SysMenu, *model.SysMenu, service.MenuCreate, service.MenuUpdate, service.MenuQuery]{
		Detail: func(c *gin.Context, id int64) (*model.SysMenu, error) {
			return h.d.Menu.Get(c.Request.Context(), id)
		},
		Create: func(c *gin.Context, in service.MenuCreate) (*model.SysMenu, error) {
			return h.d.Menu.Create(c.Request.Context(), in)
		},
		Update: func(c *gin.Context, id int64, in service.MenuUpdate) (*model.SysMenu, error) {
			return h.d.Menu.Update(c.Request.Context(), id, in)
		},
		Delete: func(c *gin.Context, id int64) error {
			return h.d.Menu.Delete(c.Request.Context(), id)
		},
	}
}

// List GET /menus 平铺列表
func (h *MenuHandler) List(c *gin.Context) {
	var q service.MenuQuery
	if err := crud.BindQuery(c, &q); err != nil {
		response.Fail(c, err)
		return
	}
	menus, err := h.d.Menu.List(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if menus == nil {
		menus = []model.SysMenu{}
	}
	response.OK(c, menus)
}

// Tree GET /menus/tree
func (h *MenuHandler) Tree(c *gin.Context) {
	nodes, err := h.d.Menu.Tree(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	if nodes == nil {
		nodes = []service.MenuNode{}
	}
	response.OK(c, nodes)
}
