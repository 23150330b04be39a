package admin

import (
	"net/http"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct{ d Dependencies }

func NewRoleHandler(d Dependencies) *RoleHandler { return &RoleHandler{d: d} }

type assignMenusRequest struct {
	MenuIDs []int64 `json:"menuIds" binding:"omitempty,dive,gt=0"`
}

type toggleMenuRequest struct {
	MenuID  int64 `json:"menuId" binding:"required,gt=0"`
	Checked *bool `json:"checked" binding:"required"`
}

func (h *RoleHandler) CRUD() crud.Handlers[model.SysRole, *service.RoleDetail, service.RoleCreate, service.RoleUpdate, service.RoleQuery] {
	return crud.Handlers[model.SysRole, *service.RoleDetail, service.RoleCreate, service.RoleUpdate, service.RoleQuery]{
		List: func(c *gin.Context, q service.RoleQuery) (response.Page[model.SysRole], error) {
			items, total, err := h.d.Role.List(c.Request.Context(), q)
			if err != nil {
				return response.Page[model.SysRole]{}, err
			}
			return page(items, total, q.PageQuery), nil
		},
		Detail: func(c *gin.Context, id int64) (*service.RoleDetail, error) {
			return h.d.Role.Get(c.Request.Context(), id)
		},
		Create: func(c *gin.Context, in service.RoleCreate) (*service.RoleDetail, error) {
			return h.d.Role.Create(c.Request.Context(), in)
		},
		Update: func(c *gin.Context, id int64, in service.RoleUpdate) (*service.RoleDetail, error) {
			return h.d.Role.Update(c.Request.Context(), id, in)
		},
		Delete: func(c *gin.Context, id int64) error {
			return h.d.Role.Delete(c.Request.Context(), id)
		},
	}
}

// All GET /roles/all
func (h *RoleHandler) All(c *gin.Context) {
	roles, err := h.d.Role.All(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	if roles == nil {
		roles = []model.SysRole{}
	}
	response.OK(c, roles)
}

// AssignMenus PUT /roles/:id/menus
func (h *RoleHandler) AssignMenus(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req assignMenusRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	ids, err := h.d.Role.AssignMenus(c.Request.Context(), id, req.MenuIDs)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "菜单分配成功", gin.H{"menuIds": nonNil(ids)})
}

// ToggleMenu POST /roles/:id/menus/toggle
func (h *RoleHandler) ToggleMenu(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req toggleMenuRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	ids, err := h.d.Role.ToggleMenu(c.Request.Context(), id, req.MenuID, *req.Checked)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"menuIds": nonNil(ids)})
}

// SelectAllMenus POST /roles/:id/menus/select-all
func (h *RoleHandler) SelectAllMenus(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	ids, err := h.d.Role.SelectAllMenus(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"menuIds": nonNil(ids)})
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
