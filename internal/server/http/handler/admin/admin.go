package admin

import (
	"net/http"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{ d Dependencies }

func NewAdminHandler(d Dependencies) *AdminHandler { return &AdminHandler{d: d} }

type assignRolesRequest struct {
	RoleIDs []int64 `json:"roleIds" binding:"omitempty,dive,gt=0"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// CRUD 标准五个接口
func (h *AdminHandler) CRUD() crud.Handlers[model.SysAdmin, *service.AdminDetail, service.AdminCreate, service.AdminUpdate, service.AdminQuery] {
	return crud.Handlers[model.SysAdmin, *service.AdminDetail, service.AdminCreate, service.AdminUpdate, service.AdminQuery]{
		List: func(c *gin.Context, q service.AdminQuery) (response.Page[model.SysAdmin], error) {
			items, total, err := h.d.Admin.List(c.Request.Context(), q)
			if err != nil {
				return response.Page[model.SysAdmin]{}, err
			}
			return page(items, total, q.PageQuery), nil
		},
		Detail: func(c *gin.Context, id int64) (*service.AdminDetail, error) {
			return h.d.Admin.Get(c.Request.Context(), id)
		},
		Create: func(c *gin.Context, in service.AdminCreate) (*service.AdminDetail, error) {
			return h.d.Admin.Create(c.Request.Context(), in)
		},
		Update: func(c *gin.Context, id int64, in service.AdminUpdate) (*service.AdminDetail, error) {
			return h.d.Admin.Update(c.Request.Context(), id, in)
		},
		Delete: func(c *gin.Context, id int64) error {
			return h.d.Admin.Delete(c.Request.Context(), middleware.AdminID(c), id)
		},
	}
}

// AssignRoles PUT /admins/:id/roles
func (h *AdminHandler) AssignRoles(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req assignRolesRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	ids, err := h.d.Admin.AssignRoles(c.Request.Context(), id, req.RoleIDs)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "角色分配成功", gin.H{"roleIds": nonNil(ids)})
}

// ResetPassword PUT /admins/:id/reset-password
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, err := crud.ParamID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req resetPasswordRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.d.Admin.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "密码已重置")
}
