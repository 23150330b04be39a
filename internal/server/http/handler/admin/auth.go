package admin

import (
	"net/http"

	"go-rbacadmin/internal/server/http/crud"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	// 审计中间件读取，失败时也能看到尝试的用户名
	c.Set(middleware.KeyUsername, req.Username)
	res, err := h.d.Auth.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAdminID, res.Admin.ID)
	response.JSON(c, http.StatusOK, "登录成功", res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.d.Auth.Logout(c.Request.Context(), middleware.JTI(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "退出成功")
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, err := h.d.Auth.Me(c.Request.Context(), middleware.AdminID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.d.Auth.ChangePassword(c.Request.Context(), middleware.AdminID(c), req); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "密码修改成功")
}
