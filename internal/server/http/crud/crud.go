// Package crud 按统一约定注册资源的增删改查路由。
//
// 每个资源挂五条路由：GET / 、GET /:id 、POST / 、PUT /:id 、DELETE /:id，
// 依次要求 <prefix>:list|query|create|update|delete 权限；
// 未登录 401，无权限 403；写操作可选写审计日志。
package crud

import (
	"net/http"
	"strconv"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/audit"
	obs "go-rbacadmin/internal/server/http/middleware/observability"
	sec "go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// 标准动作，同时是权限标识的最后一段
const (
	ActionList   = "list"
	ActionQuery  = "query"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var actionLabels = map[string]string{
	ActionCreate: "新增",
	ActionUpdate: "修改",
	ActionDelete: "删除",
	"assignRole": "分配角色",
	"assignMenu": "分配菜单",
	"resetPwd":   "重置密码",
}

// Deps 所有资源共用的中间件依赖
type Deps struct {
	Auth gin.HandlerFunc
	Perm sec.Checker
	Sink audit.Sink // 为空不写审计
}

// Options 单个资源的描述
type Options struct {
	Module     string // 审计模块名，如 "管理员管理"
	Name       string // 资源名，如 "管理员"
	Permission string // 权限前缀，如 "system:admin"
	Audit      bool   // create / update / delete 是否写审计
}

// Group 某个资源的路由分组
type Group struct {
	rg   *gin.RouterGroup
	deps Deps
	opt  Options
}

func NewGroup(rg *gin.RouterGroup, d Deps, opt Options) *Group {
	return &Group{rg: rg, deps: d, opt: opt}
}

// Permission action 为空返回空串（只要求登录）
func (g *Group) Permission(action string) string {
	if action == "" {
		return ""
	}
	return g.opt.Permission + ":" + action
}

// Handle 注册一条带认证、鉴权、可选审计的路由
func (g *Group) Handle(method, path, action string, audited bool, h gin.HandlerFunc) {
	chain := []gin.HandlerFunc{g.deps.Auth, sec.Require(g.deps.Perm, g.Permission(action))}
	if audited && g.opt.Audit && g.deps.Sink != nil {
		chain = append(chain, obs.Audit(g.deps.Sink, obs.AuditEntry{
			Module:      g.opt.Module,
			Operation:   action,
			Description: describe(action, g.opt.Name),
		}))
	}
	g.rg.Handle(method, path, append(chain, h)...)
}

func describe(action, name string) string {
	if l, ok := actionLabels[action]; ok {
		return l + name
	}
	return action + " " + name
}

// Handlers 五个标准处理函数。T 列表项，D 详情，C 创建入参，U 更新入参，Q 列表查询参数。
// 为 nil 的处理函数不注册对应路由。
type Handlers[T, D, C, U, Q any] struct {
	List   func(c *gin.Context, q Q) (response.Page[T], error)
	Detail func(c *gin.Context, id int64) (D, error)
	Create func(c *gin.Context, in C) (D, error)
	Update func(c *gin.Context, id int64, in U) (D, error)
	Delete func(c *gin.Context, id int64) error
}

// Register 挂载标准路由。状态码：列表/详情/更新 200，创建 201，删除 200 且 data 为 null。
func Register[T, D, C, U, Q any](g *Group, h Handlers[T, D, C, U, Q]) {
	if h.List != nil {
		g.Handle(http.MethodGet, "", ActionList, false, func(c *gin.Context) {
			var q Q
			if err := BindQuery(c, &q); err != nil {
				response.Fail(c, err)
				return
			}
			page, err := h.List(c, q)
			if err != nil {
				response.Fail(c, err)
				return
			}
			response.OK(c, page)
		})
	}
	if h.Detail != nil {
		g.Handle(http.MethodGet, "/:id", ActionQuery, false, func(c *gin.Context) {
			id, err := ParamID(c, "id")
			if err != nil {
				response.Fail(c, err)
				return
			}
			d, err := h.Detail(c, id)
			if err != nil {
				response.Fail(c, err)
				return
			}
			response.OK(c, d)
		})
	}
	if h.Create != nil {
		g.Handle(http.MethodPost, "", ActionCreate, true, func(c *gin.Context) {
			var in C
			if err := BindJSON(c, &in); err != nil {
				response.Fail(c, err)
				return
			}
			d, err := h.Create(c, in)
			if err != nil {
				response.Fail(c, err)
				return
			}
			response.Created(c, d)
		})
	}
	if h.Update != nil {
		g.Handle(http.MethodPut, "/:id", ActionUpdate, true, func(c *gin.Context) {
			id, err := ParamID(c, "id")
			if err != nil {
				response.Fail(c, err)
				return
			}
			var in U
			if err := BindJSON(c, &in); err != nil {
				response.Fail(c, err)
				return
			}
			d, err := h.Update(c, id, in)
			if err != nil {
				response.Fail(c, err)
				return
			}
			response.JSON(c, http.StatusOK, "更新成功", d)
		})
	}
	if h.Delete != nil {
		g.Handle(http.MethodDelete, "/:id", ActionDelete, true, func(c *gin.Context) {
			id, err := ParamID(c, "id")
			if err != nil {
				response.Fail(c, err)
				return
			}
			if err := h.Delete(c, id); err != nil {
				response.Fail(c, err)
				return
			}
			response.Success(c, "删除成功")
		})
	}
}

// ParamID 路径参数必须是正整数
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("无效的ID", map[string]string{name: c.Param(name)})
	}
	return id, nil
}

// BindJSON 校验失败返回带字段明细的 VALIDATION_ERROR，格式错误返回通用 VALIDATION_ERROR
func BindJSON(c *gin.Context, out interface{}) error {
	return bindErr(c.ShouldBindJSON(out))
}

func BindQuery(c *gin.Context, out interface{}) error {
	return bindErr(c.ShouldBindQuery(out))
}

func bindErr(err error) error {
	if err == nil {
		return nil
	}
	if ae := apperr.From(err); ae.Kind == apperr.KindValidation {
		return ae
	}
	return apperr.Validation("请求参数格式错误", nil)
}
