package http

import (
	"context"
	"net/http"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/audit"
	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/server/http/crud"
	handlerset "go-rbacadmin/internal/server/http/handler"
	adminh "go-rbacadmin/internal/server/http/handler/admin"
	"go-rbacadmin/internal/server/http/middleware"
	obs "go-rbacadmin/internal/server/http/middleware/observability"
	sec "go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps 路由装配所需依赖；Sink / Limiter / Health 可为空
type RouterDeps struct {
	Config   *config.Config
	Logger   *logging.Logger
	Services adminh.Dependencies
	Perm     sec.Checker
	Sink     audit.Sink
	Limiter  sec.Limiter
	Health   *HealthChecker
}

// NewRouter 只负责分组与中间件装配，业务在 handler 层
func NewRouter(d RouterDeps) *gin.Engine {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	lg := d.Logger
	if lg == nil {
		lg = logging.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(),
		middleware.SecureHeaders(cfg.AppMeta.Env != "prod"),
		middleware.CORS(cfg.HTTP.AllowOrigins),
		obs.Trace(),
		obs.LoggerContext(lg),
		obs.Metrics(),
		obs.AccessLog(),
	)

	hc := d.Health
	if hc == nil {
		hc = NewHealthChecker(nil, nil, nil, nil)
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.Invalidate()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlerset.NewHandlerSet(d.Services)
	authMW := sec.Auth(d.Services.Auth)
	deps := crud.Deps{Auth: authMW, Perm: d.Perm, Sink: d.Sink}
	api := r.Group("/api")

	// 认证
	authGrp := api.Group("/auth")
	{
		authGrp.POST("/login",
			sec.LoginRateLimit(d.Limiter, cfg.RateLimit.LoginPerMinute),
			obs.Audit(d.Sink, obs.AuditEntry{Module: "登录", Operation: "login", Description: "管理员登录"}),
			h.Auth.Login)
		authGrp.POST("/logout", authMW, h.Auth.Logout)
		authGrp.GET("/me", authMW, h.Auth.Me)
		authGrp.PUT("/password", authMW,
			obs.Audit(d.Sink, obs.AuditEntry{Module: "个人中心", Operation: "changePwd", Description: "修改密码"}),
			h.Auth.ChangePassword)
	}

	// 管理员
	admins := crud.NewGroup(api.Group("/admins"), deps, crud.Options{Module: "管理员管理", Name: "管理员", Permission: "system:admin", Audit: true})
	crud.Register(admins, h.Admin.CRUD())
	admins.Handle(http.MethodPut, "/:id/roles", "assignRole", true, h.Admin.AssignRoles)
	admins.Handle(http.MethodPut, "/:id/reset-password", "resetPwd", true, h.Admin.ResetPassword)

	// 角色
	roles := crud.NewGroup(api.Group("/roles"), deps, crud.Options{Module: "角色管理", Name: "角色", Permission: "system:role", Audit: true})
	roles.Handle(http.MethodGet, "/all", crud.ActionList, false, h.Role.All)
	crud.Register(roles, h.Role.CRUD())
	roles.Handle(http.MethodPut, "/:id/menus", "assignMenu", true, h.Role.AssignMenus)
	roles.Handle(http.MethodPost, "/:id/menus/toggle", "assignMenu", true, h.Role.ToggleMenu)
	roles.Handle(http.MethodPost, "/:id/menus/select-all", "assignMenu", true, h.Role.SelectAllMenus)

	// 菜单
	menus := crud.NewGroup(api.Group("/menus"), deps, crud.Options{Module: "菜单管理", Name: "菜单", Permission: "system:menu", Audit: true})
	menus.Handle(http.MethodGet, "", crud.ActionList, false, h.Menu.List)
	menus.Handle(http.MethodGet, "/tree", crud.ActionList, false, h.Menu.Tree)
	crud.Register(menus, h.Menu.CRUD())

	// 系统配置
	configs := crud.NewGroup(api.Group("/configs"), deps, crud.Options{Module: "系统配置", Name: "配置", Permission: "system:config", Audit: true})
	configs.Handle(http.MethodGet, "/public/:key", "", false, h.Config.Public)
	crud.Register(configs, h.Config.CRUD())
	configs.Handle(http.MethodPatch, "/key/:id", crud.ActionUpdate, true, h.Config.PatchValue)

	// 操作日志
	logs := crud.NewGroup(api.Group("/operation-logs"), deps, crud.Options{Module: "操作日志", Name: "操作日志", Permission: "system:log", Audit: true})
	crud.Register(logs, h.Log.CRUD())

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, apperr.NotFound("接口不存在"))
	})
	return r
}
