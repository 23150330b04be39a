package admin

import "go-rbacadmin/internal/service"

// Dependencies admin 子包依赖的业务服务
type Dependencies struct {
	Auth   *service.AuthService
	Admin  *service.AdminService
	Role   *service.RoleService
	Menu   *service.MenuService
	Config *service.ConfigService
	Log    *service.OperationLogService
}
