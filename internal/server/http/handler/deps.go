package handler

import (
	adminh "go-rbacadmin/internal/server/http/handler/admin"
)

// HandlerSet 聚合各资源 handler，供 router 使用
type HandlerSet struct {
	Auth   *adminh.AuthHandler
	Admin  *adminh.AdminHandler
	Role   *adminh.RoleHandler
	Menu   *adminh.MenuHandler
	Config *adminh.ConfigHandler
	Log    *adminh.LogHandler
}

func NewHandlerSet(d adminh.Dependencies) *HandlerSet {
	return &HandlerSet{
		Auth:   adminh.NewAuthHandler(d),
		Admin:  adminh.NewAdminHandler(d),
		Role:   adminh.NewRoleHandler(d),
		Menu:   adminh.NewMenuHandler(d),
		Config: adminh.NewConfigHandler(d),
		Log:    adminh.NewLogHandler(d),
	}
}
