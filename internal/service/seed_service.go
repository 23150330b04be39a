package service

import (
	"context"
	"errors"
	"fmt"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/pkg/crypto"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BaseRoleName 初始化时创建的角色，拥有全部菜单
const BaseRoleName = "超级管理员"

type seedMenu struct {
	Type       string
	Name       string
	Permission string
	Path       string
	Component  string
	Icon       string
	Children   []seedMenu
}

func buttons(prefix string, ops ...[2]string) []seedMenu {
	out := make([]seedMenu, 0, len(ops))
	for _, op := range ops {
		out = append(out, seedMenu{Type: model.MenuTypeButton, Name: op[1], Permission: prefix + ":" + op[0]})
	}
	return out
}

var crudOps = [][2]string{{"query", "查询"}, {"create", "新增"}, {"update", "修改"}, {"delete", "删除"}}

func seedMenus() []seedMenu {
	return []seedMenu{
		{Type: model.MenuTypeMenu, Name: "首页", Path: "/dashboard", Component: "dashboard/index", Icon: "home"},
		{Type: model.MenuTypeDir, Name: "系统管理", Path: "/system", Icon: "setting", Children: []seedMenu{
			{Type: model.MenuTypeMenu, Name: "管理员管理", Permission: "system:admin:list", Path: "/system/admin", Component: "system/admin/index", Icon: "user",
				Children: append(buttons("system:admin", crudOps...), buttons("system:admin", [2]string{"assignRole", "分配角色"}, [2]string{"resetPwd", "重置密码"})...)},
			{Type: model.MenuTypeMenu, Name: "角色管理", Permission: "system:role:list", Path: "/system/role", Component: "system/role/index", Icon: "team",
				Children: append(buttons("system:role", crudOps...), buttons("system:role", [2]string{"assignMenu", "分配菜单"})...)},
			{Type: model.MenuTypeMenu, Name: "菜单管理", Permission: "system:menu:list", Path: "/system/menu", Component: "system/menu/index", Icon: "menu",
				Children: buttons("system:menu", crudOps...)},
			{Type: model.MenuTypeMenu, Name: "系统配置", Permission: "system:config:list", Path: "/system/config", Component: "system/config/index", Icon: "tool",
				Children: buttons("system:config", crudOps...)},
			{Type: model.MenuTypeMenu, Name: "操作日志", Permission: "system:log:list", Path: "/system/log", Component: "system/log/index", Icon: "file",
				Children: buttons("system:log", [2]string{"query", "查询"}, [2]string{"delete", "删除"})},
		}},
	}
}

func seedConfigs() []model.SysConfig {
	return []model.SysConfig{
		{ConfigKey: "site.name", ConfigValue: "RBAC Admin", ConfigType: model.ConfigTypeString, ConfigGroup: "site", ConfigName: "站点名称", IsSystem: 1, Status: 1},
		{ConfigKey: "site.pageSize", ConfigValue: "10", ConfigType: model.ConfigTypeNumber, ConfigGroup: "site", ConfigName: "默认分页大小", IsSystem: 1, Status: 1},
		{ConfigKey: "security.loginCaptcha", ConfigValue: "false", ConfigType: model.ConfigTypeBoolean, ConfigGroup: "security", ConfigName: "登录验证码", Status: 1},
		{ConfigKey: "upload.allowedTypes", ConfigValue: `["jpg","png","gif"]`, ConfigType: model.ConfigTypeJSON, ConfigGroup: "upload", ConfigName: "允许上传的文件类型", Status: 1},
	}
}

// Seeder 幂等初始化：角色、菜单、配置、超级管理员，全部在一个事务内
type Seeder struct {
	DB            *gorm.DB
	AdminPassword string
}

func NewSeeder(db *gorm.DB, adminPassword string) *Seeder {
	return &Seeder{DB: db, AdminPassword: adminPassword}
}

func (s *Seeder) Run(ctx context.Context) error {
	lg := logging.FromContext(ctx)
	var menus int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := s.ensureRole(tx)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, 64)
		if err := s.ensureMenus(tx, 0, seedMenus(), &ids); err != nil {
			return err
		}
		menus = len(ids)
		if err := tx.Where("role_id = ?", role.ID).Delete(&model.SysRoleMenu{}).Error; err != nil {
			return fmt.Errorf("clear base role menus: %w", err)
		}
		all := []int64{}
		if err := tx.Model(&model.SysMenu{}).Order("id").Pluck("id", &all).Error; err != nil {
			return fmt.Errorf("all menu ids: %w", err)
		}
		rows := make([]model.SysRoleMenu, 0, len(all))
		for _, id := range all {
			rows = append(rows, model.SysRoleMenu{RoleID: role.ID, MenuID: id})
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
				return fmt.Errorf("grant base role menus: %w", err)
			}
		}
		if err := s.ensureConfigs(tx); err != nil {
			return err
		}
		return s.ensureSuperAdmin(tx, role.ID)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	lg.Info("seed_done", zap.Int("menus", menus))
	return nil
}

func (s *Seeder) ensureRole(tx *gorm.DB) (*model.SysRole, error) {
	var r model.SysRole
	err := tx.Where("role_name = ?", BaseRoleName).First(&r).Error
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find base role: %w", err)
	}
	r = model.SysRole{RoleName: BaseRoleName, Sort: 0, Status: 1, Remark: "系统初始化创建"}
	if err := tx.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("create base role: %w", err)
	}
	return &r, nil
}

// ensureMenus 有权限标识的按标识匹配，否则按 (parent_id, menu_name) 匹配；存在则更新
func (s *Seeder) ensureMenus(tx *gorm.DB, parentID int64, items []seedMenu, ids *[]int64) error {
	for i, it := range items {
		var m model.SysMenu
		q := tx.Where("parent_id = ? AND menu_name = ?", parentID, it.Name)
		if it.Permission != "" {
			q = tx.Where("permission = ?", it.Permission)
		}
		err := q.First(&m).Error
		switch {
		case err == nil:
			cols := map[string]interface{}{
				"parent_id": parentID, "menu_type": it.Type, "menu_name": it.Name,
				"path": it.Path, "component": it.Component, "icon": it.Icon, "sort": i + 1,
			}
			if err := tx.Model(&model.SysMenu{}).Where("id = ?", m.ID).Updates(cols).Error; err != nil {
				return fmt.Errorf("update seed menu %s: %w", it.Name, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			m = model.SysMenu{
				ParentID: parentID, MenuType: it.Type, MenuName: it.Name, Permission: permissionPtr(it.Permission),
				Path: it.Path, Component: it.Component, Icon: it.Icon, Sort: i + 1, Visible: 1, Status: 1,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("create seed menu %s: %w", it.Name, err)
			}
		default:
			return fmt.Errorf("find seed menu %s: %w", it.Name, err)
		}
		*ids = append(*ids, m.ID)
		if err := s.ensureMenus(tx, m.ID, it.Children, ids); err != nil {
			return err
		}
	}
	return nil
}

// ensureConfigs 只补缺失的 key，不覆盖已修改的值
func (s *Seeder) ensureConfigs(tx *gorm.DB) error {
	for _, c := range seedConfigs() {
		var n int64
		if err := tx.Model(&model.SysConfig{}).Where("config_key = ?", c.ConfigKey).Count(&n).Error; err != nil {
			return fmt.Errorf("count config %s: %w", c.ConfigKey, err)
		}
		if n > 0 {
			continue
		}
		c := c
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("create config %s: %w", c.ConfigKey, err)
		}
	}
	return nil
}

func (s *Seeder) ensureSuperAdmin(tx *gorm.DB, roleID int64) error {
	var n int64
	if err := tx.Model(&model.SysAdmin{}).Where("id = ?", SuperAdminID).Count(&n).Error; err != nil {
		return fmt.Errorf("count super admin: %w", err)
	}
	if n == 0 {
		hash, err := crypto.HashPassword(s.AdminPassword)
		if err != nil {
			return err
		}
		a := model.SysAdmin{ID: SuperAdminID, Username: "admin", Password: hash, Nickname: "超级管理员", Status: 1, Remark: "系统初始化创建"}
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("create super admin: %w", err)
		}
		// 显式写入 id 后同步 postgres 序列
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT setval(pg_get_serial_sequence('sys_admin', 'id'), (SELECT MAX(id) FROM sys_admin))").Error; err != nil {
				return fmt.Errorf("sync admin sequence: %w", err)
			}
		}
	}
	var bound int64
	if err := tx.Model(&model.SysAdminRole{}).Where("admin_id = ? AND role_id = ?", SuperAdminID, roleID).Count(&bound).Error; err != nil {
		return fmt.Errorf("count super admin role: %w", err)
	}
	if bound == 0 {
		if err := tx.Create(&model.SysAdminRole{AdminID: SuperAdminID, RoleID: roleID}).Error; err != nil {
			return fmt.Errorf("bind super admin role: %w", err)
		}
	}
	return nil
}
