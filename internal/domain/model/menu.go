package model

import "time"

// 菜单类型
const (
	MenuTypeDir    = "D" // 目录
	MenuTypeMenu   = "M" // 菜单
	MenuTypeButton = "B" // 按钮
)

// SysMenu 目录/菜单/按钮统一存放，parent_id=0 为顶级
type SysMenu struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID   int64     `gorm:"column:parent_id;not null;index" json:"parentId"`
	MenuType   string    `gorm:"column:menu_type;size:1;not null" json:"menuType"`
	MenuName   string    `gorm:"column:menu_name;size:64;not null" json:"menuName"`
	Permission *string   `gorm:"size:128;uniqueIndex:uk_sys_menu_permission" json:"permission"`
	Path       string    `gorm:"size:255" json:"path"`
	Component  string    `gorm:"size:255" json:"component"`
	Icon       string    `gorm:"size:64" json:"icon"`
	Sort       int       `gorm:"not null" json:"sort"`
	Visible    int8      `gorm:"not null" json:"visible"`
	Status     int8      `gorm:"not null" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (SysMenu) TableName() string { return "sys_menu" }

// PermissionKey 空指针视为空串
func (m SysMenu) PermissionKey() string {
	if m.Permission == nil {
		return ""
	}
	return *m.Permission
}
