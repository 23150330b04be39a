package model

import "time"

type SysRole struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName  string    `gorm:"size:64;not null;uniqueIndex:uk_sys_role_name" json:"roleName"`
	Sort      int       `gorm:"not null" json:"sort"`
	Status    int8      `gorm:"not null" json:"status"`
	Remark    string    `gorm:"size:255" json:"remark"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SysRole) TableName() string { return "sys_role" }

// SysRoleMenu (role_id, menu_id) 唯一
type SysRoleMenu struct {
	RoleID int64 `gorm:"primaryKey;autoIncrement:false" json:"roleId"`
	MenuID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"menuId"`
}

func (SysRoleMenu) TableName() string { return "sys_role_menu" }
