package model

import "time"

// SysAdmin 对应 sys_admin 表

type SysAdmin struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string     `gorm:"size:64;not null;uniqueIndex:uk_sys_admin_username" json:"username"`
	Password  string     `gorm:"size:100;not null" json:"-"` // bcrypt
	Nickname  string     `gorm:"size:64" json:"nickname"`
	Status    int8       `gorm:"not null" json:"status"`
	LoginIP   string     `gorm:"column:login_ip;size:64" json:"loginIp"`
	LoginTime *time.Time `gorm:"column:login_time" json:"loginTime"`
	// 管理员重置密码的时间，早于它签发的会话全部失效
	PwdResetAt *time.Time `gorm:"column:pwd_reset_at" json:"-"`
	Remark    string     `gorm:"size:255" json:"remark"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (SysAdmin) TableName() string { return "sys_admin" }

// SysAdminRole 管理员与角色多对多
type SysAdminRole struct {
	AdminID int64 `gorm:"primaryKey;autoIncrement:false" json:"adminId"`
	RoleID  int64 `gorm:"primaryKey;autoIncrement:false;index" json:"roleId"`
}

func (SysAdminRole) TableName() string { return "sys_admin_role" }
