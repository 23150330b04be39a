package model

import "time"

// 配置值类型
const (
	ConfigTypeString  = "string"
	ConfigTypeNumber  = "number"
	ConfigTypeBoolean = "boolean"
	ConfigTypeJSON    = "json"
)

type SysConfig struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConfigKey   string    `gorm:"column:config_key;size:128;not null;uniqueIndex:uk_sys_config_key" json:"configKey"`
	ConfigValue string    `gorm:"column:config_value;type:text" json:"configValue"`
	ConfigType  string    `gorm:"column:config_type;size:16;not null;default:'string'" json:"configType"`
	ConfigGroup string    `gorm:"column:config_group;size:64;not null;default:'general'" json:"configGroup"`
	ConfigName  string    `gorm:"column:config_name;size:128" json:"configName"`
	Remark      string    `gorm:"size:255" json:"remark"`
	IsSystem    int8      `gorm:"column:is_system;not null" json:"isSystem"` // 1 不可删除
	Status      int8      `gorm:"not null" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (SysConfig) TableName() string { return "sys_config" }
