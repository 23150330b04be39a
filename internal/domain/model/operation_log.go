package model

import "time"

// SysOperationLog 操作审计；status 1 成功 0 失败
type SysOperationLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID       int64     `gorm:"column:admin_id;index" json:"adminId"`
	AdminName     string    `gorm:"column:admin_name;size:64" json:"adminName"`
	Module        string    `gorm:"size:64;index" json:"module"`
	Operation     string    `gorm:"size:32" json:"operation"`
	Description   string    `gorm:"size:255" json:"description"`
	RequestMethod string    `gorm:"column:request_method;size:10" json:"requestMethod"`
	RequestURL    string    `gorm:"column:request_url;size:255" json:"requestUrl"`
	RequestParams string    `gorm:"column:request_params;type:text" json:"requestParams"`
	IP            string    `gorm:"column:ip;size:64" json:"ip"`
	UserAgent     string    `gorm:"column:user_agent;size:255" json:"userAgent"`
	ExecutionTime int64     `gorm:"column:execution_time" json:"executionTime"` // ms
	Status        int8      `gorm:"not null" json:"status"`
	ErrorMsg      string    `gorm:"column:error_msg;type:text" json:"errorMsg"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

func (SysOperationLog) TableName() string { return "sys_operation_log" }
