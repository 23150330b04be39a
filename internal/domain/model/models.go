package model

// All 参与 AutoMigrate 的全部表
func All() []interface{} {
	return []interface{}{
		&SysAdmin{}, &SysAdminRole{},
		&SysRole{}, &SysRoleMenu{},
		&SysMenu{},
		&SysConfig{},
		&SysOperationLog{},
	}
}
