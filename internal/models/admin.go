package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SuperAdminID 内置超级管理员 ID，不可删除、不可修改角色，隐式拥有全部权限
const SuperAdminID int64 = 1

// PermissionWildcard 通配权限，仅超级管理员隐式持有，不允许分配给普通角色
const PermissionWildcard = "*"

// Admin 管理员模型
type Admin struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Name         string     `gorm:"type:varchar(50);not null" json:"name"`
	Status       int8       `gorm:"type:smallint;not null;default:1" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP  *string    `gorm:"type:varchar(45)" json:"last_login_ip,omitempty"`
	Remark       *string    `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Roles []Role `gorm:"many2many:admin_roles" json:"roles,omitempty"`
}

// TableName 表名
func (Admin) TableName() string {
	return "admins"
}

// IsSuperAdmin 是否为超级管理员
func (a *Admin) IsSuperAdmin() bool {
	return a.ID == SuperAdminID
}

// AdminStatus 管理员状态
const (
	AdminStatusDisabled = 0 // 禁用
	AdminStatusActive   = 1 // 正常
)

// Role 角色模型
type Role struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	Remark    *string   `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Menus []Menu `gorm:"many2many:role_menus" json:"menus,omitempty"`
}

// TableName 表名
func (Role) TableName() string {
	return "roles"
}

// RoleStatus 角色状态
const (
	RoleStatusDisabled = 0 // 禁用
	RoleStatusActive   = 1 // 正常
)

// Menu 菜单/权限节点模型
// ParentID 为 0 表示根节点；Permission 为权限标识（module:resource:action），
// 设置时全局唯一，是鉴权的最小单元
type Menu struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID   int64     `gorm:"not null;default:0;index" json:"parent_id"`
	Type       int8      `gorm:"type:smallint;not null" json:"type"`
	Name       string    `gorm:"type:varchar(50);not null" json:"name"`
	Permission *string   `gorm:"type:varchar(100);uniqueIndex" json:"permission,omitempty"`
	Path       *string   `gorm:"type:varchar(255)" json:"path,omitempty"`
	Component  *string   `gorm:"type:varchar(255)" json:"component,omitempty"`
	Icon       *string   `gorm:"type:varchar(100)" json:"icon,omitempty"`
	Sort       int       `gorm:"not null;default:0" json:"sort"`
	Visible    bool      `gorm:"not null;default:true" json:"visible"`
	Status     int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	IsExternal bool      `gorm:"not null;default:false" json:"is_external"`
	KeepAlive  bool      `gorm:"not null;default:false" json:"keep_alive"`
	Remark     *string   `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Menu) TableName() string {
	return "menus"
}

// MenuType 菜单节点类型
const (
	MenuTypeDirectory = 1 // 目录
	MenuTypeMenu      = 2 // 菜单
	MenuTypeButton    = 3 // 按钮
)

// MenuStatus 菜单状态
const (
	MenuStatusDisabled = 0 // 禁用
	MenuStatusActive   = 1 // 正常
)

// MenuRootParentID 根节点的父 ID
const MenuRootParentID int64 = 0

// AdminRole 管理员角色关联表
type AdminRole struct {
	AdminID   int64     `gorm:"primaryKey" json:"admin_id"`
	RoleID    int64     `gorm:"primaryKey" json:"role_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (AdminRole) TableName() string {
	return "admin_roles"
}

// RoleMenu 角色菜单关联表
type RoleMenu struct {
	RoleID    int64     `gorm:"primaryKey" json:"role_id"`
	MenuID    int64     `gorm:"primaryKey" json:"menu_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (RoleMenu) TableName() string {
	return "role_menus"
}

// OperationLog 操作日志，只增不改
// AdminID 可为空（匿名或认证失败的请求）
type OperationLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID      *int64    `gorm:"index" json:"admin_id,omitempty"`
	AdminName    *string   `gorm:"type:varchar(50)" json:"admin_name,omitempty"`
	Module       string    `gorm:"type:varchar(50);not null" json:"module"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	Description  *string   `gorm:"type:varchar(255)" json:"description,omitempty"`
	Method       string    `gorm:"type:varchar(10);not null" json:"method"`
	Path         string    `gorm:"type:varchar(255);not null" json:"path"`
	Params       JSON      `gorm:"type:jsonb" json:"params,omitempty"`
	IP           string    `gorm:"type:varchar(45);not null" json:"ip"`
	UserAgent    *string   `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	DurationMs   int64     `gorm:"not null;default:0" json:"duration_ms"`
	Success      bool      `gorm:"not null;default:true" json:"success"`
	ErrorMessage *string   `gorm:"type:varchar(500)" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "operation_logs"
}

// JSON 自定义 JSON 类型
type JSON map[string]interface{}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, j)
}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}
