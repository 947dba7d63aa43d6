// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrRateLimitExceed = New(1007, "请求过于频繁")
	ErrOperationFailed = New(1008, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized       = New(2000, "未登录")
	ErrTokenExpired       = New(2001, "登录已过期")
	ErrTokenInvalid       = New(2002, "无效的令牌")
	ErrTokenMalformed     = New(2003, "令牌格式错误")
	ErrTokenRefreshFail   = New(2004, "刷新令牌失败")
	ErrPermissionDenied   = New(2005, "权限不足")
	ErrAccountDisabled    = New(2006, "账号已禁用")
	ErrInvalidCredentials = New(2007, "用户名或密码错误")
	ErrOldPasswordWrong   = New(2008, "原密码错误")
	ErrIngestSecretWrong  = New(2009, "数据推送密钥错误")
)

// 管理员错误码 (3000-3099)
var (
	ErrAdminNotFound      = New(3000, "管理员不存在")
	ErrAdminExists        = New(3001, "用户名已存在")
	ErrAdminSelfDelete    = New(3002, "不能删除当前登录账号")
	ErrSuperAdminDelete   = New(3003, "不能删除超级管理员")
	ErrSuperAdminModify   = New(3004, "不能修改超级管理员的角色")
	ErrSuperAdminDisable  = New(3005, "不能禁用超级管理员")
)

// 角色错误码 (3100-3199)
var (
	ErrRoleNotFound = New(3100, "角色不存在")
	ErrRoleExists   = New(3101, "角色名称已存在")
	ErrRoleInUse    = New(3102, "角色正在使用中，无法删除")
)

// 菜单错误码 (3200-3299)
var (
	ErrMenuNotFound         = New(3200, "菜单不存在")
	ErrMenuHasChildren      = New(3201, "存在子菜单，无法删除")
	ErrMenuPermissionExists = New(3202, "权限标识已存在")
	ErrMenuParentNotFound   = New(3203, "父级菜单不存在")
	ErrMenuParentInvalid    = New(3204, "不能将菜单移动到自身或其子节点下")
)

// 操作日志错误码 (3300-3399)
var (
	ErrOperationLogNotFound = New(3300, "操作日志不存在")
)

// 股票配置错误码 (3400-3499)
var (
	ErrStockNotFound     = New(3400, "股票配置不存在")
	ErrStockSymbolExists = New(3401, "股票代码已存在")
	ErrStockQuoteInvalid = New(3402, "无效的行情数据")
	ErrStockQuoteNotFound = New(3403, "暂无行情数据")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
