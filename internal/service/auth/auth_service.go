// Package auth 提供管理员认证服务
package auth

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/crypto"
	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/jwt"
	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// AuthService 管理员认证服务
type AuthService struct {
	adminRepo  *repository.AdminRepository
	jwtManager *jwt.Manager
}

// NewAuthService 创建认证服务
func NewAuthService(adminRepo *repository.AdminRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{
		adminRepo:  adminRepo,
		jwtManager: jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    int64         `json:"expires_at"`
	Admin        *models.Admin `json:"admin"`
}

// Login 管理员登录
// 用户名不存在与密码错误返回同一个错误，不泄露账号是否存在；
// 禁用状态在密码验证通过后才检查，返回独立的业务错误
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, clientIP string) (*LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsernameWithRoles(ctx, req.Username)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.GetMetrics().RecordLogin("invalid")
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.Password, admin.PasswordHash) {
		metrics.GetMetrics().RecordLogin("invalid")
		return nil, errors.ErrInvalidCredentials
	}

	if admin.Status != models.AdminStatusActive {
		metrics.GetMetrics().RecordLogin("disabled")
		return nil, errors.ErrAccountDisabled
	}

	roleIDs := make([]int64, 0, len(admin.Roles))
	for _, role := range admin.Roles {
		roleIDs = append(roleIDs, role.ID)
	}

	pair, err := s.jwtManager.GenerateTokenPair(admin.ID, admin.Username, roleIDs)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	// 登录信息更新失败不影响登录
	if err := s.adminRepo.UpdateLoginInfo(ctx, admin.ID, clientIP); err != nil {
		logger.Warn("更新登录信息失败",
			logger.AdminID(admin.ID),
			logger.Err(err),
		)
	}

	metrics.GetMetrics().RecordLogin("success")
	return &LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Admin:        admin,
	}, nil
}

// RefreshToken 刷新令牌
// 只接受刷新类型的令牌，短期访问令牌不能换发新令牌对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, errors.ErrTokenRefreshFail.WithError(err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, errors.ErrTokenRefreshFail
	}

	// 刷新时重新校验账号状态并取最新角色
	admin, err := s.adminRepo.GetByIDWithRoles(ctx, claims.AdminID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTokenRefreshFail
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if admin.Status != models.AdminStatusActive {
		return nil, errors.ErrAccountDisabled
	}

	roleIDs := make([]int64, 0, len(admin.Roles))
	for _, role := range admin.Roles {
		roleIDs = append(roleIDs, role.ID)
	}

	pair, err := s.jwtManager.GenerateTokenPair(admin.ID, admin.Username, roleIDs)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return pair, nil
}

// GetProfile 获取当前管理员信息
func (s *AuthService) GetProfile(ctx context.Context, adminID int64) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByIDWithRoles(ctx, adminID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAdminNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return admin, nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// ChangePassword 修改当前管理员密码
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, req *ChangePasswordRequest) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrAdminNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.OldPassword, admin.PasswordHash) {
		return errors.ErrOldPasswordWrong
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, adminID, hash); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}
