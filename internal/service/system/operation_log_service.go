// Package system 提供系统管理域服务
package system

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// OperationLogService 操作日志查询与清理服务
// 日志写入由审计中间件负责，本服务只读和清理
type OperationLogService struct {
	logRepo *repository.OperationLogRepository
}

// NewOperationLogService 创建操作日志服务
func NewOperationLogService(logRepo *repository.OperationLogRepository) *OperationLogService {
	return &OperationLogService{logRepo: logRepo}
}

// Get 获取操作日志详情
func (s *OperationLogService) Get(ctx context.Context, id int64) (*models.OperationLog, error) {
	log, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOperationLogNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return log, nil
}

// List 获取操作日志列表
func (s *OperationLogService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.OperationLog, int64, error) {
	logs, total, err := s.logRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return logs, total, nil
}

// Delete 删除单条操作日志
func (s *OperationLogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.logRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// PurgeRequest 批量清理请求，二选一：按 ID 列表或按保留天数
type PurgeRequest struct {
	IDs        []int64 `json:"ids"`
	BeforeDays *int    `json:"before_days"`
}

// Purge 批量清理操作日志，返回删除条数
func (s *OperationLogService) Purge(ctx context.Context, req *PurgeRequest) (int64, error) {
	if len(req.IDs) > 0 {
		deleted, err := s.logRepo.DeleteByIDs(ctx, req.IDs)
		if err != nil {
			return 0, errors.ErrDatabaseError.WithError(err)
		}
		return deleted, nil
	}

	if req.BeforeDays != nil && *req.BeforeDays > 0 {
		before := time.Now().AddDate(0, 0, -*req.BeforeDays)
		deleted, err := s.logRepo.DeleteBefore(ctx, before)
		if err != nil {
			return 0, errors.ErrDatabaseError.WithError(err)
		}
		return deleted, nil
	}

	return 0, errors.ErrInvalidParams.WithMessage("请指定要清理的日志 ID 或保留天数")
}

// PurgeOlderThan 清理早于保留期的日志，供定时任务调用
func (s *OperationLogService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	before := time.Now().Add(-retention)
	deleted, err := s.logRepo.DeleteBefore(ctx, before)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	return deleted, nil
}
