// Package stock 提供股票配置与行情服务
package stock

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/qingliu2025/stock-admin-backend/internal/common/cache"
	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/common/logger"
	"github.com/qingliu2025/stock-admin-backend/internal/common/metrics"
	"github.com/qingliu2025/stock-admin-backend/internal/common/utils"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// StockService 股票配置与行情服务
type StockService struct {
	stockRepo     *repository.StockRepository
	redisClient   *redis.Client
	quoteCacheTTL time.Duration
}

// NewStockService 创建股票服务
func NewStockService(stockRepo *repository.StockRepository, redisClient *redis.Client, quoteCacheTTL time.Duration) *StockService {
	if quoteCacheTTL <= 0 {
		quoteCacheTTL = time.Minute
	}
	return &StockService{
		stockRepo:     stockRepo,
		redisClient:   redisClient,
		quoteCacheTTL: quoteCacheTTL,
	}
}

// CreateConfigRequest 创建股票配置请求
type CreateConfigRequest struct {
	Symbol    string  `json:"symbol" binding:"required,max=20"`
	Name      string  `json:"name" binding:"required,max=50"`
	Market    string  `json:"market" binding:"required,oneof=sh sz hk us"`
	IsWatched bool    `json:"is_watched"`
	Status    *int8   `json:"status"`
	Sort      int     `json:"sort"`
	Remark    *string `json:"remark"`
}

// UpdateConfigRequest 更新股票配置请求
type UpdateConfigRequest struct {
	Name      *string `json:"name"`
	Market    *string `json:"market"`
	IsWatched *bool   `json:"is_watched"`
	Status    *int8   `json:"status"`
	Sort      *int    `json:"sort"`
	Remark    *string `json:"remark"`
}

// CreateConfig 创建股票配置
func (s *StockService) CreateConfig(ctx context.Context, req *CreateConfigRequest) (*models.StockConfig, error) {
	symbol := utils.NormalizeSymbol(req.Symbol)

	exists, err := s.stockRepo.ExistsBySymbol(ctx, symbol)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrStockSymbolExists
	}

	config := &models.StockConfig{
		Symbol:    symbol,
		Name:      req.Name,
		Market:    req.Market,
		IsWatched: req.IsWatched,
		Status:    models.StockConfigStatusActive,
		Sort:      req.Sort,
		Remark:    req.Remark,
	}
	if req.Status != nil {
		config.Status = *req.Status
	}

	if err := s.stockRepo.CreateConfig(ctx, config); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return config, nil
}

// GetConfig 获取股票配置详情
func (s *StockService) GetConfig(ctx context.Context, id int64) (*models.StockConfig, error) {
	config, err := s.stockRepo.GetConfigByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStockNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return config, nil
}

// ListConfigs 获取股票配置列表
func (s *StockService) ListConfigs(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.StockConfig, int64, error) {
	configs, total, err := s.stockRepo.ListConfigs(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return configs, total, nil
}

// UpdateConfig 更新股票配置
func (s *StockService) UpdateConfig(ctx context.Context, id int64, req *UpdateConfigRequest) (*models.StockConfig, error) {
	config, err := s.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		config.Name = *req.Name
	}
	if req.Market != nil {
		config.Market = *req.Market
	}
	if req.IsWatched != nil {
		config.IsWatched = *req.IsWatched
	}
	if req.Status != nil {
		config.Status = *req.Status
	}
	if req.Sort != nil {
		config.Sort = *req.Sort
	}
	if req.Remark != nil {
		config.Remark = req.Remark
	}

	if err := s.stockRepo.UpdateConfig(ctx, config); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return config, nil
}

// DeleteConfig 删除股票配置
func (s *StockService) DeleteConfig(ctx context.Context, id int64) error {
	if _, err := s.GetConfig(ctx, id); err != nil {
		return err
	}
	if err := s.stockRepo.DeleteConfig(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// IngestQuoteRequest 行情推送请求
type IngestQuoteRequest struct {
	Symbol        string   `json:"symbol" binding:"required,max=20"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"change_percent"`
	Volume        int64    `json:"volume" binding:"gte=0"`
	Timestamp     *int64   `json:"timestamp"`
}

// IngestQuote 接收行情推送
// 时间按分钟取桶，同一代码同一桶内覆盖更新；写库成功后写穿 Redis 缓存
func (s *StockService) IngestQuote(ctx context.Context, req *IngestQuoteRequest) (*models.StockQuote, error) {
	symbol := utils.NormalizeSymbol(req.Symbol)

	// 仅接受已配置且启用的股票
	config, err := s.stockRepo.GetConfigBySymbol(ctx, symbol)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			metrics.GetMetrics().RecordQuoteIngest("unknown_symbol")
			return nil, errors.ErrStockNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if config.Status != models.StockConfigStatusActive {
		metrics.GetMetrics().RecordQuoteIngest("disabled")
		return nil, errors.ErrStockQuoteInvalid.WithMessage("股票已禁用，拒绝行情推送")
	}

	at := time.Now()
	if req.Timestamp != nil && *req.Timestamp > 0 {
		at = time.Unix(*req.Timestamp, 0)
	}

	quote := &models.StockQuote{
		Symbol:        symbol,
		Price:         req.Price,
		Change:        req.Change,
		ChangePercent: req.ChangePercent,
		Volume:        req.Volume,
		BucketAt:      utils.TruncateToMinute(at),
	}

	if err := s.stockRepo.UpsertQuote(ctx, quote); err != nil {
		metrics.GetMetrics().RecordQuoteIngest("error")
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 写穿缓存，失败只告警
	if s.redisClient != nil {
		key := cache.BuildKey(cache.KeyPrefixStockQuote, symbol)
		if err := cache.Set(ctx, key, quote, s.quoteCacheTTL); err != nil {
			logger.Warn("写入行情缓存失败",
				logger.Symbol(symbol),
				logger.Err(err),
			)
		}
	}

	metrics.GetMetrics().RecordQuoteIngest("success")
	return quote, nil
}

// GetLatestQuote 获取最新行情，优先读缓存
func (s *StockService) GetLatestQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	symbol = utils.NormalizeSymbol(symbol)

	if s.redisClient != nil {
		key := cache.BuildKey(cache.KeyPrefixStockQuote, symbol)
		var cached models.StockQuote
		if err := cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	quote, err := s.stockRepo.GetLatestQuote(ctx, symbol)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStockQuoteNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 回填缓存
	if s.redisClient != nil {
		key := cache.BuildKey(cache.KeyPrefixStockQuote, symbol)
		_ = cache.Set(ctx, key, quote, s.quoteCacheTTL)
	}

	return quote, nil
}

// ListQuotes 获取指定代码最近的行情记录
func (s *StockService) ListQuotes(ctx context.Context, symbol string, limit int) ([]*models.StockQuote, error) {
	symbol = utils.NormalizeSymbol(symbol)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	quotes, err := s.stockRepo.ListQuotes(ctx, symbol, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return quotes, nil
}
