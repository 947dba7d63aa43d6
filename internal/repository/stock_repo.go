// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qingliu2025/stock-admin-backend/internal/models"
)

// StockRepository 股票配置与行情仓储
type StockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建股票仓储
func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// CreateConfig 创建股票配置
func (r *StockRepository) CreateConfig(ctx context.Context, config *models.StockConfig) error {
	return r.db.WithContext(ctx).Create(config).Error
}

// GetConfigByID 根据 ID 获取股票配置
func (r *StockRepository) GetConfigByID(ctx context.Context, id int64) (*models.StockConfig, error) {
	var config models.StockConfig
	err := r.db.WithContext(ctx).First(&config, id).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetConfigBySymbol 根据代码获取股票配置
func (r *StockRepository) GetConfigBySymbol(ctx context.Context, symbol string) (*models.StockConfig, error) {
	var config models.StockConfig
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// UpdateConfig 更新股票配置
func (r *StockRepository) UpdateConfig(ctx context.Context, config *models.StockConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// DeleteConfig 删除股票配置
func (r *StockRepository) DeleteConfig(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.StockConfig{}, id).Error
}

// ListConfigs 获取股票配置列表
func (r *StockRepository) ListConfigs(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.StockConfig, int64, error) {
	var configs []*models.StockConfig
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StockConfig{})

	if symbol, ok := filters["symbol"].(string); ok && symbol != "" {
		query = query.Where("symbol LIKE ?", "%"+symbol+"%")
	}
	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if market, ok := filters["market"].(string); ok && market != "" {
		query = query.Where("market = ?", market)
	}
	if watched, ok := filters["is_watched"].(bool); ok {
		query = query.Where("is_watched = ?", watched)
	}
	if status, ok := filters["status"].(int8); ok {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("sort ASC, id ASC").Offset(offset).Limit(limit).Find(&configs).Error; err != nil {
		return nil, 0, err
	}

	return configs, total, nil
}

// ExistsBySymbol 检查股票代码是否存在
func (r *StockRepository) ExistsBySymbol(ctx context.Context, symbol string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockConfig{}).Where("symbol = ?", symbol).Count(&count).Error
	return count > 0, err
}

// ExistsBySymbolExcludeID 检查股票代码是否存在（排除指定 ID）
func (r *StockRepository) ExistsBySymbolExcludeID(ctx context.Context, symbol string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockConfig{}).Where("symbol = ? AND id != ?", symbol, excludeID).Count(&count).Error
	return count > 0, err
}

// UpsertQuote 写入行情快照，同一代码同一时间桶内覆盖更新
func (r *StockRepository) UpsertQuote(ctx context.Context, quote *models.StockQuote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "bucket_at"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "change", "change_percent", "volume",
		}),
	}).Create(quote).Error
}

// GetLatestQuote 获取指定代码的最新行情
func (r *StockRepository) GetLatestQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	var quote models.StockQuote
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("bucket_at DESC").
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListQuotes 获取指定代码在时间范围内的行情
func (r *StockRepository) ListQuotes(ctx context.Context, symbol string, limit int) ([]*models.StockQuote, error) {
	var quotes []*models.StockQuote
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("bucket_at DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}
