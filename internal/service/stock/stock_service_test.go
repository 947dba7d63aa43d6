// Package stock 股票服务单元测试
package stock

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qingliu2025/stock-admin-backend/internal/common/cache"
	"github.com/qingliu2025/stock-admin-backend/internal/common/errors"
	"github.com/qingliu2025/stock-admin-backend/internal/models"
	"github.com/qingliu2025/stock-admin-backend/internal/repository"
)

// setupStockTest 创建内存数据库、miniredis 和股票服务
func setupStockTest(t *testing.T) (*gorm.DB, *StockService, *miniredis.Miniredis) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.StockConfig{},
		&models.StockQuote{},
	))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() { client.Close() })

	svc := NewStockService(repository.NewStockRepository(db), client, time.Minute)
	return db, svc, mr
}

// seedConfig 创建测试股票配置
func seedConfig(t *testing.T, svc *StockService, symbol string) *models.StockConfig {
	config, err := svc.CreateConfig(context.Background(), &CreateConfigRequest{
		Symbol: symbol,
		Name:   "测试股票",
		Market: models.StockMarketSH,
	})
	require.NoError(t, err)
	return config
}

func TestStockService_CreateConfig(t *testing.T) {
	_, svc, _ := setupStockTest(t)

	// 代码归一化为小写
	config, err := svc.CreateConfig(context.Background(), &CreateConfigRequest{
		Symbol: "  SH600519 ",
		Name:   "贵州茅台",
		Market: models.StockMarketSH,
	})
	require.NoError(t, err)
	assert.Equal(t, "sh600519", config.Symbol)
	assert.Equal(t, int8(models.StockConfigStatusActive), config.Status)

	// 归一化后的代码重复
	_, err = svc.CreateConfig(context.Background(), &CreateConfigRequest{
		Symbol: "SH600519",
		Name:   "重复代码",
		Market: models.StockMarketSH,
	})
	assert.ErrorIs(t, err, errors.ErrStockSymbolExists)
}

func TestStockService_IngestQuoteUnknownSymbol(t *testing.T) {
	_, svc, _ := setupStockTest(t)

	_, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh999999",
		Price:  10.5,
	})
	assert.ErrorIs(t, err, errors.ErrStockNotFound)
}

func TestStockService_IngestQuoteDisabledSymbol(t *testing.T) {
	db, svc, _ := setupStockTest(t)
	config := seedConfig(t, svc, "sh600519")
	require.NoError(t, db.Model(config).Update("status", models.StockConfigStatusDisabled).Error)

	_, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519",
		Price:  10.5,
	})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrStockQuoteInvalid.Code, appErr.Code)
}

func TestStockService_IngestQuoteMinuteBucket(t *testing.T) {
	db, svc, _ := setupStockTest(t)
	seedConfig(t, svc, "sh600519")

	base := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	ts1 := base.Add(5 * time.Second).Unix()
	ts2 := base.Add(40 * time.Second).Unix()
	ts3 := base.Add(90 * time.Second).Unix()

	// 同一分钟内两次推送，后者覆盖前者
	_, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519", Price: 100.0, Volume: 1000, Timestamp: &ts1,
	})
	require.NoError(t, err)
	_, err = svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519", Price: 101.5, Volume: 2000, Timestamp: &ts2,
	})
	require.NoError(t, err)

	// 跨入下一分钟产生新记录
	_, err = svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519", Price: 102.0, Volume: 500, Timestamp: &ts3,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.StockQuote{}).Where("symbol = ?", "sh600519").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var bucket1 models.StockQuote
	require.NoError(t, db.Where("symbol = ? AND bucket_at = ?", "sh600519", base).First(&bucket1).Error)
	assert.Equal(t, 101.5, bucket1.Price)
	assert.Equal(t, int64(2000), bucket1.Volume)
}

func TestStockService_GetLatestQuoteCacheFirst(t *testing.T) {
	db, svc, _ := setupStockTest(t)
	seedConfig(t, svc, "sh600519")

	ts := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC).Unix()
	quote, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519", Price: 100.0, Timestamp: &ts,
	})
	require.NoError(t, err)

	// 写穿缓存后命中缓存，删除数据库记录也能读到
	require.NoError(t, db.Delete(&models.StockQuote{}, quote.ID).Error)

	got, err := svc.GetLatestQuote(context.Background(), "SH600519")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)
}

func TestStockService_GetLatestQuoteBackfillsCache(t *testing.T) {
	_, svc, mr := setupStockTest(t)
	seedConfig(t, svc, "sh600519")

	ts := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC).Unix()
	_, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
		Symbol: "sh600519", Price: 100.0, Timestamp: &ts,
	})
	require.NoError(t, err)

	// 缓存失效后走数据库并回填
	mr.FlushAll()

	got, err := svc.GetLatestQuote(context.Background(), "sh600519")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)
	assert.True(t, mr.Exists("stock:quote:sh600519"))
}

func TestStockService_GetLatestQuoteNotFound(t *testing.T) {
	_, svc, _ := setupStockTest(t)
	seedConfig(t, svc, "sh600519")

	_, err := svc.GetLatestQuote(context.Background(), "sh600519")
	assert.ErrorIs(t, err, errors.ErrStockQuoteNotFound)
}

func TestStockService_ListQuotes(t *testing.T) {
	_, svc, _ := setupStockTest(t)
	seedConfig(t, svc, "sh600519")

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Minute).Unix()
		_, err := svc.IngestQuote(context.Background(), &IngestQuoteRequest{
			Symbol: "sh600519", Price: 100.0 + float64(i), Timestamp: &ts,
		})
		require.NoError(t, err)
	}

	quotes, err := svc.ListQuotes(context.Background(), "sh600519", 3)
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	// 按时间桶倒序
	assert.Equal(t, 104.0, quotes[0].Price)
	assert.Equal(t, 103.0, quotes[1].Price)
	assert.Equal(t, 102.0, quotes[2].Price)
}
