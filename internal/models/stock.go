package models

import (
	"time"
)

// StockConfig 股票配置
type StockConfig struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"symbol"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Market    string    `gorm:"type:varchar(10);not null" json:"market"`
	IsWatched bool      `gorm:"not null;default:false" json:"is_watched"`
	Status    int8      `gorm:"type:smallint;not null;default:1" json:"status"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	Remark    *string   `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (StockConfig) TableName() string {
	return "stock_configs"
}

// StockMarket 市场标识
const (
	StockMarketSH = "sh" // 上海
	StockMarketSZ = "sz" // 深圳
	StockMarketHK = "hk" // 香港
	StockMarketUS = "us" // 美国
)

// StockConfigStatus 股票配置状态
const (
	StockConfigStatusDisabled = 0 // 禁用
	StockConfigStatusActive   = 1 // 正常
)

// StockQuote 股票行情快照
// BucketAt 为按分钟取整的时间桶，同一 symbol 同一桶内只保留最新一条
type StockQuote struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol        string    `gorm:"type:varchar(20);not null;index:idx_quote_symbol_bucket,unique" json:"symbol"`
	Price         float64   `gorm:"not null" json:"price"`
	Change        float64   `gorm:"not null;default:0" json:"change"`
	ChangePercent float64   `gorm:"not null;default:0" json:"change_percent"`
	Volume        int64     `gorm:"not null;default:0" json:"volume"`
	BucketAt      time.Time `gorm:"not null;index:idx_quote_symbol_bucket,unique" json:"bucket_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (StockQuote) TableName() string {
	return "stock_quotes"
}
