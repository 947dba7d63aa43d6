// Package stock 行情 HTTP Handler
package stock

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	stockService "github.com/qingliu2025/stock-admin-backend/internal/service/stock"
)

// QuoteHandler 行情处理器
type QuoteHandler struct {
	stockService *stockService.StockService
}

// NewQuoteHandler 创建行情处理器
func NewQuoteHandler(svc *stockService.StockService) *QuoteHandler {
	return &QuoteHandler{stockService: svc}
}

// Ingest 接收行情推送
// @Summary 接收行情推送（采集端专用，共享密钥鉴权）
// @Tags 股票-行情
// @Accept json
// @Produce json
// @Param X-Ingest-Secret header string true "推送密钥"
// @Param request body stock.IngestQuoteRequest true "行情推送请求"
// @Success 200 {object} response.Response{data=models.StockQuote}
// @Router /api/v1/stock/quotes [post]
func (h *QuoteHandler) Ingest(c *gin.Context) {
	var req stockService.IngestQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	quote, err := h.stockService.IngestQuote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

// GetLatest 获取最新行情
// @Summary 获取指定代码的最新行情
// @Tags 股票-行情
// @Produce json
// @Param symbol path string true "股票代码"
// @Success 200 {object} response.Response{data=models.StockQuote}
// @Router /api/v1/stock/quotes/{symbol} [get]
func (h *QuoteHandler) GetLatest(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		response.BadRequest(c, "股票代码不能为空")
		return
	}

	quote, err := h.stockService.GetLatestQuote(c.Request.Context(), symbol)
	handler.MustSucceed(c, err, quote)
}

// List 获取最近行情记录
// @Summary 获取指定代码最近的行情记录
// @Tags 股票-行情
// @Produce json
// @Param symbol path string true "股票代码"
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} response.Response{data=[]models.StockQuote}
// @Router /api/v1/stock/quotes/{symbol}/history [get]
func (h *QuoteHandler) List(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		response.BadRequest(c, "股票代码不能为空")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	quotes, err := h.stockService.ListQuotes(c.Request.Context(), symbol, limit)
	handler.MustSucceed(c, err, quotes)
}
