// Package admin 管理端 HTTP Handler
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qingliu2025/stock-admin-backend/internal/common/handler"
	"github.com/qingliu2025/stock-admin-backend/internal/common/response"
	"github.com/qingliu2025/stock-admin-backend/internal/service/stock"
)

// StockConfigHandler 股票配置处理器
type StockConfigHandler struct {
	stockService *stock.StockService
}

// NewStockConfigHandler 创建股票配置处理器
func NewStockConfigHandler(stockService *stock.StockService) *StockConfigHandler {
	return &StockConfigHandler{stockService: stockService}
}

// Create 创建股票配置
// @Summary 创建股票配置
// @Tags 股票-配置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body stock.CreateConfigRequest true "创建股票配置请求"
// @Success 200 {object} response.Response{data=models.StockConfig}
// @Router /api/v1/stock/configs [post]
func (h *StockConfigHandler) Create(c *gin.Context) {
	var req stock.CreateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	config, err := h.stockService.CreateConfig(c.Request.Context(), &req)
	handler.MustSucceed(c, err, config)
}

// Get 获取股票配置详情
// @Summary 获取股票配置详情
// @Tags 股票-配置
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response{data=models.StockConfig}
// @Router /api/v1/stock/configs/{id} [get]
func (h *StockConfigHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "股票配置")
	if !ok {
		return
	}

	config, err := h.stockService.GetConfig(c.Request.Context(), id)
	handler.MustSucceed(c, err, config)
}

// List 获取股票配置列表
// @Summary 获取股票配置列表
// @Tags 股票-配置
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param symbol query string false "股票代码"
// @Param market query string false "市场"
// @Param is_watched query bool false "是否自选"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/stock/configs [get]
func (h *StockConfigHandler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{
		"symbol": c.Query("symbol"),
		"market": c.Query("market"),
	}
	if v := c.Query("is_watched"); v != "" {
		if watched, err := strconv.ParseBool(v); err == nil {
			filters["is_watched"] = watched
		}
	}

	configs, total, err := h.stockService.ListConfigs(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, configs, total, p.Page, p.PageSize)
}

// Update 更新股票配置
// @Summary 更新股票配置
// @Tags 股票-配置
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Param request body stock.UpdateConfigRequest true "更新股票配置请求"
// @Success 200 {object} response.Response{data=models.StockConfig}
// @Router /api/v1/stock/configs/{id} [put]
func (h *StockConfigHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "股票配置")
	if !ok {
		return
	}

	var req stock.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	config, err := h.stockService.UpdateConfig(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, config)
}

// Delete 删除股票配置
// @Summary 删除股票配置
// @Tags 股票-配置
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response
// @Router /api/v1/stock/configs/{id} [delete]
func (h *StockConfigHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "股票配置")
	if !ok {
		return
	}

	err := h.stockService.DeleteConfig(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}
