package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock ledger endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Provision handles POST /stocks - create the initial records for a
// product entering a warehouse. All-or-nothing.
func (h *StockHandler) Provision(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ProvisionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	records, err := h.service.Provision(ctx, productID, warehouseID, req.ToEntries())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"items": dto.FromStockRecords(records)})
}

// List handles GET /stocks with optional productId / warehouseId filters.
func (h *StockHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var filter stock.Filter

	if productStr := c.Query("productId"); productStr != "" {
		productID, err := id.Parse(productStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &productID
	}

	if warehouseStr := c.Query("warehouseId"); warehouseStr != "" {
		warehouseID, err := id.Parse(warehouseStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &warehouseID
	}

	records, err := h.service.Find(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromStockRecords(records)})
}

// Get handles GET /stocks/:id.
func (h *StockHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	record, err := h.service.GetByID(ctx, stockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(record))
}

// Adjust handles POST /stocks/:id/adjust - a quick correction in either
// direction.
func (h *StockHandler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.QuickAdjust(ctx, stockID, stock.Op(req.Operation), req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(record))
}

// AdjustWithReason handles POST /stocks/:id/adjust-with-reason - a
// documented deduction.
func (h *StockHandler) AdjustWithReason(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustWithReasonRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.AdjustWithReason(ctx, stockID, req.Amount, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(record))
}

// Adjustments handles GET /stocks/:id/adjustments - the audit trail,
// newest first.
func (h *StockHandler) Adjustments(c *gin.Context) {
	ctx := c.Request.Context()

	stockID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	opts := stock.EntryListOptions{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	entries, err := h.service.Entries(ctx, stockID, opts)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromAdjustmentEntries(entries)})
}
