package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/rollup"
)

// SummaryHandler serves the inventory rollup endpoint.
type SummaryHandler struct {
	*BaseHandler
	summarizer rollup.Summarizer
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(base *BaseHandler, summarizer rollup.Summarizer) *SummaryHandler {
	return &SummaryHandler{
		BaseHandler: base,
		summarizer:  summarizer,
	}
}

// Get handles GET /inventory/summary. Repeatable productId query params
// (comma-separated values also accepted) narrow the rollup to those products.
func (h *SummaryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	var filter rollup.Filter

	for _, raw := range c.QueryArray("productId") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			productID, err := id.Parse(part)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid productId format").WithDetail("value", part))
				return
			}
			filter.ProductIDs = append(filter.ProductIDs, productID)
		}
	}

	summary, err := h.summarizer.Summarize(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
