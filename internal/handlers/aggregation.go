package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ybotello/finstream-backend/internal/services"
)

type AggregationHandler struct {
	aggregationService services.AggregationService
}

func NewAggregationHandler(aggregationService services.AggregationService) *AggregationHandler {
	return &AggregationHandler{aggregationService: aggregationService}
}

func (h *AggregationHandler) Trigger(c *gin.Context) {
	if err := h.aggregationService.Aggregate(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "completed"})
}
