package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/services"
)

type SummaryHandler struct {
	summaryService services.SummaryService
}

func NewSummaryHandler(summaryService services.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetCustomerSummary serves both summary shapes: with a start/end pair it
// returns the date-scoped transaction summary, without one the customer
// rollup.
func (h *SummaryHandler) GetCustomerSummary(c *gin.Context) {
	customerID := c.Param("customerId")
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")

	if startStr == "" && endStr == "" {
		summary, err := h.summaryService.ComputeCustomerSummary(c.Request.Context(), customerID)
		if err != nil {
			RespondError(c, err)
			return
		}
		RespondOK(c, gin.H{"summary": summary})
		return
	}
	if startStr == "" || endStr == "" {
		RespondError(c, errs.Invalidf("startDate and endDate must be provided together"))
		return
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		RespondError(c, errs.Invalidf("invalid startDate"))
		return
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		RespondError(c, errs.Invalidf("invalid endDate"))
		return
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	summary, err := h.summaryService.ComputeTransactionSummary(c.Request.Context(), customerID, start, end)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}
