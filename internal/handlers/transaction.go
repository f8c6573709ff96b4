package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/services"
)

const dateLayout = "2006-01-02"

type TransactionHandler struct {
	txService    services.TransactionService
	auditService services.AuditService
}

func NewTransactionHandler(txService services.TransactionService, auditService services.AuditService) *TransactionHandler {
	return &TransactionHandler{txService: txService, auditService: auditService}
}

func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, errs.Invalidf("invalid transaction id"))
		return
	}
	row, err := h.txService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"transaction": row})
}

func (h *TransactionHandler) ListByCustomer(c *gin.Context) {
	customerID := c.Param("customerId")

	opts := repos.TransactionListOptions{
		SortBy:   c.Query("sortBy"),
		SortDesc: c.Query("sortDir") != "asc",
	}
	if v := c.Query("category"); v != "" {
		cat := domain.Category(v)
		opts.Category = &cat
	}
	if v := c.Query("startDate"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			RespondError(c, errs.Invalidf("invalid startDate"))
			return
		}
		opts.StartDate = &d
	}
	if v := c.Query("endDate"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			RespondError(c, errs.Invalidf("invalid endDate"))
			return
		}
		end := d.Add(24*time.Hour - time.Nanosecond)
		opts.EndDate = &end
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Page = n
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.PageSize = n
		}
	}

	rows, err := h.txService.GetByCustomer(c.Request.Context(), customerID, opts)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"transactions": rows, "count": len(rows)})
}

type createTransactionRequest struct {
	CustomerID      string          `json:"customer_id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionDate time.Time       `json:"transaction_date"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	MerchantName    string          `json:"merchant_name"`
	Status          string          `json:"status"`
	SourceSystem    string          `json:"source_system"`
	Reference       *string         `json:"reference"`
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errs.Invalidf("invalid request body: %v", err))
		return
	}
	row, err := h.txService.Create(c.Request.Context(), services.CreateTransactionInput{
		CustomerID:      req.CustomerID,
		AccountID:       req.AccountID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		TransactionDate: req.TransactionDate,
		Type:            domain.TransactionType(req.Type),
		Category:        domain.Category(req.Category),
		Description:     req.Description,
		MerchantName:    req.MerchantName,
		Status:          domain.TransactionStatus(req.Status),
		SourceSystem:    req.SourceSystem,
		Reference:       req.Reference,
		CreatedBy:       performer(c),
	}, originFrom(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": row})
}

type updateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Currency        *string          `json:"currency"`
	TransactionDate *time.Time       `json:"transaction_date"`
	Type            *string          `json:"type"`
	Category        *string          `json:"category"`
	Description     *string          `json:"description"`
	MerchantName    *string          `json:"merchant_name"`
	Status          *string          `json:"status"`
	Reference       *string          `json:"reference"`
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, errs.Invalidf("invalid transaction id"))
		return
	}
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errs.Invalidf("invalid request body: %v", err))
		return
	}
	in := services.UpdateTransactionInput{
		Amount:          req.Amount,
		Currency:        req.Currency,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
		MerchantName:    req.MerchantName,
		Reference:       req.Reference,
		UpdatedBy:       performer(c),
	}
	if req.Type != nil {
		t := domain.TransactionType(*req.Type)
		in.Type = &t
	}
	if req.Category != nil {
		cat := domain.Category(*req.Category)
		in.Category = &cat
	}
	if req.Status != nil {
		st := domain.TransactionStatus(*req.Status)
		in.Status = &st
	}
	row, err := h.txService.Update(c.Request.Context(), id, in, originFrom(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"transaction": row})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, errs.Invalidf("invalid transaction id"))
		return
	}
	if err := h.txService.Delete(c.Request.Context(), id, performer(c), originFrom(c)); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TransactionHandler) GetAuditHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, errs.Invalidf("invalid transaction id"))
		return
	}
	entries, err := h.auditService.ListFor(c.Request.Context(), id, domain.EntityTypeTransaction)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"audit_log": entries, "count": len(entries)})
}

func performer(c *gin.Context) string {
	if v := c.GetHeader("X-Performed-By"); v != "" {
		return v
	}
	return "api"
}

func originFrom(c *gin.Context) *services.RequestOrigin {
	return &services.RequestOrigin{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
