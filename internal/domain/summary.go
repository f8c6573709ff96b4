package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorySummary is one row of a transaction summary's category breakdown.
type CategorySummary struct {
	Category         Category        `json:"category"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// TransactionSummary is computed per customer and date window; it is never
// persisted and never mutated once built.
type TransactionSummary struct {
	CustomerID       string            `json:"customer_id"`
	StartDate        time.Time         `json:"start_date"`
	EndDate          time.Time         `json:"end_date"`
	TotalIncome      decimal.Decimal   `json:"total_income"`
	TotalExpenses    decimal.Decimal   `json:"total_expenses"`
	NetAmount        decimal.Decimal   `json:"net_amount"`
	TransactionCount int               `json:"transaction_count"`
	Categories       []CategorySummary `json:"categories"`
}

type CustomerSummary struct {
	CustomerID          string          `json:"customer_id"`
	AccountCount        int             `json:"account_count"`
	Balance             decimal.Decimal `json:"balance"`
	TransactionCount    int             `json:"transaction_count"`
	LastTransactionDate *time.Time      `json:"last_transaction_date,omitempty"`
}
