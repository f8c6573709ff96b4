package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ybotello/finstream-backend/internal/domain"
)

// TTL classes per result shape. Lists expire faster than point lookups;
// date-scoped summaries are the most expensive to recompute and live longest.
const (
	TTLTransaction     = 10 * time.Minute
	TTLCustomerList    = 5 * time.Minute
	TTLCategoryList    = 5 * time.Minute
	TTLCustomerSummary = 10 * time.Minute
	TTLDateSummary     = 15 * time.Minute
)

const dateKeyLayout = "20060102"

// Key formats are load-bearing: existing deployments invalidate against these
// exact shapes, so they must not drift.

func TransactionKey(id uuid.UUID) string {
	return fmt.Sprintf("transaction:%s", id)
}

func CustomerTransactionsKey(customerID string) string {
	return fmt.Sprintf("customer:%s:transactions", customerID)
}

func CustomerCategoryKey(customerID string, category domain.Category) string {
	return fmt.Sprintf("customer:%s:category:%s:transactions", customerID, category)
}

func CustomerSummaryKey(customerID string) string {
	return fmt.Sprintf("customer:%s:summary", customerID)
}

func TransactionSummaryKey(customerID string, start, end time.Time) string {
	return fmt.Sprintf("customer:%s:summary:%s:%s",
		customerID, start.Format(dateKeyLayout), end.Format(dateKeyLayout))
}
