package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/domain"
)

// SeedTransaction inserts a completed credit for the customer; mutate the
// returned defaults through mutators.
func SeedTransaction(tb testing.TB, ctx context.Context, tx *gorm.DB, customerID string, mutators ...func(*domain.Transaction)) *domain.Transaction {
	tb.Helper()
	row := &domain.Transaction{
		ID:              uuid.New(),
		CustomerID:      customerID,
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(100),
		Currency:        "USD",
		TransactionDate: time.Now().UTC().Truncate(time.Second),
		Type:            domain.TypeCredit,
		Category:        domain.CategorySalary,
		Status:          domain.StatusCompleted,
		SourceSystem:    "seed",
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       "seed",
	}
	for _, m := range mutators {
		m(row)
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return row
}
