package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/resilience"
)

// SummaryService computes the derived per-customer aggregates. Results are
// cache-aside copies; they are rebuilt from the repository on every miss and
// never mutated after construction.
type SummaryService interface {
	ComputeTransactionSummary(ctx context.Context, customerID string, start, end time.Time) (*domain.TransactionSummary, error)
	ComputeCustomerSummary(ctx context.Context, customerID string) (*domain.CustomerSummary, error)
}

type summaryService struct {
	cacheOps
	db     *gorm.DB
	txRepo repos.TransactionRepo
}

func NewSummaryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRepo repos.TransactionRepo,
	exec *resilience.Executor,
	c cache.Cache,
) SummaryService {
	serviceLog := baseLog.With("service", "SummaryService")
	return &summaryService{
		cacheOps: cacheOps{log: serviceLog, exec: exec, cache: c},
		db:       db,
		txRepo:   txRepo,
	}
}

func (s *summaryService) ComputeTransactionSummary(ctx context.Context, customerID string, start, end time.Time) (*domain.TransactionSummary, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}
	if start.After(end) {
		return nil, errs.Invalidf("start date after end date")
	}

	key := cache.TransactionSummaryKey(customerID, start, end)
	var cached domain.TransactionSummary
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.GetByCustomerAndDateRange(ctx, s.db, customerID, start, end)
	})
	if err != nil {
		return nil, err
	}

	summary := buildTransactionSummary(customerID, start, end, rows)
	s.store(ctx, key, summary, cache.TTLDateSummary)
	return summary, nil
}

func (s *summaryService) ComputeCustomerSummary(ctx context.Context, customerID string) (*domain.CustomerSummary, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}

	key := cache.CustomerSummaryKey(customerID)
	var cached domain.CustomerSummary
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.GetByCustomer(ctx, s.db, customerID, repos.TransactionListOptions{})
	})
	if err != nil {
		return nil, err
	}

	summary := buildCustomerSummary(customerID, rows)
	s.store(ctx, key, summary, cache.TTLCustomerSummary)
	return summary, nil
}

var oneHundred = decimal.NewFromInt(100)

func buildTransactionSummary(customerID string, start, end time.Time, rows []*domain.Transaction) *domain.TransactionSummary {
	income := decimal.Zero
	expenses := decimal.Zero

	type categoryAgg struct {
		total decimal.Decimal
		count int
	}
	aggs := make(map[domain.Category]*categoryAgg)
	var order []domain.Category

	for _, row := range rows {
		if row.Status != domain.StatusCompleted {
			continue
		}
		switch row.Type {
		case domain.TypeCredit:
			income = income.Add(row.Amount)
		case domain.TypeDebit:
			expenses = expenses.Add(row.Amount)
		}
		agg, ok := aggs[row.Category]
		if !ok {
			agg = &categoryAgg{total: decimal.Zero}
			aggs[row.Category] = agg
			order = append(order, row.Category)
		}
		agg.total = agg.total.Add(row.Amount)
		agg.count++
	}

	grandTotal := decimal.Zero
	for _, c := range order {
		grandTotal = grandTotal.Add(aggs[c].total)
	}

	categories := make([]domain.CategorySummary, 0, len(order))
	for _, c := range order {
		agg := aggs[c]
		pct := decimal.Zero
		if grandTotal.IsPositive() {
			pct = agg.total.Div(grandTotal).Mul(oneHundred).Round(2)
		}
		categories = append(categories, domain.CategorySummary{
			Category:         c,
			TotalAmount:      agg.total,
			TransactionCount: agg.count,
			Percentage:       pct,
		})
	}
	// Descending by total; ties keep first-seen order.
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].TotalAmount.GreaterThan(categories[j].TotalAmount)
	})

	return &domain.TransactionSummary{
		CustomerID:       customerID,
		StartDate:        start,
		EndDate:          end,
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetAmount:        income.Sub(expenses),
		TransactionCount: len(rows),
		Categories:       categories,
	}
}

func buildCustomerSummary(customerID string, rows []*domain.Transaction) *domain.CustomerSummary {
	accounts := make(map[string]struct{})
	balance := decimal.Zero
	var last *time.Time

	for _, row := range rows {
		accounts[row.AccountID] = struct{}{}
		if row.Status == domain.StatusCompleted {
			switch row.Type {
			case domain.TypeCredit:
				balance = balance.Add(row.Amount)
			case domain.TypeDebit:
				balance = balance.Sub(row.Amount)
			}
		}
		if last == nil || row.TransactionDate.After(*last) {
			d := row.TransactionDate
			last = &d
		}
	}

	return &domain.CustomerSummary{
		CustomerID:          customerID,
		AccountCount:        len(accounts),
		Balance:             balance,
		TransactionCount:    len(rows),
		LastTransactionDate: last,
	}
}
