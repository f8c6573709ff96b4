package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/resilience"
)

type CreateTransactionInput struct {
	CustomerID      string
	AccountID       string
	Amount          decimal.Decimal
	Currency        string
	TransactionDate time.Time
	Type            domain.TransactionType
	Category        domain.Category
	Description     string
	MerchantName    string
	Status          domain.TransactionStatus
	SourceSystem    string
	Reference       *string
	CreatedBy       string
}

type UpdateTransactionInput struct {
	Amount          *decimal.Decimal
	Currency        *string
	TransactionDate *time.Time
	Type            *domain.TransactionType
	Category        *domain.Category
	Description     *string
	MerchantName    *string
	Status          *domain.TransactionStatus
	Reference       *string
	UpdatedBy       string
}

type TransactionService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByCustomer(ctx context.Context, customerID string, opts repos.TransactionListOptions) ([]*domain.Transaction, error)
	GetByCustomerAndDateRange(ctx context.Context, customerID string, start, end time.Time) ([]*domain.Transaction, error)
	GetByCustomerAndCategory(ctx context.Context, customerID string, category domain.Category) ([]*domain.Transaction, error)
	Create(ctx context.Context, in CreateTransactionInput, origin *RequestOrigin) (*domain.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTransactionInput, origin *RequestOrigin) (*domain.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID, deletedBy string, origin *RequestOrigin) error
}

type transactionService struct {
	cacheOps
	db      *gorm.DB
	txRepo  repos.TransactionRepo
	auditor AuditService
}

func NewTransactionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRepo repos.TransactionRepo,
	auditor AuditService,
	exec *resilience.Executor,
	c cache.Cache,
) TransactionService {
	serviceLog := baseLog.With("service", "TransactionService")
	return &transactionService{
		cacheOps: cacheOps{log: serviceLog, exec: exec, cache: c},
		db:       db,
		txRepo:   txRepo,
		auditor:  auditor,
	}
}

func (s *transactionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	if id == uuid.Nil {
		return nil, errs.Invalidf("transaction id required")
	}
	key := cache.TransactionKey(id)
	var cached domain.Transaction
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	row, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) (*domain.Transaction, error) {
		return s.txRepo.GetByID(ctx, s.db, id)
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errs.NotFoundf("transaction %s", id)
	}
	s.store(ctx, key, row, cache.TTLTransaction)
	return row, nil
}

func (s *transactionService) GetByCustomer(ctx context.Context, customerID string, opts repos.TransactionListOptions) ([]*domain.Transaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.StartDate.After(*opts.EndDate) {
		return nil, errs.Invalidf("start date after end date")
	}

	// Only the unfiltered, unpaged listing has a stable cache shape.
	plain := opts.Category == nil && opts.StartDate == nil && opts.EndDate == nil &&
		opts.Page == 0 && opts.PageSize == 0 && opts.SortBy == ""
	key := cache.CustomerTransactionsKey(customerID)
	if plain {
		var cached []*domain.Transaction
		if s.lookup(ctx, key, &cached) {
			return cached, nil
		}
	}

	rows, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.GetByCustomer(ctx, s.db, customerID, opts)
	})
	if err != nil {
		return nil, err
	}
	if plain {
		s.store(ctx, key, rows, cache.TTLCustomerList)
	}
	return rows, nil
}

func (s *transactionService) GetByCustomerAndDateRange(ctx context.Context, customerID string, start, end time.Time) ([]*domain.Transaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}
	if start.After(end) {
		return nil, errs.Invalidf("start date after end date")
	}
	return resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.GetByCustomerAndDateRange(ctx, s.db, customerID, start, end)
	})
}

func (s *transactionService) GetByCustomerAndCategory(ctx context.Context, customerID string, category domain.Category) ([]*domain.Transaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}
	parsed, ok := domain.ParseCategory(string(category))
	if !ok {
		return nil, errs.Invalidf("unknown category %q", category)
	}
	key := cache.CustomerCategoryKey(customerID, parsed)
	var cached []*domain.Transaction
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.GetByCustomerAndCategory(ctx, s.db, customerID, parsed)
	})
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows, cache.TTLCategoryList)
	return rows, nil
}

func (s *transactionService) Create(ctx context.Context, in CreateTransactionInput, origin *RequestOrigin) (*domain.Transaction, error) {
	row, err := buildTransaction(in)
	if err != nil {
		return nil, err
	}
	created, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
		return s.txRepo.Create(ctx, s.db, []*domain.Transaction{row})
	})
	if err != nil {
		return nil, err
	}
	out := created[0]

	s.auditor.Log(out.ID, domain.EntityTypeTransaction, domain.AuditActionCreate, nil, out, in.CreatedBy, origin)
	s.invalidate(ctx,
		cache.CustomerTransactionsKey(out.CustomerID),
		cache.CustomerSummaryKey(out.CustomerID),
	)
	return out, nil
}

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, in UpdateTransactionInput, origin *RequestOrigin) (*domain.Transaction, error) {
	if id == uuid.Nil {
		return nil, errs.Invalidf("transaction id required")
	}
	existing, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) (*domain.Transaction, error) {
		return s.txRepo.GetByID(ctx, s.db, id)
	})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFoundf("transaction %s", id)
	}

	before := *existing
	updated, err := applyUpdate(existing, in)
	if err != nil {
		return nil, err
	}
	if err := s.exec.Execute(ctx, resilience.ClassPersistence, func(ctx context.Context) error {
		return s.txRepo.Update(ctx, s.db, updated)
	}); err != nil {
		return nil, err
	}

	s.auditor.Log(id, domain.EntityTypeTransaction, domain.AuditActionUpdate, &before, updated, in.UpdatedBy, origin)
	s.invalidate(ctx,
		cache.TransactionKey(id),
		cache.CustomerTransactionsKey(updated.CustomerID),
		cache.CustomerSummaryKey(updated.CustomerID),
	)
	return updated, nil
}

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID, deletedBy string, origin *RequestOrigin) error {
	if id == uuid.Nil {
		return errs.Invalidf("transaction id required")
	}
	existing, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) (*domain.Transaction, error) {
		return s.txRepo.GetByID(ctx, s.db, id)
	})
	if err != nil {
		return err
	}
	if err := s.exec.Execute(ctx, resilience.ClassPersistence, func(ctx context.Context) error {
		return s.txRepo.SoftDelete(ctx, s.db, id, deletedBy)
	}); err != nil {
		return err
	}
	// Absent or already-deleted rows no-op without an audit entry.
	if existing == nil {
		return nil
	}
	s.auditor.Log(id, domain.EntityTypeTransaction, domain.AuditActionDelete, existing, nil, deletedBy, origin)
	s.invalidate(ctx,
		cache.TransactionKey(id),
		cache.CustomerTransactionsKey(existing.CustomerID),
		cache.CustomerSummaryKey(existing.CustomerID),
	)
	return nil
}

func buildTransaction(in CreateTransactionInput) (*domain.Transaction, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, errs.Invalidf("customer id required")
	}
	if strings.TrimSpace(in.AccountID) == "" {
		return nil, errs.Invalidf("account id required")
	}
	if in.Amount.IsNegative() {
		return nil, errs.Invalidf("amount must not be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, errs.Invalidf("currency must be a 3-letter ISO code")
	}
	switch in.Type {
	case domain.TypeDebit, domain.TypeCredit:
	default:
		return nil, errs.Invalidf("type must be DEBIT or CREDIT")
	}
	category := in.Category
	if category == "" {
		category = domain.CategoryUnknown
	} else if parsed, ok := domain.ParseCategory(string(category)); ok {
		category = parsed
	} else {
		return nil, errs.Invalidf("unknown category %q", in.Category)
	}
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	switch status {
	case domain.StatusPending, domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled:
	default:
		return nil, errs.Invalidf("unknown status %q", in.Status)
	}
	txDate := in.TransactionDate
	if txDate.IsZero() {
		txDate = time.Now().UTC()
	}
	return &domain.Transaction{
		ID:              uuid.New(),
		CustomerID:      strings.TrimSpace(in.CustomerID),
		AccountID:       strings.TrimSpace(in.AccountID),
		Amount:          in.Amount.Round(2),
		Currency:        currency,
		TransactionDate: txDate,
		Type:            in.Type,
		Category:        category,
		Description:     in.Description,
		MerchantName:    in.MerchantName,
		Status:          status,
		SourceSystem:    in.SourceSystem,
		Reference:       in.Reference,
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       in.CreatedBy,
	}, nil
}

func applyUpdate(row *domain.Transaction, in UpdateTransactionInput) (*domain.Transaction, error) {
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, errs.Invalidf("amount must not be negative")
		}
		row.Amount = in.Amount.Round(2)
	}
	if in.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if len(currency) != 3 {
			return nil, errs.Invalidf("currency must be a 3-letter ISO code")
		}
		row.Currency = currency
	}
	if in.TransactionDate != nil {
		row.TransactionDate = *in.TransactionDate
	}
	if in.Type != nil {
		switch *in.Type {
		case domain.TypeDebit, domain.TypeCredit:
			row.Type = *in.Type
		default:
			return nil, errs.Invalidf("type must be DEBIT or CREDIT")
		}
	}
	if in.Category != nil {
		parsed, ok := domain.ParseCategory(string(*in.Category))
		if !ok {
			return nil, errs.Invalidf("unknown category %q", *in.Category)
		}
		row.Category = parsed
	}
	if in.Description != nil {
		row.Description = *in.Description
	}
	if in.MerchantName != nil {
		row.MerchantName = *in.MerchantName
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.StatusPending, domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled:
			row.Status = *in.Status
		default:
			return nil, errs.Invalidf("unknown status %q", *in.Status)
		}
	}
	if in.Reference != nil {
		row.Reference = in.Reference
	}
	row.UpdatedBy = in.UpdatedBy
	return row, nil
}
