package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
)

// TransactionListOptions narrows and orders a customer transaction listing.
type TransactionListOptions struct {
	Category  *domain.Category
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortDesc  bool
	Page      int
	PageSize  int
}

// sortColumns whitelists user-suppliable sort fields.
var sortColumns = map[string]string{
	"transaction_date": "transaction_date",
	"amount":           "amount",
	"created_at":       "created_at",
	"merchant_name":    "merchant_name",
}

// TransactionRepo owns the canonical transaction records. Every query except
// the explicitly unscoped audit paths excludes soft-deleted rows.
type TransactionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.Transaction) ([]*domain.Transaction, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error)
	GetByCustomer(ctx context.Context, tx *gorm.DB, customerID string, opts TransactionListOptions) ([]*domain.Transaction, error)
	GetByCustomerAndDateRange(ctx context.Context, tx *gorm.DB, customerID string, start, end time.Time) ([]*domain.Transaction, error)
	GetByCustomerAndCategory(ctx context.Context, tx *gorm.DB, customerID string, category domain.Category) ([]*domain.Transaction, error)
	GetAll(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error)
	Update(ctx context.Context, tx *gorm.DB, row *domain.Transaction) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID, deletedBy string) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Unscoped views exist solely for audit and diagnostics.
	GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error)
	GetAllUnscoped(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error)
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return &transactionRepo{db: db, log: baseLog.With("repo", "TransactionRepo")}
}

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Transaction) ([]*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.Transaction{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *transactionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out domain.Transaction
	err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepo) GetByCustomer(ctx context.Context, tx *gorm.DB, customerID string, opts TransactionListOptions) ([]*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Transaction
	if customerID == "" {
		return out, nil
	}
	q := t.WithContext(ctx).Where("customer_id = ?", customerID)
	if opts.Category != nil {
		q = q.Where("category = ?", *opts.Category)
	}
	if opts.StartDate != nil {
		q = q.Where("transaction_date >= ?", *opts.StartDate)
	}
	if opts.EndDate != nil {
		q = q.Where("transaction_date <= ?", *opts.EndDate)
	}
	col, ok := sortColumns[opts.SortBy]
	if !ok {
		col = "transaction_date"
	}
	dir := " ASC"
	if opts.SortDesc || opts.SortBy == "" {
		dir = " DESC"
	}
	q = q.Order(col + dir)
	if opts.Page > 0 && opts.PageSize > 0 {
		q = q.Offset((opts.Page - 1) * opts.PageSize).Limit(opts.PageSize)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transactionRepo) GetByCustomerAndDateRange(ctx context.Context, tx *gorm.DB, customerID string, start, end time.Time) ([]*domain.Transaction, error) {
	return r.GetByCustomer(ctx, tx, customerID, TransactionListOptions{
		StartDate: &start,
		EndDate:   &end,
	})
}

func (r *transactionRepo) GetByCustomerAndCategory(ctx context.Context, tx *gorm.DB, customerID string, category domain.Category) ([]*domain.Transaction, error) {
	return r.GetByCustomer(ctx, tx, customerID, TransactionListOptions{
		Category: &category,
	})
}

func (r *transactionRepo) GetAll(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Transaction
	q := t.WithContext(ctx).Order("transaction_date DESC")
	if page > 0 && pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transactionRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.Transaction) error {
	t := tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row.UpdatedAt = &now
	res := t.WithContext(ctx).Model(&domain.Transaction{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
		"amount":           row.Amount,
		"currency":         row.Currency,
		"transaction_date": row.TransactionDate,
		"type":             row.Type,
		"category":         row.Category,
		"description":      row.Description,
		"merchant_name":    row.MerchantName,
		"status":           row.Status,
		"reference":        row.Reference,
		"updated_at":       row.UpdatedAt,
		"updated_by":       row.UpdatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFoundf("transaction %s", row.ID)
	}
	return nil
}

// SoftDelete is idempotent: deleting an already-deleted or absent row logs and
// returns nil, leaving the original deletion marker untouched.
func (r *transactionRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.Transaction
	err := t.WithContext(ctx).Unscoped().Where("id = ?", id).First(&row).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warn("soft delete of missing transaction", "transaction_id", id)
		return nil
	}
	if err != nil {
		return err
	}
	if row.Deleted() {
		r.log.Info("transaction already deleted", "transaction_id", id)
		return nil
	}
	return t.WithContext(ctx).Unscoped().
		Model(&domain.Transaction{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
		}).Error
}

func (r *transactionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).Model(&domain.Transaction{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *transactionRepo) GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out domain.Transaction
	err := t.WithContext(ctx).Unscoped().Where("id = ?", id).First(&out).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepo) GetAllUnscoped(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Transaction
	q := t.WithContext(ctx).Unscoped().Order("transaction_date DESC")
	if page > 0 && pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
