package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/resilience"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testExecutor(t *testing.T, maxRetries uint64) *resilience.Executor {
	t.Helper()
	cfg := resilience.ClassConfig{
		Timeout:         time.Second,
		MaxRetries:      maxRetries,
		InitialBackoff:  time.Millisecond,
		BreakerFailures: 5,
		BreakerOpenFor:  200 * time.Millisecond,
	}
	return resilience.NewExecutor(testLogger(t), map[resilience.Class]resilience.ClassConfig{
		resilience.ClassSourceFetch: cfg,
		resilience.ClassCache:       cfg,
		resilience.ClassPersistence: cfg,
	})
}

// fakeTransactionRepo is an in-memory repos.TransactionRepo recording which
// methods were hit, so tests can assert the store was never touched.
type fakeTransactionRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*domain.Transaction
	calls []string

	failCreate error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{rows: make(map[uuid.UUID]*domain.Transaction)}
}

var _ repos.TransactionRepo = (*fakeTransactionRepo)(nil)

func (f *fakeTransactionRepo) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeTransactionRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Transaction) ([]*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	now := time.Now().UTC()
	for _, row := range in {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		cp := *row
		f.rows[row.ID] = &cp
	}
	return in, nil
}

func (f *fakeTransactionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByID")
	row, ok := f.rows[id]
	if !ok || row.Deleted() {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTransactionRepo) GetByCustomer(ctx context.Context, tx *gorm.DB, customerID string, opts repos.TransactionListOptions) ([]*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByCustomer")
	var out []*domain.Transaction
	for _, row := range f.rows {
		if row.Deleted() || row.CustomerID != customerID {
			continue
		}
		if opts.Category != nil && row.Category != *opts.Category {
			continue
		}
		if opts.StartDate != nil && row.TransactionDate.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && row.TransactionDate.After(*opts.EndDate) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out, nil
}

func (f *fakeTransactionRepo) GetByCustomerAndDateRange(ctx context.Context, tx *gorm.DB, customerID string, start, end time.Time) ([]*domain.Transaction, error) {
	return f.GetByCustomer(ctx, tx, customerID, repos.TransactionListOptions{StartDate: &start, EndDate: &end})
}

func (f *fakeTransactionRepo) GetByCustomerAndCategory(ctx context.Context, tx *gorm.DB, customerID string, category domain.Category) ([]*domain.Transaction, error) {
	return f.GetByCustomer(ctx, tx, customerID, repos.TransactionListOptions{Category: &category})
}

func (f *fakeTransactionRepo) GetAll(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAll")
	var out []*domain.Transaction
	for _, row := range f.rows {
		if row.Deleted() {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTransactionRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Update")
	existing, ok := f.rows[row.ID]
	if !ok || existing.Deleted() {
		return errs.NotFoundf("transaction %s", row.ID)
	}
	now := time.Now().UTC()
	row.UpdatedAt = &now
	cp := *row
	f.rows[row.ID] = &cp
	return nil
}

func (f *fakeTransactionRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SoftDelete")
	row, ok := f.rows[id]
	if !ok || row.Deleted() {
		return nil
	}
	row.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	row.DeletedBy = deletedBy
	return nil
}

func (f *fakeTransactionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Count")
	var n int64
	for _, row := range f.rows {
		if !row.Deleted() {
			n++
		}
	}
	return n, nil
}

func (f *fakeTransactionRepo) GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByIDUnscoped")
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTransactionRepo) GetAllUnscoped(ctx context.Context, tx *gorm.DB, page, pageSize int) ([]*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAllUnscoped")
	var out []*domain.Transaction
	for _, row := range f.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

// errorCache fails every operation, standing in for an unreachable backend.
type errorCache struct {
	err error
}

func (c *errorCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, c.err
}

func (c *errorCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.err
}

func (c *errorCache) Remove(ctx context.Context, keys ...string) error {
	return c.err
}

// corruptCache reports a hit on every key but hands back bytes no entry could
// ever decode from.
type corruptCache struct{}

func (c *corruptCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return []byte("{not-json"), true, nil
}

func (c *corruptCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *corruptCache) Remove(ctx context.Context, keys ...string) error {
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLogEntry
	failure error
}

var _ repos.AuditLogRepo = (*fakeAuditRepo)(nil)

func (f *fakeAuditRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.AuditLogEntry) ([]*domain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	f.entries = append(f.entries, rows...)
	return rows, nil
}

func (f *fakeAuditRepo) GetByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, entityType string) ([]*domain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.AuditLogEntry
	for _, e := range f.entries {
		if e.EntityID == entityID && e.EntityType == entityType {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PerformedAt.After(out[j].PerformedAt)
	})
	return out, nil
}

func (f *fakeAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeSource returns canned rows or a canned error and counts invocations.
type fakeSource struct {
	mu    sync.Mutex
	name  string
	rows  []*domain.Transaction
	err   error
	calls int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.Transaction, len(s.rows))
	for i, row := range s.rows {
		cp := *row
		out[i] = &cp
	}
	return out, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
