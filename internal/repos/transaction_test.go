package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/repos/testutil"
)

func TestTransactionRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	row := &domain.Transaction{
		CustomerID:      "cust-1",
		AccountID:       "acc-1",
		Amount:          decimal.RequireFromString("42.50"),
		Currency:        "USD",
		TransactionDate: time.Now().UTC(),
		Type:            domain.TypeDebit,
		Category:        domain.CategoryGroceries,
		Status:          domain.StatusCompleted,
		SourceSystem:    "test",
	}
	created, err := repo.Create(ctx, tx, []*domain.Transaction{row})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created[0].ID == uuid.Nil {
		t.Fatal("Create: expected assigned id")
	}
	if created[0].CreatedAt.IsZero() {
		t.Fatal("Create: expected assigned created_at")
	}
	if created[0].UpdatedAt != nil {
		t.Fatal("Create: fresh row must have no updated_at")
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByID: got %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("GetByID: amount %s", got.Amount)
	}

	if missing, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: got %+v err %v", missing, err)
	}
}

func TestTransactionRepoSoftDeleteInvisibility(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	kept := testutil.SeedTransaction(t, ctx, tx, "cust-sd")
	doomed := testutil.SeedTransaction(t, ctx, tx, "cust-sd")

	if err := repo.SoftDelete(ctx, tx, doomed.ID, "tester"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	rows, err := repo.GetByCustomer(ctx, tx, "cust-sd", TransactionListOptions{})
	if err != nil {
		t.Fatalf("GetByCustomer: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != kept.ID {
		t.Fatalf("GetByCustomer: deleted row leaked; got %d rows", len(rows))
	}

	if got, err := repo.GetByID(ctx, tx, doomed.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got %+v err %v", got, err)
	}

	n, err := repo.Count(ctx, tx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count: expected 1, got %d", n)
	}

	unscoped, err := repo.GetByIDUnscoped(ctx, tx, doomed.ID)
	if err != nil {
		t.Fatalf("GetByIDUnscoped: %v", err)
	}
	if unscoped == nil || !unscoped.Deleted() {
		t.Fatalf("GetByIDUnscoped: expected deleted row, got %+v", unscoped)
	}
	if unscoped.DeletedBy != "tester" {
		t.Fatalf("GetByIDUnscoped: deleted_by = %q", unscoped.DeletedBy)
	}
}

func TestTransactionRepoSoftDeleteIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	row := testutil.SeedTransaction(t, ctx, tx, "cust-idem")

	if err := repo.SoftDelete(ctx, tx, row.ID, "first"); err != nil {
		t.Fatalf("first SoftDelete: %v", err)
	}
	after1, err := repo.GetByIDUnscoped(ctx, tx, row.ID)
	if err != nil {
		t.Fatalf("GetByIDUnscoped: %v", err)
	}

	if err := repo.SoftDelete(ctx, tx, row.ID, "second"); err != nil {
		t.Fatalf("second SoftDelete must not error: %v", err)
	}
	after2, err := repo.GetByIDUnscoped(ctx, tx, row.ID)
	if err != nil {
		t.Fatalf("GetByIDUnscoped: %v", err)
	}
	if after2.DeletedBy != "first" {
		t.Fatalf("second delete overwrote actor: %q", after2.DeletedBy)
	}
	if !after2.DeletedAt.Time.Equal(after1.DeletedAt.Time) {
		t.Fatalf("second delete changed timestamp: %v vs %v", after2.DeletedAt.Time, after1.DeletedAt.Time)
	}

	// Absent ids no-op as well.
	if err := repo.SoftDelete(ctx, tx, uuid.New(), "ghost"); err != nil {
		t.Fatalf("SoftDelete of missing id must not error: %v", err)
	}
}

func TestTransactionRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	row := testutil.SeedTransaction(t, ctx, tx, "cust-upd")
	row.Description = "updated"
	row.UpdatedBy = "tester"
	if err := repo.Update(ctx, tx, row); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, row.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Description != "updated" || got.UpdatedAt == nil {
		t.Fatalf("Update not applied: %+v", got)
	}

	ghost := &domain.Transaction{ID: uuid.New(), Amount: decimal.NewFromInt(1), Currency: "USD"}
	if err := repo.Update(ctx, tx, ghost); !errs.Is(err, errs.ErrNotFound) {
		t.Fatalf("Update of missing id: expected not found, got %v", err)
	}

	// A soft-deleted row is gone from the update path too.
	if err := repo.SoftDelete(ctx, tx, row.ID, "tester"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := repo.Update(ctx, tx, row); !errs.Is(err, errs.ErrNotFound) {
		t.Fatalf("Update of deleted row: expected not found, got %v", err)
	}
}

func TestTransactionRepoGetAll(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	oldest := testutil.SeedTransaction(t, ctx, tx, "cust-a", func(r *domain.Transaction) {
		r.TransactionDate = base
	})
	newest := testutil.SeedTransaction(t, ctx, tx, "cust-b", func(r *domain.Transaction) {
		r.TransactionDate = base.AddDate(0, 0, 2)
	})
	doomed := testutil.SeedTransaction(t, ctx, tx, "cust-c", func(r *domain.Transaction) {
		r.TransactionDate = base.AddDate(0, 0, 1)
	})
	if err := repo.SoftDelete(ctx, tx, doomed.ID, "tester"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	all, err := repo.GetAll(ctx, tx, 0, 0)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAll: deleted row leaked; got %d rows", len(all))
	}
	if all[0].ID != newest.ID || all[1].ID != oldest.ID {
		t.Fatalf("GetAll: wrong order; got %s, %s", all[0].ID, all[1].ID)
	}

	page2, err := repo.GetAll(ctx, tx, 2, 1)
	if err != nil {
		t.Fatalf("GetAll paged: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != oldest.ID {
		t.Fatalf("GetAll page 2: got %d rows", len(page2))
	}

	unscoped, err := repo.GetAllUnscoped(ctx, tx, 0, 0)
	if err != nil {
		t.Fatalf("GetAllUnscoped: %v", err)
	}
	if len(unscoped) != 3 {
		t.Fatalf("GetAllUnscoped: expected 3 rows, got %d", len(unscoped))
	}
	deletedSeen := false
	for _, row := range unscoped {
		if row.ID == doomed.ID && row.Deleted() {
			deletedSeen = true
		}
	}
	if !deletedSeen {
		t.Fatal("GetAllUnscoped: deleted row missing from audit view")
	}
}

func TestTransactionRepoFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTransactionRepo(db, testutil.Logger(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testutil.SeedTransaction(t, ctx, tx, "cust-f", func(r *domain.Transaction) {
		r.TransactionDate = base
		r.Category = domain.CategoryGroceries
	})
	testutil.SeedTransaction(t, ctx, tx, "cust-f", func(r *domain.Transaction) {
		r.TransactionDate = base.AddDate(0, 0, 10)
		r.Category = domain.CategoryDining
	})
	testutil.SeedTransaction(t, ctx, tx, "other-cust", func(r *domain.Transaction) {
		r.TransactionDate = base
		r.Category = domain.CategoryGroceries
	})

	byRange, err := repo.GetByCustomerAndDateRange(ctx, tx, "cust-f", base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetByCustomerAndDateRange: %v", err)
	}
	if len(byRange) != 1 || !byRange[0].TransactionDate.Equal(base) {
		t.Fatalf("GetByCustomerAndDateRange: got %d rows", len(byRange))
	}

	byCat, err := repo.GetByCustomerAndCategory(ctx, tx, "cust-f", domain.CategoryDining)
	if err != nil {
		t.Fatalf("GetByCustomerAndCategory: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Category != domain.CategoryDining {
		t.Fatalf("GetByCustomerAndCategory: got %d rows", len(byCat))
	}

	paged, err := repo.GetByCustomer(ctx, tx, "cust-f", TransactionListOptions{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("GetByCustomer paged: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("GetByCustomer paged: got %d rows", len(paged))
	}
}
