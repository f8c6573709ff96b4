package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ybotello/finstream-backend/internal/domain"
	"github.com/ybotello/finstream-backend/internal/repos/testutil"
)

func TestAuditLogRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAuditLogRepo(db, testutil.Logger(t))

	entityID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	older := &domain.AuditLogEntry{
		EntityID:    entityID,
		EntityType:  domain.EntityTypeTransaction,
		Action:      domain.AuditActionCreate,
		PerformedBy: "tester",
		PerformedAt: now.Add(-time.Hour),
		NewValues:   datatypes.JSON([]byte(`{"status":"PENDING"}`)),
	}
	newer := &domain.AuditLogEntry{
		EntityID:    entityID,
		EntityType:  domain.EntityTypeTransaction,
		Action:      domain.AuditActionUpdate,
		PerformedBy: "tester",
		PerformedAt: now,
		OldValues:   datatypes.JSON([]byte(`{"status":"PENDING"}`)),
		NewValues:   datatypes.JSON([]byte(`{"status":"COMPLETED"}`)),
	}

	created, err := repo.Create(ctx, tx, []*domain.AuditLogEntry{older, newer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, row := range created {
		if row.ID == uuid.Nil {
			t.Fatal("Create: expected assigned id")
		}
	}

	rows, err := repo.GetByEntity(ctx, tx, entityID, domain.EntityTypeTransaction)
	if err != nil {
		t.Fatalf("GetByEntity: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("GetByEntity: expected 2, got %d", len(rows))
	}
	if rows[0].Action != domain.AuditActionUpdate {
		t.Fatalf("GetByEntity: expected newest first, got %s", rows[0].Action)
	}

	other, err := repo.GetByEntity(ctx, tx, uuid.New(), domain.EntityTypeTransaction)
	if err != nil {
		t.Fatalf("GetByEntity other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("GetByEntity other: expected none, got %d", len(other))
	}
}
