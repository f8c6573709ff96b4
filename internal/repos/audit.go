package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/domain"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
)

type AuditLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.AuditLogEntry) ([]*domain.AuditLogEntry, error)
	// GetByEntity returns the entity's trail newest first.
	GetByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, entityType string) ([]*domain.AuditLogEntry, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.AuditLogEntry) ([]*domain.AuditLogEntry, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.AuditLogEntry{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.PerformedAt.IsZero() {
			row.PerformedAt = now
		}
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *auditLogRepo) GetByEntity(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, entityType string) ([]*domain.AuditLogEntry, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.AuditLogEntry
	if entityID == uuid.Nil || entityType == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("entity_id = ? AND entity_type = ?", entityID, entityType).
		Order("performed_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
