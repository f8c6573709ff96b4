package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/domain"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/resilience"
)

// RequestOrigin carries optional request provenance onto an audit entry.
type RequestOrigin struct {
	IPAddress string
	UserAgent string
}

// AuditService appends an immutable before/after record for every mutation.
// Log is fire-and-forget: it never blocks the caller and any failure is
// logged locally and swallowed.
type AuditService interface {
	Log(entityID uuid.UUID, entityType string, action domain.AuditAction, oldValue, newValue interface{}, performedBy string, origin *RequestOrigin)
	ListFor(ctx context.Context, entityID uuid.UUID, entityType string) ([]*domain.AuditLogEntry, error)
	// Flush waits for in-flight audit writes; used at shutdown and by tests.
	Flush()
}

type auditService struct {
	db        *gorm.DB
	log       *logger.Logger
	auditRepo repos.AuditLogRepo
	exec      *resilience.Executor
	wg        sync.WaitGroup
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, auditRepo repos.AuditLogRepo, exec *resilience.Executor) AuditService {
	return &auditService{
		db:        db,
		log:       baseLog.With("service", "AuditService"),
		auditRepo: auditRepo,
		exec:      exec,
	}
}

func (s *auditService) Log(entityID uuid.UUID, entityType string, action domain.AuditAction, oldValue, newValue interface{}, performedBy string, origin *RequestOrigin) {
	entry := &domain.AuditLogEntry{
		ID:          uuid.New(),
		EntityID:    entityID,
		EntityType:  entityType,
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
	}
	if origin != nil {
		entry.IPAddress = origin.IPAddress
		entry.UserAgent = origin.UserAgent
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			entry.OldValues = datatypes.JSON(raw)
		} else {
			s.log.Warn("audit old value not serializable", "entity_id", entityID, "error", err)
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			entry.NewValues = datatypes.JSON(raw)
		} else {
			s.log.Warn("audit new value not serializable", "entity_id", entityID, "error", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Detached from the request context so a finished request cannot
		// cancel the append.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		err := s.exec.Execute(ctx, resilience.ClassPersistence, func(ctx context.Context) error {
			_, err := s.auditRepo.Create(ctx, s.db, []*domain.AuditLogEntry{entry})
			return err
		})
		if err != nil {
			s.log.Error("audit append failed",
				"entity_id", entityID, "entity_type", entityType, "action", action, "error", err)
		}
	}()
}

func (s *auditService) ListFor(ctx context.Context, entityID uuid.UUID, entityType string) ([]*domain.AuditLogEntry, error) {
	return resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.AuditLogEntry, error) {
		return s.auditRepo.GetByEntity(ctx, s.db, entityID, entityType)
	})
}

func (s *auditService) Flush() {
	s.wg.Wait()
}
