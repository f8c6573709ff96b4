package app

import (
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/resilience"
	"github.com/ybotello/finstream-backend/internal/services"
	"github.com/ybotello/finstream-backend/internal/sources"
)

type Services struct {
	Audit       services.AuditService
	Transaction services.TransactionService
	Summary     services.SummaryService
	Aggregation services.AggregationService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	c cache.Cache,
	exec *resilience.Executor,
	registry *sources.Registry,
) Services {
	log.Info("Wiring services...")
	auditService := services.NewAuditService(db, log, reposet.AuditLog, exec)
	return Services{
		Audit:       auditService,
		Transaction: services.NewTransactionService(db, log, reposet.Transaction, auditService, exec, c),
		Summary:     services.NewSummaryService(db, log, reposet.Transaction, exec, c),
		Aggregation: services.NewAggregationService(db, log, registry, reposet.Transaction, auditService, exec, c),
	}
}
