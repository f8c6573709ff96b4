package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/domain"
	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
	"github.com/ybotello/finstream-backend/internal/resilience"
	"github.com/ybotello/finstream-backend/internal/sources"
)

// AggregationService fans out to every registered source, persists whatever
// was fetched successfully, and reports the first source failure afterwards.
// It runs exactly once per call; scheduling is the caller's problem.
type AggregationService interface {
	Aggregate(ctx context.Context) error
}

type aggregationService struct {
	cacheOps
	db       *gorm.DB
	registry *sources.Registry
	txRepo   repos.TransactionRepo
	auditor  AuditService
}

func NewAggregationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	registry *sources.Registry,
	txRepo repos.TransactionRepo,
	auditor AuditService,
	exec *resilience.Executor,
	c cache.Cache,
) AggregationService {
	serviceLog := baseLog.With("service", "AggregationService")
	return &aggregationService{
		cacheOps: cacheOps{log: serviceLog, exec: exec, cache: c},
		db:       db,
		registry: registry,
		txRepo:   txRepo,
		auditor:  auditor,
	}
}

func (s *aggregationService) Aggregate(ctx context.Context) error {
	srcs := s.registry.All()
	batches := make([][]*domain.Transaction, len(srcs))
	fetchErrs := make([]error, len(srcs))

	// Sources are fetched concurrently and independently: one source's
	// failure never cancels the others, so the group functions always
	// return nil and capture their outcome by index.
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			rows, err := resilience.Do(gctx, s.exec, resilience.ClassSourceFetch, func(ctx context.Context) ([]*domain.Transaction, error) {
				return src.Fetch(ctx)
			})
			if err != nil {
				s.log.Error("source fetch failed", "source", src.Name(), "error", err)
				fetchErrs[i] = &errs.SourceError{Source: src.Name(), Err: err}
				return nil
			}
			s.log.Info("source fetch succeeded", "source", src.Name(), "count", len(rows))
			batches[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	var merged []*domain.Transaction
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	if len(merged) > 0 {
		created, err := resilience.Do(ctx, s.exec, resilience.ClassPersistence, func(ctx context.Context) ([]*domain.Transaction, error) {
			return s.txRepo.Create(ctx, s.db, merged)
		})
		if err != nil {
			return err
		}
		s.log.Info("aggregation batch persisted", "count", len(created))

		customers := make(map[string]struct{})
		for _, row := range created {
			s.auditor.Log(row.ID, domain.EntityTypeTransaction, domain.AuditActionCreate, nil, row, row.SourceSystem, nil)
			customers[row.CustomerID] = struct{}{}
		}
		for customerID := range customers {
			s.invalidate(ctx,
				cache.CustomerTransactionsKey(customerID),
				cache.CustomerSummaryKey(customerID),
			)
		}
	}

	// Healthy sources' data is already persisted; the aggregation as a whole
	// still reports the first failed source.
	for _, err := range fetchErrs {
		if err != nil {
			return err
		}
	}
	return nil
}
