package app

import (
	"github.com/ybotello/finstream-backend/internal/handlers"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
)

type Handlers struct {
	Transaction *handlers.TransactionHandler
	Summary     *handlers.SummaryHandler
	Aggregation *handlers.AggregationHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Transaction: handlers.NewTransactionHandler(serviceset.Transaction, serviceset.Audit),
		Summary:     handlers.NewSummaryHandler(serviceset.Summary),
		Aggregation: handlers.NewAggregationHandler(serviceset.Aggregation),
	}
}
