package app

import (
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/repos"
)

type Repos struct {
	Transaction repos.TransactionRepo
	AuditLog    repos.AuditLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Transaction: repos.NewTransactionRepo(db, log),
		AuditLog:    repos.NewAuditLogRepo(db, log),
	}
}
