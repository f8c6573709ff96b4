package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

type Transaction struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      string            `gorm:"not null;index;column:customer_id" json:"customer_id"`
	AccountID       string            `gorm:"not null;index;column:account_id" json:"account_id"`
	Amount          decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"amount"`
	Currency        string            `gorm:"type:varchar(3);not null" json:"currency"`
	TransactionDate time.Time         `gorm:"not null;index" json:"transaction_date"`
	Type            TransactionType   `gorm:"type:varchar(10);not null" json:"type"`
	Category        Category          `gorm:"type:varchar(32);not null;index" json:"category"`
	Description     string            `gorm:"column:description" json:"description"`
	MerchantName    string            `gorm:"column:merchant_name" json:"merchant_name"`
	Status          TransactionStatus `gorm:"type:varchar(16);not null" json:"status"`
	SourceSystem    string            `gorm:"column:source_system" json:"source_system"`
	Reference       *string           `gorm:"column:reference" json:"reference,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	CreatedBy string         `gorm:"column:created_by" json:"created_by"`
	UpdatedAt *time.Time     `gorm:"autoUpdateTime:false;column:updated_at" json:"updated_at,omitempty"`
	UpdatedBy string         `gorm:"column:updated_by" json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy string         `gorm:"column:deleted_by" json:"deleted_by,omitempty"`
}

func (Transaction) TableName() string { return "transaction" }

// Deleted reports whether the row has been soft deleted. Standard queries never
// see such rows; only the unscoped audit paths do.
func (t *Transaction) Deleted() bool { return t.DeletedAt.Valid }
