package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

const EntityTypeTransaction = "transaction"

type AuditLogEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_entity" json:"entity_id"`
	EntityType  string         `gorm:"not null;index:idx_audit_entity" json:"entity_type"`
	Action      AuditAction    `gorm:"type:varchar(16);not null" json:"action"`
	PerformedBy string         `gorm:"column:performed_by" json:"performed_by"`
	PerformedAt time.Time      `gorm:"not null;index" json:"performed_at"`
	OldValues   datatypes.JSON `gorm:"column:old_values" json:"old_values,omitempty"`
	NewValues   datatypes.JSON `gorm:"column:new_values" json:"new_values,omitempty"`
	IPAddress   string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"column:user_agent" json:"user_agent,omitempty"`
}

func (AuditLogEntry) TableName() string { return "audit_log_entry" }
