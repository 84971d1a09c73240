package domain

import "time"

type AuditAction string

const (
	AuditCreate  AuditAction = "CREATE"
	AuditUpdate  AuditAction = "UPDATE"
	AuditPayment AuditAction = "PAYMENT"
	AuditRefund  AuditAction = "REFUND"
)

type AuditLog struct {
	ID        int64       `json:"id" gorm:"primaryKey"`
	ClubID    string      `json:"club_id" gorm:"type:uuid;not null;index"`
	UserID    string      `json:"user_id" gorm:"not null"`
	Action    AuditAction `json:"action" gorm:"not null"`
	Entity    string      `json:"entity" gorm:"not null"`
	EntityID  string      `json:"entity_id" gorm:"not null"`
	Details   string      `json:"details" gorm:"type:text"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
