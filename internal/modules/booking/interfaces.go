package booking

import (
	"context"

	"courtops/internal/domain"
	"courtops/internal/realtime"
)

type clientResolver interface {
	FindOrCreate(ctx context.Context, clubID, name, phone string, email *string, isMember bool) (*domain.Client, error)
}

type registerResolver interface {
	ResolveToday(ctx context.Context, clubID string) (*domain.CashRegister, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type eventPublisher interface {
	Publish(clubID string, event realtime.Event) int
}
