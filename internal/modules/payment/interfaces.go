package payment

import (
	"context"
	"time"

	"courtops/internal/domain"
	"courtops/internal/realtime"
)

// Store is the booking/ledger persistence surface the processor needs.
// Atomic hands the callback a tx-scoped Store: everything done through
// it commits or rolls back as one unit. Calls made on the outer Store
// commit independently, which is exactly what the legacy path wants.
type Store interface {
	Atomic(ctx context.Context, fn func(Store) error) error
	FindBookingForPayment(ctx context.Context, clubID string, id int64) (*domain.Booking, error)
	InsertLedgerEntry(ctx context.Context, entry *domain.Transaction) error
	UpdateBookingPaymentState(ctx context.Context, id int64, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error)
	SumIncomeForBooking(ctx context.Context, id int64) (float64, error)
	RestoreItemStock(ctx context.Context, items []domain.BookingItem) error
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

type waitingListNotifier interface {
	NotifySlotFreed(ctx context.Context, clubID string, courtID int64, start time.Time) error
}
