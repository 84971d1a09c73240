package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"courtops/internal/domain"
	"courtops/internal/metrics"
	"courtops/internal/realtime"
)

// Service is the payment processor: it moves a booking's payment status
// and the cash-register ledger together. The primary path runs every
// store write inside one atomic unit; when the store reports a
// structural incompatibility the processor replays the same effect
// through the legacy path, one independent statement at a time.
type Service struct {
	store     Store
	registers registerResolver
	audit     auditRecorder
	events    eventPublisher
	waitlist  waitingListNotifier
	loggerf   func(format string, args ...interface{})
}

func NewService(
	store Store,
	registers registerResolver,
	audit auditRecorder,
	events eventPublisher,
	waitlist waitingListNotifier,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		store:     store,
		registers: registers,
		audit:     audit,
		events:    events,
		waitlist:  waitlist,
		loggerf:   loggerf,
	}
}

// ProcessPayment posts a payment against a booking: one INCOME ledger
// entry on today's register, recomputed paid/partial status, and a
// CONFIRMED scheduling status, all or nothing. actingUser defaults to
// the system sentinel when empty.
func (s *Service) ProcessPayment(ctx context.Context, clubID, bookingRef string, amount float64, method, actingUser string) (*PaymentResult, error) {
	if actingUser == "" {
		actingUser = domain.SystemUser
	}

	id, err := parseBookingRef(bookingRef)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	result, err := s.payAtomic(ctx, clubID, id, amount, method)
	switch {
	case err == nil:
		metrics.IncPayment("atomic", "ok")
	case errors.Is(err, ErrSchemaMismatch):
		// Structural failure only: domain errors never reach this arm.
		s.loggerf("level=warn msg=atomic payment path unavailable booking_id=%d err=%v", id, err)
		metrics.IncPayment("atomic", "schema_mismatch")

		result, err = s.payLegacy(ctx, clubID, id, amount, method)
		if err != nil {
			metrics.IncPayment("legacy", "error")
			return nil, err
		}
		metrics.IncPayment("legacy", "ok")
	case errors.Is(err, ErrBookingNotFound):
		return nil, err
	default:
		metrics.IncPayment("atomic", "error")
		return nil, err
	}

	s.recordPaymentSideEffects(ctx, clubID, actingUser, method, amount, result)
	return result, nil
}

func (s *Service) payAtomic(ctx context.Context, clubID string, id int64, amount float64, method string) (*PaymentResult, error) {
	// Register resolution stays outside the atomic unit: the resolver's
	// unique (club, date) constraint makes it idempotent, and keeping it
	// out avoids cross-resource lock contention. See DESIGN.md.
	register, err := s.registers.ResolveToday(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("resolve cash register: %w", err)
	}

	var result *PaymentResult
	err = s.store.Atomic(ctx, func(tx Store) error {
		booking, err := tx.FindBookingForPayment(ctx, clubID, id)
		if err != nil {
			if isRecordNotFound(err) {
				return ErrBookingNotFound
			}
			return classifyStoreError(err)
		}

		previousPaid := paidTotal(booking.Transactions)
		totalCost := computeTotalCost(booking.Price, booking.Items)
		newTotalPaid := previousPaid + amount

		entry := s.newPaymentEntry(register.ID, booking, amount, method)
		if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
			return classifyStoreError(err)
		}

		status := computePaymentStatus(newTotalPaid, totalCost)
		updated, err := tx.UpdateBookingPaymentState(ctx, id, status, domain.BookingConfirmed)
		if err != nil {
			return classifyStoreError(err)
		}

		result = &PaymentResult{
			Status:      statusLabel(status),
			Booking:     updated,
			LedgerEntry: entry,
			TotalPaid:   newTotalPaid,
			TotalCost:   totalCost,
		}
		return nil
	})
	if err != nil {
		// The unit itself can surface a structural error (commit, BEGIN
		// against a missing relation) that never went through a step
		// classifier.
		if !errors.Is(err, ErrBookingNotFound) && !errors.Is(err, ErrSchemaMismatch) && isSchemaMismatch(err) {
			return nil, errors.Join(ErrSchemaMismatch, err)
		}
		return nil, err
	}
	return result, nil
}

// payLegacy mirrors payAtomic step for step, but every store call
// commits on its own. A crash mid-sequence can leave the ledger entry
// without the booking update; that partial persistence is the accepted
// price of this path, not something it tries to hide.
func (s *Service) payLegacy(ctx context.Context, clubID string, id int64, amount float64, method string) (*PaymentResult, error) {
	booking, err := s.store.FindBookingForPayment(ctx, clubID, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("legacy payment path: %w", err)
	}

	register, err := s.registers.ResolveToday(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("legacy payment path: resolve cash register: %w", err)
	}

	entry := s.newPaymentEntry(register.ID, booking, amount, method)
	if err := s.store.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("legacy payment path: insert ledger entry: %w", err)
	}

	totalCost := computeTotalCost(booking.Price, booking.Items)
	newTotalPaid := paidTotal(booking.Transactions) + amount
	status := computePaymentStatus(newTotalPaid, totalCost)

	updated, err := s.store.UpdateBookingPaymentState(ctx, id, status, domain.BookingConfirmed)
	if err != nil {
		return nil, fmt.Errorf("legacy payment path: update booking: %w", err)
	}

	return &PaymentResult{
		Status:      statusLabel(status),
		Booking:     updated,
		LedgerEntry: entry,
		TotalPaid:   newTotalPaid,
		TotalCost:   totalCost,
	}, nil
}

// CancelWithRefund cancels a booking and refunds everything paid so far
// as a single EXPENSE/REFUND ledger entry. A booking with no payments is
// still marked REFUNDED, matching how the front desk reads that state.
func (s *Service) CancelWithRefund(ctx context.Context, clubID, bookingRef, actingUser string) (*CancelResult, error) {
	if actingUser == "" {
		actingUser = domain.SystemUser
	}

	id, err := parseBookingRef(bookingRef)
	if err != nil {
		return nil, err
	}

	booking, err := s.store.FindBookingForPayment(ctx, clubID, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	totalPaid, err := s.store.SumIncomeForBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum booking income: %w", err)
	}

	var updated *domain.Booking
	if totalPaid > 0 {
		register, err := s.registers.ResolveToday(ctx, clubID)
		if err != nil {
			return nil, fmt.Errorf("resolve cash register: %w", err)
		}

		err = s.store.Atomic(ctx, func(tx Store) error {
			entry := &domain.Transaction{
				CashRegisterID: register.ID,
				BookingID:      &id,
				ClientID:       booking.ClientID,
				Type:           domain.TransactionExpense,
				Category:       domain.CategoryRefund,
				Amount:         totalPaid,
				Method:         domain.MethodCash,
				Description:    fmt.Sprintf("Refund booking #%d", id),
			}
			if err := tx.InsertLedgerEntry(ctx, entry); err != nil {
				return err
			}
			if err := tx.RestoreItemStock(ctx, booking.Items); err != nil {
				return err
			}
			updated, err = tx.UpdateBookingPaymentState(ctx, id, domain.PaymentRefunded, domain.BookingCanceled)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("cancel with refund: %w", err)
		}
		metrics.IncRefund()
	} else {
		if err := s.store.RestoreItemStock(ctx, booking.Items); err != nil {
			return nil, fmt.Errorf("restore stock: %w", err)
		}
		updated, err = s.store.UpdateBookingPaymentState(ctx, id, domain.PaymentRefunded, domain.BookingCanceled)
		if err != nil {
			return nil, fmt.Errorf("cancel booking: %w", err)
		}
	}

	s.recordAudit(ctx, clubID, actingUser, domain.AuditRefund, id, map[string]interface{}{
		"refunded": totalPaid,
	})

	// Best-effort: a freed slot is worth a ping, never worth failing the
	// cancellation over.
	if s.waitlist != nil {
		if err := s.waitlist.NotifySlotFreed(ctx, clubID, booking.CourtID, booking.StartTime); err != nil {
			s.loggerf("level=error msg=waiting list notify failed booking_id=%d err=%v", id, err)
		}
	}
	if s.events != nil {
		s.events.Publish(clubID, realtime.Event{
			Type: "booking-removed",
			Payload: map[string]interface{}{
				"booking_id": id,
				"court_id":   booking.CourtID,
				"start_time": booking.StartTime,
			},
		})
	}

	return &CancelResult{Refunded: totalPaid, Booking: updated}, nil
}

func (s *Service) newPaymentEntry(registerID int64, booking *domain.Booking, amount float64, method string) *domain.Transaction {
	return &domain.Transaction{
		CashRegisterID: registerID,
		BookingID:      &booking.ID,
		ClientID:       booking.ClientID,
		Type:           domain.TransactionIncome,
		Category:       domain.CategoryBookingPayment,
		Amount:         amount,
		Method:         domain.PaymentMethod(method),
		Description:    fmt.Sprintf("Booking #%d payment", booking.ID),
	}
}

func (s *Service) recordPaymentSideEffects(ctx context.Context, clubID, actingUser, method string, amount float64, result *PaymentResult) {
	s.recordAudit(ctx, clubID, actingUser, domain.AuditPayment, result.Booking.ID, map[string]interface{}{
		"amount": amount,
		"method": method,
		"status": result.Status,
	})

	if s.events != nil {
		s.events.Publish(clubID, realtime.Event{
			Type: "booking-update",
			Payload: map[string]interface{}{
				"booking_id":     result.Booking.ID,
				"payment_status": result.Booking.PaymentStatus,
			},
		})
	}
}

func (s *Service) recordAudit(ctx context.Context, clubID, actingUser string, action domain.AuditAction, bookingID int64, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(details)
	entry := &domain.AuditLog{
		ClubID:   clubID,
		UserID:   actingUser,
		Action:   action,
		Entity:   "BOOKING",
		EntityID: strconv.FormatInt(bookingID, 10),
		Details:  string(raw),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.loggerf("level=error msg=audit record failed booking_id=%d err=%v", bookingID, err)
	}
}

func parseBookingRef(ref string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidIdentifier
	}
	return id, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func statusLabel(status domain.PaymentStatus) string {
	if status == domain.PaymentPaid {
		return "paid"
	}
	return "partial"
}
