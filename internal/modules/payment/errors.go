package payment

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrInvalidIdentifier is returned for a non-numeric booking
	// reference, before any store call is made.
	ErrInvalidIdentifier = errors.New("invalid booking identifier")

	// ErrInvalidAmount is returned for zero, negative or non-finite
	// payment amounts.
	ErrInvalidAmount = errors.New("invalid payment amount")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrSchemaMismatch signals a structural incompatibility in the
	// underlying store (missing relation, stale column, vanished row on
	// update). It is never surfaced to callers of ProcessPayment; it
	// switches the processor onto the legacy path.
	ErrSchemaMismatch = errors.New("storage schema mismatch")
)

// postgres error codes for undefined relations/columns.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// classifyStoreError maps raw store failures from the write steps onto
// the processor's taxonomy. A vanished row on update counts as
// structural: the atomic view saw a booking the schema can no longer
// address.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || isSchemaMismatch(err) {
		return errors.Join(ErrSchemaMismatch, err)
	}
	return err
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isSchemaMismatch(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable || pgErr.Code == pgUndefinedColumn
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}
