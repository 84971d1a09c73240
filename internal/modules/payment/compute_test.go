package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"courtops/internal/domain"
)

func TestComputeTotalCost(t *testing.T) {
	items := []domain.BookingItem{
		{Quantity: 2, UnitPrice: 500},
		{Quantity: 1, UnitPrice: 250},
	}
	assert.Equal(t, 11250.0, computeTotalCost(10000, items))
	assert.Equal(t, 10000.0, computeTotalCost(10000, nil))
}

func TestComputePaymentStatus(t *testing.T) {
	assert.Equal(t, domain.PaymentPartial, computePaymentStatus(5000, 11000))
	assert.Equal(t, domain.PaymentPaid, computePaymentStatus(11000, 11000))
	// overpayment is accepted and simply marked paid
	assert.Equal(t, domain.PaymentPaid, computePaymentStatus(12000, 11000))
}

func TestPaidTotalNetsRefunds(t *testing.T) {
	txs := []domain.Transaction{
		{Type: domain.TransactionIncome, Amount: 1500},
		{Type: domain.TransactionIncome, Amount: 500},
		{Type: domain.TransactionExpense, Amount: 2000},
	}
	assert.Equal(t, 0.0, paidTotal(txs))
	assert.Equal(t, 0.0, paidTotal(nil))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, validateAmount(0.01))
	assert.ErrorIs(t, validateAmount(0), ErrInvalidAmount)
	assert.ErrorIs(t, validateAmount(-100), ErrInvalidAmount)
}

func TestParseBookingRef(t *testing.T) {
	id, err := parseBookingRef("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseBookingRef("abc")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = parseBookingRef("-1")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
