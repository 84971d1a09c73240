package payment

import "courtops/internal/domain"

type ProcessPaymentRequest struct {
	BookingID string  `json:"booking_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method" binding:"required"`
}

type PaymentResult struct {
	Status      string              `json:"status"` // "paid" | "partial"
	Booking     *domain.Booking     `json:"booking"`
	LedgerEntry *domain.Transaction `json:"ledger_entry"`
	TotalPaid   float64             `json:"total_paid"`
	TotalCost   float64             `json:"total_cost"`
}

type CancelResult struct {
	Refunded float64         `json:"refunded"`
	Booking  *domain.Booking `json:"booking"`
}
