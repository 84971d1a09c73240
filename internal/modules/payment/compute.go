package payment

import "courtops/internal/domain"

// computeTotalCost is the booking's full price: base slot price plus
// every line item at its sale-time unit price.
func computeTotalCost(basePrice float64, items []domain.BookingItem) float64 {
	total := basePrice
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// computePaymentStatus decides the post-payment status. Overpayment is
// not rejected; anything at or above the total cost is simply PAID.
func computePaymentStatus(totalPaid, totalCost float64) domain.PaymentStatus {
	if totalPaid >= totalCost {
		return domain.PaymentPaid
	}
	return domain.PaymentPartial
}

// paidTotal folds a booking's ledger entries into its paid balance:
// income adds, expense (refunds) subtracts.
func paidTotal(txs []domain.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionIncome:
			total += tx.Amount
		case domain.TransactionExpense:
			total -= tx.Amount
		}
	}
	return total
}
