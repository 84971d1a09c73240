package domain

import "time"

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

type TransactionCategory string

const (
	CategoryBookingPayment TransactionCategory = "BOOKING_PAYMENT"
	CategoryBooking        TransactionCategory = "BOOKING"
	CategoryRefund         TransactionCategory = "REFUND"
	CategoryKioskSale      TransactionCategory = "KIOSK_SALE"
	CategoryManual         TransactionCategory = "MANUAL"
)

type PaymentMethod string

const (
	MethodCash        PaymentMethod = "CASH"
	MethodTransfer    PaymentMethod = "TRANSFER"
	MethodCard        PaymentMethod = "CARD"
	MethodMercadoPago PaymentMethod = "MERCADOPAGO"
)

// Transaction is an immutable ledger entry posted to a cash register,
// optionally tied to a booking. Amount is always positive; the type
// decides whether it adds to or subtracts from a balance. Corrections
// are made with new offsetting entries, never by mutating rows.
type Transaction struct {
	ID             int64               `json:"id" gorm:"primaryKey"`
	CashRegisterID int64               `json:"cash_register_id" gorm:"not null;index"`
	BookingID      *int64              `json:"booking_id,omitempty" gorm:"index"`
	ClientID       *int64              `json:"client_id,omitempty"`
	Type           TransactionType     `json:"type" gorm:"not null"`
	Category       TransactionCategory `json:"category" gorm:"not null"`
	Amount         float64             `json:"amount" gorm:"not null"`
	Method         PaymentMethod       `json:"method" gorm:"not null"`
	Description    string              `json:"description" gorm:"type:text"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "OPEN"
	RegisterClosed RegisterStatus = "CLOSED"
)

// CashRegister is a per-club, per-day accounting session. The unique
// index on (club_id, date) is what makes concurrent find-or-create
// resolution converge on a single row.
type CashRegister struct {
	ID              int64          `json:"id" gorm:"primaryKey"`
	ClubID          string         `json:"club_id" gorm:"type:uuid;not null;uniqueIndex:idx_register_club_date,priority:1"`
	Date            time.Time      `json:"date" gorm:"not null;uniqueIndex:idx_register_club_date,priority:2"`
	Status          RegisterStatus `json:"status" gorm:"not null;default:'OPEN'"`
	StartAmount     float64        `json:"start_amount" gorm:"not null;default:0"`
	EndAmountCash   *float64       `json:"end_amount_cash,omitempty"`
	EndAmountTransf *float64       `json:"end_amount_transf,omitempty"`
	ClosedAt        *time.Time     `json:"closed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`

	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:CashRegisterID"`
}

func (CashRegister) TableName() string { return "cash_registers" }
