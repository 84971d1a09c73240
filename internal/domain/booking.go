package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCanceled  BookingStatus = "CANCELED"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Booking is a reserved time slot on a court. Its payment status is
// derived from the ledger entries linked to it: the booking row and the
// register ledger must always move together.
type Booking struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	ClubID        string        `json:"club_id" gorm:"type:uuid;not null;index"`
	CourtID       int64         `json:"court_id" gorm:"not null;index"`
	ClientID      *int64        `json:"client_id,omitempty" gorm:"index"`
	StartTime     time.Time     `json:"start_time" gorm:"not null;index"`
	EndTime       time.Time     `json:"end_time" gorm:"not null"`
	Price         float64       `json:"price" gorm:"not null"`
	Status        BookingStatus `json:"status" gorm:"not null;default:'PENDING'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:'UNPAID'"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
	RecurringID   *string       `json:"recurring_id,omitempty" gorm:"type:uuid;index"`
	Notes         string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Client       *Client       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Court        *Court        `json:"court,omitempty" gorm:"foreignKey:CourtID"`
	Items        []BookingItem `json:"items,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string { return "bookings" }

// BookingItem is a product sold against a booking at the unit price in
// effect at the time of sale.
type BookingItem struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	BookingID  int64     `json:"booking_id" gorm:"not null;index"`
	ProductID  *int64    `json:"product_id,omitempty" gorm:"index"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	UnitPrice  float64   `json:"unit_price" gorm:"not null"`
	PlayerName *string   `json:"player_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (BookingItem) TableName() string { return "booking_items" }
