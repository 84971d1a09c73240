package booking

import (
	"time"

	"courtops/internal/domain"
)

type PaymentInput struct {
	Method domain.PaymentMethod `json:"method" binding:"required"`
	Amount float64              `json:"amount" binding:"required,gt=0"`
}

type CreateRequest struct {
	CourtID          int64          `json:"court_id" binding:"required"`
	StartTime        time.Time      `json:"start_time" binding:"required"`
	ClientName       string         `json:"client_name" binding:"required"`
	ClientPhone      string         `json:"client_phone" binding:"required"`
	ClientEmail      *string        `json:"client_email,omitempty"`
	IsMember         bool           `json:"is_member"`
	Price            *float64       `json:"price,omitempty"`
	Payments         []PaymentInput `json:"payments,omitempty"`
	RecurringEndDate *time.Time     `json:"recurring_end_date,omitempty"`
	Notes            string         `json:"notes,omitempty"`
}

type CreateResult struct {
	Count       int             `json:"count"`
	Booking     *domain.Booking `json:"booking"`
	Client      *domain.Client  `json:"client"`
	RecurringID *string         `json:"recurring_id,omitempty"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	CourtID   int64     `json:"court_id" binding:"required"`
}

type AddItemRequest struct {
	ProductID  int64   `json:"product_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,gt=0"`
	PlayerName *string `json:"player_name,omitempty"`
}
