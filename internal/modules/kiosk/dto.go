package kiosk

import "courtops/internal/domain"

type SaleItem struct {
	ProductID int64 `json:"product_id" binding:"required" validate:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0" validate:"required,gt=0"`
}

type SalePayment struct {
	Method domain.PaymentMethod `json:"method" binding:"required" validate:"required"`
	Amount float64              `json:"amount" binding:"required,gt=0" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	Items    []SaleItem    `json:"items" binding:"required,min=1,dive" validate:"required,min=1,dive"`
	Payments []SalePayment `json:"payments" binding:"required,min=1,dive" validate:"required,min=1,dive"`
	ClientID *int64        `json:"client_id,omitempty"`
}

type SaleResult struct {
	Total        float64              `json:"total"`
	Transactions []domain.Transaction `json:"transactions"`
}
