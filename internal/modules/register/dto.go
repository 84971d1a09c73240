package register

import "courtops/internal/domain"

type Stats struct {
	RegisterID       int64                 `json:"register_id"`
	Status           domain.RegisterStatus `json:"status"`
	IncomeCash       float64               `json:"income_cash"`
	IncomeDigital    float64               `json:"income_digital"`
	Expenses         float64               `json:"expenses"`
	Total            float64               `json:"total"`
	ExpectedCash     float64               `json:"expected_cash"`
	TransactionCount int                   `json:"transaction_count"`
}

type ManualTransactionInput struct {
	Type        domain.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Method      domain.PaymentMethod   `json:"method" binding:"required"`
	Description string                 `json:"description"`
}

type CloseRequest struct {
	RealCash     float64 `json:"real_cash" binding:"gte=0"`
	RealTransfer float64 `json:"real_transfer" binding:"gte=0"`
}
