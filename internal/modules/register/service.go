package register

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"courtops/internal/domain"
)

var (
	ErrRegisterNotFound = errors.New("cash register not found")
	ErrAlreadyClosed    = errors.New("cash register already closed")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// ResolveToday finds or creates the club's register for today. The
// unique (club_id, date) index makes concurrent first payments of the
// day converge on a single row: losers of the insert race re-read.
func (s *Service) ResolveToday(ctx context.Context, clubID string) (*domain.CashRegister, error) {
	today := startOfDay(s.now().UTC())

	register, err := s.findByDay(ctx, clubID, today)
	if err == nil {
		return register, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	register = &domain.CashRegister{
		ClubID: clubID,
		Date:   today,
		Status: domain.RegisterOpen,
	}
	if err := s.db.WithContext(ctx).Create(register).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.findByDay(ctx, clubID, today)
		}
		return nil, err
	}
	return register, nil
}

// Stats summarizes today's register the way the closing screen needs
// it: cash vs digital income, expenses, and the running balance.
func (s *Service) Stats(ctx context.Context, clubID string) (*Stats, error) {
	register, err := s.ResolveToday(ctx, clubID)
	if err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	if err := s.db.WithContext(ctx).Where("cash_register_id = ?", register.ID).Find(&txs).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		RegisterID:       register.ID,
		Status:           register.Status,
		TransactionCount: len(txs),
	}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionIncome:
			if tx.Method == domain.MethodCash {
				stats.IncomeCash += tx.Amount
			} else {
				stats.IncomeDigital += tx.Amount
			}
		case domain.TransactionExpense:
			stats.Expenses += tx.Amount
		}
	}
	stats.Total = stats.IncomeCash + stats.IncomeDigital - stats.Expenses
	// expenses are assumed paid from the drawer
	stats.ExpectedCash = register.StartAmount + stats.IncomeCash - stats.Expenses
	return stats, nil
}

// Close records the counted amounts and ends the session. Ledger
// entries posted later in the day will resolve a fresh register only on
// the next day; same-day entries still land here by design.
func (s *Service) Close(ctx context.Context, clubID string, registerID int64, realCash, realTransfer float64) (*domain.CashRegister, error) {
	var register domain.CashRegister
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&register, registerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, err
	}
	if register.Status == domain.RegisterClosed {
		return nil, ErrAlreadyClosed
	}

	closedAt := s.now().UTC()
	updates := map[string]interface{}{
		"status":            domain.RegisterClosed,
		"end_amount_cash":   realCash,
		"end_amount_transf": realTransfer,
		"closed_at":         closedAt,
	}
	if err := s.db.WithContext(ctx).Model(&register).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

// RecordManualTransaction posts a standalone income or expense entry
// (drawer adjustments, supplier payments) to today's register.
func (s *Service) RecordManualTransaction(ctx context.Context, clubID string, input ManualTransactionInput) (*domain.Transaction, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	register, err := s.ResolveToday(ctx, clubID)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		CashRegisterID: register.ID,
		Type:           input.Type,
		Category:       domain.CategoryManual,
		Amount:         input.Amount,
		Method:         input.Method,
		Description:    input.Description,
	}
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, clubID string, registerID int64) ([]domain.Transaction, error) {
	var register domain.CashRegister
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&register, registerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, err
	}

	var txs []domain.Transaction
	err = s.db.WithContext(ctx).
		Where("cash_register_id = ?", register.ID).
		Order("created_at asc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Service) findByDay(ctx context.Context, clubID string, day time.Time) (*domain.CashRegister, error) {
	var register domain.CashRegister
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND date = ?", clubID, day).
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
