package payment

import (
	"context"

	"gorm.io/gorm"

	"courtops/internal/domain"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns the production Store backed by gorm.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) FindBookingForPayment(ctx context.Context, clubID string, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Transactions").
		Where("club_id = ?", clubID).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *gormStore) InsertLedgerEntry(ctx context.Context, entry *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *gormStore) UpdateBookingPaymentState(ctx context.Context, id int64, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error) {
	tx := s.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": payment,
			"status":         status,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		// record to update is gone from the store's view
		return nil, gorm.ErrRecordNotFound
	}

	var b domain.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// SumIncomeForBooking returns the booking's net paid total: income
// entries add, expense entries (refunds) subtract.
func (s *gormStore) SumIncomeForBooking(ctx context.Context, id int64) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)", domain.TransactionIncome).
		Where("booking_id = ?", id).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *gormStore) RestoreItemStock(ctx context.Context, items []domain.BookingItem) error {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		err := s.db.WithContext(ctx).
			Model(&domain.Product{}).
			Where("id = ?", *item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
