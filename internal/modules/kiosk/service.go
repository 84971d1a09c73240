package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"courtops/internal/domain"
	"courtops/internal/pkg/validator"
)

var (
	ErrEmptySale         = errors.New("sale has no items")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPayment    = errors.New("payment amounts must cover the sale total")
)

type registerResolver interface {
	ResolveToday(ctx context.Context, clubID string) (*domain.CashRegister, error)
}

type Service struct {
	db        *gorm.DB
	registers registerResolver
}

func NewService(db *gorm.DB, registers registerResolver) *Service {
	return &Service{db: db, registers: registers}
}

// Checkout sells over-the-counter products: stock decrements and the
// KIOSK_SALE ledger entries commit together or not at all. One entry is
// posted per payment method so a split cash/card sale reconciles against
// the drawer correctly.
func (s *Service) Checkout(ctx context.Context, clubID string, req CheckoutRequest) (*SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}
	if len(req.Payments) == 0 {
		return nil, ErrInvalidPayment
	}
	if violations := validator.Validate(req); violations != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayment, violations)
	}

	register, err := s.registers.ResolveToday(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("resolve cash register: %w", err)
	}

	var result *SaleResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		var descriptionParts []string

		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return ErrEmptySale
			}

			var product domain.Product
			err := tx.Where("club_id = ?", clubID).First(&product, item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
				}
				return err
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, product.Name, product.Stock)
			}

			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			total += product.Price * float64(item.Quantity)
			descriptionParts = append(descriptionParts, fmt.Sprintf("%dx %s", item.Quantity, product.Name))
		}

		var totalPaid float64
		for _, p := range req.Payments {
			if p.Amount <= 0 {
				return ErrInvalidPayment
			}
			totalPaid += p.Amount
		}
		if totalPaid < total {
			return ErrInvalidPayment
		}

		description := strings.Join(descriptionParts, ", ")
		entries := make([]domain.Transaction, 0, len(req.Payments))
		for _, p := range req.Payments {
			entry := domain.Transaction{
				CashRegisterID: register.ID,
				ClientID:       req.ClientID,
				Type:           domain.TransactionIncome,
				Category:       domain.CategoryKioskSale,
				Amount:         p.Amount,
				Method:         p.Method,
				Description:    description,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		result = &SaleResult{Total: total, Transactions: entries}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Products lists the club's active kiosk catalog.
func (s *Service) Products(ctx context.Context, clubID string) ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND is_active = ?", clubID, true).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
