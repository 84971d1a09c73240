package kiosk

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"courtops/internal/domain"
	"courtops/internal/modules/register"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:kiosk_test_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Club{},
		&domain.Product{},
		&domain.CashRegister{},
		&domain.Transaction{},
	))
	return db
}

func seedClubAndProducts(t *testing.T, db *gorm.DB) (string, []domain.Product) {
	t.Helper()
	club := &domain.Club{Name: "Padel Norte"}
	require.NoError(t, db.Create(club).Error)

	products := []domain.Product{
		{ClubID: club.ID, Name: "Gatorade", Price: 1500, Stock: 10},
		{ClubID: club.ID, Name: "Grip", Price: 2000, Stock: 3},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}
	return club.ID, products
}

func TestCheckout(t *testing.T) {
	db := setupTestDB(t)
	clubID, products := seedClubAndProducts(t, db)
	svc := NewService(db, register.NewService(db))

	res, err := svc.Checkout(context.Background(), clubID, CheckoutRequest{
		Items: []SaleItem{
			{ProductID: products[0].ID, Quantity: 2},
			{ProductID: products[1].ID, Quantity: 1},
		},
		Payments: []SalePayment{{Method: domain.MethodCash, Amount: 5000}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, res.Total)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, domain.CategoryKioskSale, res.Transactions[0].Category)
	assert.Contains(t, res.Transactions[0].Description, "2x Gatorade")

	var gatorade domain.Product
	require.NoError(t, db.First(&gatorade, products[0].ID).Error)
	assert.Equal(t, 8, gatorade.Stock)
}

func TestCheckoutSplitPayments(t *testing.T) {
	db := setupTestDB(t)
	clubID, products := seedClubAndProducts(t, db)
	svc := NewService(db, register.NewService(db))

	res, err := svc.Checkout(context.Background(), clubID, CheckoutRequest{
		Items: []SaleItem{{ProductID: products[0].ID, Quantity: 2}},
		Payments: []SalePayment{
			{Method: domain.MethodCash, Amount: 1000},
			{Method: domain.MethodCard, Amount: 2000},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, domain.MethodCash, res.Transactions[0].Method)
	assert.Equal(t, domain.MethodCard, res.Transactions[1].Method)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	clubID, products := seedClubAndProducts(t, db)
	svc := NewService(db, register.NewService(db))

	_, err := svc.Checkout(context.Background(), clubID, CheckoutRequest{
		Items: []SaleItem{
			{ProductID: products[0].ID, Quantity: 2},
			{ProductID: products[1].ID, Quantity: 5}, // only 3 in stock
		},
		Payments: []SalePayment{{Method: domain.MethodCash, Amount: 13000}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// the first item's decrement must be rolled back
	var gatorade domain.Product
	require.NoError(t, db.First(&gatorade, products[0].ID).Error)
	assert.Equal(t, 10, gatorade.Stock)

	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutUnderpaidRejected(t *testing.T) {
	db := setupTestDB(t)
	clubID, products := seedClubAndProducts(t, db)
	svc := NewService(db, register.NewService(db))

	_, err := svc.Checkout(context.Background(), clubID, CheckoutRequest{
		Items:    []SaleItem{{ProductID: products[0].ID, Quantity: 2}},
		Payments: []SalePayment{{Method: domain.MethodCash, Amount: 1000}},
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	var gatorade domain.Product
	require.NoError(t, db.First(&gatorade, products[0].ID).Error)
	assert.Equal(t, 10, gatorade.Stock)
}

func TestCheckoutForeignProductRejected(t *testing.T) {
	db := setupTestDB(t)
	_, products := seedClubAndProducts(t, db)
	svc := NewService(db, register.NewService(db))

	other := &domain.Club{Name: "Other"}
	require.NoError(t, db.Create(other).Error)

	_, err := svc.Checkout(context.Background(), other.ID, CheckoutRequest{
		Items:    []SaleItem{{ProductID: products[0].ID, Quantity: 1}},
		Payments: []SalePayment{{Method: domain.MethodCash, Amount: 1500}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductsOnlyActive(t *testing.T) {
	db := setupTestDB(t)
	clubID, _ := seedClubAndProducts(t, db)
	inactive := false
	require.NoError(t, db.Create(&domain.Product{ClubID: clubID, Name: "Retired", Price: 100, IsActive: &inactive}).Error)
	svc := NewService(db, register.NewService(db))

	products, err := svc.Products(context.Background(), clubID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotEqual(t, "Retired", p.Name)
	}

	var retired domain.Product
	require.NoError(t, db.First(&retired, "name = ?", "Retired").Error)
	require.NotNil(t, retired.IsActive)
	assert.False(t, *retired.IsActive)
}

func TestProductCreatedWithoutFlagDefaultsActive(t *testing.T) {
	db := setupTestDB(t)
	club := &domain.Club{Name: "Padel Centro"}
	require.NoError(t, db.Create(club).Error)
	require.NoError(t, db.Create(&domain.Product{ClubID: club.ID, Name: "Agua", Price: 800, Stock: 6}).Error)
	svc := NewService(db, register.NewService(db))

	products, err := svc.Products(context.Background(), club.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].IsActive)
	assert.True(t, *products[0].IsActive)
}
