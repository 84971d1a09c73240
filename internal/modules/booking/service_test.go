package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"courtops/internal/domain"
	"courtops/internal/modules/client"
	"courtops/internal/modules/register"
	"courtops/internal/realtime"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_test_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Club{},
		&domain.Court{},
		&domain.Client{},
		&domain.Product{},
		&domain.PriceRule{},
		&domain.Booking{},
		&domain.BookingItem{},
		&domain.CashRegister{},
		&domain.Transaction{},
		&domain.AuditLog{},
	))
	return db
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, *domain.AuditLog) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(string, realtime.Event) int { return 0 }

type fixture struct {
	db      *gorm.DB
	svc     *Service
	clubID  string
	courtID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	club := &domain.Club{Name: "Padel Norte", SlotDuration: 90, OpenTime: "08:00", CloseTime: "23:00"}
	require.NoError(t, db.Create(club).Error)
	court := &domain.Court{ClubID: club.ID, Name: "Court 1"}
	require.NoError(t, db.Create(court).Error)

	svc := NewService(db, client.NewService(db), register.NewService(db), nopAudit{}, nopPublisher{}, nil)
	return &fixture{db: db, svc: svc, clubID: club.ID, courtID: court.ID}
}

func (f *fixture) addPriceRule(t *testing.T, rule domain.PriceRule) {
	t.Helper()
	rule.ClubID = f.clubID
	require.NoError(t, f.db.Create(&rule).Error)
}

func baseRequest(f *fixture, start time.Time) CreateRequest {
	return CreateRequest{
		CourtID:     f.courtID,
		StartTime:   start,
		ClientName:  "Ana Gomez",
		ClientPhone: "+54911555001",
	}
}

func TestCreateBookingPricedByRule(t *testing.T) {
	f := newFixture(t)
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "18:00", Price: 8000})
	f.addPriceRule(t, domain.PriceRule{StartTime: "18:00", EndTime: "23:00", Price: 12000, Priority: 5})

	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	res, err := f.svc.Create(context.Background(), f.clubID, baseRequest(f, start))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 12000.0, res.Booking.Price)
	assert.Equal(t, domain.BookingConfirmed, res.Booking.Status)
	assert.Equal(t, domain.PaymentUnpaid, res.Booking.PaymentStatus)
	assert.Equal(t, start.Add(90*time.Minute), res.Booking.EndTime)
	require.NotNil(t, res.Client)
	assert.Equal(t, "Ana Gomez", res.Client.Name)
}

func TestCreateBookingPriceOverride(t *testing.T) {
	f := newFixture(t)
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "23:00", Price: 8000})

	override := 5000.0
	req := baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	req.Price = &override

	res, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, res.Booking.Price)
}

func TestCreateBookingNoRuleMatchPricesZero(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), f.clubID, baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Zero(t, res.Booking.Price)
}

func TestCreateBookingRuleRespectsDayOfWeek(t *testing.T) {
	f := newFixture(t)
	// weekend rule: Sunday(0) and Saturday(6)
	f.addPriceRule(t, domain.PriceRule{DaysOfWeek: "0,6", StartTime: "08:00", EndTime: "23:00", Price: 15000, Priority: 10})
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "23:00", Price: 8000})

	// 2026-03-10 is a Tuesday
	weekday, err := f.svc.Create(context.Background(), f.clubID, baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, 8000.0, weekday.Booking.Price)

	// 2026-03-14 is a Saturday
	req := baseRequest(f, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	req.ClientPhone = "+54911555002"
	weekend, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, weekend.Booking.Price)
}

func TestCreateBookingOutsideOpeningHours(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.clubID, baseRequest(f, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, ErrOutsideOpeningHours)
}

func TestCreateBookingCrossMidnightWindow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&domain.Club{}).Where("id = ?", f.clubID).
		Updates(map[string]interface{}{"open_time": "18:00", "close_time": "02:00"}).Error)

	_, err := f.svc.Create(context.Background(), f.clubID, baseRequest(f, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)))
	assert.NoError(t, err)

	req := baseRequest(f, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	req.ClientPhone = "+54911555002"
	_, err = f.svc.Create(context.Background(), f.clubID, req)
	assert.ErrorIs(t, err, ErrOutsideOpeningHours)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, f.clubID, baseRequest(f, start))
	require.NoError(t, err)

	// half-overlapping slot on the same court
	req := baseRequest(f, start.Add(45*time.Minute))
	req.ClientPhone = "+54911555002"
	_, err = f.svc.Create(ctx, f.clubID, req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// back to back is fine
	req = baseRequest(f, start.Add(90*time.Minute))
	req.ClientPhone = "+54911555003"
	_, err = f.svc.Create(ctx, f.clubID, req)
	assert.NoError(t, err)
}

func TestCreateBookingIgnoresCanceledOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	res, err := f.svc.Create(ctx, f.clubID, baseRequest(f, start))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&domain.Booking{}).Where("id = ?", res.Booking.ID).
		Update("status", domain.BookingCanceled).Error)

	req := baseRequest(f, start)
	req.ClientPhone = "+54911555002"
	_, err = f.svc.Create(ctx, f.clubID, req)
	assert.NoError(t, err)
}

func TestCreateRecurringChain(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 21)

	req := baseRequest(f, start)
	req.RecurringEndDate = &until

	res, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	require.NotNil(t, res.RecurringID)

	var chain []domain.Booking
	require.NoError(t, f.db.Where("recurring_id = ?", *res.RecurringID).Order("start_time asc").Find(&chain).Error)
	require.Len(t, chain, 4)
	for i, b := range chain {
		assert.Equal(t, start.AddDate(0, 0, 7*i), b.StartTime.UTC())
	}
}

func TestCreateRecurringCappedAtOneYear(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	until := start.AddDate(3, 0, 0)

	req := baseRequest(f, start)
	req.RecurringEndDate = &until

	res, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, maxRecurringWeeks+1, res.Count)
}

func TestCreateWithInitialPayments(t *testing.T) {
	f := newFixture(t)
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "23:00", Price: 10000})
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	until := start.AddDate(0, 0, 7)

	req := baseRequest(f, start)
	req.RecurringEndDate = &until
	req.Payments = []PaymentInput{
		{Method: domain.MethodCash, Amount: 4000},
		{Method: domain.MethodTransfer, Amount: 6000},
	}

	res, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, domain.PaymentPaid, res.Booking.PaymentStatus)

	var entries []domain.Transaction
	require.NoError(t, f.db.Where("booking_id = ?", res.Booking.ID).Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.TransactionIncome, e.Type)
		assert.Equal(t, domain.CategoryBooking, e.Category)
	}

	// the rest of the chain starts unpaid with no ledger entries
	var chain []domain.Booking
	require.NoError(t, f.db.Where("recurring_id = ?", *res.RecurringID).Order("start_time asc").Find(&chain).Error)
	second := chain[1]
	assert.Equal(t, domain.PaymentUnpaid, second.PaymentStatus)
	var count int64
	require.NoError(t, f.db.Model(&domain.Transaction{}).Where("booking_id = ?", second.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePartialInitialPayment(t *testing.T) {
	f := newFixture(t)
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "23:00", Price: 10000})

	req := baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	req.Payments = []PaymentInput{{Method: domain.MethodCash, Amount: 3000}}

	res, err := f.svc.Create(context.Background(), f.clubID, req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, res.Booking.PaymentStatus)
}

func TestCreateReusesClientByPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.clubID, baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.clubID, baseRequest(f, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, first.Client.ID, second.Client.ID)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	res, err := f.svc.Create(ctx, f.clubID, baseRequest(f, start))
	require.NoError(t, err)

	newStart := start.Add(4 * time.Hour)
	moved, err := f.svc.Reschedule(ctx, f.clubID, res.Booking.ID, RescheduleRequest{StartTime: newStart, CourtID: f.courtID})
	require.NoError(t, err)
	assert.Equal(t, newStart, moved.StartTime)
	assert.Equal(t, newStart.Add(90*time.Minute), moved.EndTime)
}

func TestRescheduleOntoTakenSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, f.clubID, baseRequest(f, start))
	require.NoError(t, err)

	req := baseRequest(f, start.Add(3*time.Hour))
	req.ClientPhone = "+54911555002"
	victim, err := f.svc.Create(ctx, f.clubID, req)
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, f.clubID, victim.Booking.ID, RescheduleRequest{StartTime: start.Add(30 * time.Minute), CourtID: f.courtID})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// rescheduling onto its own slot is allowed
	_, err = f.svc.Reschedule(ctx, f.clubID, victim.Booking.ID, RescheduleRequest{StartTime: start.Add(3 * time.Hour), CourtID: f.courtID})
	assert.NoError(t, err)
}

func TestAddAndRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := &domain.Product{ClubID: f.clubID, Name: "Gatorade", Price: 1500, Stock: 5}
	require.NoError(t, f.db.Create(product).Error)

	res, err := f.svc.Create(ctx, f.clubID, baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, f.clubID, res.Booking.ID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, item.UnitPrice)

	var reloaded domain.Product
	require.NoError(t, f.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)

	_, err = f.svc.AddItem(ctx, f.clubID, res.Booking.ID, AddItemRequest{ProductID: product.ID, Quantity: 10})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, f.svc.RemoveItem(ctx, f.clubID, item.ID))
	require.NoError(t, f.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestRemoveItemWrongClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := &domain.Product{ClubID: f.clubID, Name: "Water", Price: 500, Stock: 5}
	require.NoError(t, f.db.Create(product).Error)
	res, err := f.svc.Create(ctx, f.clubID, baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, f.clubID, res.Booking.ID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	other := &domain.Club{Name: "Other"}
	require.NoError(t, f.db.Create(other).Error)
	assert.ErrorIs(t, f.svc.RemoveItem(ctx, other.ID, item.ID), ErrItemNotFound)
}

func TestGetDetailsLoadsAssociations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPriceRule(t, domain.PriceRule{StartTime: "08:00", EndTime: "23:00", Price: 10000})

	product := &domain.Product{ClubID: f.clubID, Name: "Water", Price: 500, Stock: 5}
	require.NoError(t, f.db.Create(product).Error)

	req := baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	req.Payments = []PaymentInput{{Method: domain.MethodCash, Amount: 10000}}
	res, err := f.svc.Create(ctx, f.clubID, req)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.clubID, res.Booking.ID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	details, err := f.svc.GetDetails(ctx, f.clubID, res.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, details.Client)
	require.NotNil(t, details.Court)
	require.Len(t, details.Items, 1)
	require.NotNil(t, details.Items[0].Product)
	require.Len(t, details.Transactions, 1)
}

func TestListByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, f.clubID, baseRequest(f, day1))
	require.NoError(t, err)
	canceled, err := f.svc.Create(ctx, f.clubID, baseRequest(f, day1.Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&domain.Booking{}).Where("id = ?", canceled.Booking.ID).
		Update("status", domain.BookingCanceled).Error)
	_, err = f.svc.Create(ctx, f.clubID, baseRequest(f, day2))
	require.NoError(t, err)

	bookings, err := f.svc.ListByDay(ctx, f.clubID, day1)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, day1, bookings[0].StartTime.UTC())
}

func TestCreateRejectsMissingClient(t *testing.T) {
	f := newFixture(t)
	req := baseRequest(f, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	req.ClientPhone = ""
	_, err := f.svc.Create(context.Background(), f.clubID, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsNonPositivePayments(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	// A negative entry next to a positive one sums below zero, which
	// would otherwise skip register resolution while still posting the
	// positive entry.
	req := baseRequest(f, start)
	req.Payments = []PaymentInput{
		{Method: domain.MethodCash, Amount: -5000},
		{Method: domain.MethodCash, Amount: 300},
	}
	_, err := f.svc.Create(context.Background(), f.clubID, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = baseRequest(f, start)
	req.Payments = []PaymentInput{{Method: domain.MethodCash, Amount: 0}}
	_, err = f.svc.Create(context.Background(), f.clubID, req)
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, f.db.Model(&domain.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}
