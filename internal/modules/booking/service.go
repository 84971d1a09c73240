package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"courtops/internal/domain"
	"courtops/internal/realtime"
)

// A recurring chain never extends past a year of weekly slots.
const maxRecurringWeeks = 52

type Service struct {
	db        *gorm.DB
	clients   clientResolver
	registers registerResolver
	audit     auditRecorder
	events    eventPublisher
	loggerf   func(format string, args ...interface{})
}

func NewService(
	db *gorm.DB,
	clients clientResolver,
	registers registerResolver,
	audit auditRecorder,
	events eventPublisher,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		db:        db,
		clients:   clients,
		registers: registers,
		audit:     audit,
		events:    events,
		loggerf:   loggerf,
	}
}

// Create books a slot, or a weekly chain of slots sharing one recurring
// id. The first booking of a chain carries any initial payments; the
// rest start UNPAID. Price comes from the club's price rules unless the
// request overrides it.
func (s *Service) Create(ctx context.Context, clubID string, req CreateRequest) (*CreateResult, error) {
	if req.ClientName == "" || req.ClientPhone == "" || req.CourtID <= 0 {
		return nil, ErrValidation
	}
	for _, p := range req.Payments {
		if p.Amount <= 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
			return nil, ErrValidation
		}
	}

	var club domain.Club
	if err := s.db.WithContext(ctx).First(&club, "id = ?", clubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	slotDuration := time.Duration(club.SlotDuration) * time.Minute
	if slotDuration <= 0 {
		slotDuration = 90 * time.Minute
	}

	dates := expandRecurring(req.StartTime, req.RecurringEndDate)
	if err := validateOpeningHours(dates[0], club.OpenTime, club.CloseTime); err != nil {
		return nil, err
	}

	client, err := s.clients.FindOrCreate(ctx, clubID, req.ClientName, req.ClientPhone, req.ClientEmail, req.IsMember)
	if err != nil {
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	var recurringID *string
	if len(dates) > 1 {
		id := uuid.NewString()
		recurringID = &id
	}

	for _, start := range dates {
		if err := s.checkOverlap(ctx, clubID, req.CourtID, 0, start, start.Add(slotDuration)); err != nil {
			return nil, err
		}
	}

	var register *domain.CashRegister
	if initialPaid(req.Payments) > 0 {
		register, err = s.registers.ResolveToday(ctx, clubID)
		if err != nil {
			return nil, fmt.Errorf("resolve cash register: %w", err)
		}
	}

	created := make([]*domain.Booking, 0, len(dates))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, start := range dates {
			price := float64(0)
			if req.Price != nil {
				price = *req.Price
			} else {
				price, err = s.effectivePrice(ctx, tx, clubID, start)
				if err != nil {
					return err
				}
			}

			payments := []PaymentInput(nil)
			if i == 0 {
				payments = req.Payments
			}

			b := &domain.Booking{
				ClubID:        clubID,
				CourtID:       req.CourtID,
				ClientID:      &client.ID,
				StartTime:     start,
				EndTime:       start.Add(slotDuration),
				Price:         price,
				Status:        domain.BookingConfirmed,
				PaymentStatus: initialPaymentStatus(payments, price),
				RecurringID:   recurringID,
				Notes:         req.Notes,
			}
			if err := tx.Create(b).Error; err != nil {
				return err
			}

			for _, p := range payments {
				entry := &domain.Transaction{
					CashRegisterID: register.ID,
					BookingID:      &b.ID,
					ClientID:       &client.ID,
					Type:           domain.TransactionIncome,
					Category:       domain.CategoryBooking,
					Amount:         p.Amount,
					Method:         p.Method,
					Description:    fmt.Sprintf("Booking #%d payment - %s", b.ID, client.Name),
				}
				if err := tx.Create(entry).Error; err != nil {
					return err
				}
			}

			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	primary := created[0]
	s.recordAudit(ctx, clubID, domain.AuditCreate, auditEntityID(primary, recurringID), map[string]interface{}{
		"court_id":     req.CourtID,
		"count":        len(created),
		"client":       client.Name,
		"is_recurring": recurringID != nil,
	})
	s.publish(clubID, "booking-update", map[string]interface{}{
		"action":  "create",
		"booking": primary,
	})

	return &CreateResult{
		Count:       len(created),
		Booking:     primary,
		Client:      client,
		RecurringID: recurringID,
	}, nil
}

// Reschedule moves a booking to a new start time and court, keeping its
// duration. The target slot must be free.
func (s *Service) Reschedule(ctx context.Context, clubID string, bookingID int64, req RescheduleRequest) (*domain.Booking, error) {
	var booking domain.Booking
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	duration := booking.EndTime.Sub(booking.StartTime)
	newEnd := req.StartTime.Add(duration)

	if err := s.checkOverlap(ctx, clubID, req.CourtID, bookingID, req.StartTime, newEnd); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"start_time": req.StartTime,
		"end_time":   newEnd,
		"court_id":   req.CourtID,
	}
	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", bookingID).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.recordAudit(ctx, clubID, domain.AuditUpdate, strconv.FormatInt(bookingID, 10), map[string]interface{}{
		"type":      "RESCHEDULE",
		"old_start": booking.StartTime,
		"new_start": req.StartTime,
		"old_court": booking.CourtID,
		"new_court": req.CourtID,
	})
	s.publish(clubID, "booking-update", map[string]interface{}{
		"action":     "reschedule",
		"booking_id": bookingID,
		"start_time": req.StartTime,
		"end_time":   newEnd,
		"court_id":   req.CourtID,
	})

	booking.StartTime = req.StartTime
	booking.EndTime = newEnd
	booking.CourtID = req.CourtID
	return &booking, nil
}

// AddItem sells a product against a booking: item row and stock
// decrement move together or not at all.
func (s *Service) AddItem(ctx context.Context, clubID string, bookingID int64, req AddItemRequest) (*domain.BookingItem, error) {
	var booking domain.Booking
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	var item *domain.BookingItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		err := tx.Where("club_id = ?", clubID).First(&product, req.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if product.Stock < req.Quantity {
			return ErrInsufficientStock
		}

		item = &domain.BookingItem{
			BookingID:  bookingID,
			ProductID:  &product.ID,
			Quantity:   req.Quantity,
			UnitPrice:  product.Price,
			PlayerName: req.PlayerName,
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock >= ?", product.ID, req.Quantity).
			Update("stock", gorm.Expr("stock - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes a booking item and restores the product stock it
// consumed.
func (s *Service) RemoveItem(ctx context.Context, clubID string, itemID int64) error {
	var item domain.BookingItem
	err := s.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("booking_items.id = ? AND bookings.club_id = ?", itemID, clubID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.ProductID != nil {
			err := tx.Model(&domain.Product{}).
				Where("id = ?", *item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(&domain.BookingItem{}, item.ID).Error
	})
}

// GetDetails loads a booking with its client, court, items, and ledger
// entries.
func (s *Service) GetDetails(ctx context.Context, clubID string, bookingID int64) (*domain.Booking, error) {
	var booking domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Court").
		Preload("Items.Product").
		Preload("Transactions").
		Where("club_id = ?", clubID).
		First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListByDay returns the club's non-canceled bookings that start on the
// given day, ordered by start time.
func (s *Service) ListByDay(ctx context.Context, clubID string, day time.Time) ([]domain.Booking, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var bookings []domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items").
		Where("club_id = ? AND status <> ? AND start_time >= ? AND start_time < ?",
			clubID, domain.BookingCanceled, dayStart, dayEnd).
		Order("start_time asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *Service) checkOverlap(ctx context.Context, clubID string, courtID, excludeID int64, start, end time.Time) error {
	q := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("club_id = ? AND court_id = ? AND status <> ?", clubID, courtID, domain.BookingCanceled).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlotTaken
	}
	return nil
}

// effectivePrice resolves the slot price from the club's price rules:
// highest priority rule whose day-of-week list and HH:MM range cover the
// start time, restricted to rules whose date window is open. No match
// prices the slot at zero.
func (s *Service) effectivePrice(ctx context.Context, tx *gorm.DB, clubID string, start time.Time) (float64, error) {
	var rules []domain.PriceRule
	err := tx.WithContext(ctx).
		Where("club_id = ?", clubID).
		Where("start_date IS NULL OR (start_date <= ? AND end_date >= ?)", start, start).
		Order("priority desc").
		Find(&rules).Error
	if err != nil {
		return 0, err
	}

	clock := start.Format("15:04")
	weekday := int(start.Weekday())
	for _, rule := range rules {
		if !ruleCoversDay(rule.DaysOfWeek, weekday) {
			continue
		}
		if clock >= rule.StartTime && clock < rule.EndTime {
			return rule.Price, nil
		}
	}

	s.loggerf("level=warn msg=no price rule matched club_id=%s start=%s", clubID, start.Format(time.RFC3339))
	return 0, nil
}

func (s *Service) recordAudit(ctx context.Context, clubID string, action domain.AuditAction, entityID string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, _ := json.Marshal(details)
	entry := &domain.AuditLog{
		ClubID:   clubID,
		UserID:   domain.SystemUser,
		Action:   action,
		Entity:   "BOOKING",
		EntityID: entityID,
		Details:  string(raw),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.loggerf("level=error msg=audit record failed entity_id=%s err=%v", entityID, err)
	}
}

func (s *Service) publish(clubID, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(clubID, realtime.Event{Type: eventType, Payload: payload})
}

func expandRecurring(start time.Time, until *time.Time) []time.Time {
	dates := []time.Time{start}
	if until == nil {
		return dates
	}
	next := start.AddDate(0, 0, 7)
	for !next.After(*until) && len(dates) < maxRecurringWeeks+1 {
		dates = append(dates, next)
		next = next.AddDate(0, 0, 7)
	}
	return dates
}

// validateOpeningHours compares the slot's HH:MM clock against the
// club's open/close window. A close time earlier than the open time
// means the window crosses midnight.
func validateOpeningHours(start time.Time, openStr, closeStr string) error {
	open, err := clockMinutes(openStr)
	if err != nil {
		return err
	}
	closeAt, err := clockMinutes(closeStr)
	if err != nil {
		return err
	}
	current := start.Hour()*60 + start.Minute()

	var isOpen bool
	if closeAt < open {
		isOpen = current >= open || current < closeAt
	} else {
		isOpen = current >= open && current < closeAt
	}
	if !isOpen {
		return fmt.Errorf("%w (%s - %s)", ErrOutsideOpeningHours, openStr, closeStr)
	}
	return nil
}

func clockMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: bad time %q", ErrValidation, hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", ErrValidation, hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", ErrValidation, hhmm)
	}
	return h*60 + m, nil
}

func ruleCoversDay(daysOfWeek string, weekday int) bool {
	if daysOfWeek == "" {
		return true
	}
	for _, part := range strings.Split(daysOfWeek, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if d == weekday {
			return true
		}
	}
	return false
}

func initialPaid(payments []PaymentInput) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

func initialPaymentStatus(payments []PaymentInput, price float64) domain.PaymentStatus {
	total := initialPaid(payments)
	switch {
	case total >= price && total > 0:
		return domain.PaymentPaid
	case total > 0:
		return domain.PaymentPartial
	default:
		return domain.PaymentUnpaid
	}
}

func auditEntityID(primary *domain.Booking, recurringID *string) string {
	if recurringID != nil {
		return "RECURRING-" + *recurringID
	}
	return strconv.FormatInt(primary.ID, 10)
}
