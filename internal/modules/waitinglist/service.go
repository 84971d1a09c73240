package waitinglist

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"courtops/internal/domain"
	"courtops/internal/realtime"
)

var (
	ErrEntryNotFound = errors.New("waiting list entry not found")
	ErrValidation    = errors.New("invalid waiting list entry")
)

type eventPublisher interface {
	Publish(clubID string, event realtime.Event) int
}

type Service struct {
	db      *gorm.DB
	events  eventPublisher
	loggerf func(format string, args ...interface{})
}

func NewService(db *gorm.DB, events eventPublisher, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{db: db, events: events, loggerf: loggerf}
}

type JoinRequest struct {
	Date       time.Time `json:"date" binding:"required"`
	CourtID    *int64    `json:"court_id,omitempty"`
	ClientName string    `json:"client_name" binding:"required"`
	Phone      string    `json:"phone" binding:"required"`
}

// Join puts a client on the waiting list for a day, optionally pinned to
// one court.
func (s *Service) Join(ctx context.Context, clubID string, req JoinRequest) (*domain.WaitingListEntry, error) {
	name := strings.TrimSpace(req.ClientName)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, ErrValidation
	}

	entry := &domain.WaitingListEntry{
		ClubID:     clubID,
		CourtID:    req.CourtID,
		Date:       dayOf(req.Date),
		ClientName: name,
		Phone:      phone,
		Status:     domain.WaitingPending,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListForDate returns the day's pending entries in join order.
func (s *Service) ListForDate(ctx context.Context, clubID string, date time.Time) ([]domain.WaitingListEntry, error) {
	day := dayOf(date)
	var entries []domain.WaitingListEntry
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND date = ? AND status = ?", clubID, day, domain.WaitingPending).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Resolve marks an entry fulfilled or dismissed.
func (s *Service) Resolve(ctx context.Context, clubID string, entryID int64, status domain.WaitingStatus) (*domain.WaitingListEntry, error) {
	if status != domain.WaitingFulfilled && status != domain.WaitingDismissed {
		return nil, ErrValidation
	}

	var entry domain.WaitingListEntry
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&entry, entryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&entry).Update("status", status).Error; err != nil {
		return nil, err
	}
	entry.Status = status
	return &entry, nil
}

// NotifySlotFreed tells the day's waiting clients that a slot opened up.
// Entries pinned to another court are skipped.
func (s *Service) NotifySlotFreed(ctx context.Context, clubID string, courtID int64, start time.Time) error {
	day := dayOf(start)
	var entries []domain.WaitingListEntry
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND date = ? AND status = ?", clubID, day, domain.WaitingPending).
		Where("court_id IS NULL OR court_id = ?", courtID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	s.loggerf("level=info msg=slot freed notifying waiting list club_id=%s court_id=%d waiting=%d", clubID, courtID, len(entries))
	if s.events != nil {
		s.events.Publish(clubID, realtime.Event{
			Type: "slot-freed",
			Payload: map[string]interface{}{
				"court_id":   courtID,
				"start_time": start,
				"waiting":    len(entries),
			},
		})
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
