package audit

import (
	"context"

	"gorm.io/gorm"

	"courtops/internal/domain"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record appends an entry to the club's audit trail. Entries are never
// updated or deleted.
func (s *Service) Record(ctx context.Context, entry *domain.AuditLog) error {
	if entry.UserID == "" {
		entry.UserID = domain.SystemUser
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

type ListFilter struct {
	Action string
	Entity string
	Limit  int
	Offset int
}

// List returns the club's audit entries newest first.
func (s *Service) List(ctx context.Context, clubID string, filter ListFilter) ([]domain.AuditLog, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	q := s.db.WithContext(ctx).Model(&domain.AuditLog{}).Where("club_id = ?", clubID)
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []domain.AuditLog
	err := q.Order("created_at desc, id desc").Limit(filter.Limit).Offset(filter.Offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
