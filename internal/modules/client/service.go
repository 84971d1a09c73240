package client

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"courtops/internal/domain"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrValidation     = errors.New("invalid client data")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindOrCreate resolves a club's client by phone number, creating the
// record on first contact. Later bookings may carry fresher contact
// details; those overwrite what is stored. Membership is only ever
// upgraded here, never revoked.
func (s *Service) FindOrCreate(ctx context.Context, clubID, name, phone string, email *string, isMember bool) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, ErrValidation
	}

	var client domain.Client
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND phone = ?", clubID, phone).
		First(&client).Error
	if err == nil {
		return s.refresh(ctx, &client, name, email, isMember)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = domain.Client{
		ClubID:           clubID,
		Name:             name,
		Phone:            phone,
		Email:            email,
		MembershipStatus: membershipFor(isMember),
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		if isUniqueConstraintError(err) {
			// lost the insert race, the winner's row is the client
			var existing domain.Client
			readErr := s.db.WithContext(ctx).
				Where("club_id = ? AND phone = ?", clubID, phone).
				First(&existing).Error
			if readErr != nil {
				return nil, readErr
			}
			return s.refresh(ctx, &existing, name, email, isMember)
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) refresh(ctx context.Context, client *domain.Client, name string, email *string, isMember bool) (*domain.Client, error) {
	updates := map[string]interface{}{}
	if name != "" && name != client.Name {
		updates["name"] = name
	}
	if email != nil && (client.Email == nil || *email != *client.Email) {
		updates["email"] = *email
	}
	if isMember && client.MembershipStatus != domain.MembershipActive {
		updates["membership_status"] = domain.MembershipActive
	}
	if len(updates) == 0 {
		return client, nil
	}

	if err := s.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
		return nil, err
	}
	if name, ok := updates["name"]; ok {
		client.Name = name.(string)
	}
	if _, ok := updates["email"]; ok {
		client.Email = email
	}
	if _, ok := updates["membership_status"]; ok {
		client.MembershipStatus = domain.MembershipActive
	}
	return client, nil
}

func (s *Service) Get(ctx context.Context, clubID string, id int64) (*domain.Client, error) {
	var client domain.Client
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&client, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// List returns the club's clients matching an optional name or phone
// fragment, newest first.
func (s *Service) List(ctx context.Context, clubID, search string, limit, offset int) ([]domain.Client, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := s.db.WithContext(ctx).Model(&domain.Client{}).Where("club_id = ?", clubID)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (s *Service) Update(ctx context.Context, clubID string, id int64, name, phone string, email *string) (*domain.Client, error) {
	client, err := s.Get(ctx, clubID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
		client.Name = name
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		updates["phone"] = phone
		client.Phone = phone
	}
	if email != nil {
		updates["email"] = *email
		client.Email = email
	}
	if len(updates) == 0 {
		return client, nil
	}

	if err := s.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func membershipFor(isMember bool) domain.MembershipStatus {
	if isMember {
		return domain.MembershipActive
	}
	return domain.MembershipNone
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
