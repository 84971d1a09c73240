package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"courtops/internal/domain"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrClubNotFound       = errors.New("club not found")
)

type tokenIssuer interface {
	GenerateToken(userID int64, clubID, role, email string) (string, error)
}

type Service struct {
	db     *gorm.DB
	tokens tokenIssuer
}

func NewService(db *gorm.DB, tokens tokenIssuer) *Service {
	return &Service{db: db, tokens: tokens}
}

type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a staff account bound to a club.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)

	var club domain.Club
	if err := s.db.WithContext(ctx).First(&club, "id = ?", req.ClubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleStaff
	if req.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		ClubID:       req.ClubID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login checks credentials and issues a club-scoped token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.ClubID, string(user.Role), user.Email)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: &user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
