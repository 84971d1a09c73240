package auth

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
	"courtops/internal/pkg/jwt"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Club{}, &domain.User{}))
	return db
}

func newFixture(t *testing.T) (*Service, *jwt.Service, string) {
	t.Helper()
	db := setupTestDB(t)
	club := &domain.Club{Name: "Padel Norte"}
	require.NoError(t, db.Create(club).Error)
	tokens := jwt.New("test-secret", time.Hour)
	return NewService(db, tokens), tokens, club.ID
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens, clubID := newFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		ClubID:   clubID,
		Email:    "Staff@Club.Test ",
		Password: "s3cret-pass",
		Name:     "Staff Member",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff@club.test", user.Email)
	assert.Equal(t, domain.RoleStaff, user.Role)
	assert.Empty(t, user.PasswordHash)

	result, err := svc.Login(ctx, "staff@club.test", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, clubID, claims.ClubID)
	assert.Equal(t, string(domain.RoleStaff), claims.Role)
	assert.Equal(t, "staff@club.test", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, clubID := newFixture(t)
	ctx := context.Background()

	req := RegisterRequest{ClubID: clubID, Email: "staff@club.test", Password: "s3cret-pass", Name: "Staff"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterUnknownClub(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		ClubID:   "11111111-2222-3333-4444-555555555555",
		Email:    "staff@club.test",
		Password: "s3cret-pass",
		Name:     "Staff",
	})
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, clubID := newFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{ClubID: clubID, Email: "staff@club.test", Password: "s3cret-pass", Name: "Staff"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "staff@club.test", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@club.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterAdminRole(t *testing.T) {
	svc, _, clubID := newFixture(t)

	user, err := svc.Register(context.Background(), RegisterRequest{
		ClubID:   clubID,
		Email:    "admin@club.test",
		Password: "s3cret-pass",
		Name:     "Admin",
		Role:     "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}
