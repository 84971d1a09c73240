package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"courtops/internal/config"
	"courtops/internal/database"
	"courtops/internal/domain"
	"courtops/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, cfg.App)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}

	err = db.AutoMigrate(
		&domain.Club{},
		&domain.Court{},
		&domain.User{},
		&domain.Client{},
		&domain.Product{},
		&domain.PriceRule{},
		&domain.Booking{},
		&domain.BookingItem{},
		&domain.CashRegister{},
		&domain.Transaction{},
		&domain.AuditLog{},
		&domain.WaitingListEntry{},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}
	logger.Info().Msg("schema migrated")

	var count int64
	if err := db.Model(&domain.Club{}).Count(&count).Error; err != nil {
		logger.Fatal().Err(err).Msg("count clubs failed")
	}
	if count > 0 {
		logger.Info().Msg("clubs already present, skipping demo data")
		return
	}

	club := &domain.Club{Name: "Club Demo", SlotDuration: 90, OpenTime: "08:00", CloseTime: "23:00"}
	if err := db.Create(club).Error; err != nil {
		logger.Fatal().Err(err).Msg("create club failed")
	}

	courts := []domain.Court{
		{ClubID: club.ID, Name: "Court 1"},
		{ClubID: club.ID, Name: "Court 2"},
		{ClubID: club.ID, Name: "Court 3"},
	}
	for i := range courts {
		if err := db.Create(&courts[i]).Error; err != nil {
			logger.Fatal().Err(err).Msg("create court failed")
		}
	}

	now := time.Now().UTC()
	rules := []domain.PriceRule{
		{ClubID: club.ID, StartTime: "08:00", EndTime: "18:00", Price: 8000, Priority: 0, CreatedAt: now},
		{ClubID: club.ID, StartTime: "18:00", EndTime: "23:00", Price: 12000, Priority: 5, CreatedAt: now},
		{ClubID: club.ID, DaysOfWeek: "0,6", StartTime: "08:00", EndTime: "23:00", Price: 15000, Priority: 10, CreatedAt: now},
	}
	for i := range rules {
		if err := db.Create(&rules[i]).Error; err != nil {
			logger.Fatal().Err(err).Msg("create price rule failed")
		}
	}

	products := []domain.Product{
		{ClubID: club.ID, Name: "Agua", Price: 800, Stock: 48},
		{ClubID: club.ID, Name: "Gatorade", Price: 1500, Stock: 24},
		{ClubID: club.ID, Name: "Tubo de pelotas", Price: 9000, Stock: 12},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			logger.Fatal().Err(err).Msg("create product failed")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password failed")
	}
	admin := &domain.User{
		ClubID:       club.ID,
		Email:        "admin@demo.club",
		PasswordHash: string(hash),
		Name:         "Demo Admin",
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		logger.Fatal().Err(err).Msg("create admin failed")
	}

	logger.Info().
		Str("club_id", club.ID).
		Str("admin_email", admin.Email).
		Msg("demo data seeded")
}
