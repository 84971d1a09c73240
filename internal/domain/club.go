package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Club is the tenant root. Every other entity is scoped to a club.
type Club struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	SlotDuration int       `json:"slot_duration" gorm:"not null;default:90"`
	OpenTime     string    `json:"open_time" gorm:"not null;default:'08:00'"`
	CloseTime    string    `json:"close_time" gorm:"not null;default:'23:00'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Club) TableName() string { return "clubs" }

func (c *Club) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Court struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ClubID    string    `json:"club_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	IsActive  *bool     `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (Court) TableName() string { return "courts" }
