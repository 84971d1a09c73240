package domain

import "time"

type MembershipStatus string

const (
	MembershipNone   MembershipStatus = "NONE"
	MembershipActive MembershipStatus = "ACTIVE"
)

type Client struct {
	ID               int64            `json:"id" gorm:"primaryKey"`
	ClubID           string           `json:"club_id" gorm:"type:uuid;not null;uniqueIndex:idx_client_club_phone,priority:1"`
	Name             string           `json:"name" gorm:"not null"`
	Phone            string           `json:"phone" gorm:"not null;uniqueIndex:idx_client_club_phone,priority:2"`
	Email            *string          `json:"email,omitempty"`
	MembershipStatus MembershipStatus `json:"membership_status" gorm:"not null;default:'NONE'"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
