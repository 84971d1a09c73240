package domain

import "time"

type WaitingStatus string

const (
	WaitingPending   WaitingStatus = "WAITING"
	WaitingFulfilled WaitingStatus = "FULFILLED"
	WaitingDismissed WaitingStatus = "DISMISSED"
)

type WaitingListEntry struct {
	ID         int64         `json:"id" gorm:"primaryKey"`
	ClubID     string        `json:"club_id" gorm:"type:uuid;not null;index"`
	CourtID    *int64        `json:"court_id,omitempty" gorm:"index"`
	Date       time.Time     `json:"date" gorm:"not null;index"`
	ClientName string        `json:"client_name" gorm:"not null"`
	Phone      string        `json:"phone" gorm:"not null"`
	Status     WaitingStatus `json:"status" gorm:"not null;default:'WAITING'"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (WaitingListEntry) TableName() string { return "waiting_list_entries" }
