package domain

import "time"

// PriceRule resolves the slot price for a club by day of week and time
// range. Higher priority wins; DaysOfWeek is a comma list of weekday
// numbers ("0,6"), empty means every day.
type PriceRule struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	ClubID     string     `json:"club_id" gorm:"type:uuid;not null;index"`
	DaysOfWeek string     `json:"days_of_week"`
	StartTime  string     `json:"start_time" gorm:"not null"`
	EndTime    string     `json:"end_time" gorm:"not null"`
	Price      float64    `json:"price" gorm:"not null"`
	Priority   int        `json:"priority" gorm:"not null;default:0"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (PriceRule) TableName() string { return "price_rules" }
