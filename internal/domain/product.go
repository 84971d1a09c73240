package domain

import "time"

// Product is a kiosk stock item. Stock moves together with booking items
// and kiosk sales.
type Product struct {
	ID     int64   `json:"id" gorm:"primaryKey"`
	ClubID string  `json:"club_id" gorm:"type:uuid;not null;index"`
	Name   string  `json:"name" gorm:"not null"`
	Price  float64 `json:"price" gorm:"not null"`
	Stock  int     `json:"stock" gorm:"not null;default:0"`
	// Pointer so a false value survives the insert; a plain bool would be
	// dropped as a zero value and take the column default.
	IsActive  *bool     `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }
