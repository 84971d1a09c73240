package domain

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// SystemUser is the acting-user sentinel recorded when an operation has
// no authenticated session behind it.
const SystemUser = "system"

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	ClubID       string    `json:"club_id" gorm:"type:uuid;not null;index"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;default:'STAFF'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
