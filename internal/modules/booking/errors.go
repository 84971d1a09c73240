package booking

import "errors"

var (
	ErrClubNotFound        = errors.New("club not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrValidation          = errors.New("invalid booking request")
	ErrOutsideOpeningHours = errors.New("outside club opening hours")
	ErrSlotTaken           = errors.New("time slot already booked")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrItemNotFound        = errors.New("booking item not found")
)
