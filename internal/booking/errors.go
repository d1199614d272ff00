package booking

import (
	"errors"
	"fmt"
)

// Business outcomes of the workflow. All of these are expected results
// returned to the caller; only storage failures propagate as system errors.
var (
	// Identity's email domain does not grant booking rights
	ErrNotEligible = errors.New("not eligible to book")
	// Identity lacks approval rights, or is neither owner nor approver
	ErrNotAuthorized = errors.New("not authorized")
	// Unknown booking id
	ErrBookingNotFound = errors.New("booking not found")
	// Missing or malformed request fields
	ErrInvalidBooking = errors.New("invalid booking request")
	// Submission would push the owner over the active-booking ceiling
	ErrQuotaExceeded = errors.New("booking quota exceeded")
	// Requested slot overlaps an approved booking
	ErrSlotConflict = errors.New("time slot already booked")
)

// QuotaError reports how far over the ceiling a submission would land.
type QuotaError struct {
	Active    int // active (pending or approved) bookings the owner already has
	Requested int // size of the rejected batch
	Limit     int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %d active bookings, %d requested, limit %d", e.Active, e.Requested, e.Limit)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

// SlotConflictError identifies the candidate that collided with an approved
// booking, so the caller can report which room/time/date was taken.
type SlotConflictError struct {
	Room      string
	Date      string
	StartTime string
	EndTime   string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("room %s is already booked for %s-%s on %s", e.Room, e.StartTime, e.EndTime, e.Date)
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}

// ValidationError pinpoints the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidBooking
}
