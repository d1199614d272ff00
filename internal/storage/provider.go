package storage

import (
	"context"
	"log/slog"

	"room-access-control/internal/config"
)

// BookingQueries is the booking query surface. Inside InBookingTx the same
// surface runs against a single transaction, so a count-then-insert (or
// count-then-update) sequence observes a consistent snapshot and commits
// atomically.
type BookingQueries interface {
	CountActiveBookings(ctx context.Context, ownerID string) (int, error)
	CountOverlappingApproved(ctx context.Context, room, date, start, end string, excludeID int64) (int, error)
	InsertBooking(ctx context.Context, b Booking) (int64, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus, approvedBy, remark string) (int64, error)
	DeleteBooking(ctx context.Context, id int64) (int64, error)
}

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// Booking methods
	BookingQueries
	InBookingTx(ctx context.Context, fn func(tx BookingQueries) error) error
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]Booking, error)
	ListAllBookings(ctx context.Context) ([]BookingWithOwner, error)

	// User registry methods
	CreateUser(ctx context.Context, user User) (int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUUID(ctx context.Context, uuid string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) (int64, error)
	SoftDeleteUser(ctx context.Context, id int64) (int64, error)
	UserExists(ctx context.Context, uuid, userID, email string, excludeID int64) (bool, error)

	// Admin account methods
	CreateAdminUser(ctx context.Context, admin AdminUser) (int64, error)
	GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error)
	TouchAdminLastLogin(ctx context.Context, id int64) error

	// Door registry methods
	CreateDoor(ctx context.Context, door Door) error
	GetDoorByName(ctx context.Context, name string) (*Door, error)
	ListDoors(ctx context.Context) ([]Door, error)
	DeleteDoor(ctx context.Context, id int64) error
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider, err := NewSQLiteProvider(config)
		if err != nil {
			slog.Error("Failed to open sqlite storage", "error", err)
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
