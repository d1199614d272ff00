package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

func (q *queries) CountActiveBookings(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q.ext, &count, `
		SELECT COUNT(*) FROM bookings
		WHERE owner_id = ? AND status IN (?, ?)`,
		ownerID, BookingStatusPending, BookingStatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

// CountOverlappingApproved counts approved bookings for the same room and
// date whose half-open time range [start_time, end_time) intersects
// [start, end). Pass excludeID <= 0 to consider every row.
func (q *queries) CountOverlappingApproved(ctx context.Context, room, date, start, end string, excludeID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q.ext, &count, `
		SELECT COUNT(*) FROM bookings
		WHERE room = ? AND date = ? AND status = ?
		AND id != ?
		AND start_time < ? AND end_time > ?`,
		room, date, BookingStatusApproved, excludeID, end, start)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (q *queries) InsertBooking(ctx context.Context, b Booking) (int64, error) {
	now := time.Now().UTC()
	res, err := q.ext.ExecContext(ctx, `
		INSERT INTO bookings
		(owner_id, owner_email, room, date, start_time, end_time, detail, status, approved_by, remark, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', '', ?, ?)`,
		b.OwnerID, b.OwnerEmail, b.Room, b.Date, b.StartTime, b.EndTime, b.Detail, BookingStatusPending, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}
	return res.LastInsertId()
}

func (q *queries) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := sqlx.GetContext(ctx, q.ext, &b, `SELECT * FROM bookings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (q *queries) UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus, approvedBy, remark string) (int64, error) {
	res, err := q.ext.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, approved_by = ?, remark = ?, updated_at = ?
		WHERE id = ?`,
		status, approvedBy, remark, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to update booking status: %w", err)
	}
	return res.RowsAffected()
}

func (q *queries) DeleteBooking(ctx context.Context, id int64) (int64, error) {
	res, err := q.ext.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete booking: %w", err)
	}
	return res.RowsAffected()
}

func (q *queries) ListBookingsByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	var bookings []Booking
	err := sqlx.SelectContext(ctx, q.ext, &bookings, `
		SELECT * FROM bookings
		WHERE owner_id = ?
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (q *queries) ListAllBookings(ctx context.Context) ([]BookingWithOwner, error) {
	var bookings []BookingWithOwner
	err := sqlx.SelectContext(ctx, q.ext, &bookings, `
		SELECT b.*,
			COALESCE(u.first_name, '') AS first_name,
			COALESCE(u.last_name, '') AS last_name
		FROM bookings b
		LEFT JOIN users_reg u ON b.owner_email = u.email AND u.is_deleted = 0
		ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list all bookings: %w", err)
	}
	return bookings, nil
}
