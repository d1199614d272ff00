// Package booking implements the room-booking workflow: submission with
// per-user quotas, overlap detection against approved bookings, and the
// pending → approved/rejected approval state machine.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"room-access-control/internal/identity"
	"room-access-control/internal/storage"
)

// DefaultRejectRemark is applied when an approver rejects without a remark.
const DefaultRejectRemark = "Booking request was not approved"

// Store is the persistence surface the workflow needs. *storage.SQLProvider
// satisfies it; tests substitute an in-memory implementation.
type Store interface {
	storage.BookingQueries
	InBookingTx(ctx context.Context, fn func(tx storage.BookingQueries) error) error
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]storage.Booking, error)
	ListAllBookings(ctx context.Context) ([]storage.BookingWithOwner, error)
}

// Policy decides booking and approval capabilities for an identity.
type Policy interface {
	CanBook(id identity.Identity) bool
	CanApprove(id identity.Identity) bool
}

// Request is a normalized booking candidate. The HTTP boundary maps its
// loose field aliases onto this struct before the workflow sees it.
type Request struct {
	Room      string
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Detail    string
}

type Service struct {
	store  Store
	policy Policy
	quota  int
	logger *slog.Logger
}

func NewService(store Store, policy Policy, quota int) *Service {
	return &Service{
		store:  store,
		policy: policy,
		quota:  quota,
		logger: slog.With("component", "booking"),
	}
}

func validateRequest(r Request) error {
	switch {
	case r.Room == "":
		return &ValidationError{Field: "room", Reason: "is required"}
	case r.Date == "":
		return &ValidationError{Field: "date", Reason: "is required"}
	case r.StartTime == "":
		return &ValidationError{Field: "start_time", Reason: "is required"}
	case r.EndTime == "":
		return &ValidationError{Field: "end_time", Reason: "is required"}
	}

	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	for _, f := range []struct{ name, value string }{
		{"start_time", r.StartTime},
		{"end_time", r.EndTime},
	} {
		if len(f.value) != 5 {
			return &ValidationError{Field: f.name, Reason: "must be HH:MM"}
		}
		if _, err := time.Parse("15:04", f.value); err != nil {
			return &ValidationError{Field: f.name, Reason: "must be HH:MM"}
		}
	}

	// Lexical comparison is valid for zero-padded 24-hour times.
	// Cross-midnight ranges are not supported.
	if r.StartTime >= r.EndTime {
		return &ValidationError{Field: "start_time", Reason: "must be before end_time"}
	}

	return nil
}

// Submit files a batch of booking candidates as pending requests. The batch
// is atomic: eligibility, quota and per-candidate overlap checks all pass, or
// nothing is written. The quota is evaluated once for the whole batch.
func (s *Service) Submit(ctx context.Context, id identity.Identity, reqs []Request) ([]storage.Booking, error) {
	if !s.policy.CanBook(id) {
		return nil, ErrNotEligible
	}
	if len(reqs) == 0 {
		return nil, &ValidationError{Field: "bookings", Reason: "must not be empty"}
	}
	for _, r := range reqs {
		if err := validateRequest(r); err != nil {
			return nil, err
		}
	}

	var created []storage.Booking

	err := s.store.InBookingTx(ctx, func(tx storage.BookingQueries) error {
		active, err := tx.CountActiveBookings(ctx, id.SubjectID)
		if err != nil {
			return err
		}
		if active+len(reqs) > s.quota {
			return &QuotaError{Active: active, Requested: len(reqs), Limit: s.quota}
		}

		for _, r := range reqs {
			conflicts, err := tx.CountOverlappingApproved(ctx, r.Room, r.Date, r.StartTime, r.EndTime, 0)
			if err != nil {
				return err
			}
			if conflicts > 0 {
				return &SlotConflictError{Room: r.Room, Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime}
			}

			b := storage.Booking{
				OwnerID:    id.SubjectID,
				OwnerEmail: id.Email,
				Room:       r.Room,
				Date:       r.Date,
				StartTime:  r.StartTime,
				EndTime:    r.EndTime,
				Detail:     r.Detail,
				Status:     storage.BookingStatusPending,
			}
			bookingID, err := tx.InsertBooking(ctx, b)
			if err != nil {
				return err
			}
			b.ID = bookingID
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bookings submitted", "owner", id.SubjectID, "count", len(created))
	return created, nil
}

// Approve moves a pending booking to approved. The overlap check and the
// status write share one transaction: when two pending requests for the same
// slot are approved concurrently, the second transaction observes the first's
// committed row and fails with a slot conflict.
func (s *Service) Approve(ctx context.Context, approver identity.Identity, bookingID int64, remark string) error {
	if !s.policy.CanApprove(approver) {
		return ErrNotAuthorized
	}

	err := s.store.InBookingTx(ctx, func(tx storage.BookingQueries) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		conflicts, err := tx.CountOverlappingApproved(ctx, b.Room, b.Date, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return &SlotConflictError{Room: b.Room, Date: b.Date, StartTime: b.StartTime, EndTime: b.EndTime}
		}

		_, err = tx.UpdateBookingStatus(ctx, bookingID, storage.BookingStatusApproved, approver.Email, remark)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Booking approved", "booking_id", bookingID, "approver", approver.Email)
	return nil
}

// Reject moves a booking to rejected unconditionally. Rejection never creates
// a scheduling obligation, so no overlap check is needed, and re-rejecting an
// already rejected booking just re-applies the remark.
func (s *Service) Reject(ctx context.Context, approver identity.Identity, bookingID int64, remark string) error {
	if !s.policy.CanApprove(approver) {
		return ErrNotAuthorized
	}
	if remark == "" {
		remark = DefaultRejectRemark
	}

	if _, err := s.store.GetBooking(ctx, bookingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	affected, err := s.store.UpdateBookingStatus(ctx, bookingID, storage.BookingStatusRejected, approver.Email, remark)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	s.logger.Info("Booking rejected", "booking_id", bookingID, "approver", approver.Email)
	return nil
}

// Delete removes a booking outright. Permitted for the booking's owner or an
// approver; bookings are hard deleted, unlike the registry's soft delete.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, bookingID int64) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}

	isOwner := b.OwnerID == actor.SubjectID
	if !isOwner && !s.policy.CanApprove(actor) {
		return ErrNotAuthorized
	}

	affected, err := s.store.DeleteBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	s.logger.Info("Booking deleted", "booking_id", bookingID, "actor", actor.SubjectID, "owner", isOwner)
	return nil
}

// ListForOwner returns the caller's own bookings, newest first.
func (s *Service) ListForOwner(ctx context.Context, id identity.Identity) ([]storage.Booking, error) {
	if id.IsZero() {
		return nil, ErrNotAuthorized
	}
	return s.store.ListBookingsByOwner(ctx, id.SubjectID)
}

// ListAll returns every booking with owner names joined in. Approver only.
func (s *Service) ListAll(ctx context.Context, id identity.Identity) ([]storage.BookingWithOwner, error) {
	if !s.policy.CanApprove(id) {
		return nil, ErrNotAuthorized
	}
	return s.store.ListAllBookings(ctx)
}

// ParseBookingID converts a path parameter to a booking id.
func ParseBookingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid booking id %q", ErrInvalidBooking, raw)
	}
	return id, nil
}
