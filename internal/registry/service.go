// Package registry manages the user registry backing the RFID readers:
// who owns which card, and whether the record is still active. Records are
// soft deleted so a revoked card stays visible in history.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"room-access-control/internal/storage"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrInvalidUser   = errors.New("invalid user record")
)

// Store is the slice of the storage provider the registry needs.
type Store interface {
	CreateUser(ctx context.Context, user storage.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*storage.User, error)
	GetUserByUUID(ctx context.Context, uuid string) (*storage.User, error)
	ListUsers(ctx context.Context) ([]storage.User, error)
	UpdateUser(ctx context.Context, user storage.User) (int64, error)
	SoftDeleteUser(ctx context.Context, id int64) (int64, error)
	UserExists(ctx context.Context, uuid, userID, email string, excludeID int64) (bool, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: slog.With("component", "registry"),
	}
}

func validateUser(u storage.User) error {
	switch {
	case strings.TrimSpace(u.UUID) == "":
		return fmt.Errorf("%w: card uuid is required", ErrInvalidUser)
	case strings.TrimSpace(u.UserID) == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidUser)
	case strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "":
		return fmt.Errorf("%w: first and last name are required", ErrInvalidUser)
	case !strings.Contains(u.Email, "@"):
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidUser, u.Email)
	}
	return nil
}

// Add registers a new user. Card uuid, user id and email must all be unique
// among active records.
func (s *Service) Add(ctx context.Context, u storage.User) (*storage.User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, u.UUID, u.UserID, u.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: uuid, user id or email already registered", ErrDuplicateUser)
	}

	u.Name = u.FirstName + " " + u.LastName
	if u.Role == "" {
		u.Role = "user"
	}

	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id

	s.logger.Info("User registered", "id", id, "user_id", u.UserID)
	return &u, nil
}

// Update replaces the mutable fields of an existing record. Uniqueness is
// re-checked against every active record except the one being updated.
func (s *Service) Update(ctx context.Context, u storage.User) (*storage.User, error) {
	if u.ID <= 0 {
		return nil, fmt.Errorf("%w: missing record id", ErrInvalidUser)
	}
	if err := validateUser(u); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUser(ctx, u.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, u.UUID, u.UserID, u.Email, u.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: uuid, user id or email already registered", ErrDuplicateUser)
	}

	u.Name = u.FirstName + " " + u.LastName
	u.CreatedAt = existing.CreatedAt
	if u.Role == "" {
		u.Role = existing.Role
	}

	affected, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	s.logger.Info("User updated", "id", u.ID, "user_id", u.UserID)
	return &u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*storage.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByCard resolves a scanned card uuid to its active owner.
func (s *Service) GetByCard(ctx context.Context, uuid string) (*storage.User, error) {
	u, err := s.store.GetUserByUUID(ctx, uuid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]storage.User, error) {
	return s.store.ListUsers(ctx)
}

// Remove soft deletes a record. The row survives for auditability but the
// card no longer resolves.
func (s *Service) Remove(ctx context.Context, id int64) error {
	affected, err := s.store.SoftDeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	s.logger.Info("User removed", "id", id)
	return nil
}
