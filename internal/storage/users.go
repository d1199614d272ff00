package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func (q *queries) CreateUser(ctx context.Context, user User) (int64, error) {
	now := time.Now().UTC()
	res, err := q.ext.ExecContext(ctx, `
		INSERT INTO users_reg
		(uuid, user_id, first_name, last_name, name, email, role, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		user.UUID, user.UserID, user.FirstName, user.LastName,
		user.FirstName+" "+user.LastName, user.Email, user.Role, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

func (q *queries) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := sqlx.GetContext(ctx, q.ext, &user, `
		SELECT * FROM users_reg WHERE id = ? AND is_deleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (q *queries) GetUserByUUID(ctx context.Context, uuid string) (*User, error) {
	var user User
	err := sqlx.GetContext(ctx, q.ext, &user, `
		SELECT * FROM users_reg WHERE uuid = ? AND is_deleted = 0`, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by uuid: %w", err)
	}
	return &user, nil
}

func (q *queries) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := sqlx.SelectContext(ctx, q.ext, &users, `
		SELECT * FROM users_reg
		WHERE is_deleted = 0
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (q *queries) UpdateUser(ctx context.Context, user User) (int64, error) {
	res, err := q.ext.ExecContext(ctx, `
		UPDATE users_reg
		SET user_id = ?, first_name = ?, last_name = ?, name = ?, email = ?, role = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		user.UserID, user.FirstName, user.LastName,
		user.FirstName+" "+user.LastName, user.Email, user.Role,
		time.Now().UTC(), user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update user: %w", err)
	}
	return res.RowsAffected()
}

// SoftDeleteUser flags the row instead of removing it. The registry keeps
// history; only bookings are hard deleted.
func (q *queries) SoftDeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := q.ext.ExecContext(ctx, `
		UPDATE users_reg
		SET is_deleted = 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}
	return res.RowsAffected()
}

// UserExists reports whether an active registry row already claims the given
// uuid, user_id or email. Pass excludeID > 0 to ignore one row, for updates.
func (q *queries) UserExists(ctx context.Context, uuid, userID, email string, excludeID int64) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q.ext, &count, `
		SELECT COUNT(*) FROM users_reg
		WHERE (uuid = ? OR user_id = ? OR email = ?) AND is_deleted = 0 AND id != ?`,
		uuid, userID, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (q *queries) CreateAdminUser(ctx context.Context, admin AdminUser) (int64, error) {
	role := admin.Role
	if role == "" {
		role = "admin"
	}
	res, err := q.ext.ExecContext(ctx, `
		INSERT INTO admin_users (email, first_name, last_name, password_hash, role, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		admin.Email, admin.FirstName, admin.LastName, admin.PasswordHash, role, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create admin user: %w", err)
	}
	return res.LastInsertId()
}

func (q *queries) GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var admin AdminUser
	err := sqlx.GetContext(ctx, q.ext, &admin, `
		SELECT * FROM admin_users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &admin, nil
}

func (q *queries) TouchAdminLastLogin(ctx context.Context, id int64) error {
	_, err := q.ext.ExecContext(ctx, `
		UPDATE admin_users SET last_login = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
