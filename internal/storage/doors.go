package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func (q *queries) CreateDoor(ctx context.Context, door Door) error {
	createdAt := door.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO doors (name, room, created_at) VALUES (?, ?, ?)`,
		door.Name, door.Room, createdAt)
	if err != nil {
		return fmt.Errorf("failed to create door: %w", err)
	}
	return nil
}

func (q *queries) GetDoorByName(ctx context.Context, name string) (*Door, error) {
	var door Door
	err := sqlx.GetContext(ctx, q.ext, &door, `
		SELECT * FROM doors WHERE name = ? AND deleted_at IS NULL`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get door: %w", err)
	}
	return &door, nil
}

func (q *queries) ListDoors(ctx context.Context) ([]Door, error) {
	var doors []Door
	err := sqlx.SelectContext(ctx, q.ext, &doors, `
		SELECT * FROM doors WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list doors: %w", err)
	}
	return doors, nil
}

func (q *queries) DeleteDoor(ctx context.Context, id int64) error {
	_, err := q.ext.ExecContext(ctx, `
		UPDATE doors SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete door: %w", err)
	}
	return nil
}
