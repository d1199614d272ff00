package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"room-access-control/internal/config"
)

type SQLProvider struct {
	queries

	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

// queries implements the query surface on top of either a *sqlx.DB or a
// *sqlx.Tx, so transactional and autocommit callers share one implementation.
type queries struct {
	ext sqlx.ExtContext
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := slog.With("component", "storage")

	return &SQLProvider{
		queries: queries{ext: db},
		db:      db,
		config:  config,
		logger:  logger,
	}, nil
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// InBookingTx runs fn against a single database transaction. The transaction
// is committed when fn returns nil and rolled back otherwise, so a batch of
// inserts either lands whole or not at all, and an overlap re-check and its
// status write cannot interleave with a concurrent approval.
func (p *SQLProvider) InBookingTx(ctx context.Context, fn func(tx BookingQueries) error) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&queries{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
