package storage

import (
	"room-access-control/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (*SQLiteProvider, error) {
	provider, err := NewSQLProvider(config, "sqlite3", config.SQLite.Path)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer. Funnel the pool through one connection
	// so a second transaction begins only after the first commits and its
	// reads observe the committed rows, instead of failing with SQLITE_BUSY
	// mid-transaction. This also keeps ":memory:" databases on the one
	// connection that ran the migrations.
	provider.db.SetMaxOpenConns(1)

	return &SQLiteProvider{
		SQLProvider: *provider,
	}, nil
}
