// Package storage provides the per-account SQLite ledger store.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// AccountStore is the durable ledger for a single account: the full set
// of transactions ever imported, and the append-only checkpoint facts.
// Each store owns one database file and is scoped to the processing of
// one account's statement.
type AccountStore struct {
	db        *sql.DB
	accountID string
	dbPath    string
}

// Open opens (creating if needed) the ledger database for an account
// under dir. The store must be closed by the caller on every exit path.
func Open(dir, accountID string) (*AccountStore, error) {
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "db"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("account_%s.db", accountID))

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &AccountStore{
		db:        db,
		accountID: accountID,
		dbPath:    dbPath,
	}, nil
}

// AccountID returns the account this store belongs to.
func (s *AccountStore) AccountID() string {
	return s.accountID
}

// Close closes the database connection.
func (s *AccountStore) Close() error {
	return s.db.Close()
}
