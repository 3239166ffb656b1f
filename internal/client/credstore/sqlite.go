package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/snipperhq/snipper-cli/internal/client/models"
	"github.com/snipperhq/snipper-cli/internal/dbx"
)

// Keys in the credentials key-value table.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyClientID     = "client_id"
)

// SQLiteStore keeps the credential pair in the CLI's local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) get(ctx context.Context, q dbx.DBTX, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

// Save writes both tokens in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, creds models.Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.set(ctx, tx, keyAccessToken, creds.AccessToken); err != nil {
			return err
		}
		return s.set(ctx, tx, keyRefreshToken, creds.RefreshToken)
	})
}

// Load returns the cached pair, or (nil, nil) when either token is missing.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Credentials, error) {
	access, err := s.get(ctx, s.db, keyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.get(ctx, s.db, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" || refresh == "" {
		return nil, nil
	}
	return &models.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// Clear removes the token pair. The client id is kept: it identifies the
// installation, not the session.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE key IN (?, ?)`, keyAccessToken, keyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// ClientID returns the stable installation id, generating and persisting
// one on first use.
func (s *SQLiteStore) ClientID(ctx context.Context) (string, error) {
	id, err := s.get(ctx, s.db, keyClientID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.set(ctx, s.db, keyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}
