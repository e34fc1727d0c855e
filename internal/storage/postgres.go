package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AlexZinkM/ether-keystore/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
    position BIGSERIAL PRIMARY KEY,
    address TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS keys (
    address TEXT PRIMARY KEY,
    blob BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const (
	settingRecentlyUsed = "recently_used"
	uniqueViolation     = "23505"
)

// Postgres is a Store backed by a PostgreSQL database.
// Addresses are stored in checksummed form.
type Postgres struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgres wraps an open database handle. The schema must already exist.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// OpenPostgres connects to dsn and creates the schema if needed.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return NewPostgres(db), nil
}

// Close closes the database handle.
func (s *Postgres) Close() error {
	return s.DB.Close()
}

// Wallets returns all wallets ordered by insertion.
func (s *Postgres) Wallets(ctx context.Context) ([]model.Wallet, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT address, type FROM wallets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("Wallets: %w", err)
	}
	defer rows.Close()

	var wallets []model.Wallet
	for rows.Next() {
		var addr, typ string
		if err := rows.Scan(&addr, &typ); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var w model.Wallet
		if err := w.Type.UnmarshalText([]byte(typ)); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		w.Address = common.HexToAddress(addr)
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Wallets: %w", err)
	}
	return wallets, nil
}

// AddWallet appends w. A second wallet for the same address violates the unique constraint.
func (s *Postgres) AddWallet(ctx context.Context, w model.Wallet) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO wallets (address, type) VALUES ($1, $2)`,
		w.Address.Hex(), w.Type.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", model.ErrDuplicateAccount, w.Address.Hex())
		}
		return fmt.Errorf("AddWallet: %w", err)
	}
	return nil
}

// RemoveWallet deletes the wallet at addr.
func (s *Postgres) RemoveWallet(ctx context.Context, addr common.Address) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM wallets WHERE address = $1`, addr.Hex())
	if err != nil {
		return fmt.Errorf("RemoveWallet: %w", err)
	}
	return expectAffected(res)
}

// RecentlyUsed returns the stored recently used address, nil if unset.
func (s *Postgres) RecentlyUsed(ctx context.Context) (*common.Address, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = $1`, settingRecentlyUsed).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("RecentlyUsed: %w", err)
	}
	addr := common.HexToAddress(value)
	return &addr, nil
}

// SetRecentlyUsed stores addr, or clears the setting when addr is nil.
func (s *Postgres) SetRecentlyUsed(ctx context.Context, addr *common.Address) error {
	if addr == nil {
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM settings WHERE name = $1`, settingRecentlyUsed); err != nil {
			return fmt.Errorf("SetRecentlyUsed: %w", err)
		}
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`, settingRecentlyUsed, addr.Hex())
	if err != nil {
		return fmt.Errorf("SetRecentlyUsed: %w", err)
	}
	return nil
}

// Key fetches the keystore blob for addr.
func (s *Postgres) Key(ctx context.Context, addr common.Address) ([]byte, bool, error) {
	var blob []byte
	err := s.DB.QueryRowContext(ctx, `SELECT blob FROM keys WHERE address = $1`, addr.Hex()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Key: %w", err)
	}
	return blob, true, nil
}

// PutKey inserts or replaces the keystore blob for addr.
func (s *Postgres) PutKey(ctx context.Context, addr common.Address, blob []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO keys (address, blob) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET blob = EXCLUDED.blob
	`, addr.Hex(), blob)
	if err != nil {
		return fmt.Errorf("PutKey: %w", err)
	}
	return nil
}

// DeleteKey removes the keystore blob for addr.
func (s *Postgres) DeleteKey(ctx context.Context, addr common.Address) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM keys WHERE address = $1`, addr.Hex())
	if err != nil {
		return fmt.Errorf("DeleteKey: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
