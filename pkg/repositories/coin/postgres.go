package coin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS balances (
	account_id TEXT PRIMARY KEY,
	coins BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	delta BIGINT NOT NULL,
	reason TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	balance_after BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS spin_grants (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	label TEXT NOT NULL,
	value BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS redemptions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	reward_key TEXT NOT NULL,
	reward_label TEXT NOT NULL,
	coins_spent BIGINT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_ledger_reason ON ledger_entries(account_id, reason);
CREATE INDEX IF NOT EXISTS idx_spin_grants_account ON spin_grants(account_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_redemptions_account ON redemptions(account_id, created_at DESC);
`

// PostgresRepository implements Repository against PostgreSQL. The
// conditional UPDATE ... RETURNING inside a transaction is the atomic
// floor-checked mutation; serialization failures surface as
// ErrConcurrentModification for the mutator's retry loop.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository connects to PostgreSQL and ensures the schema exists
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error reaching postgres: %w", err)
	}

	if _, err := db.Exec(postgresSchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// GetBalance retrieves the current balance, provisioning zero for new accounts
func (r *PostgresRepository) GetBalance(ctx context.Context, accountID string) (*entities.Balance, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO balances (account_id, coins) VALUES ($1, 0) ON CONFLICT (account_id) DO NOTHING`,
		accountID,
	); err != nil {
		return nil, mapPostgresError(err)
	}

	var balance entities.Balance
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id, coins, updated_at FROM balances WHERE account_id = $1`,
		accountID,
	).Scan(&balance.AccountID, &balance.Coins, &balance.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, mapPostgresError(err)
	}

	return &balance, nil
}

// ApplyDelta atomically adjusts the balance and appends the ledger entry
func (r *PostgresRepository) ApplyDelta(ctx context.Context, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	defer tx.Rollback()

	newBalance, err := r.applyInTx(ctx, tx, accountID, delta, entry)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, mapPostgresError(err)
	}
	return newBalance, nil
}

// RecordSpin stores the grant and, for coin wins, the balance change and
// ledger entry in the same transaction
func (r *PostgresRepository) RecordSpin(ctx context.Context, grant *entities.SpinGrant, entry *entities.LedgerEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	defer tx.Rollback()

	var newBalance int64
	if entry != nil {
		newBalance, err = r.applyInTx(ctx, tx, grant.AccountID, entry.Delta, entry)
		if err != nil {
			return 0, err
		}
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE((SELECT coins FROM balances WHERE account_id = $1), 0)`,
			grant.AccountID,
		).Scan(&newBalance)
		if err != nil {
			return 0, mapPostgresError(err)
		}
	}

	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO spin_grants (id, account_id, label, value, created_at) VALUES ($1, $2, $3, $4, $5)`,
		grant.ID, grant.AccountID, grant.Label, grant.Value, grant.CreatedAt,
	); err != nil {
		return 0, mapPostgresError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, mapPostgresError(err)
	}
	return newBalance, nil
}

// SpinWindow counts grants at or after the cutoff and returns the oldest one
func (r *PostgresRepository) SpinWindow(ctx context.Context, accountID string, since time.Time) (int, time.Time, error) {
	var count int
	var oldest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_at) FROM spin_grants WHERE account_id = $1 AND created_at >= $2`,
		accountID, since,
	).Scan(&count, &oldest)
	if err != nil {
		return 0, time.Time{}, mapPostgresError(err)
	}

	if count == 0 || !oldest.Valid {
		return count, time.Time{}, nil
	}
	return count, oldest.Time, nil
}

// GetEntries retrieves recent ledger entries, most recent first
func (r *PostgresRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, account_id, delta, reason, note, created_at, balance_after
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		accountID, limit)
}

// GetEntriesByReason retrieves recent entries with a reason code, most recent first
func (r *PostgresRepository) GetEntriesByReason(ctx context.Context, accountID string, reason entities.LedgerReason, limit int) ([]*entities.LedgerEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, account_id, delta, reason, note, created_at, balance_after
		FROM ledger_entries
		WHERE account_id = $1 AND reason = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		accountID, string(reason), limit)
}

// SumDeltas returns the sum of all ledger deltas for an account
func (r *PostgresRepository) SumDeltas(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE account_id = $1`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	return sum, nil
}

// ListAccounts returns every account with a balance row
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT account_id FROM balances ORDER BY account_id`)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, mapPostgresError(err)
		}
		accounts = append(accounts, accountID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return accounts, nil
}

// GetSpins retrieves recent spin grants, most recent first
func (r *PostgresRepository) GetSpins(ctx context.Context, accountID string, limit int) ([]*entities.SpinGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, label, value, created_at
		FROM spin_grants
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var spins []*entities.SpinGrant
	for rows.Next() {
		var grant entities.SpinGrant
		if err := rows.Scan(&grant.ID, &grant.AccountID, &grant.Label, &grant.Value, &grant.CreatedAt); err != nil {
			return nil, mapPostgresError(err)
		}
		spins = append(spins, &grant)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return spins, nil
}

// AddRedemption records a redemption reporting row
func (r *PostgresRepository) AddRedemption(ctx context.Context, redemption *entities.Redemption) error {
	if redemption.ID == "" {
		redemption.ID = uuid.New().String()
	}
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO redemptions (id, account_id, reward_key, reward_label, coins_spent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		redemption.ID, redemption.AccountID, redemption.RewardKey, redemption.RewardLabel,
		redemption.CoinsSpent, string(redemption.Status), redemption.CreatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}
	return nil
}

// GetRedemptions retrieves recent redemption records, most recent first
func (r *PostgresRepository) GetRedemptions(ctx context.Context, accountID string, limit int) ([]*entities.Redemption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, reward_key, reward_label, coins_spent, status, created_at
		FROM redemptions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var redemptions []*entities.Redemption
	for rows.Next() {
		var redemption entities.Redemption
		var status string
		if err := rows.Scan(&redemption.ID, &redemption.AccountID, &redemption.RewardKey,
			&redemption.RewardLabel, &redemption.CoinsSpent, &status, &redemption.CreatedAt); err != nil {
			return nil, mapPostgresError(err)
		}
		redemption.Status = entities.RedemptionStatus(status)
		redemptions = append(redemptions, &redemption)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return redemptions, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// applyInTx runs the conditional balance update and ledger insert inside tx
func (r *PostgresRepository) applyInTx(ctx context.Context, tx *sql.Tx, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO balances (account_id, coins) VALUES ($1, 0) ON CONFLICT (account_id) DO NOTHING`,
		accountID,
	); err != nil {
		return 0, mapPostgresError(err)
	}

	var newBalance int64
	err := tx.QueryRowContext(ctx,
		`UPDATE balances
		SET coins = coins + $1, updated_at = NOW()
		WHERE account_id = $2 AND coins + $1 >= 0
		RETURNING coins`,
		delta, accountID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row exists (upserted above), so no match means the floor check failed
			return 0, ErrInsufficientFunds
		}
		return 0, mapPostgresError(err)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.AccountID = accountID
	entry.Delta = delta
	entry.BalanceAfter = newBalance

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, account_id, delta, reason, note, created_at, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.AccountID, entry.Delta, string(entry.Reason), entry.Note,
		entry.CreatedAt, entry.BalanceAfter,
	); err != nil {
		return 0, mapPostgresError(err)
	}

	return newBalance, nil
}

// queryEntries runs a ledger query and scans the rows
func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*entities.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		var reason string
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Delta, &reason,
			&entry.Note, &entry.CreatedAt, &entry.BalanceAfter); err != nil {
			return nil, mapPostgresError(err)
		}
		entry.Reason = entities.LedgerReason(reason)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}

	return entries, nil
}

// mapPostgresError translates pq failures into the repository error
// vocabulary. Serialization and deadlock failures are retryable conflicts.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
	}

	return fmt.Errorf("error accessing coin store: %w", err)
}
