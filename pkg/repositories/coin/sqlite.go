package coin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadedpez/zeuscoins/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite table schemas
const (
	createBalancesTableSQL = `
	CREATE TABLE IF NOT EXISTS balances (
		account_id TEXT PRIMARY KEY,
		coins INTEGER NOT NULL DEFAULT 0 CHECK (coins >= 0),
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createLedgerTableSQL = `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		delta INTEGER NOT NULL,
		reason TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		balance_after INTEGER NOT NULL,
		FOREIGN KEY (account_id) REFERENCES balances(account_id)
	)`

	createSpinGrantsTableSQL = `
	CREATE TABLE IF NOT EXISTS spin_grants (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		label TEXT NOT NULL,
		value INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createRedemptionsTableSQL = `
	CREATE TABLE IF NOT EXISTS redemptions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		reward_key TEXT NOT NULL,
		reward_label TEXT NOT NULL,
		coins_spent INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_ledger_reason ON ledger_entries(account_id, reason);
	CREATE INDEX IF NOT EXISTS idx_spin_grants_account ON spin_grants(account_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_redemptions_account ON redemptions(account_id, created_at DESC)
	`
)

const sqliteTimeFormat = "2006-01-02 15:04:05.999999999"

// SQLiteRepository implements Repository using SQLite. The conditional
// UPDATE inside a transaction gives the atomic floor-checked balance
// mutation the mutator relies on.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Create tables if they don't exist
	for _, schema := range []string{
		createBalancesTableSQL,
		createLedgerTableSQL,
		createSpinGrantsTableSQL,
		createRedemptionsTableSQL,
		createIndexesSQL,
	} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating schema: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

// GetBalance retrieves the current balance, provisioning zero for new accounts
func (r *SQLiteRepository) GetBalance(ctx context.Context, accountID string) (*entities.Balance, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO balances (account_id, coins, updated_at) VALUES (?, 0, ?)`,
		accountID, time.Now().Format(sqliteTimeFormat),
	); err != nil {
		return nil, mapSQLiteError(err)
	}

	var balance entities.Balance
	var updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id, coins, updated_at FROM balances WHERE account_id = ?`,
		accountID,
	).Scan(&balance.AccountID, &balance.Coins, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, mapSQLiteError(err)
	}

	balance.LastUpdated, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}

	return &balance, nil
}

// ApplyDelta atomically adjusts the balance and appends the ledger entry
func (r *SQLiteRepository) ApplyDelta(ctx context.Context, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	defer tx.Rollback()

	newBalance, err := r.applyInTx(ctx, tx, accountID, delta, entry)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, mapSQLiteError(err)
	}
	return newBalance, nil
}

// RecordSpin stores the grant and, for coin wins, the balance change and
// ledger entry in the same transaction
func (r *SQLiteRepository) RecordSpin(ctx context.Context, grant *entities.SpinGrant, entry *entities.LedgerEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapSQLiteError(err)
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
			`SELECT COALESCE((SELECT coins FROM balances WHERE account_id = ?), 0)`,
			grant.AccountID,
		).Scan(&newBalance)
		if err != nil {
			return 0, mapSQLiteError(err)
		}
	}

	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO spin_grants (id, account_id, label, value, created_at) VALUES (?, ?, ?, ?, ?)`,
		grant.ID, grant.AccountID, grant.Label, grant.Value, grant.CreatedAt.Format(sqliteTimeFormat),
	); err != nil {
		return 0, mapSQLiteError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, mapSQLiteError(err)
	}
	return newBalance, nil
}

// SpinWindow counts grants at or after the cutoff and returns the oldest one
func (r *SQLiteRepository) SpinWindow(ctx context.Context, accountID string, since time.Time) (int, time.Time, error) {
	var count int
	var oldest sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_at) FROM spin_grants WHERE account_id = ? AND created_at >= ?`,
		accountID, since.Format(sqliteTimeFormat),
	).Scan(&count, &oldest)
	if err != nil {
		return 0, time.Time{}, mapSQLiteError(err)
	}

	if count == 0 || !oldest.Valid {
		return count, time.Time{}, nil
	}

	oldestAt, err := parseTimestamp(oldest.String)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, oldestAt, nil
}

// GetEntries retrieves recent ledger entries, most recent first
func (r *SQLiteRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, account_id, delta, reason, note, created_at, balance_after
		FROM ledger_entries
		WHERE account_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		accountID, limit)
}

// GetEntriesByReason retrieves recent entries with a reason code, most recent first
func (r *SQLiteRepository) GetEntriesByReason(ctx context.Context, accountID string, reason entities.LedgerReason, limit int) ([]*entities.LedgerEntry, error) {
	return r.queryEntries(ctx,
		`SELECT id, account_id, delta, reason, note, created_at, balance_after
		FROM ledger_entries
		WHERE account_id = ? AND reason = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		accountID, string(reason), limit)
}

// SumDeltas returns the sum of all ledger deltas for an account
func (r *SQLiteRepository) SumDeltas(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE account_id = ?`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	return sum, nil
}

// ListAccounts returns every account with a balance row
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT account_id FROM balances ORDER BY account_id`)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, mapSQLiteError(err)
		}
		accounts = append(accounts, accountID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return accounts, nil
}

// GetSpins retrieves recent spin grants, most recent first
func (r *SQLiteRepository) GetSpins(ctx context.Context, accountID string, limit int) ([]*entities.SpinGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, label, value, created_at
		FROM spin_grants
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		accountID, limit)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var spins []*entities.SpinGrant
	for rows.Next() {
		var grant entities.SpinGrant
		var createdAt string
		if err := rows.Scan(&grant.ID, &grant.AccountID, &grant.Label, &grant.Value, &createdAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		grant.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		spins = append(spins, &grant)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return spins, nil
}

// AddRedemption records a redemption reporting row
func (r *SQLiteRepository) AddRedemption(ctx context.Context, redemption *entities.Redemption) error {
	if redemption.ID == "" {
		redemption.ID = uuid.New().String()
	}
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO redemptions (id, account_id, reward_key, reward_label, coins_spent, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		redemption.ID, redemption.AccountID, redemption.RewardKey, redemption.RewardLabel,
		redemption.CoinsSpent, string(redemption.Status), redemption.CreatedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// GetRedemptions retrieves recent redemption records, most recent first
func (r *SQLiteRepository) GetRedemptions(ctx context.Context, accountID string, limit int) ([]*entities.Redemption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, reward_key, reward_label, coins_spent, status, created_at
		FROM redemptions
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		accountID, limit)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var redemptions []*entities.Redemption
	for rows.Next() {
		var redemption entities.Redemption
		var status, createdAt string
		if err := rows.Scan(&redemption.ID, &redemption.AccountID, &redemption.RewardKey,
			&redemption.RewardLabel, &redemption.CoinsSpent, &status, &createdAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		redemption.Status = entities.RedemptionStatus(status)
		redemption.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		redemptions = append(redemptions, &redemption)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return redemptions, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// applyInTx runs the conditional balance update and ledger insert inside tx.
// The WHERE clause is the non-negativity floor: zero rows affected after the
// upsert means the delta would have gone negative.
func (r *SQLiteRepository) applyInTx(ctx context.Context, tx *sql.Tx, accountID string, delta int64, entry *entities.LedgerEntry) (int64, error) {
	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO balances (account_id, coins, updated_at) VALUES (?, 0, ?)`,
		accountID, now.Format(sqliteTimeFormat),
	); err != nil {
		return 0, mapSQLiteError(err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE balances
		SET coins = coins + ?, updated_at = ?
		WHERE account_id = ? AND coins + ? >= 0`,
		delta, now.Format(sqliteTimeFormat), accountID, delta,
	)
	if err != nil {
		return 0, mapSQLiteError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	if rowsAffected == 0 {
		return 0, ErrInsufficientFunds
	}

	var newBalance int64
	if err := tx.QueryRowContext(ctx,
		`SELECT coins FROM balances WHERE account_id = ?`, accountID,
	).Scan(&newBalance); err != nil {
		return 0, mapSQLiteError(err)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.AccountID = accountID
	entry.Delta = delta
	entry.BalanceAfter = newBalance

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, account_id, delta, reason, note, created_at, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.AccountID, entry.Delta, string(entry.Reason), entry.Note,
		entry.CreatedAt.Format(sqliteTimeFormat), entry.BalanceAfter,
	); err != nil {
		return 0, mapSQLiteError(err)
	}

	return newBalance, nil
}

// queryEntries runs a ledger query and scans the rows
func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*entities.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		var reason, createdAt string
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Delta, &reason,
			&entry.Note, &createdAt, &entry.BalanceAfter); err != nil {
			return nil, mapSQLiteError(err)
		}
		entry.Reason = entities.LedgerReason(reason)
		entry.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return entries, nil
}

// parseTimestamp parses a timestamp stored by SQLite. Older rows may use
// the second-precision format, so several layouts are tried.
func parseTimestamp(value string) (time.Time, error) {
	formats := []string{
		sqliteTimeFormat,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339Nano,
		time.RFC3339,
	}

	var parseErr error
	for _, format := range formats {
		var parsed time.Time
		parsed, parseErr = time.Parse(format, value)
		if parseErr == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// mapSQLiteError translates driver failures into the repository error
// vocabulary. A locked database is a write conflict the mutator retries.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy") {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return fmt.Errorf("error accessing coin store: %w", err)
}
