// Package storage persists per-user budget datasets in SQLite. A
// dataset is saved wholesale: one transaction replaces every row the
// user owns, mirroring the snapshot nature of the domain model.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ordenate/internal/budget"
	"ordenate/internal/core"

	_ "modernc.org/sqlite"
)

const (
	kindExpense = "expense"
	kindIncome  = "income"
)

// ErrUserNotFound is returned when a username has no row.
var ErrUserNotFound = errors.New("user not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a user and an empty dataset row, returning the new id.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (user_id) VALUES (?)`, id); err != nil {
		return 0, fmt.Errorf("insert dataset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetUserCredentials returns the id and password hash for a username.
func (r *SQLiteRepository) GetUserCredentials(ctx context.Context, username string) (int64, string, error) {
	var id int64
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ?`, username).
		Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrUserNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("query user: %w", err)
	}
	return id, hash, nil
}

// GetUsername resolves a user id back to its username.
func (r *SQLiteRepository) GetUsername(ctx context.Context, userID int64) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, userID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query username: %w", err)
	}
	return username, nil
}

// UserExists reports whether a username is taken.
func (r *SQLiteRepository) UserExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return n > 0, nil
}

// Load reads a user's complete dataset. Legacy adjustment rows are
// folded into the override tables when no current row covers the same
// key; the merge happens in memory and is persisted on the next Save.
func (r *SQLiteRepository) Load(ctx context.Context, userID int64) (*core.Dataset, error) {
	ds := &core.Dataset{}

	err := r.db.QueryRowContext(ctx,
		`SELECT version, balance_cents, comment FROM datasets WHERE user_id = ?`, userID).
		Scan(&ds.Version, &ds.Account.Balance.Cents, &ds.Comment)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query dataset: %w", err)
	}

	if ds.Expenses, err = r.loadItems(ctx, userID, kindExpense); err != nil {
		return nil, err
	}
	if ds.Incomes, err = r.loadItems(ctx, userID, kindIncome); err != nil {
		return nil, err
	}
	if ds.ExpenseOverrides, err = r.loadOverrides(ctx, userID, kindExpense, "overrides"); err != nil {
		return nil, err
	}
	if ds.IncomeOverrides, err = r.loadOverrides(ctx, userID, kindIncome, "overrides"); err != nil {
		return nil, err
	}
	if ds.Payments, err = r.loadPayments(ctx, userID); err != nil {
		return nil, err
	}

	legacyExpense, err := r.loadOverrides(ctx, userID, kindExpense, "legacy_adjustments")
	if err != nil {
		return nil, err
	}
	legacyIncome, err := r.loadOverrides(ctx, userID, kindIncome, "legacy_adjustments")
	if err != nil {
		return nil, err
	}
	ds.ExpenseOverrides, _ = budget.MergeLegacy(ds.ExpenseOverrides, legacyExpense)
	ds.IncomeOverrides, _ = budget.MergeLegacy(ds.IncomeOverrides, legacyIncome)

	return ds, nil
}

func (r *SQLiteRepository) loadItems(ctx context.Context, userID int64, kind string) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, base_amount_cents, periodicity,
		        payment_day, payment_date, valid_from, valid_to
		 FROM items WHERE user_id = ? AND kind = ? ORDER BY id`, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s items: %w", kind, err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		var it core.Item
		var periodicity, paymentDate, validFrom, validTo string
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.BaseAmount.Cents,
			&periodicity, &it.PaymentDay, &paymentDate, &validFrom, &validTo); err != nil {
			return nil, fmt.Errorf("scan %s item: %w", kind, err)
		}
		it.Periodicity = core.Periodicity(periodicity)
		it.PaymentDate = core.ParseDate(paymentDate)
		it.ValidFrom = core.ParseDate(validFrom)
		it.ValidTo = core.ParseDate(validTo)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) loadOverrides(ctx context.Context, userID int64, kind, table string) ([]core.Override, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_id, year, month, amount_cents FROM `+table+
			` WHERE user_id = ? AND kind = ? ORDER BY item_id, year, month`, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, table, err)
	}
	defer rows.Close()

	var overrides []core.Override
	for rows.Next() {
		var o core.Override
		if err := rows.Scan(&o.ItemID, &o.Year, &o.Month, &o.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan %s %s: %w", kind, table, err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *SQLiteRepository) loadPayments(ctx context.Context, userID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, amount_cents, paid_on, status
		 FROM payments WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var p core.Payment
		var paidOn string
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Amount.Cents, &paidOn, &p.Status); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.PaidOn = core.ParseDate(paidOn)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Save replaces a user's dataset in a single transaction: the dataset
// row is upserted and every item, override and payment row is deleted
// and reinserted from the in-memory snapshot. Legacy adjustment rows
// are left alone; after a save they are shadowed by the merged
// override rows.
func (r *SQLiteRepository) Save(ctx context.Context, userID int64, ds *core.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (user_id, version, balance_cents, comment, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
		   version = excluded.version,
		   balance_cents = excluded.balance_cents,
		   comment = excluded.comment,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, ds.Version, ds.Account.Balance.Cents, ds.Comment); err != nil {
		return fmt.Errorf("upsert dataset: %w", err)
	}

	for _, table := range []string{"items", "overrides", "payments"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertItems(ctx, tx, userID, kindExpense, ds.Expenses); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, userID, kindIncome, ds.Incomes); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, userID, kindExpense, ds.ExpenseOverrides); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, userID, kindIncome, ds.IncomeOverrides); err != nil {
		return err
	}
	if err := insertPayments(ctx, tx, userID, ds.Payments); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, userID int64, kind string, items []core.Item) error {
	for _, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (user_id, kind, id, name, category, base_amount_cents,
			                    periodicity, payment_day, payment_date, valid_from, valid_to)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, kind, it.ID, it.Name, it.Category, it.BaseAmount.Cents,
			string(it.Periodicity), it.PaymentDay,
			encodeDate(it.PaymentDate), encodeDate(it.ValidFrom), encodeDate(it.ValidTo)); err != nil {
			return fmt.Errorf("insert %s item %d: %w", kind, it.ID, err)
		}
	}
	return nil
}

func insertOverrides(ctx context.Context, tx *sql.Tx, userID int64, kind string, overrides []core.Override) error {
	for _, o := range overrides {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO overrides (user_id, kind, item_id, year, month, amount_cents)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, kind, o.ItemID, o.Year, o.Month, o.Amount.Cents); err != nil {
			return fmt.Errorf("insert %s override: %w", kind, err)
		}
	}
	return nil
}

func insertPayments(ctx context.Context, tx *sql.Tx, userID int64, payments []core.Payment) error {
	for _, p := range payments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (user_id, id, item_id, amount_cents, paid_on, status)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, p.ID, p.ItemID, p.Amount.Cents, encodeDate(p.PaidOn), p.Status); err != nil {
			return fmt.Errorf("insert payment %d: %w", p.ID, err)
		}
	}
	return nil
}

// AddLegacyAdjustment inserts a historical adjustment row. Used by
// import tooling; normal operation only reads this table.
func (r *SQLiteRepository) AddLegacyAdjustment(ctx context.Context, userID int64, kind string, o core.Override) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO legacy_adjustments (user_id, kind, item_id, year, month, amount_cents)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, kind, item_id, year, month) DO UPDATE SET
		   amount_cents = excluded.amount_cents`,
		userID, kind, o.ItemID, o.Year, o.Month, o.Amount.Cents); err != nil {
		return fmt.Errorf("insert legacy adjustment: %w", err)
	}
	return nil
}

func encodeDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
