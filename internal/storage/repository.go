package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"

	"estoque/internal/core"
	"estoque/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("storage: not found")

// timestamps are stored as UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

var itemColumns = []string{"id", "name", "quantity", "price", "min_quantity", "expiration_date"}

var transactionColumns = []string{
	"t.id", "t.item_id", "i.name", "t.type", "t.quantity", "t.price", "t.total_value",
	"t.date", "t.description", "t.created_at", "t.updated_at",
}

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("SQLite repository ready", "db_path", dbPath, "schema_version", version)

	return newRepository(db, logger), nil
}

// newRepository wraps an open, migrated database.
func newRepository(db *sql.DB, logger *log.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, logger: logger, now: time.Now}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t core.Timestamp) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t.Time), Valid: true}
}

func parseNullTime(s sql.NullString) (core.Timestamp, error) {
	if !s.Valid || s.String == "" {
		return core.Timestamp{}, nil
	}
	return core.ParseTimestamp(s.String)
}

// ListItems returns every item ordered by name.
func (r *SQLiteRepository) ListItems(ctx context.Context) ([]core.Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").OrderBy("name").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		var (
			it  core.Item
			exp sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Price, &it.MinQuantity, &exp); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if it.ExpirationDate, err = parseNullTime(exp); err != nil {
			return nil, fmt.Errorf("item %d expiration date: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func selectTransactions() sq.SelectBuilder {
	return sq.Select(transactionColumns...).
		From("transactions t").
		Join("items i ON i.id = t.item_id")
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, b sq.SelectBuilder) ([]core.Transaction, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx                 core.Transaction
		typ                string
		total              sql.NullFloat64
		date, created, upd sql.NullString
	)
	if err := s.Scan(&tx.ID, &tx.ItemID, &tx.ItemName, &typ, &tx.Quantity, &tx.Price, &total,
		&date, &tx.Description, &created, &upd); err != nil {
		return tx, err
	}
	tx.Type = core.TransactionType(typ)
	if total.Valid {
		v := total.Float64
		tx.TotalValue = &v
	}

	var err error
	if tx.Date, err = parseNullTime(date); err != nil {
		return tx, fmt.Errorf("transaction %d date: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = parseNullTime(created); err != nil {
		return tx, fmt.Errorf("transaction %d created_at: %w", tx.ID, err)
	}
	if tx.UpdatedAt, err = parseNullTime(upd); err != nil {
		return tx, fmt.Errorf("transaction %d updated_at: %w", tx.ID, err)
	}
	return tx, nil
}

// ListTransactions returns transactions dated at or after since, oldest
// first. A zero since returns everything.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, since time.Time) ([]core.Transaction, error) {
	b := selectTransactions().OrderBy("t.date", "t.id")
	if !since.IsZero() {
		b = b.Where(sq.GtOrEq{"t.date": formatTime(since)})
	}
	return r.queryTransactions(ctx, b)
}

// RecentTransactions returns up to limit transactions, most recent first.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	b := selectTransactions().OrderBy("t.date DESC", "t.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.queryTransactions(ctx, b)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	query, args, err := selectTransactions().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &tx, nil
}

// InsertTransaction records a movement and adjusts the item's stock in one
// database transaction. Outbound movements never take stock below zero.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, req core.TransactionRequest) (core.Transaction, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, err
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	var name string
	var stock float64
	query, args, err := sq.Select("name", "quantity").From("items").Where(sq.Eq{"id": req.ItemID}).ToSql()
	if err != nil {
		return core.Transaction{}, err
	}
	if err := dbtx.QueryRowContext(ctx, query, args...).Scan(&name, &stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("load item %d: %w", req.ItemID, err)
	}

	now := core.NewTimestamp(r.now())
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	query, args, err = sq.Insert("transactions").
		Columns("item_id", "type", "quantity", "price", "date", "description", "created_at").
		Values(req.ItemID, string(req.Type), req.Quantity, req.Price, formatTime(date.Time), req.Description, formatTime(now.Time)).
		ToSql()
	if err != nil {
		return core.Transaction{}, err
	}
	res, err := dbtx.ExecContext(ctx, query, args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	if req.Type.IsInbound() {
		stock += req.Quantity
	} else {
		stock = max(0, stock-req.Quantity)
	}
	query, args, err = sq.Update("items").
		Set("quantity", stock).
		Set("updated_at", formatTime(now.Time)).
		Where(sq.Eq{"id": req.ItemID}).
		ToSql()
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := dbtx.ExecContext(ctx, query, args...); err != nil {
		return core.Transaction{}, fmt.Errorf("update stock: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().WithTransaction(id, name).WithOperation(log.OpSend).ToSlice()...)

	return core.Transaction{
		ID: id, ItemID: req.ItemID, ItemName: name, Type: req.Type,
		Quantity: req.Quantity, Price: req.Price, Date: date,
		Description: req.Description, CreatedAt: now,
	}, nil
}

func (r *SQLiteRepository) CountItems(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("items").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Seed loads items and transactions into an empty database, keeping their
// ids. It does nothing and returns false when items already exist.
func (r *SQLiteRepository) Seed(ctx context.Context, items []core.Item, txs []core.Transaction) (bool, error) {
	n, err := r.CountItems(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	for _, it := range items {
		query, args, err := sq.Insert("items").
			Columns(itemColumns...).
			Values(it.ID, it.Name, it.Quantity, it.Price, it.MinQuantity, formatNullTime(it.ExpirationDate)).
			ToSql()
		if err != nil {
			return false, err
		}
		if _, err := dbtx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("seed item %q: %w", it.Name, err)
		}
	}

	for _, tx := range txs {
		created := tx.CreatedAt
		if created.IsZero() {
			created = tx.When()
		}
		var total any
		if tx.TotalValue != nil {
			total = *tx.TotalValue
		}
		query, args, err := sq.Insert("transactions").
			Columns("id", "item_id", "type", "quantity", "price", "total_value", "date", "description", "created_at").
			Values(tx.ID, tx.ItemID, string(tx.Type), tx.Quantity, tx.Price, total,
				formatTime(tx.When().Time), tx.Description, formatTime(created.Time)).
			ToSql()
		if err != nil {
			return false, err
		}
		if _, err := dbtx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("seed transaction %d: %w", tx.ID, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}

	r.logger.InfoContext(ctx, "Database seeded",
		log.FieldOperation, log.OpSeed, "items", len(items), "transactions", len(txs))
	return true, nil
}
