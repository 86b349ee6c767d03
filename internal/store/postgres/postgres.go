// Package postgres stores records in a single key/value table.
//
// Reads inside RunInTx take row locks (SELECT ... FOR UPDATE) so a concurrent
// transaction on the same records waits. Writes are buffered and flushed at
// commit: rows that were read as existing are updated, rows that were read as
// absent are inserted and a unique violation aborts the transaction with
// sentinel.ErrConflict, so two transactions can never both claim the same
// nonce or nullifier.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"trustscore/internal/store"
	"trustscore/internal/store/postgres/migrations"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

// Postgres error codes that mean "another transaction got there first".
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const (
	selectForUpdate = `SELECT value FROM records WHERE key = $1 FOR UPDATE`
	selectValue     = `SELECT value FROM records WHERE key = $1`
	insertRecord    = `INSERT INTO records (key, value) VALUES ($1, $2)`
	updateRecord    = `UPDATE records SET value = $2, updated_at = now() WHERE key = $1`
	upsertRecord    = `INSERT INTO records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

type Store struct {
	db      *sql.DB
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db, timeout: defaultTxTimeout}
}

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.run(ctx, nil, fn)
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", sentinel.ErrUnavailable, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &pgTx{
		tx:       sqlTx,
		readOnly: opts != nil && opts.ReadOnly,
		seen:     make(map[string]bool),
		writes:   make(map[string][]byte),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.flush(ctx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return classify(err, "commit")
	}
	committed = true
	return nil
}

type pgTx struct {
	tx       *sql.Tx
	readOnly bool
	// seen records whether each key read so far existed.
	seen   map[string]bool
	writes map[string][]byte
}

func (t *pgTx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return append([]byte(nil), v...), nil
	}
	query := selectForUpdate
	if t.readOnly {
		query = selectValue
	}
	var value []byte
	err := t.tx.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		t.seen[key] = false
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, classify(err, "select "+key)
	}
	t.seen[key] = true
	return value, nil
}

func (t *pgTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return sentinel.ErrReadOnly
	}
	t.writes[key] = append([]byte(nil), value...)
	return nil
}

// flush writes buffered records in key order so concurrent transactions
// acquire row locks in the same order.
func (t *pgTx) flush(ctx context.Context) error {
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		query := upsertRecord
		if existed, read := t.seen[key]; read {
			if existed {
				query = updateRecord
			} else {
				query = insertRecord
			}
		}
		if _, err := t.tx.ExecContext(ctx, query, key, t.writes[key]); err != nil {
			return classify(err, "write "+key)
		}
	}
	return nil
}

func classify(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%s: %w: %s", op, sentinel.ErrConflict, pgErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
