// Package sqlite is the local record store backend. The generic row
// contract is mapped onto one typed table per sheet, ordered by an
// autoincrement sequence so positional reads stay stable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"

	_ "modernc.org/sqlite"
)

// sqlTables maps record-store table names onto their SQL tables.
var sqlTables = map[string]string{
	store.TableIncome:     "income_records",
	store.TableExpense:    "expense_records",
	store.TableAllocation: "allocation_records",
}

type Repository struct {
	db *sql.DB
}

var _ store.RecordStore = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func resolve(table string) (sqlName string, columns []string, err error) {
	sqlName, ok := sqlTables[table]
	if !ok {
		return "", nil, fmt.Errorf("unknown table %q", table)
	}
	return sqlName, store.HeadersFor(table), nil
}

func (r *Repository) Append(ctx context.Context, table string, values []string) error {
	sqlName, columns, err := resolve(table)
	if err != nil {
		return err
	}
	if len(values) != len(columns) {
		return fmt.Errorf("%w: table %s has %d columns, got %d values",
			store.ErrSchemaMismatch, table, len(columns), len(values))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqlName, strings.Join(columns, ", "), placeholders)

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context, table string, headers []string) ([]store.Record, error) {
	sqlName, columns, err := resolve(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq",
		strings.Join(columns, ", "), sqlName)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	out := []store.Record{}
	for rows.Next() {
		dest := make([]any, len(columns))
		vals := make([]string, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		rec := store.Record{}
		for i, c := range columns {
			rec[c] = vals[i]
		}
		for _, h := range headers {
			if _, ok := rec[h]; !ok {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", table, err)
	}
	return out, nil
}

func (r *Repository) DeleteAt(ctx context.Context, table string, pos int) error {
	sqlName, _, err := resolve(table)
	if err != nil {
		return err
	}
	if pos < 2 {
		return fmt.Errorf("%w: table %s position %d", store.ErrPositionOutOfRange, table, pos)
	}

	// Position 1 is the (virtual) header row, so the Nth data row sits at
	// offset pos-2 in sequence order.
	var seq int64
	query := fmt.Sprintf("SELECT seq FROM %s ORDER BY seq LIMIT 1 OFFSET ?", sqlName)
	err = r.db.QueryRowContext(ctx, query, pos-2).Scan(&seq)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: table %s position %d", store.ErrPositionOutOfRange, table, pos)
	}
	if err != nil {
		return fmt.Errorf("locate %s row %d: %w", table, pos, err)
	}

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE seq = ?", sqlName), seq); err != nil {
		return fmt.Errorf("delete %s row %d: %w", table, pos, err)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, table string) error {
	sqlName, _, err := resolve(table)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", sqlName)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	return nil
}
