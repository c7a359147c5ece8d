package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteRepo stores books in an embedded SQLite database. Identifiers are
// UUID strings, like the Postgres backend.
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sql.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBook(s scanner) (Book, error) {
	var (
		b     Book
		stock sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Author, &b.Description, &b.Price, &b.Image, &stock); err != nil {
		return Book{}, err
	}
	if stock.Valid {
		n := int(stock.Int64)
		b.Stock = &n
	}
	return b, nil
}

func sqliteStock(b Book) sql.NullInt64 {
	if b.Stock == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*b.Stock), Valid: true}
}

func (r *SQLiteRepo) Find(ctx context.Context, p Predicate) ([]Book, error) {
	where, args, err := renderSQLPredicate(p, sqliteDialect)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + bookColumns + " FROM books"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY name, id"

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.QueryContext(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) FindByID(ctx context.Context, id string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	row := r.db.QueryRowContext(timeoutCtx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	b, err := scanSQLiteBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Insert(ctx context.Context, b Book) (string, error) {
	const query = `
		INSERT INTO books (id, name, author, description, price, image, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	id := uuid.NewString()
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.ExecContext(timeoutCtx, query, id, b.Name, b.Author, b.Description, b.Price, b.Image, sqliteStock(b)); err != nil {
		return "", fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepo) Upsert(ctx context.Context, id string, b Book) error {
	const query = `
		INSERT INTO books (id, name, author, description, price, image, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			description = excluded.description,
			price = excluded.price,
			image = excluded.image,
			stock = excluded.stock,
			updated_at = CURRENT_TIMESTAMP`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.ExecContext(timeoutCtx, query, id, b.Name, b.Author, b.Description, b.Price, b.Image, sqliteStock(b)); err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (int64, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return res.RowsAffected()
}
