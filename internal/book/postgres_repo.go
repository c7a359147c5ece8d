package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// bookRow is the native Postgres shape of a Book.
type bookRow struct {
	ID          pgtype.UUID
	Name        string
	Author      string
	Description string
	Price       float64
	Image       string
	Stock       *int32
}

func (row bookRow) toBook() Book {
	b := Book{
		ID:          uuid.UUID(row.ID.Bytes).String(),
		Name:        row.Name,
		Author:      row.Author,
		Description: row.Description,
		Price:       row.Price,
		Image:       row.Image,
	}
	if row.Stock != nil {
		stock := int(*row.Stock)
		b.Stock = &stock
	}
	return b
}

func newBookRow(id uuid.UUID, b Book) bookRow {
	row := bookRow{
		ID:          pgtype.UUID{Bytes: id, Valid: true},
		Name:        b.Name,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price,
		Image:       b.Image,
	}
	if b.Stock != nil {
		stock := int32(*b.Stock)
		row.Stock = &stock
	}
	return row
}

const bookColumns = `id, name, author, description, price, image, stock`

func (r *PostgresRepo) Find(ctx context.Context, p Predicate) ([]Book, error) {
	where, args, err := renderSQLPredicate(p, postgresDialect)
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
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var row bookRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Author, &row.Description, &row.Price, &row.Image, &row.Stock); err != nil {
			return nil, err
		}
		out = append(out, row.toBook())
	}
	return out, rows.Err()
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Book, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Book{}, ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row bookRow
	err = r.db.QueryRow(timeoutCtx, "SELECT "+bookColumns+" FROM books WHERE id = $1", pgtype.UUID{Bytes: uid, Valid: true}).
		Scan(&row.ID, &row.Name, &row.Author, &row.Description, &row.Price, &row.Image, &row.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return row.toBook(), nil
}

func (r *PostgresRepo) Insert(ctx context.Context, b Book) (string, error) {
	const sql = `
		INSERT INTO books (id, name, author, description, price, image, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	id := uuid.New()
	row := newBookRow(id, b)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, sql, row.ID, row.Name, row.Author, row.Description, row.Price, row.Image, row.Stock); err != nil {
		return "", fmt.Errorf("insert book: %w", err)
	}
	return id.String(), nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, id string, b Book) error {
	const sql = `
		INSERT INTO books (id, name, author, description, price, image, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			author = EXCLUDED.author,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			stock = EXCLUDED.stock,
			updated_at = NOW()`

	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	row := newBookRow(uid, b)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, sql, row.ID, row.Name, row.Author, row.Description, row.Price, row.Image, row.Stock); err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (int64, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, nil
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE id = $1", pgtype.UUID{Bytes: uid, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return tag.RowsAffected(), nil
}
