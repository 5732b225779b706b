package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/paging"
	"bookcatalog/internal/store"
)

const table = "books"

var columns = []any{"id", "isbn", "title", "subtitle", "author", "publisher", "year", "pages", "genre", "image"}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func record(b *Book) goqu.Record {
	return goqu.Record{
		"id":        b.ID,
		"isbn":      b.ISBN,
		"title":     b.Title,
		"subtitle":  b.Subtitle,
		"author":    b.Author,
		"publisher": b.Publisher,
		"year":      b.Year,
		"pages":     b.Pages,
		"genre":     b.Genre,
		"image":     b.Image,
	}
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.Author, &b.Publisher,
		&b.Year, &b.Pages, &b.Genre, &b.Image)
	return b, err
}

func (r *PostgresRepo) Save(ctx context.Context, b *Book) error {
	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	rec := record(b)
	rec["id"] = id

	ds := store.Dialect.Insert(table).Rows(rec)
	if b.ID != "" {
		ds = ds.OnConflict(goqu.DoUpdate("id", goqu.Record{
			"isbn":      goqu.I("excluded.isbn"),
			"title":     goqu.I("excluded.title"),
			"subtitle":  goqu.I("excluded.subtitle"),
			"author":    goqu.I("excluded.author"),
			"publisher": goqu.I("excluded.publisher"),
			"year":      goqu.I("excluded.year"),
			"pages":     goqu.I("excluded.pages"),
			"genre":     goqu.I("excluded.genre"),
			"image":     goqu.I("excluded.image"),
		}))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build save query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save book: %w", store.Classify(err))
	}
	b.ID = id
	return nil
}

func (r *PostgresRepo) findOne(ctx context.Context, where goqu.Ex) (Book, error) {
	query, args, err := store.Dialect.From(table).Select(columns...).Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build find query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}
	return r.findOne(ctx, goqu.Ex{"id": id})
}

func (r *PostgresRepo) FindByISBN(ctx context.Context, isbn string) (Book, error) {
	return r.findOne(ctx, goqu.Ex{"isbn": isbn})
}

func (r *PostgresRepo) FindAll(ctx context.Context, f Filter, req paging.Request) (paging.Page[Book], error) {
	base := store.Dialect.From(table)
	if !f.IsEmpty() {
		base = base.Where(f.Expression())
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[Book]{}, fmt.Errorf("build count query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return paging.Page[Book]{}, err
	}
	if !req.Valid() || total == 0 {
		return paging.NewPage[Book](nil, total, req), nil
	}

	dataSQL, dataArgs, err := paging.Apply(base.Select(columns...), req, SortColumns, "id").Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[Book]{}, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.db.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return paging.Page[Book]{}, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return paging.Page[Book]{}, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[Book]{}, err
	}
	return paging.NewPage(out, total, req), nil
}

func (r *PostgresRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Delete fails with store.ErrIntegrityViolation while any user still owns
// the book.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	query, args, err := store.Dialect.Delete(table).Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete book: %w", store.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
