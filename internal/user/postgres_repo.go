package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/book"
	"bookcatalog/internal/paging"
	"bookcatalog/internal/store"
)

var userColumns = []any{"id", "username", "name", "birthdate", "password_hash"}

var ownedBookColumns = []any{
	"ub.user_id", "b.id", "b.isbn", "b.title", "b.subtitle", "b.author",
	"b.publisher", "b.year", "b.pages", "b.genre", "b.image",
}

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

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Birthdate, &u.PasswordHash)
	return u, err
}

// Save writes the user row. The user_books rows are only changed by AddBook
// and RemoveBook.
func (r *PostgresRepo) Save(ctx context.Context, u *User) error {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}

	ins := store.Dialect.Insert("users").Rows(goqu.Record{
		"id":            id,
		"username":      u.Username,
		"name":          u.Name,
		"birthdate":     u.Birthdate,
		"password_hash": u.PasswordHash,
	})
	if u.ID != "" {
		ins = ins.OnConflict(goqu.DoUpdate("id", goqu.Record{
			"username":      goqu.I("excluded.username"),
			"name":          goqu.I("excluded.name"),
			"birthdate":     goqu.I("excluded.birthdate"),
			"password_hash": goqu.I("excluded.password_hash"),
		}))
	}
	query, args, err := ins.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build save user query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save user: %w", store.Classify(err))
	}
	u.ID = id
	return nil
}

// AddBook inserts one user_books row at the end of the collection. The
// primary key turns a second insert of the same pair into a no-op.
func (r *PostgresRepo) AddBook(ctx context.Context, userID, bookID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(bookID); err != nil {
		return book.ErrNotFound
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_books (user_id, book_id, position)
		SELECT $1::uuid, $2::uuid, COALESCE(MAX(position) + 1, 0)
		FROM user_books WHERE user_id = $1::uuid
		ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID)
	if err != nil {
		return fmt.Errorf("add owned book: %w", store.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrBookAlreadyOwned
	}
	return nil
}

func (r *PostgresRepo) RemoveBook(ctx context.Context, userID, bookID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(bookID); err != nil {
		return ErrBookNotOwned
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM user_books WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return fmt.Errorf("remove owned book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotOwned
	}
	return nil
}

func (r *PostgresRepo) findOne(ctx context.Context, where goqu.Ex) (User, error) {
	query, args, err := store.Dialect.From("users").Select(userColumns...).Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return User{}, fmt.Errorf("build find user query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	owned, err := r.ownedBooks(ctx, []string{u.ID})
	if err != nil {
		return User{}, err
	}
	return u.withBooks(owned[u.ID]), nil
}

// ownedBooks loads the collections of the given users, keyed by user id.
func (r *PostgresRepo) ownedBooks(ctx context.Context, userIDs []string) (map[string][]book.Book, error) {
	query, args, err := store.Dialect.
		From(goqu.T("user_books").As("ub")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("ub.book_id")))).
		Select(ownedBookColumns...).
		Where(goqu.I("ub.user_id").In(userIDs)).
		Order(goqu.I("ub.user_id").Asc(), goqu.I("ub.position").Asc(), goqu.I("ub.book_id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build owned books query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]book.Book, len(userIDs))
	for rows.Next() {
		var userID string
		var b book.Book
		if err := rows.Scan(&userID, &b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.Author,
			&b.Publisher, &b.Year, &b.Pages, &b.Genre, &b.Image); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrNotFound
	}
	return r.findOne(ctx, goqu.Ex{"id": id})
}

func (r *PostgresRepo) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, goqu.Ex{"username": username})
}

func (r *PostgresRepo) FindAll(ctx context.Context, req paging.Request) (paging.Page[User], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return paging.Page[User]{}, err
	}
	if !req.Valid() || total == 0 {
		return paging.NewPage[User](nil, total, req), nil
	}

	query, args, err := paging.Apply(store.Dialect.From("users").Select(userColumns...), req, SortColumns, "id").Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[User]{}, fmt.Errorf("build list users query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return paging.Page[User]{}, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		return scanUser(row)
	})
	if err != nil {
		return paging.Page[User]{}, err
	}
	if len(users) == 0 {
		return paging.NewPage(users, total, req), nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	owned, err := r.ownedBooks(ctx, ids)
	if err != nil {
		return paging.Page[User]{}, err
	}
	for i, u := range users {
		users[i] = u.withBooks(owned[u.ID])
	}
	return paging.NewPage(users, total, req), nil
}

func (r *PostgresRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Delete removes the user; its user_books rows go with it.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
