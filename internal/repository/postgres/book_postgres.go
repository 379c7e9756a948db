package postgres

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
	"library/internal/repository"
)

// BookPostgres is a PostgreSQL implementation of repository.BookRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// IDs are generated as ObjectIDs so both backends share one identifier format.
type BookPostgres struct {
	db *sql.DB
}

// NewBookPostgres creates a new BookPostgres repository.
func NewBookPostgres(db *sql.DB) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ repository.BookRepository = (*BookPostgres)(nil)

// newID is swapped in tests.
var newID = model.NewID

// Create inserts a new book row and returns the stored record.
func (r *BookPostgres) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	author, err := model.ParseID(book.Author)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO books (id, title, published_year, author)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, published_year, author
	`
	row := r.db.QueryRowContext(ctx, q,
		newID(),
		book.Title,
		book.PublishedYear,
		author.Hex(),
	)
	return scanBook(row)
}

// FindByID fetches a single book by its ID.
func (r *BookPostgres) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Book, error) {
	const q = `
		SELECT id, title, published_year, author
		FROM books
		WHERE id = $1
	`
	b, err := scanBook(r.db.QueryRowContext(ctx, q, id.Hex()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoDocuments
		}
		return nil, err
	}
	return b, nil
}

// List streams rows in insertion order. The query is issued on every range.
func (r *BookPostgres) List(ctx context.Context) iter.Seq2[model.Book, error] {
	const q = `
		SELECT id, title, published_year, author
		FROM books
		ORDER BY created_at, id
	`
	return func(yield func(model.Book, error) bool) {
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			yield(model.Book{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				yield(model.Book{}, err)
				return
			}
			if !yield(*b, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Book{}, err)
		}
	}
}

// Count returns 1 when a row with the ID exists, 0 otherwise.
func (r *BookPostgres) Count(ctx context.Context, id primitive.ObjectID) (int64, error) {
	const q = `SELECT COUNT(*) FROM books WHERE id = $1`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, id.Hex()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateTitle sets the title column only.
func (r *BookPostgres) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (int64, error) {
	const q = `UPDATE books SET title = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, title, id.Hex())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a book by ID and reports the affected row count.
func (r *BookPostgres) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	const q = `DELETE FROM books WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id.Hex())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks connectivity with the database.
func (r *BookPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*model.Book, error) {
	var id string
	var title, publishedYear, author sql.NullString
	if err := s.Scan(&id, &title, &publishedYear, &author); err != nil {
		return nil, err
	}
	return &model.Book{
		ID:            id,
		Title:         model.OrDefault(title.String, title.Valid, model.DefaultTitle),
		PublishedYear: model.OrDefault(publishedYear.String, publishedYear.Valid, model.DefaultPublishedYear),
		Author:        model.OrDefault(author.String, author.Valid, model.DefaultAuthor),
	}, nil
}
