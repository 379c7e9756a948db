// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, mongodb, postgres) inside this directory.
package repository

import (
	"context"
	"errors"
	"iter"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
)

// ErrNoDocuments is returned by lookups that match no record.
var ErrNoDocuments = errors.New("no documents in result")

// BookRepository defines data access for books. No business logic here, strictly persistence operations.
// Reads substitute model.DefaultTitle, DefaultPublishedYear and DefaultAuthor for fields the stored
// record lacks; fields stored as empty strings are returned empty.
type BookRepository interface {
	// Create inserts a new book record. The store assigns the ID; book.Author must be a hex identifier.
	// Returns the stored book.
	Create(ctx context.Context, book *model.Book) (*model.Book, error)

	// FindByID returns a book by its ID or ErrNoDocuments.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Book, error)

	// List yields every book in store-native order. The query runs when the sequence is ranged over,
	// so each range re-reads the store.
	List(ctx context.Context) iter.Seq2[model.Book, error]

	// Count returns how many records carry the given ID (0 or 1).
	Count(ctx context.Context, id primitive.ObjectID) (int64, error)

	// UpdateTitle sets the title of the matching record and reports how many records matched.
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (int64, error)

	// Delete removes the matching record and reports how many records were removed.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)

	// Ping checks connectivity with the underlying store.
	Ping(ctx context.Context) error
}

// AuthorDirectory answers whether an author record exists.
type AuthorDirectory interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[model.Book, error]) ([]model.Book, error) {
	items := make([]model.Book, 0)
	for b, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}

// Seq returns a sequence over a fixed slice of books.
func Seq(books ...model.Book) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		for _, b := range books {
			if !yield(b, nil) {
				return
			}
		}
	}
}

// ErrSeq returns a sequence that yields a single error.
func ErrSeq(err error) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		yield(model.Book{}, err)
	}
}
