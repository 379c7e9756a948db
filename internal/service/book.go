package service

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
	"library/internal/repository"
)

var (
	ErrInvalidID      = errors.New("invalid id format")
	ErrNotFound       = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
)

// BookService defines the use cases for handling books.
type BookService interface {
	// Create stores a new book. authorID must be a 24-character hex string; it is only checked
	// against an author store when one was supplied to NewBookService.
	Create(ctx context.Context, title, publishedYear, authorID string) (*model.Book, error)

	// List yields every stored book. Each range re-reads the store.
	List(ctx context.Context) iter.Seq2[model.Book, error]

	// Get returns a single book by its ID.
	Get(ctx context.Context, id string) (*model.Book, error)

	// Exists reports ErrNotFound when no book carries id.
	Exists(ctx context.Context, id string) error

	// UpdateTitle replaces the title of a book, leaving every other field untouched.
	UpdateTitle(ctx context.Context, id, title string) error

	// Delete removes a book by ID.
	Delete(ctx context.Context, id string) error
}

// bookService is a concrete implementation of BookService.
type bookService struct {
	repo    repository.BookRepository
	authors repository.AuthorDirectory
}

// NewBookService constructs a new BookService. authors may be nil, in which case author
// references are stored without verification.
func NewBookService(repo repository.BookRepository, authors repository.AuthorDirectory) BookService {
	return &bookService{repo: repo, authors: authors}
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := model.ParseID(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

func (s *bookService) Create(ctx context.Context, title, publishedYear, authorID string) (*model.Book, error) {
	author, err := parseID(authorID)
	if err != nil {
		return nil, err
	}

	if s.authors != nil {
		ok, err := s.authors.Exists(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("check author: %w", err)
		}
		if !ok {
			return nil, ErrAuthorNotFound
		}
	}

	stored, err := s.repo.Create(ctx, &model.Book{
		Title:         title,
		PublishedYear: publishedYear,
		Author:        author.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return stored, nil
}

func (s *bookService) List(ctx context.Context) iter.Seq2[model.Book, error] {
	seq := s.repo.List(ctx)
	return func(yield func(model.Book, error) bool) {
		for b, err := range seq {
			if err != nil {
				yield(model.Book{}, fmt.Errorf("list books: %w", err))
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (s *bookService) Get(ctx context.Context, id string) (*model.Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *bookService) Exists(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.repo.Count(ctx, oid)
	if err != nil {
		return fmt.Errorf("count book: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTitle counts first, then updates, so a record deleted in between still reports not found.
func (s *bookService) UpdateTitle(ctx context.Context, id, title string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.repo.Count(ctx, oid)
	if err != nil {
		return fmt.Errorf("count book: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	matched, err := s.repo.UpdateTitle(ctx, oid, title)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
