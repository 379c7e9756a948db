package memory

import (
	"context"
	"iter"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
	"library/internal/repository"
)

// BookMemory provides an in-memory implementation of repository.BookRepository.
// Records are listed in insertion order.
type BookMemory struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	books map[primitive.ObjectID]model.Book
}

// NewBookMemory constructs a BookMemory seeded with the provided books.
// Seed entries without a valid hex ID get a generated one; repeated IDs keep the first entry.
func NewBookMemory(seed ...model.Book) *BookMemory {
	r := &BookMemory{books: make(map[primitive.ObjectID]model.Book, len(seed))}
	for _, b := range seed {
		id, err := model.ParseID(b.ID)
		if err != nil {
			id = primitive.NewObjectID()
			b.ID = id.Hex()
		}
		if _, dup := r.books[id]; dup {
			continue
		}
		r.order = append(r.order, id)
		r.books[id] = b
	}
	return r
}

var _ repository.BookRepository = (*BookMemory)(nil)

// Create stores a copy of book under a new ID.
func (r *BookMemory) Create(_ context.Context, book *model.Book) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := primitive.NewObjectID()
	out := *book
	out.ID = id.Hex()

	r.order = append(r.order, id)
	r.books[id] = out
	return &out, nil
}

// FindByID returns the book with the given ID.
func (r *BookMemory) FindByID(_ context.Context, id primitive.ObjectID) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, repository.ErrNoDocuments
	}
	return &b, nil
}

// List yields a snapshot of the books taken when ranging starts.
func (r *BookMemory) List(ctx context.Context) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		r.mu.RLock()
		snapshot := make([]model.Book, 0, len(r.order))
		for _, id := range r.order {
			snapshot = append(snapshot, r.books[id])
		}
		r.mu.RUnlock()

		for _, b := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(model.Book{}, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

// Count reports whether a book with the given ID exists.
func (r *BookMemory) Count(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.books[id]; ok {
		return 1, nil
	}
	return 0, nil
}

// UpdateTitle replaces the title of the book with the given ID if it exists.
func (r *BookMemory) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return 0, nil
	}
	b.Title = title
	r.books[id] = b
	return 1, nil
}

// Delete removes the book with the provided ID if it exists.
func (r *BookMemory) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return 0, nil
	}
	delete(r.books, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// Ping always succeeds.
func (r *BookMemory) Ping(context.Context) error { return nil }
