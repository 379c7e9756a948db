package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
	"library/internal/repository"
)

type MockBookRepository struct {
	mock.Mock
}

var _ repository.BookRepository = (*MockBookRepository)(nil)

func (m *MockBookRepository) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	args := m.Called(ctx, book)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookRepository) List(ctx context.Context) iter.Seq2[model.Book, error] {
	args := m.Called(ctx)
	return args.Get(0).(iter.Seq2[model.Book, error])
}

func (m *MockBookRepository) Count(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (int64, error) {
	args := m.Called(ctx, id, title)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAuthorDirectory struct {
	mock.Mock
}

var _ repository.AuthorDirectory = (*MockAuthorDirectory)(nil)

func (m *MockAuthorDirectory) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
