package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"library/internal/model"
	"library/internal/service"
)

type MockBookService struct {
	mock.Mock
}

var _ service.BookService = (*MockBookService)(nil)

func (m *MockBookService) Create(ctx context.Context, title, publishedYear, authorID string) (*model.Book, error) {
	args := m.Called(ctx, title, publishedYear, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) List(ctx context.Context) iter.Seq2[model.Book, error] {
	args := m.Called(ctx)
	return args.Get(0).(iter.Seq2[model.Book, error])
}

func (m *MockBookService) Get(ctx context.Context, id string) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Exists(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookService) UpdateTitle(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockBookService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
