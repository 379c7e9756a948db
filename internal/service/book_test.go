package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"library/internal/model"
	"library/internal/repository"
	"library/internal/repository/memory"
	repoMocks "library/internal/repository/mocks"
)

const (
	bookHex   = "656f1c2e9d1e4a0b8c7d6e50"
	authorHex = "656f1c2e9d1e4a0b8c7d6e5f"
)

func oid(t *testing.T, s string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(s)
	require.NoError(t, err)
	return id
}

func TestBookService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		authorID   string
		withDir    bool
		setupMocks func(mRepo *repoMocks.MockBookRepository, mDir *repoMocks.MockAuthorDirectory)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			authorID: authorHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository, _ *repoMocks.MockAuthorDirectory) {
				mRepo.On("Create", ctx, &model.Book{Title: "Dune", PublishedYear: "1965", Author: authorHex}).
					Return(&model.Book{ID: bookHex, Title: "Dune", PublishedYear: "1965", Author: authorHex}, nil)
			},
		},
		{
			name:       "malformed author id",
			authorID:   "not-a-hex-id",
			setupMocks: func(*repoMocks.MockBookRepository, *repoMocks.MockAuthorDirectory) {},
			wantErr:    ErrInvalidID,
		},
		{
			name:     "repository error",
			authorID: authorHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository, _ *repoMocks.MockAuthorDirectory) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErrMsg: "insert book: db fail",
		},
		{
			name:     "known author",
			authorID: authorHex,
			withDir:  true,
			setupMocks: func(mRepo *repoMocks.MockBookRepository, mDir *repoMocks.MockAuthorDirectory) {
				mDir.On("Exists", ctx, mock.Anything).Return(true, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(&model.Book{ID: bookHex}, nil)
			},
		},
		{
			name:     "unknown author",
			authorID: authorHex,
			withDir:  true,
			setupMocks: func(_ *repoMocks.MockBookRepository, mDir *repoMocks.MockAuthorDirectory) {
				mDir.On("Exists", ctx, mock.Anything).Return(false, nil)
			},
			wantErr: ErrAuthorNotFound,
		},
		{
			name:     "author lookup error",
			authorID: authorHex,
			withDir:  true,
			setupMocks: func(_ *repoMocks.MockBookRepository, mDir *repoMocks.MockAuthorDirectory) {
				mDir.On("Exists", ctx, mock.Anything).Return(false, errors.New("timeout"))
			},
			wantErrMsg: "check author: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockBookRepository)
			mDir := new(repoMocks.MockAuthorDirectory)
			tt.setupMocks(mRepo, mDir)

			var svc BookService
			if tt.withDir {
				svc = NewBookService(mRepo, mDir)
			} else {
				svc = NewBookService(mRepo, nil)
			}

			got, err := svc.Create(ctx, "Dune", "1965", tt.authorID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Nil(t, got)
			default:
				assert.NoError(t, err)
				assert.Equal(t, bookHex, got.ID)
			}
			mRepo.AssertExpectations(t)
			mDir.AssertExpectations(t)
			if tt.wantErr != nil {
				mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBookService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes records through unchanged", func(t *testing.T) {
		stored := []model.Book{
			{ID: bookHex, Title: "Dune", PublishedYear: "1965", Author: authorHex},
			{ID: "656f1c2e9d1e4a0b8c7d6e51", Title: "", PublishedYear: "", Author: authorHex},
		}
		mRepo := new(repoMocks.MockBookRepository)
		mRepo.On("List", ctx).Return(repository.Seq(stored...))
		svc := NewBookService(mRepo, nil)

		books, err := repository.Collect(svc.List(ctx))

		require.NoError(t, err)
		assert.Equal(t, stored, books)
	})

	t.Run("store error", func(t *testing.T) {
		mRepo := new(repoMocks.MockBookRepository)
		mRepo.On("List", ctx).Return(repository.ErrSeq(errors.New("cursor died")))
		svc := NewBookService(mRepo, nil)

		_, err := repository.Collect(svc.List(ctx))

		assert.EqualError(t, err, "list books: cursor died")
	})
}

func TestBookService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockBookRepository)
		wantErr    error
	}{
		{
			name: "found",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("FindByID", ctx, oid(t, bookHex)).Return(&model.Book{ID: bookHex, Title: "Dune", Author: authorHex}, nil)
			},
		},
		{
			name:       "invalid id",
			id:         "xyz",
			setupMocks: func(*repoMocks.MockBookRepository) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("FindByID", ctx, oid(t, bookHex)).Return(nil, repository.ErrNoDocuments)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockBookRepository)
			tt.setupMocks(mRepo)
			svc := NewBookService(mRepo, nil)

			got, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Dune", got.Title)
				assert.Equal(t, authorHex, got.Author)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestBookService_UpdateTitle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockBookRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "updated",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(1), nil)
				mRepo.On("UpdateTitle", ctx, oid(t, bookHex), "New").Return(int64(1), nil)
			},
		},
		{
			name:       "invalid id",
			id:         "123",
			setupMocks: func(*repoMocks.MockBookRepository) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(0), nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "removed between count and update",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(1), nil)
				mRepo.On("UpdateTitle", ctx, oid(t, bookHex), "New").Return(int64(0), nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "update error",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(1), nil)
				mRepo.On("UpdateTitle", ctx, oid(t, bookHex), "New").Return(int64(0), errors.New("db fail"))
			},
			wantErrMsg: "update book: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockBookRepository)
			tt.setupMocks(mRepo)
			svc := NewBookService(mRepo, nil)

			err := svc.UpdateTitle(ctx, tt.id, "New")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestBookService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockBookRepository)
		wantErr    error
	}{
		{
			name: "deleted",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Delete", ctx, oid(t, bookHex)).Return(int64(1), nil)
			},
		},
		{
			name:       "invalid id",
			id:         "",
			setupMocks: func(*repoMocks.MockBookRepository) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   bookHex,
			setupMocks: func(mRepo *repoMocks.MockBookRepository) {
				mRepo.On("Delete", ctx, oid(t, bookHex)).Return(int64(0), nil)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockBookRepository)
			tt.setupMocks(mRepo)
			svc := NewBookService(mRepo, nil)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestBookService_Exists(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockBookRepository)
	mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(1), nil).Once()
	mRepo.On("Count", ctx, oid(t, bookHex)).Return(int64(0), nil).Once()
	svc := NewBookService(mRepo, nil)

	assert.NoError(t, svc.Exists(ctx, bookHex))
	assert.ErrorIs(t, svc.Exists(ctx, bookHex), ErrNotFound)
	assert.ErrorIs(t, svc.Exists(ctx, "zzzzzzzzzzzzzzzzzzzzzzzz"), ErrInvalidID)
	mRepo.AssertExpectations(t)
}

// The following run against the in-memory store end to end.

func TestBookService_CreateThenList(t *testing.T) {
	ctx := context.Background()
	svc := NewBookService(memory.NewBookMemory(), nil)

	created, err := svc.Create(ctx, "Dune", "1965", authorHex)
	require.NoError(t, err)

	books, err := repository.Collect(svc.List(ctx))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, model.Book{ID: created.ID, Title: "Dune", PublishedYear: "1965", Author: authorHex}, books[0])
}

func TestBookService_CreateMalformedAuthorWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc := NewBookService(memory.NewBookMemory(), nil)

	_, err := svc.Create(ctx, "Dune", "1965", "not-a-hex-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	books, err := repository.Collect(svc.List(ctx))
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookService_UpdateUnmatchedMutatesNothing(t *testing.T) {
	ctx := context.Background()
	svc := NewBookService(memory.NewBookMemory(), nil)
	created, err := svc.Create(ctx, "Dune", "1965", authorHex)
	require.NoError(t, err)

	err = svc.UpdateTitle(ctx, primitive.NewObjectID().Hex(), "Other")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestBookService_UpdateChangesTitleOnly(t *testing.T) {
	ctx := context.Background()
	svc := NewBookService(memory.NewBookMemory(), nil)
	created, err := svc.Create(ctx, "Dune", "1965", authorHex)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTitle(ctx, created.ID, "Dune Messiah"))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Book{ID: created.ID, Title: "Dune Messiah", PublishedYear: "1965", Author: authorHex}, *got)
}

func TestBookService_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc := NewBookService(memory.NewBookMemory(), nil)
	created, err := svc.Create(ctx, "Dune", "1965", authorHex)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	books, err := repository.Collect(svc.List(ctx))
	require.NoError(t, err)
	assert.Empty(t, books)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
