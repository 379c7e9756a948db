package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library/internal/config"
	"library/internal/model"
	"library/internal/repository"
	"library/internal/repository/memory"
	"library/internal/service"
	svcMocks "library/internal/service/mocks"
	"library/internal/storage"
	storeMocks "library/internal/storage/mocks"
)

var fixed = time.Date(2026, 10, 19, 8, 30, 0, 0, time.FixedZone("WIB", 7*60*60))

const wantKey = "exports/books-20261019T013000Z.json"

// capture reads the uploaded stream fully, like a real store would.
func capture(buf *bytes.Buffer) func(context.Context, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo {
	return func(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
		n, _ := io.Copy(buf, r)
		return storage.ObjectInfo{Key: key, Size: n, ContentType: opt.ContentType}
	}
}

func newExporter(books service.BookService, store storage.Storage) *Exporter {
	e := NewExporter(books, store, config.ExportConfig{Prefix: "exports", URLExpiryMin: 15})
	e.now = func() time.Time { return fixed }
	return e
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewBookMemory(
		model.Book{ID: "656f1c2e9d1e4a0b8c7d6e50", Title: "Dune", PublishedYear: "1965", Author: "656f1c2e9d1e4a0b8c7d6e5f"},
		model.Book{ID: "656f1c2e9d1e4a0b8c7d6e51", Title: "Children of Dune"},
	)
	mStore := new(storeMocks.MockStorage)
	var uploaded bytes.Buffer

	mStore.On("Put", ctx, wantKey, mock.Anything, storage.PutObjectOptions{Size: -1, ContentType: "application/json"}).
		Return(capture(&uploaded), nil)
	mStore.On("PresignGet", ctx, wantKey, 15*time.Minute).Return("https://minio.local/signed", nil)

	res, err := newExporter(service.NewBookService(repo, nil), mStore).Export(ctx)

	require.NoError(t, err)
	assert.Equal(t, wantKey, res.Key)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, int64(uploaded.Len()), res.Size)
	assert.Equal(t, "https://minio.local/signed", res.URL)

	var books []model.Book
	require.NoError(t, json.Unmarshal(uploaded.Bytes(), &books))
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Children of Dune", books[1].Title)
	mStore.AssertExpectations(t)
}

func TestExporter_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	var uploaded bytes.Buffer
	mStore.On("Put", ctx, wantKey, mock.Anything, mock.Anything).Return(capture(&uploaded), nil)
	mStore.On("PresignGet", ctx, wantKey, mock.Anything).Return("u", nil)

	res, err := newExporter(service.NewBookService(memory.NewBookMemory(), nil), mStore).Export(ctx)

	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Equal(t, "[]\n", uploaded.String())
}

func TestExporter_ListErrorFailsUpload(t *testing.T) {
	ctx := context.Background()
	mSvc := new(svcMocks.MockBookService)
	mSvc.On("List", ctx).Return(repository.ErrSeq(errors.New("cursor died")))

	mStore := new(storeMocks.MockStorage)
	mStore.On("Put", ctx, wantKey, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("stream aborted"))

	res, err := newExporter(mSvc, mStore).Export(ctx)

	assert.EqualError(t, err, "upload export: stream aborted")
	assert.Nil(t, res)
	mStore.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestExporter_PresignError(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	var uploaded bytes.Buffer
	mStore.On("Put", ctx, wantKey, mock.Anything, mock.Anything).Return(capture(&uploaded), nil)
	mStore.On("PresignGet", ctx, wantKey, mock.Anything).Return("", errors.New("no creds"))

	res, err := newExporter(service.NewBookService(memory.NewBookMemory(), nil), mStore).Export(ctx)

	assert.EqualError(t, err, "presign export: no creds")
	assert.Nil(t, res)
}

func TestWriteJSONArray_PropagatesListError(t *testing.T) {
	var buf bytes.Buffer

	n, err := writeJSONArray(&buf, repository.ErrSeq(errors.New("cursor died")))

	assert.EqualError(t, err, "cursor died")
	assert.Zero(t, n)
}

func TestNewExporter_DefaultExpiry(t *testing.T) {
	e := NewExporter(nil, nil, config.ExportConfig{Prefix: "snap"})
	assert.Equal(t, time.Hour, e.expiry)
	assert.Equal(t, "snap/books-20261019T013000Z.json", e.Key(fixed))
}
