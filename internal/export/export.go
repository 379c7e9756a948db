// Package export writes JSON snapshots of the book collection to object storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"path"
	"time"

	"library/internal/config"
	"library/internal/model"
	"library/internal/service"
	"library/internal/storage"
)

// Result describes a finished export.
type Result struct {
	Key   string
	Size  int64
	Count int
	URL   string
}

// Exporter streams every book as one JSON array into the object store.
type Exporter struct {
	books  service.BookService
	store  storage.Storage
	prefix string
	expiry time.Duration
	now    func() time.Time
}

// NewExporter builds an Exporter. A non-positive URLExpiryMin falls back to one hour.
func NewExporter(books service.BookService, store storage.Storage, cfg config.ExportConfig) *Exporter {
	expiry := time.Duration(cfg.URLExpiryMin) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Exporter{
		books:  books,
		store:  store,
		prefix: cfg.Prefix,
		expiry: expiry,
		now:    time.Now,
	}
}

// Key returns the object key for an export taken at t.
func (e *Exporter) Key(t time.Time) string {
	return path.Join(e.prefix, "books-"+t.UTC().Format("20060102T150405Z")+".json")
}

// Export uploads the snapshot and returns a presigned download URL for it.
// The upload is streamed, so its size is unknown to the store up front.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	key := e.Key(e.now())

	pr, pw := io.Pipe()
	done := make(chan struct{})
	var count int
	go func() {
		defer close(done)
		n, err := writeJSONArray(pw, e.books.List(ctx))
		count = n
		pw.CloseWithError(err)
	}()

	info, err := e.store.Put(ctx, key, pr, storage.PutObjectOptions{
		Size:        -1,
		ContentType: "application/json",
	})
	// unblocks the writer when Put gave up early
	pr.Close()
	<-done
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	u, err := e.store.PresignGet(ctx, key, e.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &Result{Key: info.Key, Size: info.Size, Count: count, URL: u}, nil
}

func writeJSONArray(w io.Writer, seq iter.Seq2[model.Book, error]) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	n := 0
	for b, err := range seq {
		if err != nil {
			return n, err
		}
		if n > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return n, err
			}
		}
		raw, err := json.Marshal(b)
		if err != nil {
			return n, err
		}
		if _, err := w.Write(raw); err != nil {
			return n, err
		}
		n++
	}
	_, err := io.WriteString(w, "]\n")
	return n, err
}
