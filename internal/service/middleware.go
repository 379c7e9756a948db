package service

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"library/internal/logging"
	"library/internal/model"
)

// Middleware decorates a BookService.
type Middleware func(BookService) BookService

// Chain applies mws to svc; the first middleware ends up outermost.
func Chain(svc BookService, mws ...Middleware) BookService {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}

// Result labels used in logs and metrics.
const (
	resultSuccess        = "success"
	resultInvalidID      = "invalid_id"
	resultNotFound       = "not_found"
	resultAuthorNotFound = "author_not_found"
	resultError          = "error"
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrInvalidID):
		return resultInvalidID
	case errors.Is(err, ErrNotFound):
		return resultNotFound
	case errors.Is(err, ErrAuthorNotFound):
		return resultAuthorNotFound
	default:
		return resultError
	}
}

// observeSeq wraps seq so done runs once ranging stops, with the number of yielded books
// and the error that ended the sequence, if any.
func observeSeq(seq iter.Seq2[model.Book, error], done func(n int, err error)) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		var (
			n   int
			err error
		)
		defer func() { done(n, err) }()

		for b, e := range seq {
			if e != nil {
				err = e
				yield(b, e)
				return
			}
			n++
			if !yield(b, nil) {
				return
			}
		}
	}
}

// LoggingMiddleware logs every call as one JSON line.
func LoggingMiddleware(log logrus.FieldLogger) Middleware {
	return func(next BookService) BookService {
		return loggingMiddleware{next: next, log: log}
	}
}

type loggingMiddleware struct {
	next BookService
	log  logrus.FieldLogger
}

func (mw loggingMiddleware) record(ctx context.Context, op string, begin time.Time, err error, extra logrus.Fields) {
	fields := logrus.Fields{
		"component":   "service",
		"event":       "book_" + op,
		"status":      resultOf(err),
		"duration_ms": time.Since(begin).Milliseconds(),
	}
	if rid := logging.RequestID(ctx); rid != "" {
		fields["request_id"] = rid
	}
	for k, v := range extra {
		fields[k] = v
	}

	entry := mw.log.WithFields(fields)
	switch resultOf(err) {
	case resultSuccess:
		entry.Info(op)
	case resultError:
		entry.WithError(err).Error(op)
	default:
		entry.WithError(err).Warn(op)
	}
}

func (mw loggingMiddleware) Create(ctx context.Context, title, publishedYear, authorID string) (b *model.Book, err error) {
	defer func(begin time.Time) {
		f := logrus.Fields{"author": authorID}
		if b != nil {
			f["book_id"] = b.ID
		}
		mw.record(ctx, "create", begin, err, f)
	}(time.Now())
	return mw.next.Create(ctx, title, publishedYear, authorID)
}

func (mw loggingMiddleware) List(ctx context.Context) iter.Seq2[model.Book, error] {
	seq := mw.next.List(ctx)
	return func(yield func(model.Book, error) bool) {
		begin := time.Now()
		observeSeq(seq, func(n int, err error) {
			mw.record(ctx, "list", begin, err, logrus.Fields{"count": n})
		})(yield)
	}
}

func (mw loggingMiddleware) Get(ctx context.Context, id string) (b *model.Book, err error) {
	defer func(begin time.Time) {
		mw.record(ctx, "get", begin, err, logrus.Fields{"book_id": id})
	}(time.Now())
	return mw.next.Get(ctx, id)
}

func (mw loggingMiddleware) Exists(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		mw.record(ctx, "exists", begin, err, logrus.Fields{"book_id": id})
	}(time.Now())
	return mw.next.Exists(ctx, id)
}

func (mw loggingMiddleware) UpdateTitle(ctx context.Context, id, title string) (err error) {
	defer func(begin time.Time) {
		mw.record(ctx, "update_title", begin, err, logrus.Fields{"book_id": id})
	}(time.Now())
	return mw.next.UpdateTitle(ctx, id, title)
}

func (mw loggingMiddleware) Delete(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		mw.record(ctx, "delete", begin, err, logrus.Fields{"book_id": id})
	}(time.Now())
	return mw.next.Delete(ctx, id)
}

// InstrumentingMiddleware counts and times every call, labelled by operation and result.
func InstrumentingMiddleware(reg prometheus.Registerer) (Middleware, error) {
	count := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_operations_total",
			Help: "Total number of book operations processed.",
		},
		[]string{"operation", "result"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_operation_duration_seconds",
			Help:    "Duration of book operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	if err := reg.Register(count); err != nil {
		return nil, err
	}
	if err := reg.Register(duration); err != nil {
		return nil, err
	}

	return func(next BookService) BookService {
		return instrumentingMiddleware{next: next, count: count, duration: duration}
	}, nil
}

type instrumentingMiddleware struct {
	next     BookService
	count    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func (mw instrumentingMiddleware) observe(op string, begin time.Time, err error) {
	mw.count.WithLabelValues(op, resultOf(err)).Inc()
	mw.duration.WithLabelValues(op).Observe(time.Since(begin).Seconds())
}

func (mw instrumentingMiddleware) Create(ctx context.Context, title, publishedYear, authorID string) (b *model.Book, err error) {
	defer func(begin time.Time) { mw.observe("create", begin, err) }(time.Now())
	return mw.next.Create(ctx, title, publishedYear, authorID)
}

func (mw instrumentingMiddleware) List(ctx context.Context) iter.Seq2[model.Book, error] {
	seq := mw.next.List(ctx)
	return func(yield func(model.Book, error) bool) {
		begin := time.Now()
		observeSeq(seq, func(_ int, err error) { mw.observe("list", begin, err) })(yield)
	}
}

func (mw instrumentingMiddleware) Get(ctx context.Context, id string) (b *model.Book, err error) {
	defer func(begin time.Time) { mw.observe("get", begin, err) }(time.Now())
	return mw.next.Get(ctx, id)
}

func (mw instrumentingMiddleware) Exists(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) { mw.observe("exists", begin, err) }(time.Now())
	return mw.next.Exists(ctx, id)
}

func (mw instrumentingMiddleware) UpdateTitle(ctx context.Context, id, title string) (err error) {
	defer func(begin time.Time) { mw.observe("update_title", begin, err) }(time.Now())
	return mw.next.UpdateTitle(ctx, id, title)
}

func (mw instrumentingMiddleware) Delete(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) { mw.observe("delete", begin, err) }(time.Now())
	return mw.next.Delete(ctx, id)
}

// TracingMiddleware opens a span per call. Expected outcomes (invalid id, not found) do not
// mark the span as failed.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next BookService) BookService {
		return tracingMiddleware{next: next, tracer: tracer}
	}
}

type tracingMiddleware struct {
	next   BookService
	tracer trace.Tracer
}

func (mw tracingMiddleware) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return mw.tracer.Start(ctx, "BookService."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	span.SetAttributes(attribute.String("book.result", resultOf(err)))
	if resultOf(err) == resultError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (mw tracingMiddleware) Create(ctx context.Context, title, publishedYear, authorID string) (b *model.Book, err error) {
	ctx, span := mw.start(ctx, "Create", attribute.String("book.author", authorID))
	defer func() { endSpan(span, err) }()
	return mw.next.Create(ctx, title, publishedYear, authorID)
}

func (mw tracingMiddleware) List(ctx context.Context) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		ctx, span := mw.start(ctx, "List")
		observeSeq(mw.next.List(ctx), func(n int, err error) {
			span.SetAttributes(attribute.Int("book.count", n))
			endSpan(span, err)
		})(yield)
	}
}

func (mw tracingMiddleware) Get(ctx context.Context, id string) (b *model.Book, err error) {
	ctx, span := mw.start(ctx, "Get", attribute.String("book.id", id))
	defer func() { endSpan(span, err) }()
	return mw.next.Get(ctx, id)
}

func (mw tracingMiddleware) Exists(ctx context.Context, id string) (err error) {
	ctx, span := mw.start(ctx, "Exists", attribute.String("book.id", id))
	defer func() { endSpan(span, err) }()
	return mw.next.Exists(ctx, id)
}

func (mw tracingMiddleware) UpdateTitle(ctx context.Context, id, title string) (err error) {
	ctx, span := mw.start(ctx, "UpdateTitle", attribute.String("book.id", id))
	defer func() { endSpan(span, err) }()
	return mw.next.UpdateTitle(ctx, id, title)
}

func (mw tracingMiddleware) Delete(ctx context.Context, id string) (err error) {
	ctx, span := mw.start(ctx, "Delete", attribute.String("book.id", id))
	defer func() { endSpan(span, err) }()
	return mw.next.Delete(ctx, id)
}
