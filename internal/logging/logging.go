// Package logging builds the JSON line logger shared by the CLI, migrations and the HTTP surface.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger that writes one JSON object per line to w.
// Every entry carries ts (RFC3339Nano, rendered in loc), level and msg.
func New(w io.Writer, loc *time.Location, level string) *logrus.Logger {
	if loc == nil {
		loc = time.UTC
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
		},
	})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	l.AddHook(locationHook{loc: loc})
	return l
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type locationHook struct {
	loc *time.Location
}

func (h locationHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h locationHook) Fire(e *logrus.Entry) error {
	e.Time = e.Time.In(h.loc)
	return nil
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
