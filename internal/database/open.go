package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"library/internal/config"
	"library/internal/database/migration"
	"library/internal/repository"
	"library/internal/repository/memory"
	"library/internal/repository/mongodb"
	"library/internal/repository/postgres"
)

// Store bundles the repositories opened for the configured driver with the handle that owns them.
type Store struct {
	// Name is the human readable backend name, e.g. "MongoDB".
	Name  string
	Books repository.BookRepository
	// Authors is nil unless author checks are enabled and supported by the backend.
	Authors repository.AuthorDirectory

	close func(context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.Store.Driver.
// The returned error means the store is unreachable and the program should stop.
func Open(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverMemory:
		log.WithField("component", "database").Warn("using in-memory store; data is lost on exit")
		return &Store{Name: "memory store", Books: memory.NewBookMemory()}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func openMongo(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger) (*Store, error) {
	client, err := NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Mongo.Database)

	s := &Store{
		Name:  "MongoDB",
		Books: mongodb.NewBookMongo(db.Collection(cfg.Mongo.Collection)),
		close: client.Disconnect,
	}
	if cfg.ValidateAuthors {
		s.Authors = mongodb.NewAuthorMongo(db.Collection(cfg.Mongo.AuthorsCollection))
	}

	log.WithFields(logrus.Fields{
		"component":  "database",
		"event":      "store_connected",
		"driver":     config.DriverMongo,
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
	}).Info("connected")
	return s, nil
}

func openPostgres(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger) (*Store, error) {
	db, err := NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.ValidateAuthors {
		log.WithField("component", "database").Warn("author checks are only supported by the mongo driver; skipping")
	}

	log.WithFields(logrus.Fields{
		"component": "database",
		"event":     "store_connected",
		"driver":    config.DriverPostgres,
		"db_host":   cfg.Database.Host,
	}).Info("connected")

	return &Store{
		Name:  "PostgreSQL",
		Books: postgres.NewBookPostgres(db),
		close: func(context.Context) error { return db.Close() },
	}, nil
}
