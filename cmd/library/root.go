package main

import (
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"library/internal/config"
	"library/internal/database"
	"library/internal/logging"
	"library/internal/service"
)

// errReported marks failures that were already shown to the user.
var errReported = errors.New("already reported")

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	menu := newMenuCmd(opts)

	root := &cobra.Command{
		Use:   "library",
		Short: "Manage book records in a document store",
		Long: `library keeps book records (title, publication year, author reference)
in MongoDB or PostgreSQL. Without a subcommand it starts the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          menu.RunE,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(menu, newServeCmd(opts), newExportCmd(opts))
	return root
}

// setup loads configuration and builds the stderr logger. fallbackLevel applies when
// neither --log-level nor LOG_LEVEL is set.
func setup(opts *rootOptions, fallbackLevel string) (*config.AppConfig, *logrus.Logger) {
	cfg := config.Load()

	level := cfg.Log.Level
	switch {
	case opts.logLevel != "":
		level = opts.logLevel
	case fallbackLevel != "" && os.Getenv("LOG_LEVEL") == "":
		level = fallbackLevel
	}
	return cfg, logging.New(os.Stderr, cfg.Log.Location(), level)
}

// newBookService wraps the store in the service middlewares. reg may be nil to skip metrics.
func newBookService(store *database.Store, log logrus.FieldLogger, reg prometheus.Registerer) (service.BookService, error) {
	mws := []service.Middleware{
		service.LoggingMiddleware(log),
		service.TracingMiddleware(otel.Tracer("library/service")),
	}
	if reg != nil {
		instrumenting, err := service.InstrumentingMiddleware(reg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, instrumenting)
	}
	return service.Chain(service.NewBookService(store.Books, store.Authors), mws...), nil
}

// storeName is how the configured backend is called in user-facing messages.
func storeName(driver string) string {
	switch driver {
	case config.DriverPostgres:
		return "PostgreSQL"
	case config.DriverMemory:
		return "memory store"
	case config.DriverMongo:
		return "MongoDB"
	default:
		return driver
	}
}
