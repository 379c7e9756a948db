package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library/internal/database"
	handlers "library/internal/http/handler"
	"library/internal/http/middleware"
	tracing "library/internal/otel"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := setup(opts, "")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Init(ctx, log)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					log.WithError(err).Warn("tracing shutdown")
				}
			}()

			store, err := database.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(context.Background()) }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc, err := newBookService(store, log, reg)
			if err != nil {
				return err
			}
			promMw, err := middleware.NewPrometheusMiddleware(reg, "/metrics", "/healthz")
			if err != nil {
				return err
			}

			app := fiber.New(fiber.Config{
				ErrorHandler:          handlers.ErrorHandler(),
				DisableStartupMessage: true,
			})
			app.Use(middleware.RequestID())
			app.Use(otelfiber.Middleware())
			app.Use(middleware.Logger(log))
			app.Use(promMw.Handler())

			app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
			handlers.RegisterRoutes(app, store.Books, svc)

			go func() {
				<-ctx.Done()
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.WithError(err).Error("http shutdown")
				}
			}()

			addr := ":" + cfg.Port
			log.WithFields(logrus.Fields{
				"component": "http",
				"addr":      addr,
				"store":     store.Name,
			}).Info("listening")

			if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
