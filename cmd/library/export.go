package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library/internal/database"
	"library/internal/export"
	tracing "library/internal/otel"
	"library/internal/storage"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of every book to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := setup(opts, "")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

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
				return fmt.Errorf("connect to %s: %w", storeName(cfg.Store.Driver), err)
			}
			defer func() { _ = store.Close(context.Background()) }()

			objects, err := storage.NewMinIO(ctx, cfg.MinIO)
			if err != nil {
				return fmt.Errorf("object storage: %w", err)
			}

			svc, err := newBookService(store, log, nil)
			if err != nil {
				return err
			}

			res, err := export.NewExporter(svc, objects, cfg.Export).Export(ctx)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"component": "export",
				"key":       res.Key,
				"books":     res.Count,
				"bytes":     res.Size,
			}).Info("export complete")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d books to %s/%s\n", res.Count, cfg.MinIO.Bucket, res.Key)
			fmt.Fprintf(out, "Download: %s\n", res.URL)
			return nil
		},
	}
}
