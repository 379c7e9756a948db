package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"library/internal/cli"
	"library/internal/database"
)

func newMenuCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Logs share the terminal with the menu, so keep them quiet unless asked for.
			cfg, log := setup(opts, "warn")
			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, err := database.Open(ctx, cfg, log)
			if err != nil {
				fmt.Fprintf(out, "Error connecting to %s: %v\n", storeName(cfg.Store.Driver), err)
				return errReported
			}
			defer func() {
				if err := store.Close(context.Background()); err != nil {
					log.WithError(err).Warn("close store")
				}
			}()
			fmt.Fprintf(out, "--- Connected to %s successfully ---\n", store.Name)

			svc, err := newBookService(store, log, nil)
			if err != nil {
				return err
			}
			return cli.NewMenu(svc, cmd.InOrStdin(), out, cfg.Store.OpTimeout()).Run(ctx)
		},
	}
}
