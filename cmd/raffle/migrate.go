// File: cmd/raffle/migrate.go
package main

import (
	"fmt"

	"promo-raffle/internal/infra/db/migrations"
	pg "promo-raffle/internal/infra/db/postgres"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := pg.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.Apply(ctx, pool, logger)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}
