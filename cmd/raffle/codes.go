// File: cmd/raffle/codes.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"promo-raffle/internal/infra/export"
	"promo-raffle/internal/usecase"

	"github.com/spf13/cobra"
)

func issueCommand() *cobra.Command {
	var (
		count int
		out   string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a batch of unique codes and write them as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			codes, issueErr := a.issuer.Issue(ctx, count)
			if len(codes) > 0 {
				// Whatever was stored is written out, even when the batch failed midway.
				if err := writeFileOrStdout(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return export.WriteCodes(w, codes, a.campaign.Location)
				}); err != nil {
					return err
				}
			}
			if issueErr != nil {
				return fmt.Errorf("issued %d of %d: %w", len(codes), count, issueErr)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "issued %d codes\n", len(codes))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of codes to issue")
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output file (default stdout)")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}

func purgeCommand() *cobra.Command {
	var confirm string
	cmd := &cobra.Command{
		Use:   "purge-codes",
		Short: "Delete every code (requires --confirm \"" + usecase.PurgeConfirmation + "\")",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.issuer.PurgeAll(ctx, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d codes\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "confirmation phrase")
	return cmd
}

func exportParticipantsCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-participants",
		Short: "Write every participant as CSV, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.participants.List(ctx)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.ParticipantsFilename(a.clock.Now(), a.campaign.Location)
			}
			if err := writeFileOrStdout(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return export.WriteParticipants(w, list, a.campaign.Location)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d participants to %s\n", len(list), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output file, \"-\" for stdout (default participantes_<date>.csv)")
	return cmd
}

// writeFileOrStdout writes to path, or to stdout when path is "" or "-".
func writeFileOrStdout(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
