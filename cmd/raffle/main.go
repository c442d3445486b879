// File: cmd/raffle/main.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"promo-raffle/internal/config"
	"promo-raffle/internal/infra/logging"
	"promo-raffle/internal/infra/metrics"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "raffle"

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var (
	globalFlags = struct {
		configFile string
		envFile    string
		dev        bool
	}{}

	cfg    *config.Config
	logger *zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Promotional raffle backend: code issuance and participant registration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.dev, "dev", false, "developer mode: console logs, no PII redaction")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if globalFlags.envFile != "" {
			if err := godotenv.Load(globalFlags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", globalFlags.envFile, err)
			}
		}
		c, err := config.LoadConfig(globalFlags.configFile, globalFlags.dev)
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(cfg.Log, cfg.Runtime.Dev)

		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
			logger.Debug().Msgf(format, v...)
		})); err != nil {
			logger.Warn().Err(err).Msg("automaxprocs")
		}
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
		return nil
	}

	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		issueCommand(),
		purgeCommand(),
		exportParticipantsCommand(),
		versionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", programName, version, commit)
		},
	}
}
