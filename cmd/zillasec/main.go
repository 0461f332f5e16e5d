package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/app"
	"github.com/codelie14/zillasec/internal/common"
)

var (
	// Persistent flags
	configFiles []string
	quiet       bool

	// Global state, set up before every command except version
	config      *common.Config
	logger      arbor.ILogger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "zillasec",
	Short: "Personnel access intake, reconciliation and AI review",
	Long: `ZillaSec imports personnel access spreadsheets into an identity store keyed by CUID,
and runs AI analyses over them whose JSON replies are validated before being stored.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the banner")

	rootCmd.AddCommand(
		importCmd,
		analyzeCmd,
		analysesCmd,
		chatCmd,
		metricsCmd,
		templatesCmd,
		identitiesCmd,
		keysCmd,
		auditCmd,
		versionCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if application != nil {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close application")
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// setup loads configuration (defaults -> files -> env), builds the logger and the application
func setup(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("zillasec.toml"); err == nil {
			configFiles = append(configFiles, "zillasec.toml")
		} else if _, err := os.Stat("deployments/local/zillasec.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/zillasec.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		return err
	}

	logger = common.SetupLogger(config)
	if !quiet {
		common.PrintBanner(config, logger)
	}

	application, err = app.New(cmd.Context(), config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return err
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
