package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Reconcile a personnel spreadsheet into the identity store",
	Long: `Reads a CSV or Excel workbook, maps its headers to identity fields and
inserts or overwrites identities by CUID in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	logger.Info().Str("file", path).Int("bytes", len(data)).Msg("Importing file")

	outcome, err := application.Reconciler.ImportFile(cmd.Context(), filepath.Base(path), data)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("Import failed")
		return err
	}
	return printJSON(outcome)
}
