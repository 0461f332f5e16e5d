package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/analysis"
	"github.com/codelie14/zillasec/internal/services/extraction"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run an AI analysis over a spreadsheet and store the validated result",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeInstruction string
	analyzeTemplate    string
	analyzeVariant     string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInstruction, "instruction", "", "Instruction sent to the model (overrides templates)")
	analyzeCmd.Flags().StringVar(&analyzeTemplate, "template", "", "Template id to take the instruction from")
	analyzeCmd.Flags().StringVar(&analyzeVariant, "variant", "", "Reply schema: risk_summary, access_review or open")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	record, err := application.AnalysisService.AnalyzeFile(cmd.Context(), filepath.Base(path), data, analysis.Options{
		Instruction: analyzeInstruction,
		TemplateID:  analyzeTemplate,
		Variant:     models.SchemaVariant(analyzeVariant),
	})

	var rowErr *analysis.RowPersistenceError
	switch {
	case errors.As(err, &rowErr):
		logger.Warn().Err(err).Str("analysis_id", rowErr.AnalysisID).Msg("Analysis stored without its source rows")
	case err != nil:
		var extractionErr *extraction.ExtractionError
		if errors.As(err, &extractionErr) {
			logger.Error().
				Str("kind", string(extractionErr.Kind)).
				Str("violation", extractionErr.Violation).
				Msg("Model reply could not be validated")
			fmt.Fprintln(os.Stderr, extractionErr.Raw)
		}
		return err
	}

	if printErr := printJSON(record); printErr != nil {
		return printErr
	}
	return err
}
