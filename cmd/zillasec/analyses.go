package main

import (
	"github.com/spf13/cobra"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses [id]",
	Short: "List stored analyses, or show one with its source rows",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyses,
}

var (
	analysesLimit  int
	analysesOffset int
	analysesRows   bool
)

func init() {
	analysesCmd.Flags().IntVar(&analysesLimit, "limit", 20, "Maximum analyses to list")
	analysesCmd.Flags().IntVar(&analysesOffset, "offset", 0, "Analyses to skip")
	analysesCmd.Flags().BoolVar(&analysesRows, "rows", false, "Include source rows when showing one analysis")
}

func runAnalyses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 0 {
		records, err := application.AnalysisService.List(ctx, analysesOffset, analysesLimit)
		if err != nil {
			return err
		}
		return printJSON(records)
	}

	record, err := application.AnalysisService.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if !analysesRows {
		return printJSON(record)
	}

	rows, err := application.AnalysisService.Rows(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"analysis": record,
		"rows":     rows,
	})
}
