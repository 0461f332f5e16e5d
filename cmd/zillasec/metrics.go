package main

import (
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show dashboard metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics, err := application.MetricsService.Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(metrics)
	},
}
