package main

import (
	"os"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Export the completion audit log as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.AuditLogger.ExportToJSON(cmd.Context(), os.Stdout)
	},
}
