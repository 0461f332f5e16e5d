package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelie14/zillasec/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), common.GetFullVersion())
	},
}
