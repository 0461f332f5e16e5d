package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codelie14/zillasec/internal/services/kv"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys stored in the local database",
	Long: fmt.Sprintf(`Stores provider API keys so they need not live in config files.
Environment variables still take precedence. Known keys: %s.`, strings.Join(kv.KnownKeys(), ", ")),
}

var keysSetCmd = &cobra.Command{
	Use:   "set [name] [value]",
	Short: "Store an API key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.KeyService.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Stored %s\n", args[0])
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored API keys with masked values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := application.KeyService.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(pairs)
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.KeyService.Delete(cmd.Context(), args[0])
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd, keysListCmd, keysDeleteCmd)
}
