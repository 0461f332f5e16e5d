package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities [cuid]",
	Short: "List identities, or show one by CUID",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIdentities,
}

var (
	identitiesLimit  int
	identitiesOffset int
	identitiesDelete bool
)

func init() {
	identitiesCmd.Flags().IntVar(&identitiesLimit, "limit", 50, "Maximum identities to list")
	identitiesCmd.Flags().IntVar(&identitiesOffset, "offset", 0, "Identities to skip")
	identitiesCmd.Flags().BoolVar(&identitiesDelete, "delete", false, "Delete the identity instead of showing it")
}

func runIdentities(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store := application.IdentityStorage

	if len(args) == 0 {
		if identitiesDelete {
			return fmt.Errorf("--delete needs a cuid")
		}
		total, err := store.CountIdentities(ctx)
		if err != nil {
			return err
		}
		records, err := store.ListIdentities(ctx, identitiesOffset, identitiesLimit)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"total":      total,
			"identities": records,
		})
	}

	if identitiesDelete {
		if err := store.DeleteIdentity(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted identity %s\n", args[0])
		return nil
	}

	record, err := store.GetIdentity(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(record)
}
