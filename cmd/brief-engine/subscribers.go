package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/store"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "List stored subscriptions",
	Long: `Subscribers prints every record in the subscription store in insertion
order, marking the ones the weekly scheduler will skip.`,
	RunE: runSubscribers,
}

func init() {
	subscribersCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(subscribersCmd)
}

func runSubscribers(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	subs, err := store.New(cfg.Store.Path).Load()
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		data, err := json.MarshalIndent(subs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(subs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions stored.")
		return nil
	}
	for i, sub := range subs {
		status := ""
		if !sub.Deliverable() {
			status = "  (skipped by scheduler)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%3d. email=%q phone=%q domain=%q role=%q%s\n",
			i+1, sub.Email, sub.Phone, sub.Domain, sub.Role, status)
	}
	return nil
}
