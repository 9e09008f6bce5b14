package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/deliver"
	"github.com/pdiddy/brief-engine/internal/store"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Add a subscriber to the weekly update list",
	Long: `Subscribe appends one subscriber record to the subscription store. At
least one of --email or --phone is required; records without an email,
domain, or role are stored but skipped by the weekly scheduler.`,
	RunE: runSubscribe,
}

func init() {
	subscribeCmd.Flags().String("email", "", "subscriber email address")
	subscribeCmd.Flags().String("phone", "", "subscriber phone number")
	subscribeCmd.Flags().String("domain", "", "professional domain, e.g. Marketing")
	subscribeCmd.Flags().String("role", "", "role within the domain")
	subscribeCmd.Flags().Bool("confirm", false, "send a confirmation email (requires mail credentials)")

	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	domain, _ := cmd.Flags().GetString("domain")
	role, _ := cmd.Flags().GetString("role")

	sub := types.Subscription{
		Email:  strings.TrimSpace(email),
		Phone:  strings.TrimSpace(phone),
		Domain: strings.TrimSpace(domain),
		Role:   strings.TrimSpace(role),
	}
	if !sub.HasContact() {
		return fmt.Errorf("provide at least --email or --phone")
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	if err := store.New(cfg.Store.Path).Append(sub); err != nil {
		return fmt.Errorf("storing subscription: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Subscription stored in %s\n", cfg.Store.Path)

	confirm, _ := cmd.Flags().GetBool("confirm")
	if !confirm || sub.Email == "" {
		return nil
	}

	if cfg.Mail.Username == "" || cfg.Mail.Password == "" {
		return fmt.Errorf("mail credentials not configured: set mail.username and mail.password (or the smtp-password secret)")
	}
	channel := deliver.NewChannel(deliver.NewSMTPTransport(cfg.Mail))
	if !channel.Send(sub.Email, deliver.ConfirmationSubject, deliver.RenderConfirmation(sub.Domain, sub.Role)) {
		return fmt.Errorf("subscription saved, but the confirmation email failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Confirmation email sent to %s\n", sub.Email)
	return nil
}
