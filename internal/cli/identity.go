package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity registry commands",
	}

	cmd.AddCommand(newIdentityRegisterCmd())
	cmd.AddCommand(newIdentityMeCmd())
	cmd.AddCommand(newIdentityUpdateCmd())
	cmd.AddCommand(newIdentityLookupCmd())
	cmd.AddCommand(newIdentityOnlineCmd())
	cmd.AddCommand(newIdentityStatsCmd())
	cmd.AddCommand(newIdentityCleanupCmd())

	return cmd
}

func newIdentityRegisterCmd() *cobra.Command {
	var account, name, given, family string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an identity (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"account_id":   account,
				"display_name": name,
				"given_name":   given,
				"family_name":  family,
			}
			var result AuthResult

			if err := client.Post("/api/v1/identities/register", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account id, an email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&given, "given", "", "Given name")
	cmd.Flags().StringVar(&family, "family", "", "Family name")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newIdentityMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current identity info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Identity

			if err := client.Get("/api/v1/identities/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newIdentityUpdateCmd() *cobra.Command {
	var name, given, family string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields on the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if cmd.Flags().Changed("name") {
				req["display_name"] = name
			}
			if cmd.Flags().Changed("given") {
				req["given_name"] = given
			}
			if cmd.Flags().Changed("family") {
				req["family_name"] = family
			}
			if len(req) == 0 {
				return fmt.Errorf("at least one of --name, --given, --family is required")
			}

			var result Identity
			if err := client.Patch("/api/v1/identities/me", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&given, "given", "", "Given name")
	cmd.Flags().StringVar(&family, "family", "", "Family name")

	return cmd
}

func newIdentityLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <account_id>",
		Short: "Look up an identity by account id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Identity

			path := "/api/v1/identities/lookup?account_id=" + url.QueryEscape(args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newIdentityOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "List online identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Identity

			if err := client.Get("/api/v1/identities/online", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if len(result) == 0 {
				out.PrintMessage("Nobody online")
				return nil
			}
			for _, ident := range result {
				out.Print(ident)
			}
			return nil
		},
	}
}

func newIdentityStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RegistryStats

			if err := client.Get("/api/v1/identities/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newIdentityCleanupCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove identities inactive for longer than a threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{"max_inactive_hours": hours}
			var result CleanupResult

			if err := client.Post("/api/v1/identities/cleanup", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Inactivity threshold in hours")

	return cmd
}
