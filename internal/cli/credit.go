package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newCreditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Credit ledger commands",
	}

	cmd.AddCommand(newCreditTakeCmd())
	cmd.AddCommand(newCreditPayoffCmd())
	cmd.AddCommand(newCreditStatusCmd())

	return cmd
}

func newCreditTakeCmd() *cobra.Command {
	var player, amount int

	cmd := &cobra.Command{
		Use:   "take <code>",
		Short: "Take a loan from the bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{
				"player_index": player,
				"amount":       amount,
			}
			var result TakeCreditResult

			if err := client.Post("/api/v1/rooms/"+args[0]+"/credit", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&player, "player", 0, "Player index (required)")
	cmd.Flags().IntVar(&amount, "amount", 0, "Loan amount, a multiple of 1000 (required)")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newCreditPayoffCmd() *cobra.Command {
	var player, amount int

	cmd := &cobra.Command{
		Use:   "payoff <code>",
		Short: "Pay off loan principal (omit --amount for full payoff)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{
				"player_index": player,
				"amount":       amount,
			}
			var result PayoffResult

			if err := client.Post("/api/v1/rooms/"+args[0]+"/credit/payoff", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&player, "player", 0, "Player index (required)")
	cmd.Flags().IntVar(&amount, "amount", 0, "Amount to repay; 0 pays the full outstanding credit")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newCreditStatusCmd() *cobra.Command {
	var player int

	cmd := &cobra.Command{
		Use:   "status <code>",
		Short: "Show a player's credit position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CreditStatus

			path := "/api/v1/rooms/" + args[0] + "/credit/" + strconv.Itoa(player)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&player, "player", 0, "Player index (required)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}
