package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomEconomyCmd())
	cmd.AddCommand(newRoomTransferCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Post("/api/v1/rooms", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get("/api/v1/rooms/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result JoinResult

			if err := client.Post("/api/v1/rooms/"+args[0]+"/join", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomEconomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "economy <code>",
		Short: "Show a room's balances, credits and histories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Economy

			if err := client.Get("/api/v1/rooms/"+args[0]+"/economy", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomTransferCmd() *cobra.Command {
	var from, to, amount int

	cmd := &cobra.Command{
		Use:   "transfer <code>",
		Short: "Send money between two seated players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{
				"sender_index":    from,
				"recipient_index": to,
				"amount":          amount,
			}
			var result TransferResult

			if err := client.Post("/api/v1/rooms/"+args[0]+"/transfer", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "Sender player index (required)")
	cmd.Flags().IntVar(&to, "to", 0, "Recipient player index (required)")
	cmd.Flags().IntVar(&amount, "amount", 0, "Amount to send (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
