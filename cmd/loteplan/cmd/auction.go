package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Auction-related operations",
}

var auctionPayCmd = &cobra.Command{
	Use:   "pay <auction-id>",
	Short: "Settle a won auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckout(cmd.Context(), transaction.KindAuction, args[0])
	},
}

func init() {
	auctionCmd.AddCommand(auctionPayCmd)
	rootCmd.AddCommand(auctionCmd)
}
