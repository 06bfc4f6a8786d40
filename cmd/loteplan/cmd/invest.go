package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var investCmd = &cobra.Command{
	Use:   "invest <lot-id>",
	Short: "Invest directly in a lot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckout(cmd.Context(), transaction.KindInvestment, args[0])
	},
}

func init() {
	rootCmd.AddCommand(investCmd)
}
