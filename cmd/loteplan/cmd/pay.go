package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var payCmd = &cobra.Command{
	Use:   "pay <installment-id>",
	Short: "Pay a monthly installment on a savings plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckout(cmd.Context(), transaction.KindInstallment, args[0])
	},
}

func init() {
	rootCmd.AddCommand(payCmd)
}
