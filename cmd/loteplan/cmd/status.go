package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/session"
	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var statusCmd = &cobra.Command{
	Use:   "status <transaction-reference>",
	Short: "Query the current status of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := app.session.Initialize(ctx); err != nil {
			return err
		}
		if app.session.Phase() != session.PhaseAuthenticated {
			return errNotLoggedIn
		}

		poller := transaction.NewPoller(app.gw, transaction.WithPollerLogger(app.log))
		res, err := poller.Query(ctx, args[0])
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
