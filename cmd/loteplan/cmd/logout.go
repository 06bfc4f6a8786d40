package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session and clear the stored credential",
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
		app.session.Logout(ctx)
		fmt.Println("Sesión cerrada.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
