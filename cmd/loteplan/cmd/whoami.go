package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := app.session.Initialize(cmd.Context()); err != nil {
			return err
		}
		profile, ok := app.session.Current()
		if !ok {
			fmt.Println("No has iniciado sesión.")
			return nil
		}
		fmt.Printf("%s (%s)\n", profile.FullName, profile.Email)
		fmt.Printf("Rol: %s\n", profile.Role)
		if profile.KYCStatus != "" {
			fmt.Printf("KYC: %s\n", profile.KYCStatus)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
