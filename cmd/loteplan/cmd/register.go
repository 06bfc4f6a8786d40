package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/session"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new Loteplan account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		req := session.RegisterRequest{
			FullName: promptLine("Nombre completo: "),
			Email:    promptLine("Email: "),
			Password: promptLine("Contraseña: "),
			Phone:    promptLine("Teléfono (opcional): "),
		}
		if err := app.session.Register(cmd.Context(), req); err != nil {
			return err
		}
		fmt.Println("Cuenta creada. Ahora puedes iniciar sesión con `loteplan login`.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
