package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the Loteplan platform",
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
		if profile, ok := app.session.Current(); ok {
			fmt.Printf("Ya has iniciado sesión como %s.\n", profile.Email)
			return nil
		}

		printBanner()
		email := promptLine("Email: ")
		password := promptLine("Contraseña: ")

		res, err := app.session.Login(ctx, email, password)
		if err != nil {
			return err
		}

		if res.SecondFactorRequired {
			for {
				code := promptLine("Código de verificación (6 dígitos): ")
				err = app.session.VerifySecondFactor(ctx, code)
				if err == nil {
					break
				}
				if errors.Is(err, session.ErrNoPendingToken) {
					return err
				}
				fmt.Println(err.Error())
			}
		}

		profile, _ := app.session.Current()
		fmt.Printf("Sesión iniciada como %s (%s).\n", profile.FullName, profile.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
