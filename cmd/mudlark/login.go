package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberveil/mudlark/internal/api"
	"github.com/emberveil/mudlark/internal/menu"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange account credentials for an access token",
	Long: `Prompts for Emberveil credentials and prints the access token on
stdout. Mudlark never writes the token to disk; export it instead:

  export MUDLARK_TOKEN=$(mudlark login --email you@example.com)`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email, password, err := menu.Credentials(loginEmail)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	tok, err := api.New(cfg.APIURL, "").Login(ctx, email, password)
	if err != nil {
		return err
	}

	// Token on stdout so $(mudlark login) captures only the token.
	fmt.Println(tok)
	fmt.Fprintln(os.Stderr, "Export it as MUDLARK_TOKEN; mudlark does not store it.")
	return nil
}
