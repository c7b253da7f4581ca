package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pharma-portal/internal/credentials"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the token pair",
	Long: `Sign in with e-mail and password.

The password is taken from --password or the PORTAL_PASSWORD environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("PORTAL_PASSWORD")
		}

		u, err := cli.session.Login(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}

		return cli.print(u)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored token pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cli.session.Logout(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user.

With --offline the identity is read from the stored access token without calling the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		if !offline {
			u, err := cli.session.FetchProfile(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(u)
		}

		p, err := cli.store.Get(cmd.Context())
		if errors.Is(err, credentials.ErrNotFound) {
			return fmt.Errorf("not signed in")
		}
		if err != nil {
			return err
		}

		claims, err := credentials.ParseClaims(p.AccessToken)
		if err != nil {
			return err
		}

		return cli.print(claims)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored token pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cli.session.Refresh(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account e-mail")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")

	whoamiCmd.Flags().Bool("offline", false, "decode the stored access token instead of calling the backend")
}
