package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Log in to a backoffice console and manage stored credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the console",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		serverURL, _ := cmd.Flags().GetString("server")
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}

		store := console.NewSessionStore()
		client := console.NewClient(serverURL, store)

		profileUser, err := client.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		profileName, _ := cmd.Flags().GetString("profile")
		if profileName == "" {
			profileName = "default"
		}
		snap := store.Snapshot()
		err = cfg.SaveProfile(profileName, &Profile{
			ServerURL:    serverURL,
			AccessToken:  snap.Tokens.AccessToken,
			RefreshToken: snap.Tokens.RefreshToken,
			Email:        profileUser.Email,
		})
		if err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		success("Logged in as %s (%s)", profileUser.Email, strings.Join(profileUser.Roles, ", "))
		info("Profile '%s' saved", profileName)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}
		_ = client.Logout(cmd.Context())

		profileName, _ := cmd.Flags().GetString("profile")
		if profileName == "" {
			profileName = cfg.CurrentProfile
		}
		if err := cfg.RemoveProfile(profileName); err != nil {
			return err
		}
		success("Logged out from profile '%s'", profileName)
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		me, err := client.Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}

		return render(outputFormat(cmd), me, func() {
			info("Email: %s", me.Email)
			info("Name:  %s %s", me.FirstName, me.LastName)
			info("Roles: %s", strings.Join(me.Roles, ", "))
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)

	authLoginCmd.Flags().StringP("email", "e", "", "Account email")
	authLoginCmd.Flags().StringP("password", "p", "", "Account password")
	authLoginCmd.MarkFlagRequired("email")
	authLoginCmd.MarkFlagRequired("password")
}
