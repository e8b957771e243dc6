package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var (
	cfgFile string
	cfg     *ProfileConfig
)

var rootCmd = &cobra.Command{
	Use:   "boctl",
	Short: "Backoffice console CLI",
	Long: `boctl is the command-line interface for the backoffice console.

Log in, browse and filter the list views (users, contents, media, audit
logs), manage accounts and content, and follow the live activity feed
from your terminal.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.boctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use (default: current profile)")
	rootCmd.PersistentFlags().String("server", "", "console URL (default from profile)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, yaml")
}

func initConfig() {
	var err error
	cfg, err = LoadProfileConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
		cfg = DefaultProfileConfig()
	}
}

// apiClient builds an authenticated client from the selected profile. Rotated
// tokens are written back to the profile so the silent refresh survives
// process restarts.
func apiClient(cmd *cobra.Command) (*console.Client, error) {
	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := cfg.GetProfile(profileName)
	if err != nil {
		return nil, err
	}

	serverURL, _ := cmd.Flags().GetString("server")
	if serverURL == "" {
		serverURL = profile.ServerURL
	}

	store := console.NewSessionStore()
	store.LoginSucceeded(&console.UserProfile{Email: profile.Email}, console.TokenSet{
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
	})
	store.OnChange(func(s console.Session) {
		if !s.Authenticated {
			return
		}
		profile.AccessToken = s.Tokens.AccessToken
		profile.RefreshToken = s.Tokens.RefreshToken
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist refreshed tokens: %v\n", err)
		}
	})

	client := console.NewClient(serverURL, store,
		console.WithRefreshStrategy(&console.AuthServiceRefresh{BaseURL: serverURL}),
		console.WithSessionExpiredHandler(func() {
			errorf("Session expired, run 'boctl auth login' again")
		}),
	)
	return client, nil
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}
