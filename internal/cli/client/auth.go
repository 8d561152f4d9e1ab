package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage saved API credentials",
	}

	var token, apiURL string
	login := &cobra.Command{
		Use:   "login",
		Short: "Save an API token",
		Long:  "Store the API token and URL in litbot/credentials.yaml under the user config directory, or in $LITBOT_CONFIG_DIR",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			c := NewAPIClientWithConfig(token, apiURL)
			if _, err := c.Get(cmd.Context(), "/stats", nil); err != nil {
				return fmt.Errorf("token check failed: %w", err)
			}
			path, err := SaveLogin(SavedLogin{APIToken: token, APIURL: apiURL})
			if err != nil {
				return err
			}
			fmt.Printf("Saved credentials to %s\n", path)
			return nil
		},
	}
	login.Flags().StringVar(&token, "token", "", "API token (LITBOT_API_TOKEN on the server)")
	login.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")
	cmd.AddCommand(login)

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Remove saved credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ForgetLogin(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which credentials are active",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagToken, _ := cmd.Flags().GetString("api-token")
			flagURL, _ := cmd.Flags().GetString("api-url")
			creds, err := ResolveCredentials(flagToken, flagURL)
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(map[string]interface{}{
					"source":    creds.Source,
					"api_url":   creds.URL,
					"has_token": creds.Token != "",
				})
			}
			if creds.Source == SourceNone {
				fmt.Println("Not logged in")
				return nil
			}
			fmt.Printf("Source: %s\nURL:    %s\nToken:  %s\n", creds.Source, creds.URL, maskToken(creds.Token))
			return nil
		},
	})

	return cmd
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
