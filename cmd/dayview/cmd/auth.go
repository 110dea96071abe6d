package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/theakshaypant/dayview/internal/auth"
	"github.com/theakshaypant/dayview/internal/util"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with your calendar provider",
	Long: `Sign in to the configured provider (provider: google|outlook) and save
the OAuth token used by every other command.

A local server on ` + auth.RedirectURL + ` receives the browser redirect.
Register that address as the redirect URI of your OAuth client.

.ics sources need no authentication.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	provider := viper.GetString("provider")

	var flow auth.Flow
	switch provider {
	case "google":
		b, err := os.ReadFile(expandPath(viper.GetString("credentials_file")))
		if err != nil {
			return fmt.Errorf("unable to read credentials file: %w\n\nCreate an OAuth client in the Google Cloud console and download it as JSON", err)
		}
		cfg, err := auth.GoogleConfig(b)
		if err != nil {
			return err
		}
		flow = auth.Flow{
			Config:   cfg,
			Provider: "Google",
			Options:  []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce},
		}
	case "outlook":
		clientID := viper.GetString("client_id")
		if clientID == "" {
			return fmt.Errorf("client_id not configured\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
		}
		flow = auth.Flow{
			Config:   auth.OutlookConfig(clientID, viper.GetString("tenant_id")),
			Provider: "Microsoft",
			Options:  []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "consent")},
		}
	case "ics":
		fmt.Fprintln(cmd.OutOrStdout(), "✅ .ics sources need no authentication.")
		return nil
	default:
		return fmt.Errorf("unknown provider: %s (supported: google, outlook, ics)", provider)
	}

	out := cmd.OutOrStdout()
	flow.Open = util.OpenBrowser
	flow.Out = out
	flow.Log = logger

	tok, err := flow.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	tokenFile := expandPath(viper.GetString("token_file"))
	if err := auth.Save(tokenFile, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintln(out, "\n✅ Authentication successful!")
	fmt.Fprintf(out, "📁 Token saved to %s\n", tokenFile)
	fmt.Fprintln(out, "\nRun 'dayview' for the agenda or 'dayview ui' for the day view.")
	return nil
}
