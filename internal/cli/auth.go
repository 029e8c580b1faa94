package cli

import (
	"errors"
	"time"
	"withings-mcp/internal"
	"withings-mcp/internal/auth"

	"github.com/spf13/cobra"
)

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Withings account",
		Long: "auth prints the Withings authorization URL, waits for the redirect on the configured " +
			"redirect URI and saves the issued tokens to the .env file.",
		Args: cobra.NoArgs,
		RunE: runAuth,
	}
	cmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for the authorization callback")
	return cmd
}

func runAuth(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	app, err := initApp(cmd)
	if err != nil {
		return err
	}

	err = app.Authorize(cmd.Context(), timeout)
	if err == nil {
		return nil
	}
	var confErr *auth.ConfigurationError
	if errors.As(err, &confErr) {
		return exitError(ExitConfig, "%s", err)
	}
	if errors.Is(err, internal.ErrAuthorizationTimeout) {
		return exitError(ExitAuth, "%s after %s", err, timeout)
	}
	return exitError(ExitAuth, "authorization failed: %s", err)
}
