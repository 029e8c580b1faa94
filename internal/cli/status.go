package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the stored token status as JSON",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := initApp(cmd)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(app.TokenStatus(), "", "  ")
	if err != nil {
		return exitError(ExitFailure, "%s", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if !app.TokenStatus().Authenticated {
		return exitError(ExitAuth, "not authenticated")
	}
	return nil
}
