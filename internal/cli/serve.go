package cli

import (
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := initApp(cmd)
	if err != nil {
		return err
	}
	if err := app.Serve(cmd.Context()); err != nil {
		return exitError(ExitFailure, "%s", err)
	}
	return nil
}
