package cli

import (
	"fmt"
	"withings-mcp/internal"
	"withings-mcp/internal/di"
	"withings-mcp/internal/structures"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running the binary without a
// subcommand serves MCP over stdio, which is how MCP clients launch it.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:          "withings-mcp",
		Short:        "MCP tool server for the Withings health API",
		Long:         "withings-mcp exposes Withings measurements, activity, sleep, workouts and heart rate as MCP tools over stdio.",
		SilenceUsage: true,
		Version:      version,
		RunE:         runServe,
	}
	root.SetVersionTemplate(fmt.Sprintf("withings-mcp version %s\n", version))

	root.PersistentFlags().StringP("config", "c", "", "Path to an optional YAML config file")
	root.PersistentFlags().String("env-file", "", "Path to the .env file holding credentials and tokens")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewAuthCmd())
	root.AddCommand(NewStatusCmd())
	return root
}

func cliFlags(cmd *cobra.Command) *structures.CliFlags {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	debug, _ := cmd.Flags().GetBool("debug")
	return &structures.CliFlags{
		ConfigPath: configPath,
		EnvFile:    envFile,
		DebugMode:  debug,
		Version:    cmd.Root().Version,
	}
}

func initApp(cmd *cobra.Command) (*internal.App, error) {
	app, err := di.InitApp(cliFlags(cmd))
	if err != nil {
		return nil, exitError(ExitConfig, "configuration error: %s", err)
	}
	return app, nil
}
