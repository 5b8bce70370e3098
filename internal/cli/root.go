package cli

import (
	"fmt"
	"os"

	"github.com/iyhunko/product-catalog-api/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the product-api command. Without a subcommand it
// behaves like serve.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	serveOpts := &ServeOptions{RootOptions: opts, ShutdownTimeout: DefaultShutdownTimeout}

	cmd := &cobra.Command{
		Use:   "product-api",
		Short: "Product catalog HTTP API backed by DynamoDB",
		Long: `Product catalog HTTP API backed by DynamoDB.

Configuration is read from the environment, optionally seeded from a .env
file (ENV_PATH or --env-file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), serveOpts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "path to a .env file (overrides "+config.EnvFilePath+")")
	cmd.Flags().BoolVar(&serveOpts.CreateTable, "create-table", false, "create the products table if it does not exist")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCreateTableCommand(opts))
	cmd.AddCommand(NewConsumeEventsCommand(opts))

	return cmd
}

// loadConfig reads the configuration, honouring --env-file.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile != "" {
		if err := os.Setenv(config.EnvFilePath, opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", config.EnvFilePath, err)
		}
	}
	return config.LoadFromEnv()
}
