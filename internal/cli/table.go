package cli

import (
	"context"
	"time"

	"github.com/iyhunko/product-catalog-api/internal/cloud"
	"github.com/iyhunko/product-catalog-api/internal/logger"
	"github.com/iyhunko/product-catalog-api/internal/repository/dynamo"
	"github.com/spf13/cobra"
)

// CreateTableOptions holds flags for the create-table command.
type CreateTableOptions struct {
	*RootOptions
	Wait time.Duration
}

// NewCreateTableCommand creates the create-table command.
func NewCreateTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateTableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "create-table",
		Short:         "Create the products table if it does not exist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateTable(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Wait, "wait", dynamo.DefaultTableWait, "how long to wait for the table to become active")

	return cmd
}

func runCreateTable(ctx context.Context, opts *CreateTableOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger.InitJSONLogger(conf.DebugMode)

	awsCfg, err := cloud.LoadConfig(ctx, conf.AWS)
	if err != nil {
		return err
	}

	return ensureTable(ctx, dynamo.NewClient(awsCfg, conf.DynamoDB.Endpoint), conf.DynamoDB.TableName, opts.Wait)
}
