package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iyhunko/product-catalog-api/internal/cloud"
	"github.com/iyhunko/product-catalog-api/internal/config"
	"github.com/iyhunko/product-catalog-api/internal/logger"
	"github.com/iyhunko/product-catalog-api/internal/sqs"
	"github.com/spf13/cobra"
)

// NewConsumeEventsCommand creates the consume-events command.
func NewConsumeEventsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume-events",
		Short: "Long-poll the product events queue and log every event",
		Long: `Long-poll SQS_QUEUE_URL and log every product change event.

Messages are deleted once logged. Stops on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsumeEvents(cmd.Context(), rootOpts)
		},
	}
}

func runConsumeEvents(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger.InitJSONLogger(conf.DebugMode)

	if !conf.EventsEnabled() {
		return fmt.Errorf("%w: %s", config.ErrMissingConfig, config.SQSQueueURLEnv)
	}

	awsCfg, err := cloud.LoadConfig(ctx, conf.AWS)
	if err != nil {
		return err
	}

	consumer := sqs.NewConsumer(sqs.NewClient(awsCfg, conf.SQS.Endpoint), conf.SQS.QueueURL, sqs.LogEvent)
	slog.Info("Listening for product events", slog.String("queue_url", conf.SQS.QueueURL))

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Shutting down gracefully...")
	return nil
}
