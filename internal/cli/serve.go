package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iyhunko/product-catalog-api/internal/cloud"
	httpAPI "github.com/iyhunko/product-catalog-api/internal/http"
	"github.com/iyhunko/product-catalog-api/internal/http/controller"
	"github.com/iyhunko/product-catalog-api/internal/logger"
	"github.com/iyhunko/product-catalog-api/internal/metrics"
	"github.com/iyhunko/product-catalog-api/internal/repository/dynamo"
	"github.com/iyhunko/product-catalog-api/internal/service"
	"github.com/iyhunko/product-catalog-api/internal/sqs"
	"github.com/spf13/cobra"
)

// DefaultShutdownTimeout bounds how long in-flight requests get to finish.
const DefaultShutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	CreateTable     bool
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the product API and metrics servers",
		Long: `Run the product API on PORT and Prometheus metrics on METRICS_SERVER_PORT.

Example:
  product-api serve
  DYNAMODB_ENDPOINT=http://localhost:8000 product-api serve --create-table`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CreateTable, "create-table", false, "create the products table if it does not exist")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "grace period for in-flight requests")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
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

	dynamoClient := dynamo.NewClient(awsCfg, conf.DynamoDB.Endpoint)
	if opts.CreateTable {
		if err := ensureTable(ctx, dynamoClient, conf.DynamoDB.TableName, dynamo.DefaultTableWait); err != nil {
			return err
		}
	}

	var publisher service.EventPublisher
	if conf.EventsEnabled() {
		publisher = sqs.NewPublisher(sqs.NewClient(awsCfg, conf.SQS.Endpoint), conf.SQS.QueueURL)
		slog.Info("Product events enabled", slog.String("queue_url", conf.SQS.QueueURL))
	}

	productService := service.NewProductService(
		dynamo.NewProductRepository(dynamoClient, conf.DynamoDB.TableName),
		publisher,
	)
	router := httpAPI.InitRouter(
		httpAPI.NewServer(conf.DebugMode),
		controller.NewHealthController(),
		controller.NewProductController(productService),
	)

	apiServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("Starting product API",
		slog.String("port", conf.HTTPServer.Port),
		slog.String("metrics_port", conf.MetricsServer.Port),
		slog.String("table", conf.DynamoDB.TableName),
		slog.String("region", conf.AWS.Region),
		slog.String("dynamodb_endpoint", conf.DynamoDB.Endpoint),
	)

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return serveUntilDone(ctx, timeout, apiServer, metrics.NewServer(conf))
}

// serveUntilDone runs every server until ctx is cancelled or one of them fails,
// then shuts all of them down within timeout.
func serveUntilDone(ctx context.Context, timeout time.Duration, servers ...*http.Server) error {
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down gracefully...")
	case runErr = <-errCh:
		slog.Error("Server failed", slog.Any("err", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var shutdownErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	return errors.Join(runErr, shutdownErr)
}

// ensureTable provisions the configured table and logs whether it was created.
func ensureTable(ctx context.Context, client dynamo.TableAPI, table string, wait time.Duration) error {
	created, err := dynamo.EnsureTable(ctx, client, table, wait)
	if err != nil {
		return err
	}
	if created {
		slog.Info("Created products table", slog.String("table", table))
	} else {
		slog.Info("Products table already exists", slog.String("table", table))
	}
	return nil
}
