package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSAccessKeyIDEnv is the environment variable for the AWS access key.
	AWSAccessKeyIDEnv = "AWS_ACCESS_KEY_ID"

	// AWSSecretAccessKeyEnv is the environment variable for the AWS secret key.
	AWSSecretAccessKeyEnv = "AWS_SECRET_ACCESS_KEY"

	// DynamoDBEndpointEnv is the environment variable for the DynamoDB endpoint URL.
	DynamoDBEndpointEnv = "DYNAMODB_ENDPOINT"

	// ProductsTableEnv is the environment variable for the products table name.
	ProductsTableEnv = "PRODUCTS_TABLE"

	// SQSEndpointEnv is the environment variable for the SQS endpoint URL.
	SQSEndpointEnv = "SQS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

// Defaults target a LocalStack sandbox.
const (
	DefaultHTTPServerPort    = "5000"
	DefaultMetricsServerPort = "9090"
	DefaultAWSRegion         = "us-east-1"
	DefaultDynamoDBEndpoint  = "http://localhost:4566"
	DefaultProductsTable     = "techcommerce-products-dev"

	// sandboxCredential is used for both key id and secret when an endpoint
	// override is set and no credentials are given.
	sandboxCredential = "test"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
	DynamoDB      DynamoDB
	SQS           SQS
}

// AWSConfig represents AWS-specific configuration settings shared by all clients.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoDB represents the products table settings.
type DynamoDB struct {
	Endpoint  string
	TableName string
}

// SQS represents the change-event queue settings. An empty QueueURL disables events.
type SQS struct {
	Endpoint string
	QueueURL string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// EventsEnabled reports whether product change events should be published.
func (c *Config) EventsEnabled() bool {
	return c.SQS.QueueURL != ""
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:     c.AWS.Region,
		ProductsTableEnv: c.DynamoDB.TableName,
	}); err != nil {
		return fmt.Errorf("storage configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val, ok := os.LookupEnv(name); ok && val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	dynamoEndpoint := getEnv(DynamoDBEndpointEnv, DefaultDynamoDBEndpoint)
	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, DefaultHTTPServerPort),
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, DefaultMetricsServerPort),
		},
		AWS: AWSConfig{
			Region:          getEnv(AWSRegionEnv, DefaultAWSRegion),
			AccessKeyID:     os.Getenv(AWSAccessKeyIDEnv),
			SecretAccessKey: os.Getenv(AWSSecretAccessKeyEnv),
		},
		DynamoDB: DynamoDB{
			Endpoint:  dynamoEndpoint,
			TableName: getEnv(ProductsTableEnv, DefaultProductsTable),
		},
		SQS: SQS{
			Endpoint: getEnv(SQSEndpointEnv, dynamoEndpoint),
			QueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if dynamoEndpoint != "" && conf.AWS.AccessKeyID == "" && conf.AWS.SecretAccessKey == "" {
		conf.AWS.AccessKeyID = sandboxCredential
		conf.AWS.SecretAccessKey = sandboxCredential
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
