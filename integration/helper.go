package integration

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/iyhunko/product-catalog-api/internal/cloud"
	"github.com/iyhunko/product-catalog-api/internal/config"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/iyhunko/product-catalog-api/internal/repository/dynamo"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const testTable = "techcommerce-products-test"

// TestTable holds a DynamoDB Local container with the products table created.
type TestTable struct {
	Client   *dynamodb.Client
	Name     string
	Endpoint string
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestTable starts DynamoDB Local using dockertest and creates the products table.
// The test is skipped when Docker is not reachable.
func SetupTestTable(t *testing.T) *TestTable {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Docker not available: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker not available: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "amazon/dynamodb-local",
		Tag:        "latest",
		Cmd:        []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	endpoint := fmt.Sprintf("http://%s", resource.GetHostPort("8000/tcp"))
	log.Println("Connecting to DynamoDB Local on: ", endpoint)

	ctx := context.Background()
	awsCfg, err := cloud.LoadConfig(ctx, config.AWSConfig{
		Region:          config.DefaultAWSRegion,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	if err != nil {
		t.Fatalf("Could not load AWS config: %s", err)
	}
	client := dynamo.NewClient(awsCfg, endpoint)

	// Wait for DynamoDB Local to accept requests
	if err = pool.Retry(func() error {
		_, err := client.ListTables(ctx, &dynamodb.ListTablesInput{})
		return err
	}); err != nil {
		t.Fatalf("Could not connect to DynamoDB Local: %s", err)
	}

	if _, err := dynamo.EnsureTable(ctx, client, testTable, 30*time.Second); err != nil {
		t.Fatalf("Could not create table: %s", err)
	}

	return &TestTable{
		Client:   client,
		Name:     testTable,
		Endpoint: endpoint,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup purges the Docker container.
func (tt *TestTable) Cleanup(t *testing.T) {
	t.Helper()

	if tt.Pool != nil && tt.Resource != nil {
		if err := tt.Pool.Purge(tt.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// Truncate deletes every item in the products table.
func (tt *TestTable) Truncate(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	paginator := dynamodb.NewScanPaginator(tt.Client, &dynamodb.ScanInput{
		TableName:            aws.String(tt.Name),
		ProjectionExpression: aws.String("#pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": model.IDField,
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			t.Fatalf("Could not scan table %s: %s", tt.Name, err)
		}
		for _, item := range page.Items {
			_, err := tt.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(tt.Name),
				Key:       map[string]types.AttributeValue{model.IDField: item[model.IDField]},
			})
			if err != nil {
				t.Fatalf("Could not delete item from %s: %s", tt.Name, err)
			}
		}
	}
}
