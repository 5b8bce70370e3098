package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/iyhunko/product-catalog-api/internal/model"
)

// TableAPI is the subset of the DynamoDB client needed to provision the table.
type TableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DefaultTableWait bounds how long EnsureTable waits for a new table to become active.
const DefaultTableWait = 2 * time.Minute

// EnsureTable creates the products table if it does not exist and waits until
// it is active. It reports whether the table was created by this call.
func EnsureTable(ctx context.Context, client TableAPI, table string, maxWait time.Duration) (bool, error) {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err == nil {
		return false, nil
	}
	if !isMissingTable(err) {
		return false, fmt.Errorf("failed to describe table %s: %w", table, err)
	}

	created := true
	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(model.IDField), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(model.IDField), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		// another process won the race; wait for its table instead
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return false, fmt.Errorf("failed to create table %s: %w", table, err)
		}
		created = false
	}

	waiter := dynamodb.NewTableExistsWaiter(client, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = time.Second
		o.MaxDelay = 5 * time.Second
	})
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, maxWait); err != nil {
		return false, fmt.Errorf("table %s did not become active: %w", table, err)
	}

	slog.Info("products table ready", slog.String("table", table), slog.Bool("created", created))
	return created, nil
}
