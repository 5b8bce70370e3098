package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/iyhunko/product-catalog-api/internal/repository"
)

// API is the subset of the DynamoDB client used by ProductRepository.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ProductRepository implements repository.Repository on a single DynamoDB
// table whose hash key is the product id.
type ProductRepository struct {
	client API
	table  string
	now    func() time.Time
}

// Option configures a ProductRepository.
type Option func(*ProductRepository)

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *ProductRepository) {
		r.now = now
	}
}

// NewProductRepository creates a ProductRepository for the given table.
func NewProductRepository(client API, table string, opts ...Option) *ProductRepository {
	r := &ProductRepository{
		client: client,
		table:  table,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create writes the product unconditionally; an existing item with the same
// id is replaced.
func (r *ProductRepository) Create(ctx context.Context, product model.Product) (model.Product, error) {
	if !product.HasID() {
		return nil, repository.ErrMissingID
	}
	if _, ok := product.ID(); !ok {
		return nil, repository.ErrInvalidID
	}

	item := product.Clone()
	item.InitMeta(r.now())

	av, err := marshalItem(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return nil, storageError("PutItem", err)
	}

	return unmarshalItem(av)
}

// FindByID reads a product with a strongly consistent read.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            productKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		if isMissingTable(err) {
			return nil, repository.ErrNotFound
		}
		return nil, storageError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}
	return unmarshalItem(out.Item)
}

// List scans the whole table, following every page before returning.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})

	products := make([]model.Product, 0)
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storageError("Scan", err)
		}
		pages++
		for _, item := range page.Items {
			product, err := unmarshalItem(item)
			if err != nil {
				return nil, fmt.Errorf("failed to decode product: %w", err)
			}
			products = append(products, product)
		}
	}

	slog.Debug("scanned products table", slog.String("table", r.table), slog.Int("pages", pages), slog.Int("items", len(products)))
	return products, nil
}

// Update sets exactly the supplied fields plus updatedAt. Fields not named are
// left untouched. The id and createdAt fields cannot be changed.
func (r *ProductRepository) Update(ctx context.Context, id string, fields model.Product) (model.Product, error) {
	fields = fields.Clone()
	delete(fields, model.IDField)
	delete(fields, model.CreatedAtField)
	fields.Touch(r.now())

	expr, err := buildSetExpression(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       productKey(id),
		UpdateExpression:          aws.String(expr.update),
		ConditionExpression:       aws.String("attribute_exists(" + keyPlaceholder + ")"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) || isMissingTable(err) {
			return nil, repository.ErrNotFound
		}
		return nil, storageError("UpdateItem", err)
	}
	if len(out.Attributes) == 0 {
		return nil, repository.ErrNotFound
	}
	return unmarshalItem(out.Attributes)
}

// DeleteByID removes the product and returns its last stored state.
func (r *ProductRepository) DeleteByID(ctx context.Context, id string) (model.Product, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          productKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		if isMissingTable(err) {
			return nil, repository.ErrNotFound
		}
		return nil, storageError("DeleteItem", err)
	}
	if len(out.Attributes) == 0 {
		return nil, repository.ErrNotFound
	}
	return unmarshalItem(out.Attributes)
}

const keyPlaceholder = "#pk"

type setExpression struct {
	update string
	names  map[string]string
	values map[string]types.AttributeValue
}

// buildSetExpression renders "SET #f0 = :v0, ..." over fields in key order.
// Placeholders keep arbitrary field names and reserved words out of the
// expression itself.
func buildSetExpression(fields model.Product) (setExpression, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expr := setExpression{
		names:  map[string]string{keyPlaceholder: model.IDField},
		values: make(map[string]types.AttributeValue, len(keys)),
	}
	clauses := make([]string, 0, len(keys))
	for i, k := range keys {
		av, err := toAttributeValue(fields[k])
		if err != nil {
			return setExpression{}, fmt.Errorf("field %q: %w", k, err)
		}
		name := fmt.Sprintf("#f%d", i)
		value := fmt.Sprintf(":v%d", i)
		expr.names[name] = k
		expr.values[value] = av
		clauses = append(clauses, name+" = "+value)
	}
	expr.update = "SET " + strings.Join(clauses, ", ")
	return expr, nil
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.IDField: &types.AttributeValueMemberS{Value: id},
	}
}

func storageError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return repository.NewStorageError(op, apiErr.ErrorMessage(), err)
	}
	return repository.NewStorageError(op, "", err)
}

func isMissingTable(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.As(err, &notFound)
}

func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}
