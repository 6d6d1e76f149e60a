package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"estate-intake/internal/domain"
)

const (
	skMeta = "META#"

	attrEntity = "entity"
)

var (
	// ErrNotFound is returned when the requested item does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a conditional write loses to an existing item.
	ErrConflict = errors.New("repository: conflict")
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client wraps the single DynamoDB table holding submissions, state limits
// and wizard drafts.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// mapWriteError turns failed write conditions into ErrConflict or ErrNotFound.
// missing is returned when the condition guarded an existing item.
func mapWriteError(op string, err error, missing error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("repository: %s: %w", op, missing)
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, r := range tce.CancellationReasons {
			if r.Code != nil && *r.Code == "ConditionalCheckFailed" {
				return fmt.Errorf("repository: %s: %w", op, missing)
			}
		}
	}
	return fmt.Errorf("repository: %s: %w", op, err)
}

func (c *Client) getItem(ctx context.Context, op, pk, sk string) (map[string]types.AttributeValue, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       key(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: %s get item: %w", op, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, fmt.Errorf("repository: %s: %w", op, ErrNotFound)
	}
	return out.Item, nil
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func encodeForm(form domain.IntakeFormData) (string, error) {
	b, err := json.Marshal(form)
	if err != nil {
		return "", fmt.Errorf("repository: encode form: %w", err)
	}
	return string(b), nil
}

func decodeForm(raw string) (domain.IntakeFormData, error) {
	var form domain.IntakeFormData
	if raw == "" {
		return form, nil
	}
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return domain.IntakeFormData{}, fmt.Errorf("repository: decode form: %w", err)
	}
	form.RecomputeTotals()
	return form, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

// optStrAttr returns "" for a missing attribute but still rejects a wrong type.
func optStrAttr(item map[string]types.AttributeValue, key string) (string, error) {
	if _, ok := item[key]; !ok {
		return "", nil
	}
	return strAttr(item, key)
}

// optInt64Attr is int64Attr with a missing attribute read as zero.
func optInt64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	if _, ok := item[key]; !ok {
		return 0, nil
	}
	return int64Attr(item, key)
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func sAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func nAttr(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func boolAttr(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}
