package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

const (
	pkLimits      = "LIMIT"
	skPrefixState = "STATE#"
)

// stateSK keys a limit by its state so the table stays unique per state.
func stateSK(state string) string {
	return skPrefixState + state
}

// ListStateLimits returns every configured limit ordered by state.
func (c *Client) ListStateLimits(ctx context.Context) ([]domain.StateLimit, error) {
	var out []domain.StateLimit
	var startKey map[string]types.AttributeValue
	for {
		page, err := c.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     sAttr(pkLimits),
				":prefix": sAttr(skPrefixState),
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ListStateLimits query: %w", err)
		}
		for _, item := range page.Items {
			l, err := itemToStateLimit(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListStateLimits unmarshal: %w", err)
			}
			out = append(out, l)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return out, nil
}

// GetStateLimit finds a limit by id.
func (c *Client) GetStateLimit(ctx context.Context, id string) (domain.StateLimit, error) {
	all, err := c.ListStateLimits(ctx)
	if err != nil {
		return domain.StateLimit{}, fmt.Errorf("repository: GetStateLimit: %w", err)
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.StateLimit{}, fmt.Errorf("repository: GetStateLimit: %w", ErrNotFound)
}

// CreateStateLimit stores a new limit. A second row for the same state fails
// with ErrConflict.
func (c *Client) CreateStateLimit(ctx context.Context, l domain.StateLimit) error {
	if err := checkStateLimit(l); err != nil {
		return fmt.Errorf("repository: CreateStateLimit: %w", err)
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                stateLimitItem(l),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return mapWriteError("CreateStateLimit", err, ErrConflict)
	}
	return nil
}

// UpdateStateLimit replaces prev with next. Renaming the state moves the item
// in one transaction and fails with ErrConflict if the new state is taken.
func (c *Client) UpdateStateLimit(ctx context.Context, prev, next domain.StateLimit) error {
	if err := checkStateLimit(next); err != nil {
		return fmt.Errorf("repository: UpdateStateLimit: %w", err)
	}
	if prev.State == next.State {
		_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(c.tableName),
			Item:                     stateLimitItem(next),
			ConditionExpression:      aws.String("attribute_exists(PK) AND #id = :id"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":id": sAttr(prev.ID),
			},
		})
		if err != nil {
			return mapWriteError("UpdateStateLimit", err, ErrNotFound)
		}
		return nil
	}

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName:           aws.String(c.tableName),
					Key:                 key(pkLimits, stateSK(prev.State)),
					ConditionExpression: aws.String("attribute_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                stateLimitItem(next),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
		},
	})
	if err != nil {
		return mapWriteError("UpdateStateLimit", err, ErrConflict)
	}
	return nil
}

// DeleteStateLimit removes the limit row for l.State.
func (c *Client) DeleteStateLimit(ctx context.Context, l domain.StateLimit) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(c.tableName),
		Key:                 key(pkLimits, stateSK(l.State)),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return mapWriteError("DeleteStateLimit", err, ErrNotFound)
	}
	return nil
}

// StateLimits implements referral.LimitSource over the stored rows.
func (c *Client) StateLimits(ctx context.Context) (referral.Limits, error) {
	rows, err := c.ListStateLimits(ctx)
	if err != nil {
		return nil, err
	}
	return referral.FromStateLimits(rows), nil
}

func checkStateLimit(l domain.StateLimit) error {
	if l.ID == "" {
		return errors.New("state limit id is required")
	}
	if strings.TrimSpace(l.State) == "" {
		return errors.New("state is required")
	}
	return nil
}

func stateLimitItem(l domain.StateLimit) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          sAttr(pkLimits),
		"SK":          sAttr(stateSK(l.State)),
		attrEntity:    sAttr("state_limit"),
		"id":          sAttr(l.ID),
		"state":       sAttr(l.State),
		"amountCents": nAttr(int64(l.Amount)),
		"createdAt":   sAttr(l.CreatedAt),
		"updatedAt":   sAttr(l.UpdatedAt),
	}
}

func itemToStateLimit(item map[string]types.AttributeValue) (domain.StateLimit, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.StateLimit{}, err
	}
	state, err := strAttr(item, "state")
	if err != nil {
		return domain.StateLimit{}, err
	}
	amount, err := int64Attr(item, "amountCents")
	if err != nil {
		return domain.StateLimit{}, err
	}
	created, err := optStrAttr(item, "createdAt")
	if err != nil {
		return domain.StateLimit{}, err
	}
	updated, err := optStrAttr(item, "updatedAt")
	if err != nil {
		return domain.StateLimit{}, err
	}
	return domain.StateLimit{
		ID:        id,
		State:     state,
		Amount:    domain.Cents(amount),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
