package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

func limitRow(id, state string, amount domain.Cents) domain.StateLimit {
	return domain.StateLimit{ID: id, State: state, Amount: amount, CreatedAt: "c", UpdatedAt: "u"}
}

func limitPage(rows ...domain.StateLimit) *dynamodb.QueryOutput {
	out := &dynamodb.QueryOutput{}
	for _, r := range rows {
		out.Items = append(out.Items, stateLimitItem(r))
	}
	return out
}

func TestListStateLimits_HappyPath(t *testing.T) {
	page1 := limitPage(limitRow("1", "California", domain.Dollars(184500)))
	page1.LastEvaluatedKey = key(pkLimits, stateSK("California"))
	db := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{
		page1,
		limitPage(limitRow("2", "Texas", domain.Dollars(75000))),
	}}
	c := mustNewClient(t, db)

	rows, err := c.ListStateLimits(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.StateLimit{
		limitRow("1", "California", domain.Dollars(184500)),
		limitRow("2", "Texas", domain.Dollars(75000)),
	}, rows)
	require.Equal(t, "PK = :pk AND begins_with(SK, :prefix)", *db.queryInputs[0].KeyConditionExpression)
	require.Len(t, db.queryInputs, 2)
}

func TestListStateLimits_QueryError(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{queryErr: errors.New("down")})
	_, err := c.ListStateLimits(context.Background())
	require.ErrorContains(t, err, "ListStateLimits")
}

func TestListStateLimits_MalformedAmount(t *testing.T) {
	item := stateLimitItem(limitRow("1", "Texas", 1))
	item["amountCents"] = &types.AttributeValueMemberS{Value: "lots"}
	c := mustNewClient(t, &fakeDynamo{queryPages: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}})
	_, err := c.ListStateLimits(context.Background())
	require.ErrorContains(t, err, "amountCents")
}

func TestStateLimits_ImplementsLimitSource(t *testing.T) {
	db := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{limitPage(
		limitRow("1", "Texas", domain.Dollars(75000)),
		limitRow("2", "default", domain.Dollars(40000)),
	)}}
	var src referral.LimitSource = mustNewClient(t, db)

	limits, err := src.StateLimits(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Dollars(40000), limits.Lookup("Ohio"))
}

func TestGetStateLimit(t *testing.T) {
	db := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{
		limitPage(limitRow("1", "Texas", 1), limitRow("2", "Ohio", 2)),
		limitPage(),
	}}
	c := mustNewClient(t, db)

	l, err := c.GetStateLimit(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, "Ohio", l.State)

	_, err = c.GetStateLimit(context.Background(), "3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateStateLimit(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.CreateStateLimit(context.Background(), limitRow("1", "Texas", domain.Dollars(75000))))
	require.Equal(t, "STATE#Texas", sValue(t, db.lastPutInput.Item, "SK"))
	require.Equal(t, "7500000", db.lastPutInput.Item["amountCents"].(*types.AttributeValueMemberN).Value)

	db.putErr = conditionFailed()
	err := c.CreateStateLimit(context.Background(), limitRow("2", "Texas", 1))
	require.ErrorIs(t, err, ErrConflict)

	err = c.CreateStateLimit(context.Background(), limitRow("3", " ", 1))
	require.ErrorContains(t, err, "state is required")
	err = c.CreateStateLimit(context.Background(), limitRow("", "Ohio", 1))
	require.ErrorContains(t, err, "id is required")
}

func TestUpdateStateLimit_SameState(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	prev := limitRow("1", "Texas", 1)
	next := limitRow("1", "Texas", 2)

	require.NoError(t, c.UpdateStateLimit(context.Background(), prev, next))
	require.Nil(t, db.lastTxInput)
	require.Equal(t, "attribute_exists(PK) AND #id = :id", *db.lastPutInput.ConditionExpression)

	db.putErr = conditionFailed()
	require.ErrorIs(t, c.UpdateStateLimit(context.Background(), prev, next), ErrNotFound)
}

func TestUpdateStateLimit_RenameIsTransactional(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	prev := limitRow("1", "Texas", 1)
	next := limitRow("1", "TX", 1)

	require.NoError(t, c.UpdateStateLimit(context.Background(), prev, next))
	require.Len(t, db.lastTxInput.TransactItems, 2)
	del := db.lastTxInput.TransactItems[0].Delete
	require.Equal(t, "STATE#Texas", del.Key["SK"].(*types.AttributeValueMemberS).Value)
	put := db.lastTxInput.TransactItems[1].Put
	require.Equal(t, "STATE#TX", sValue(t, put.Item, "SK"))

	db.txErr = &types.TransactionCanceledException{CancellationReasons: []types.CancellationReason{
		{Code: aws.String("None")},
		{Code: aws.String("ConditionalCheckFailed")},
	}}
	require.ErrorIs(t, c.UpdateStateLimit(context.Background(), prev, next), ErrConflict)
}

func TestDeleteStateLimit(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.DeleteStateLimit(context.Background(), limitRow("1", "Texas", 1)))
	require.Equal(t, "STATE#Texas", db.lastDelInput.Key["SK"].(*types.AttributeValueMemberS).Value)

	db.deleteErr = conditionFailed()
	require.ErrorIs(t, c.DeleteStateLimit(context.Background(), limitRow("1", "Texas", 1)), ErrNotFound)
}

func TestListStateLimits_MistypedTimestamps(t *testing.T) {
	for _, key := range []string{"createdAt", "updatedAt"} {
		t.Run(key, func(t *testing.T) {
			item := stateLimitItem(limitRow("1", "Texas", 1))
			item[key] = &types.AttributeValueMemberN{Value: "1700000000"}
			c := mustNewClient(t, &fakeDynamo{queryPages: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}})
			_, err := c.ListStateLimits(context.Background())
			require.ErrorContains(t, err, key)
		})
	}
}
