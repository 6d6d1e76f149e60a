package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"estate-intake/internal/domain"
)

const entitySubmission = "submission"

func submissionPK(id string) string {
	return "SUB#" + id
}

// CreateSubmission stores a new submission. It fails with ErrConflict if the id is taken.
func (c *Client) CreateSubmission(ctx context.Context, s domain.Submission) error {
	item, err := submissionItem(s)
	if err != nil {
		return fmt.Errorf("repository: CreateSubmission: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return mapWriteError("CreateSubmission", err, ErrConflict)
	}
	return nil
}

// UpdateSubmission replaces a stored submission. It fails with ErrNotFound if
// the submission does not exist.
func (c *Client) UpdateSubmission(ctx context.Context, s domain.Submission) error {
	item, err := submissionItem(s)
	if err != nil {
		return fmt.Errorf("repository: UpdateSubmission: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return mapWriteError("UpdateSubmission", err, ErrNotFound)
	}
	return nil
}

// GetSubmission loads one submission by id.
func (c *Client) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	item, err := c.getItem(ctx, "GetSubmission", submissionPK(id), skMeta)
	if err != nil {
		return domain.Submission{}, err
	}
	s, err := itemToSubmission(item)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("repository: GetSubmission unmarshal: %w", err)
	}
	return s, nil
}

// ListSubmissions returns every submission.
func (c *Client) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	return c.scanSubmissions(ctx, "ListSubmissions", "")
}

// ListSubmissionsByOwner returns the submissions created by ownerID.
func (c *Client) ListSubmissionsByOwner(ctx context.Context, ownerID string) ([]domain.Submission, error) {
	if ownerID == "" {
		return nil, errors.New("repository: ListSubmissionsByOwner: owner id is required")
	}
	return c.scanSubmissions(ctx, "ListSubmissionsByOwner", ownerID)
}

func (c *Client) scanSubmissions(ctx context.Context, op, ownerID string) ([]domain.Submission, error) {
	filter := "#entity = :entity"
	values := map[string]types.AttributeValue{":entity": sAttr(entitySubmission)}
	if ownerID != "" {
		filter += " AND ownerId = :owner"
		values[":owner"] = sAttr(ownerID)
	}

	var out []domain.Submission
	var startKey map[string]types.AttributeValue
	for {
		page, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(c.tableName),
			FilterExpression:          aws.String(filter),
			ExpressionAttributeNames:  map[string]string{"#entity": attrEntity},
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: %s scan: %w", op, err)
		}
		for _, item := range page.Items {
			s, err := itemToSubmission(item)
			if err != nil {
				return nil, fmt.Errorf("repository: %s unmarshal: %w", op, err)
			}
			out = append(out, s)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	return out, nil
}

func submissionItem(s domain.Submission) (map[string]types.AttributeValue, error) {
	if s.ID == "" {
		return nil, errors.New("submission id is required")
	}
	form, err := encodeForm(s.Form)
	if err != nil {
		return nil, err
	}
	sum := s.Summary()
	return map[string]types.AttributeValue{
		"PK":                sAttr(submissionPK(s.ID)),
		"SK":                sAttr(skMeta),
		attrEntity:          sAttr(entitySubmission),
		"id":                sAttr(s.ID),
		"ownerId":           sAttr(s.OwnerID),
		"formData":          sAttr(form),
		"referralType":      sAttr(string(s.ReferralType)),
		"status":            sAttr(string(s.Status)),
		"attorneyId":        sAttr(s.AttorneyID),
		"notes":             sAttr(s.Notes),
		"createdAt":         sAttr(s.CreatedAt),
		"updatedAt":         sAttr(s.UpdatedAt),
		"contactEmail":      sAttr(sum.ContactEmail),
		"decedentFirstName": sAttr(sum.DecedentFirstName),
		"decedentLastName":  sAttr(sum.DecedentLastName),
		"decedentState":     sAttr(sum.DecedentState),
		"estateValueCents":  nAttr(int64(sum.EstateValue)),
		"hasTrust":          boolAttr(sum.HasTrust),
		"hasDisputes":       boolAttr(sum.HasDisputes),
	}, nil
}

// itemToSubmission converts a DynamoDB attribute map to a Submission. The flat
// summary columns are not read back; they are derived from formData.
func itemToSubmission(item map[string]types.AttributeValue) (domain.Submission, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Submission{}, err
	}
	raw, err := strAttr(item, "formData")
	if err != nil {
		return domain.Submission{}, err
	}
	form, err := decodeForm(raw)
	if err != nil {
		return domain.Submission{}, err
	}

	s := domain.Submission{ID: id, Form: form}
	fields := []struct {
		key string
		dst *string
	}{
		{"ownerId", &s.OwnerID},
		{"attorneyId", &s.AttorneyID},
		{"notes", &s.Notes},
		{"createdAt", &s.CreatedAt},
		{"updatedAt", &s.UpdatedAt},
	}
	for _, f := range fields {
		if *f.dst, err = optStrAttr(item, f.key); err != nil {
			return domain.Submission{}, err
		}
	}
	referral, err := optStrAttr(item, "referralType")
	if err != nil {
		return domain.Submission{}, err
	}
	status, err := optStrAttr(item, "status")
	if err != nil {
		return domain.Submission{}, err
	}
	s.ReferralType = domain.ReferralType(referral)
	s.Status = domain.SubmissionStatus(status)
	if s.Status == "" {
		s.Status = domain.StatusSubmitted
	}
	return s, nil
}
