package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"estate-intake/internal/domain"
)

const draftTTL = 30 * 24 * time.Hour // 30-day TTL

func draftPK(id string) string {
	return "DRAFT#" + id
}

// draftTTLValue returns a Unix timestamp 30 days after now.
func draftTTLValue(now time.Time) int64 {
	return now.Add(draftTTL).Unix()
}

// NewDraft constructs a Draft stamped with the current time and TTL.
func NewDraft(id string, step int, submissionID string, form domain.IntakeFormData) domain.Draft {
	now := time.Now().UTC()
	return domain.Draft{
		ID:           id,
		Step:         step,
		SubmissionID: submissionID,
		Form:         form,
		UpdatedAt:    now.Format(time.RFC3339),
		TTL:          draftTTLValue(now),
	}
}

// SaveDraft writes or replaces a wizard draft.
func (c *Client) SaveDraft(ctx context.Context, d domain.Draft) error {
	if d.ID == "" {
		return errors.New("repository: SaveDraft: id is required")
	}
	form, err := encodeForm(d.Form)
	if err != nil {
		return fmt.Errorf("repository: SaveDraft: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      draftItem(d, form),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveDraft: %w", err)
	}
	return nil
}

func draftItem(d domain.Draft, form string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           sAttr(draftPK(d.ID)),
		"SK":           sAttr(skMeta),
		attrEntity:     sAttr("draft"),
		"id":           sAttr(d.ID),
		"step":         nAttr(int64(d.Step)),
		"submissionId": sAttr(d.SubmissionID),
		"formData":     sAttr(form),
		"updatedAt":    sAttr(d.UpdatedAt),
		"ttl":          nAttr(d.TTL),
	}
}

// GetDraft loads a wizard draft by id.
func (c *Client) GetDraft(ctx context.Context, id string) (domain.Draft, error) {
	item, err := c.getItem(ctx, "GetDraft", draftPK(id), skMeta)
	if err != nil {
		return domain.Draft{}, err
	}
	d, err := itemToDraft(item)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("repository: GetDraft unmarshal: %w", err)
	}
	return d, nil
}

func itemToDraft(item map[string]types.AttributeValue) (domain.Draft, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Draft{}, err
	}
	step, err := int64Attr(item, "step")
	if err != nil {
		return domain.Draft{}, err
	}
	raw, err := strAttr(item, "formData")
	if err != nil {
		return domain.Draft{}, err
	}
	form, err := decodeForm(raw)
	if err != nil {
		return domain.Draft{}, err
	}
	submissionID, err := optStrAttr(item, "submissionId")
	if err != nil {
		return domain.Draft{}, err
	}
	updated, err := optStrAttr(item, "updatedAt")
	if err != nil {
		return domain.Draft{}, err
	}
	ttl, err := optInt64Attr(item, "ttl")
	if err != nil {
		return domain.Draft{}, err
	}
	return domain.Draft{
		ID:           id,
		Step:         int(step),
		SubmissionID: submissionID,
		Form:         form,
		UpdatedAt:    updated,
		TTL:          ttl,
	}, nil
}
