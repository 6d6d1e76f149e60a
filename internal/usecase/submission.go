package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"estate-intake/internal/domain"
	"estate-intake/internal/intake"
	"estate-intake/internal/referral"
	"estate-intake/internal/repository"
)

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s domain.Submission) error
	UpdateSubmission(ctx context.Context, s domain.Submission) error
	GetSubmission(ctx context.Context, id string) (domain.Submission, error)
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	ListSubmissionsByOwner(ctx context.Context, ownerID string) ([]domain.Submission, error)
}

// Classifier picks a referral type for a form against the current limits.
type Classifier interface {
	Classify(ctx context.Context, data domain.IntakeFormData) domain.ReferralType
}

type SubmissionService struct {
	store      SubmissionStore
	classifier Classifier
}

// SubmissionUpdate is a staff edit. Nil fields are left unchanged. A Form
// patch is merged into the stored form and triggers reclassification.
type SubmissionUpdate struct {
	Form       *intake.Patch
	Status     *domain.SubmissionStatus
	AttorneyID *string
	Notes      *string
}

// ClassifyOutput is a classification preview with its display copy.
type ClassifyOutput struct {
	ReferralType       domain.ReferralType `json:"referralType"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	TotalNetAssetValue domain.Cents        `json:"totalNetAssetValue"`
	EligibleValue      domain.Cents        `json:"eligibleValue"`
}

func NewSubmissionService(store SubmissionStore, classifier Classifier) (*SubmissionService, error) {
	if store == nil {
		return nil, errors.New("usecase: submission store must not be nil")
	}
	if classifier == nil {
		return nil, errors.New("usecase: classifier must not be nil")
	}
	return &SubmissionService{store: store, classifier: classifier}, nil
}

// Create classifies form and stores it as a new submission owned by ownerID.
func (s *SubmissionService) Create(ctx context.Context, ownerID string, form domain.IntakeFormData) (domain.Submission, error) {
	return s.create(ctx, "", ownerID, form)
}

// create stores form under id, or under a fresh uuid when id is empty.
func (s *SubmissionService) create(ctx context.Context, id, ownerID string, form domain.IntakeFormData) (domain.Submission, error) {
	if err := checkAmounts(form); err != nil {
		return domain.Submission{}, err
	}
	form.RecomputeTotals()
	form.ReferralType = s.classifier.Classify(ctx, form)
	if id == "" {
		id = newUUID()
	}

	ts := now().Format(time.RFC3339)
	sub := domain.Submission{
		ID:           id,
		OwnerID:      strings.TrimSpace(ownerID),
		Form:         form,
		ReferralType: form.ReferralType,
		Status:       domain.StatusSubmitted,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Submission{}, newError(ErrorConflict, "submission_exists", err)
		}
		return domain.Submission{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, id string) (domain.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Submission{}, newError(ErrorInvalidInput, "submission_id_required", nil)
	}
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Submission{}, newError(ErrorNotFound, "submission_not_found", err)
		}
		return domain.Submission{}, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	return sub, nil
}

// List returns every submission for staff review.
func (s *SubmissionService) List(ctx context.Context) ([]domain.Submission, error) {
	subs, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	return subs, nil
}

func (s *SubmissionService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Submission, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, newError(ErrorInvalidInput, "owner_required", nil)
	}
	subs, err := s.store.ListSubmissionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	return subs, nil
}

// Update applies a staff edit to a stored submission.
func (s *SubmissionService) Update(ctx context.Context, id string, in SubmissionUpdate) (domain.Submission, error) {
	if in.Status != nil && !in.Status.Valid() {
		return domain.Submission{}, newError(ErrorInvalidInput, "invalid_status", nil)
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if in.Form != nil {
		form := intake.Merge(sub.Form, *in.Form)
		if err := checkAmounts(form); err != nil {
			return domain.Submission{}, err
		}
		sub.Form = form
		sub.Form.ReferralType = s.classifier.Classify(ctx, sub.Form)
		sub.ReferralType = sub.Form.ReferralType
	}
	if in.Status != nil {
		sub.Status = *in.Status
	}
	if in.AttorneyID != nil {
		sub.AttorneyID = strings.TrimSpace(*in.AttorneyID)
	}
	if in.Notes != nil {
		sub.Notes = *in.Notes
	}
	return s.save(ctx, sub)
}

// Resubmit replaces the form of an existing submission after an edit-mode
// wizard run. Staff fields are kept.
func (s *SubmissionService) Resubmit(ctx context.Context, id string, form domain.IntakeFormData) (domain.Submission, error) {
	if err := checkAmounts(form); err != nil {
		return domain.Submission{}, err
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	form.RecomputeTotals()
	form.ReferralType = s.classifier.Classify(ctx, form)
	sub.Form = form
	sub.ReferralType = form.ReferralType
	return s.save(ctx, sub)
}

func (s *SubmissionService) save(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	sub.UpdatedAt = now().Format(time.RFC3339)
	if err := s.store.UpdateSubmission(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Submission{}, newError(ErrorNotFound, "submission_not_found", err)
		}
		return domain.Submission{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	return sub, nil
}

// Classify previews the referral for form without storing anything.
func (s *SubmissionService) Classify(ctx context.Context, form domain.IntakeFormData) (ClassifyOutput, error) {
	if err := checkAmounts(form); err != nil {
		return ClassifyOutput{}, err
	}
	form.RecomputeTotals()
	t := s.classifier.Classify(ctx, form)
	info, err := referral.Describe(t)
	if err != nil {
		return ClassifyOutput{}, newError(ErrorInternal, "unknown_referral_type", err)
	}
	return ClassifyOutput{
		ReferralType:       t,
		Title:              info.Title,
		Description:        info.Description,
		TotalNetAssetValue: form.TotalNetAssetValue,
		EligibleValue:      referral.EligibleAssetValue(form.Assets),
	}, nil
}

// checkAmounts rejects asset values that would skew totals: negatives and
// amounts past domain.MaxAmount.
func checkAmounts(form domain.IntakeFormData) error {
	fields := intake.CheckAmounts(form)
	if fields == nil {
		return nil
	}
	e := newError(ErrorValidationFailed, "invalid_amounts", nil)
	e.Fields = fields
	return e
}

var newUUID = func() string {
	return uuid.NewString()
}

var now = func() time.Time {
	return time.Now().UTC()
}
