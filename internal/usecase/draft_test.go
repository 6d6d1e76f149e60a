package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"estate-intake/internal/domain"
	"estate-intake/internal/intake"
)

func newDraftService(t *testing.T) (*DraftService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc, err := NewDraftService(store, newSubmissionService(t, store))
	require.NoError(t, err)
	return svc, store
}

func walkPatches() []intake.Patch {
	contact := &domain.ContactInfo{Name: "Ana Lopez", Phone: "(555) 123-4567", Email: "ana@example.com", Address: "1 Main St"}
	rep := *contact
	rep.RelationshipToDecedent = "Daughter"
	rep.IsExecutor = domain.Bool(true)
	assets := []domain.AssetInfo{
		{Type: domain.AssetBankAccounts, EstimatedValue: domain.Dollars(40000), Ownership: domain.OwnershipSole},
		{Type: domain.AssetVehicles, EstimatedValue: domain.Dollars(20000), Ownership: domain.OwnershipSole},
	}
	return []intake.Patch{
		{ContactInfo: contact},
		{DecedentInfo: &domain.DecedentInfo{
			Name: "Bo Lopez", DateOfBirth: "1940-03-01", DateOfDeath: "2026-01-15",
			DomicileState: "Texas", DiedInDomicileState: domain.Bool(true),
		}},
		{HasEstatePlan: domain.Bool(false), HasContestingBeneficiaries: domain.Bool(false)},
		{IsMarried: domain.Bool(false), HasChildren: domain.Bool(false)},
		{ContactInfo: &rep},
		{Assets: &assets},
	}
}

func walkToReview(t *testing.T, svc *DraftService, id string) DraftView {
	t.Helper()
	var v DraftView
	var err error
	for _, p := range walkPatches() {
		v, err = svc.Submit(context.Background(), id, p)
		require.NoError(t, err)
	}
	return v
}

func TestNewDraftService_Validation(t *testing.T) {
	_, err := NewDraftService(nil, &SubmissionService{})
	require.ErrorContains(t, err, "draft store")
	_, err = NewDraftService(newMemStore(), nil)
	require.ErrorContains(t, err, "submission service")
}

func TestDraftStart_New(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)

	v, err := svc.Start(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "d-1", v.ID)
	require.Equal(t, intake.StepContact, v.Step)
	require.Equal(t, "Contact", v.StepName)
	require.False(t, v.Editing)
	require.Equal(t, 1, store.drafts["d-1"].Step)
	require.NotZero(t, store.drafts["d-1"].TTL)
}

func TestDraftStart_EditHydratesSubmission(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)
	store.subs["sub-1"] = domain.Submission{ID: "sub-1", Form: texasForm(10, 20)}

	v, err := svc.Start(context.Background(), "sub-1")
	require.NoError(t, err)
	require.True(t, v.Editing)
	require.Equal(t, "sub-1", v.SubmissionID)
	require.Equal(t, domain.Dollars(30), v.Form.TotalNetAssetValue)

	_, err = svc.Start(context.Background(), "missing")
	requireCode(t, err, ErrorNotFound, "submission_not_found")
}

func TestDraftSubmit_ValidationFailureKeepsState(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)
	_, err := svc.Start(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "d-1", intake.Patch{ContactInfo: &domain.ContactInfo{Email: "not-an-email"}})
	uerr := requireCode(t, err, ErrorValidationFailed, "step_invalid")
	require.Contains(t, uerr.Fields, "contactInfo.email")
	require.Equal(t, 1, store.drafts["d-1"].Step)
	require.Nil(t, store.drafts["d-1"].Form.ContactInfo)
}

func TestDraft_WalkBackAndReview(t *testing.T) {
	stubIDs(t, "d-1")
	svc, _ := newDraftService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "")
	require.NoError(t, err)

	v := walkToReview(t, svc, "d-1")
	require.Equal(t, intake.StepReview, v.Step)
	require.Equal(t, domain.Dollars(60000), v.Form.TotalNetAssetValue)

	v, err = svc.Back(ctx, "d-1")
	require.NoError(t, err)
	require.Equal(t, intake.StepAssets, v.Step)
	require.Len(t, v.Form.Assets, 2, "going back keeps data")

	got, err := svc.Get(ctx, "d-1")
	require.NoError(t, err)
	require.Equal(t, v, got)

	review, err := svc.Review(ctx, "d-1")
	require.NoError(t, err)
	require.Equal(t, domain.ReferralAffidavits, review.Referral.Type)
	require.Equal(t, "Small Estate Affidavit", review.Referral.Title)
}

func TestDraft_SkipAndJumpRequireEditMode(t *testing.T) {
	stubIDs(t, "d-1", "d-2")
	svc, store := newDraftService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "")
	require.NoError(t, err)

	_, err = svc.SkipToReview(ctx, "d-1")
	requireCode(t, err, ErrorConflict, "not_editing")
	_, err = svc.JumpTo(ctx, "d-1", intake.StepAssets)
	requireCode(t, err, ErrorConflict, "not_editing")

	store.subs["sub-1"] = domain.Submission{ID: "sub-1", Form: texasForm(1)}
	_, err = svc.Start(ctx, "sub-1")
	require.NoError(t, err)

	v, err := svc.SkipToReview(ctx, "d-2")
	require.NoError(t, err)
	require.Equal(t, intake.StepReview, v.Step)

	v, err = svc.JumpTo(ctx, "d-2", intake.StepFamily)
	require.NoError(t, err)
	require.Equal(t, intake.StepFamily, v.Step)

	_, err = svc.JumpTo(ctx, "d-2", intake.Step(9))
	requireCode(t, err, ErrorInvalidInput, "invalid_step")
}

func TestDraftFinalize_CreatesSubmissionAndSwitchesToEdit(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "")
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "d-1", "user-1")
	requireCode(t, err, ErrorInvalidInput, "not_at_review")

	walkToReview(t, svc, "d-1")
	sub, err := svc.Finalize(ctx, "d-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "d-1", sub.ID)
	require.Equal(t, "user-1", sub.OwnerID)
	require.Equal(t, domain.ReferralAffidavits, sub.ReferralType)
	require.Equal(t, "d-1", store.drafts["d-1"].SubmissionID)

	v, err := svc.JumpTo(ctx, "d-1", intake.StepAssets)
	require.NoError(t, err)
	more := append(v.Form.Assets, domain.AssetInfo{Type: domain.AssetBoats, EstimatedValue: domain.Dollars(50000), Ownership: domain.OwnershipSole})
	_, err = svc.Submit(ctx, "d-1", intake.Patch{Assets: &more})
	require.NoError(t, err)

	sub, err = svc.Finalize(ctx, "d-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "d-1", sub.ID)
	require.Equal(t, domain.ReferralInformalProbate, sub.ReferralType)
	require.Len(t, store.subs, 1)
}

func TestDraftFinalize_RetryAfterDraftSaveFailure(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "")
	require.NoError(t, err)
	walkToReview(t, svc, "d-1")

	store.draftSaveErrs = []error{errors.New("throttled")}
	_, err = svc.Finalize(ctx, "d-1", "user-1")
	requireCode(t, err, ErrorInternal, "dynamodb_write_error")
	require.Len(t, store.subs, 1)
	require.Empty(t, store.drafts["d-1"].SubmissionID)

	store.subs["d-1"] = func(s domain.Submission) domain.Submission {
		s.AttorneyID = "att-1"
		return s
	}(store.subs["d-1"])

	sub, err := svc.Finalize(ctx, "d-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "d-1", sub.ID)
	require.Equal(t, "user-1", sub.OwnerID)
	require.Equal(t, "att-1", sub.AttorneyID)
	require.Len(t, store.subs, 1)
	require.Equal(t, "d-1", store.drafts["d-1"].SubmissionID)
}

func TestDraftLoad_Errors(t *testing.T) {
	svc, store := newDraftService(t)

	_, err := svc.Get(context.Background(), "missing")
	requireCode(t, err, ErrorNotFound, "draft_not_found")

	_, err = svc.Get(context.Background(), "")
	requireCode(t, err, ErrorInvalidInput, "draft_id_required")

	store.drafts["bad"] = domain.Draft{ID: "bad", Step: 42}
	_, err = svc.Get(context.Background(), "bad")
	requireCode(t, err, ErrorInternal, "corrupt_draft")

	store.readErr = errors.New("down")
	_, err = svc.Back(context.Background(), "bad")
	requireCode(t, err, ErrorInternal, "dynamodb_read_error")
}

func TestDraftSave_Error(t *testing.T) {
	stubIDs(t, "d-1")
	svc, store := newDraftService(t)
	store.saveErr = errors.New("throttled")

	_, err := svc.Start(context.Background(), "")
	requireCode(t, err, ErrorInternal, "dynamodb_write_error")
}
