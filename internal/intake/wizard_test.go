package intake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"estate-intake/internal/domain"
)

func TestWizard_LinearNavigation(t *testing.T) {
	w := New()
	require.Equal(t, StepContact, w.Step())
	require.False(t, w.Editing())

	w.Back()
	require.Equal(t, StepContact, w.Step())

	for i := 0; i < 10; i++ {
		w.Next()
	}
	require.Equal(t, StepReview, w.Step())

	w.Back()
	require.Equal(t, StepAssets, w.Step())
}

func TestWizard_SubmitMergesAndAdvances(t *testing.T) {
	w := New()
	err := w.Submit(Patch{ContactInfo: validContact()})
	require.NoError(t, err)
	require.Equal(t, StepDecedent, w.Step())
	require.Equal(t, "Ana Lopez", w.Data().ContactInfo.Name)
}

func TestWizard_SubmitBlockedByValidation(t *testing.T) {
	w := New()
	err := w.Submit(Patch{ContactInfo: &domain.ContactInfo{Name: "Ana"}})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, StepContact, verr.Step)
	require.Contains(t, verr.Fields, "contactInfo.email")
	require.Equal(t, StepContact, w.Step())
	require.Nil(t, w.Data().ContactInfo)
}

func TestWizard_BackKeepsData(t *testing.T) {
	w := New()
	require.NoError(t, w.Submit(Patch{ContactInfo: validContact()}))
	require.NoError(t, w.Submit(Patch{DecedentInfo: validDecedent()}))
	w.Back()
	w.Back()
	require.Equal(t, StepContact, w.Step())
	require.NotNil(t, w.Data().DecedentInfo)
}

func TestWizard_SkipAndJumpRequireEditMode(t *testing.T) {
	w := New()
	require.ErrorIs(t, w.SkipToReview(), ErrNotEditing)
	require.ErrorIs(t, w.JumpTo(StepAssets), ErrNotEditing)
	require.Equal(t, StepContact, w.Step())

	e, err := Edit("sub-1", domain.IntakeFormData{Assets: []domain.AssetInfo{{EstimatedValue: 7}}})
	require.NoError(t, err)
	require.True(t, e.Editing())
	require.Equal(t, domain.Cents(7), e.Data().TotalNetAssetValue)

	require.NoError(t, e.SkipToReview())
	require.Equal(t, StepReview, e.Step())
	require.NoError(t, e.JumpTo(StepFamily))
	require.Equal(t, StepFamily, e.Step())
	require.ErrorIs(t, e.JumpTo(Step(8)), ErrInvalidStep)
	require.ErrorIs(t, e.JumpTo(Step(0)), ErrInvalidStep)
}

func TestEdit_RequiresSubmissionID(t *testing.T) {
	_, err := Edit(" ", domain.IntakeFormData{})
	require.Error(t, err)
}

func TestRestore(t *testing.T) {
	w, err := Restore(StepAssets, domain.IntakeFormData{}, "")
	require.NoError(t, err)
	require.Equal(t, StepAssets, w.Step())
	require.False(t, w.Editing())

	_, err = Restore(Step(9), domain.IntakeFormData{}, "")
	require.ErrorIs(t, err, ErrInvalidStep)
}

func TestWizard_SubmitAtReviewStays(t *testing.T) {
	w, err := Restore(StepReview, domain.IntakeFormData{}, "")
	require.NoError(t, err)
	require.NoError(t, w.Submit(Patch{}))
	require.Equal(t, StepReview, w.Step())
}

func TestWizard_FullWalk(t *testing.T) {
	w := New()
	require.NoError(t, w.Submit(Patch{ContactInfo: validContact()}))
	require.NoError(t, w.Submit(Patch{DecedentInfo: validDecedent()}))
	require.NoError(t, w.Submit(Patch{HasEstatePlan: domain.Bool(false), HasContestingBeneficiaries: domain.Bool(false)}))
	require.NoError(t, w.Submit(Patch{IsMarried: domain.Bool(false), HasChildren: domain.Bool(false)}))

	c := validContact()
	c.RelationshipToDecedent = "Daughter"
	c.IsExecutor = domain.Bool(true)
	require.NoError(t, w.Submit(Patch{ContactInfo: c}))

	assets := []domain.AssetInfo{
		{Type: domain.AssetBankAccounts, EstimatedValue: domain.Dollars(40000), Ownership: domain.OwnershipSole},
		{Type: domain.AssetPrimaryResidence, EstimatedValue: domain.Dollars(200000), Ownership: domain.OwnershipCoOwned, CoOwnerInfo: "Brother"},
	}
	require.NoError(t, w.Submit(Patch{Assets: &assets}))
	require.Equal(t, StepReview, w.Step())

	data := w.Data()
	require.Equal(t, domain.Dollars(240000), data.TotalNetAssetValue)
	require.Equal(t, "Daughter", data.ContactInfo.RelationshipToDecedent)
	require.Equal(t, map[string]bool{}, w.Visible())
}

func TestStep_String(t *testing.T) {
	require.Equal(t, "Estate Plan", StepEstatePlan.String())
	require.Equal(t, "step(0)", Step(0).String())
	require.Len(t, Steps, int(LastStep))
}

func TestWizard_DataIsIndependentCopy(t *testing.T) {
	contact := validContact()
	contact.IsExecutor = domain.Bool(true)
	w, err := Edit("sub-1", domain.IntakeFormData{
		ContactInfo:        contact,
		DecedentInfo:       &domain.DecedentInfo{Name: "Sam", HasDeathCertificate: domain.Bool(true)},
		SpouseInfo:         &domain.SpouseInfo{Name: "Pat"},
		RepresentativeInfo: &domain.RepresentativeInfo{Name: "Rep"},
		IsMarried:          domain.Bool(true),
		Children:           []domain.ChildInfo{{Name: "Kid"}},
		Assets: []domain.AssetInfo{
			{Type: domain.AssetBankAccounts, EstimatedValue: domain.Dollars(10), FundedIntoTrust: domain.Bool(false)},
		},
	})
	require.NoError(t, err)
	before := w.Data()

	got := w.Data()
	got.ContactInfo.Name = "changed"
	*got.ContactInfo.IsExecutor = false
	got.DecedentInfo.Name = "changed"
	*got.DecedentInfo.HasDeathCertificate = false
	got.SpouseInfo.Name = "changed"
	got.RepresentativeInfo.Name = "changed"
	*got.IsMarried = false
	got.Children[0].Name = "changed"
	*got.Assets[0].FundedIntoTrust = true
	got.Assets[0].EstimatedValue = 0

	require.Equal(t, before, w.Data())
}

func TestWizard_SubmitDoesNotAliasPatchPointers(t *testing.T) {
	w := New()
	contact := validContact()
	contact.IsExecutor = domain.Bool(true)
	require.NoError(t, w.Submit(Patch{ContactInfo: contact}))

	*contact.IsExecutor = false
	contact.Name = "changed"
	require.True(t, *w.Data().ContactInfo.IsExecutor)
	require.Equal(t, "Ana Lopez", w.Data().ContactInfo.Name)
}
