package intake

import (
	"fmt"

	"estate-intake/internal/domain"
)

// Conditional field names reported by Visible.
const (
	ShowStateOfDeath          = "decedentInfo.stateOfDeath"
	ShowDeathCertificate      = "decedentInfo.deathCertificateDocument"
	ShowEstatePlanType        = "estatePlanType"
	ShowEstatePlanDocument    = "trustDocument"
	ShowContestingDetails     = "contestingBeneficiariesInfo"
	ShowSpouseInfo            = "spouseInfo"
	ShowChildren              = "children"
	ShowRepresentativeInfo    = "representativeInfo"
	ShowAssetsInDomicileState = "assetsInDomicileState"

	ShowAssetFundedIntoTrust = "fundedIntoTrust"
	ShowAssetBeneficiaries   = "hasNamedBeneficiaries"
	ShowAssetCoOwner         = "coOwnerInfo"
)

type guard struct {
	step  Step
	field string
	show  func(d domain.IntakeFormData) bool
}

type assetGuard struct {
	field string
	show  func(d domain.IntakeFormData, a domain.AssetInfo) bool
}

var guards = []guard{
	{StepDecedent, ShowStateOfDeath, func(d domain.IntakeFormData) bool {
		return d.DecedentInfo != nil && domain.IsFalse(d.DecedentInfo.DiedInDomicileState)
	}},
	{StepDecedent, ShowDeathCertificate, func(d domain.IntakeFormData) bool {
		return d.DecedentInfo != nil && domain.IsTrue(d.DecedentInfo.HasDeathCertificate)
	}},
	{StepEstatePlan, ShowEstatePlanType, func(d domain.IntakeFormData) bool {
		return domain.IsTrue(d.HasEstatePlan)
	}},
	{StepEstatePlan, ShowEstatePlanDocument, func(d domain.IntakeFormData) bool {
		return domain.IsTrue(d.HasEstatePlan) && d.EstatePlanType != ""
	}},
	{StepEstatePlan, ShowContestingDetails, func(d domain.IntakeFormData) bool {
		return domain.IsTrue(d.HasContestingBeneficiaries)
	}},
	{StepFamily, ShowSpouseInfo, func(d domain.IntakeFormData) bool {
		return domain.IsTrue(d.IsMarried)
	}},
	{StepFamily, ShowChildren, func(d domain.IntakeFormData) bool {
		return domain.IsTrue(d.HasChildren)
	}},
	{StepRepresentative, ShowRepresentativeInfo, func(d domain.IntakeFormData) bool {
		return d.ContactInfo != nil && domain.IsFalse(d.ContactInfo.IsExecutor)
	}},
	{StepAssets, ShowAssetsInDomicileState, func(d domain.IntakeFormData) bool {
		return d.DecedentInfo != nil && domain.IsFalse(d.DecedentInfo.DiedInDomicileState)
	}},
}

var assetGuards = []assetGuard{
	{ShowAssetFundedIntoTrust, func(d domain.IntakeFormData, _ domain.AssetInfo) bool {
		return d.HasTrust()
	}},
	{ShowAssetBeneficiaries, func(_ domain.IntakeFormData, a domain.AssetInfo) bool {
		return ShouldShowBeneficiaryQuestion(a.Type, domain.IsTrue(a.FundedIntoTrust))
	}},
	{ShowAssetCoOwner, func(_ domain.IntakeFormData, a domain.AssetInfo) bool {
		return a.Ownership == domain.OwnershipCoOwned
	}},
}

// Visible evaluates the conditional fields of step against data. Per-asset
// fields are keyed as "assets[i].field".
func Visible(step Step, d domain.IntakeFormData) map[string]bool {
	out := make(map[string]bool)
	for _, g := range guards {
		if g.step == step {
			out[g.field] = g.show(d)
		}
	}
	if step == StepAssets {
		for i, a := range d.Assets {
			for _, g := range assetGuards {
				out[assetKey(i, g.field)] = g.show(d, a)
			}
		}
	}
	return out
}

// IsVisible reports a single conditional field. Fields without a guard are
// always shown.
func IsVisible(step Step, field string, d domain.IntakeFormData) bool {
	for _, g := range guards {
		if g.step == step && g.field == field {
			return g.show(d)
		}
	}
	return true
}

func assetVisible(field string, d domain.IntakeFormData, a domain.AssetInfo) bool {
	for _, g := range assetGuards {
		if g.field == field {
			return g.show(d, a)
		}
	}
	return true
}

func assetKey(i int, field string) string {
	return fmt.Sprintf("assets[%d].%s", i, field)
}

// ShouldShowBeneficiaryQuestion hides the named-beneficiaries question for
// assets already funded into a trust. assetType is accepted but not consulted.
func ShouldShowBeneficiaryQuestion(assetType domain.AssetType, fundedIntoTrust bool) bool {
	_ = assetType
	return !fundedIntoTrust
}

var assetQuestions = map[domain.AssetType][]string{
	domain.AssetPrimaryResidence:   {"A", "B", "C", "D", "E"},
	domain.AssetOtherRealProperty:  {"A", "B", "C", "D", "E"},
	domain.AssetBusiness:           {"A", "B", "C", "D", "E"},
	domain.AssetBankAccounts:       {"A", "B", "C", "D", "E"},
	domain.AssetInvestmentAccounts: {"A", "B", "C", "D", "E"},
	domain.AssetLifeInsurance:      {"A", "B", "C", "D", "E"},
	domain.AssetAnnuities:          {"A", "B", "E"},
	domain.AssetStocksBonds:        {"A", "B", "E"},
	domain.AssetVehicles:           {"B", "D", "E"},
	domain.AssetBoats:              {"B", "D", "E"},
	domain.AssetRVs:                {"A", "B", "E"},
}

// AssetQuestions returns the follow-up question ids asked for an asset type.
func AssetQuestions(t domain.AssetType) []string {
	if q, ok := assetQuestions[t]; ok {
		return append([]string(nil), q...)
	}
	return []string{"A", "B", "E"}
}
