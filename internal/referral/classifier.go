package referral

import (
	"estate-intake/internal/domain"
)

// Determine classifies a completed intake. Rules apply in order and the first
// match wins:
//
//  1. a trust on file routes to trust administration,
//  2. contesting beneficiaries force formal probate,
//  3. otherwise the eligible asset value is compared (inclusive) against the
//     domicile state's small-estate limit.
//
// Determine never fails. Missing data degrades toward affidavits.
func Determine(data domain.IntakeFormData, limits Limits) domain.ReferralType {
	if data.HasTrust() {
		return domain.ReferralTrustAdministration
	}
	if domain.IsTrue(data.HasContestingBeneficiaries) {
		return domain.ReferralFormalProbate
	}

	state := ""
	if data.DecedentInfo != nil {
		state = data.DecedentInfo.DomicileState
	}
	if EligibleAssetValue(data.Assets) <= limits.Lookup(state) {
		return domain.ReferralAffidavits
	}
	return domain.ReferralInformalProbate
}

// EligibleAssetValue sums the assets that pass through probate: solely owned
// and without named beneficiaries.
func EligibleAssetValue(assets []domain.AssetInfo) domain.Cents {
	var sum domain.Cents
	for _, a := range assets {
		if a.HasNamedBeneficiaries || a.Ownership != domain.OwnershipSole {
			continue
		}
		sum = sum.Add(a.EstimatedValue)
	}
	return sum
}
