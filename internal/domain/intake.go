package domain

import "slices"

// AssetType enumerates the asset categories collected by the intake.
type AssetType string

const (
	AssetPrimaryResidence   AssetType = "primary_residence"
	AssetOtherRealProperty  AssetType = "other_real_property"
	AssetBusiness           AssetType = "business"
	AssetBankAccounts       AssetType = "bank_accounts"
	AssetInvestmentAccounts AssetType = "investment_accounts"
	AssetLifeInsurance      AssetType = "life_insurance"
	AssetAnnuities          AssetType = "annuities"
	AssetStocksBonds        AssetType = "stocks_bonds"
	AssetVehicles           AssetType = "vehicles"
	AssetBoats              AssetType = "boats"
	AssetRVs                AssetType = "rvs"
)

// AssetTypes lists every AssetType in display order.
var AssetTypes = []AssetType{
	AssetPrimaryResidence,
	AssetOtherRealProperty,
	AssetBusiness,
	AssetBankAccounts,
	AssetInvestmentAccounts,
	AssetLifeInsurance,
	AssetAnnuities,
	AssetStocksBonds,
	AssetVehicles,
	AssetBoats,
	AssetRVs,
}

func (t AssetType) Valid() bool {
	for _, v := range AssetTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Ownership string

const (
	OwnershipSole    Ownership = "sole"
	OwnershipCoOwned Ownership = "co-owned"
)

func (o Ownership) Valid() bool {
	return o == OwnershipSole || o == OwnershipCoOwned
}

type EstatePlanType string

const (
	EstatePlanTrust   EstatePlanType = "trust"
	EstatePlanWill    EstatePlanType = "will"
	EstatePlanUnknown EstatePlanType = "unknown"
)

func (t EstatePlanType) Valid() bool {
	return t == EstatePlanTrust || t == EstatePlanWill || t == EstatePlanUnknown
}

// ReferralType is the settlement process an intake is routed to.
type ReferralType string

const (
	ReferralAffidavits          ReferralType = "affidavits"
	ReferralInformalProbate     ReferralType = "informal_probate"
	ReferralFormalProbate       ReferralType = "formal_probate"
	ReferralTrustAdministration ReferralType = "trust_administration"
)

func (r ReferralType) Valid() bool {
	switch r {
	case ReferralAffidavits, ReferralInformalProbate, ReferralFormalProbate, ReferralTrustAdministration:
		return true
	}
	return false
}

type ContactInfo struct {
	Name                   string `json:"name"`
	Phone                  string `json:"phone"`
	Email                  string `json:"email"`
	Address                string `json:"address"`
	RelationshipToDecedent string `json:"relationshipToDecedent,omitempty"`
	OtherRelationship      string `json:"otherRelationship,omitempty"`
	IsExecutor             *bool  `json:"isExecutor,omitempty"`
}

type DecedentInfo struct {
	Name                         string `json:"name"`
	DateOfBirth                  string `json:"dateOfBirth"`
	DateOfDeath                  string `json:"dateOfDeath"`
	DomicileState                string `json:"domicileState"`
	DiedInDomicileState          *bool  `json:"diedInDomicileState,omitempty"`
	StateOfDeath                 string `json:"stateOfDeath,omitempty"`
	HasDeathCertificate          *bool  `json:"hasDeathCertificate,omitempty"`
	DeathCertificateDocumentName string `json:"deathCertificateDocumentName,omitempty"`
}

type SpouseInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ChildInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type RepresentativeInfo struct {
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	ReasonForRepresenting string `json:"reasonForRepresenting"`
}

type AssetInfo struct {
	Type                  AssetType `json:"type"`
	Description           string    `json:"description"`
	EstimatedValue        Cents     `json:"estimatedValue"`
	Ownership             Ownership `json:"ownership"`
	HasNamedBeneficiaries bool      `json:"hasNamedBeneficiaries"`
	FundedIntoTrust       *bool     `json:"fundedIntoTrust,omitempty"`
	CoOwnerInfo           string    `json:"coOwnerInfo,omitempty"`
	BeneficiaryInfo       string    `json:"beneficiaryInfo,omitempty"`
}

// IntakeFormData is the aggregate built up across the wizard steps.
// Unanswered yes/no questions are nil.
type IntakeFormData struct {
	ContactInfo  *ContactInfo  `json:"contactInfo,omitempty"`
	DecedentInfo *DecedentInfo `json:"decedentInfo,omitempty"`

	HasEstatePlan               *bool          `json:"hasEstatePlan,omitempty"`
	EstatePlanType              EstatePlanType `json:"estatePlanType,omitempty"`
	TrustDocumentName           string         `json:"trustDocumentName,omitempty"`
	HasContestingBeneficiaries  *bool          `json:"hasContestingBeneficiaries,omitempty"`
	ContestingBeneficiariesInfo string         `json:"contestingBeneficiariesInfo,omitempty"`

	IsMarried   *bool       `json:"isMarried,omitempty"`
	SpouseInfo  *SpouseInfo `json:"spouseInfo,omitempty"`
	HasChildren *bool       `json:"hasChildren,omitempty"`
	Children    []ChildInfo `json:"children,omitempty"`

	RepresentativeInfo *RepresentativeInfo `json:"representativeInfo,omitempty"`

	Assets                []AssetInfo `json:"assets,omitempty"`
	TotalNetAssetValue    Cents       `json:"totalNetAssetValue"`
	AssetsInDomicileState *bool       `json:"assetsInDomicileState,omitempty"`

	ReferralType ReferralType `json:"referralType,omitempty"`
}

// RecomputeTotals resets TotalNetAssetValue to the sum of the asset values.
// Call it after every change to Assets.
func (d *IntakeFormData) RecomputeTotals() {
	var total Cents
	for _, a := range d.Assets {
		total = total.Add(a.EstimatedValue)
	}
	d.TotalNetAssetValue = total
}

// Clone returns a deep copy of d. Nested structs, slices and tri-state answers
// are copied so the result shares no memory with d.
func (d IntakeFormData) Clone() IntakeFormData {
	out := d
	if d.ContactInfo != nil {
		c := *d.ContactInfo
		c.IsExecutor = cloneBool(c.IsExecutor)
		out.ContactInfo = &c
	}
	if d.DecedentInfo != nil {
		dec := *d.DecedentInfo
		dec.DiedInDomicileState = cloneBool(dec.DiedInDomicileState)
		dec.HasDeathCertificate = cloneBool(dec.HasDeathCertificate)
		out.DecedentInfo = &dec
	}
	if d.SpouseInfo != nil {
		sp := *d.SpouseInfo
		out.SpouseInfo = &sp
	}
	if d.RepresentativeInfo != nil {
		r := *d.RepresentativeInfo
		out.RepresentativeInfo = &r
	}
	out.HasEstatePlan = cloneBool(d.HasEstatePlan)
	out.HasContestingBeneficiaries = cloneBool(d.HasContestingBeneficiaries)
	out.IsMarried = cloneBool(d.IsMarried)
	out.HasChildren = cloneBool(d.HasChildren)
	out.AssetsInDomicileState = cloneBool(d.AssetsInDomicileState)
	out.Children = slices.Clone(d.Children)
	out.Assets = slices.Clone(d.Assets)
	for i := range out.Assets {
		out.Assets[i].FundedIntoTrust = cloneBool(out.Assets[i].FundedIntoTrust)
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return Bool(*b)
}

// HasTrust reports whether the estate plan on file is a trust.
func (d IntakeFormData) HasTrust() bool {
	return IsTrue(d.HasEstatePlan) && d.EstatePlanType == EstatePlanTrust
}

// Bool returns a pointer to v, for building tri-state answers.
func Bool(v bool) *bool { return &v }

// IsTrue reports whether an optional answer is present and true.
func IsTrue(b *bool) bool { return b != nil && *b }

// IsFalse reports whether an optional answer is present and false.
func IsFalse(b *bool) bool { return b != nil && !*b }
