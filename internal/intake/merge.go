package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"estate-intake/internal/domain"
)

// Field names a top-level key of the intake aggregate.
type Field string

const (
	FieldContactInfo                 Field = "contactInfo"
	FieldDecedentInfo                Field = "decedentInfo"
	FieldHasEstatePlan               Field = "hasEstatePlan"
	FieldEstatePlanType              Field = "estatePlanType"
	FieldTrustDocumentName           Field = "trustDocumentName"
	FieldHasContestingBeneficiaries  Field = "hasContestingBeneficiaries"
	FieldContestingBeneficiariesInfo Field = "contestingBeneficiariesInfo"
	FieldIsMarried                   Field = "isMarried"
	FieldSpouseInfo                  Field = "spouseInfo"
	FieldHasChildren                 Field = "hasChildren"
	FieldChildren                    Field = "children"
	FieldRepresentativeInfo          Field = "representativeInfo"
	FieldAssets                      Field = "assets"
	FieldAssetsInDomicileState       Field = "assetsInDomicileState"
)

var patchFields = map[Field]struct{}{
	FieldContactInfo: {}, FieldDecedentInfo: {}, FieldHasEstatePlan: {}, FieldEstatePlanType: {},
	FieldTrustDocumentName: {}, FieldHasContestingBeneficiaries: {}, FieldContestingBeneficiariesInfo: {},
	FieldIsMarried: {}, FieldSpouseInfo: {}, FieldHasChildren: {}, FieldChildren: {},
	FieldRepresentativeInfo: {}, FieldAssets: {}, FieldAssetsInDomicileState: {},
}

// Patch is the partial aggregate a step submits. A non-nil field replaces the
// aggregate's value wholesale; nested objects are never merged field by field.
// Derived values (totals, referral type) cannot be patched.
type Patch struct {
	ContactInfo                 *domain.ContactInfo        `json:"contactInfo,omitempty"`
	DecedentInfo                *domain.DecedentInfo       `json:"decedentInfo,omitempty"`
	HasEstatePlan               *bool                      `json:"hasEstatePlan,omitempty"`
	EstatePlanType              *domain.EstatePlanType     `json:"estatePlanType,omitempty"`
	TrustDocumentName           *string                    `json:"trustDocumentName,omitempty"`
	HasContestingBeneficiaries  *bool                      `json:"hasContestingBeneficiaries,omitempty"`
	ContestingBeneficiariesInfo *string                    `json:"contestingBeneficiariesInfo,omitempty"`
	IsMarried                   *bool                      `json:"isMarried,omitempty"`
	SpouseInfo                  *domain.SpouseInfo         `json:"spouseInfo,omitempty"`
	HasChildren                 *bool                      `json:"hasChildren,omitempty"`
	Children                    *[]domain.ChildInfo        `json:"children,omitempty"`
	RepresentativeInfo          *domain.RepresentativeInfo `json:"representativeInfo,omitempty"`
	Assets                      *[]domain.AssetInfo        `json:"assets,omitempty"`
	AssetsInDomicileState       *bool                      `json:"assetsInDomicileState,omitempty"`

	cleared []Field
}

// Clear marks fields to be reset to their zero value by Merge, the same as
// sending them as JSON null.
func (p *Patch) Clear(fields ...Field) {
	for _, f := range fields {
		if _, ok := patchFields[f]; ok && !slices.Contains(p.cleared, f) {
			p.cleared = append(p.cleared, f)
		}
	}
}

// Cleared lists the fields reset by this patch.
func (p Patch) Cleared() []Field {
	return slices.Clone(p.cleared)
}

func (p *Patch) UnmarshalJSON(b []byte) error {
	type plain Patch
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("intake: decode patch: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("intake: decode patch: %w", err)
	}
	*p = Patch(v)
	p.cleared = nil
	for k, r := range raw {
		if bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
			p.Clear(Field(k))
		}
	}
	slices.Sort(p.cleared)
	return nil
}

// Merge applies p to data and returns the result. It is the only way the
// wizard mutates the aggregate: top-level keys in p replace, absent keys are
// kept, and the asset total is recomputed.
func Merge(data domain.IntakeFormData, p Patch) domain.IntakeFormData {
	out := data

	for _, f := range p.cleared {
		clearField(&out, f)
	}

	if p.ContactInfo != nil {
		v := *p.ContactInfo
		out.ContactInfo = &v
	}
	if p.DecedentInfo != nil {
		v := *p.DecedentInfo
		out.DecedentInfo = &v
	}
	if p.HasEstatePlan != nil {
		out.HasEstatePlan = domain.Bool(*p.HasEstatePlan)
	}
	if p.EstatePlanType != nil {
		out.EstatePlanType = *p.EstatePlanType
	}
	if p.TrustDocumentName != nil {
		out.TrustDocumentName = *p.TrustDocumentName
	}
	if p.HasContestingBeneficiaries != nil {
		out.HasContestingBeneficiaries = domain.Bool(*p.HasContestingBeneficiaries)
	}
	if p.ContestingBeneficiariesInfo != nil {
		out.ContestingBeneficiariesInfo = *p.ContestingBeneficiariesInfo
	}
	if p.IsMarried != nil {
		out.IsMarried = domain.Bool(*p.IsMarried)
	}
	if p.SpouseInfo != nil {
		v := *p.SpouseInfo
		out.SpouseInfo = &v
	}
	if p.HasChildren != nil {
		out.HasChildren = domain.Bool(*p.HasChildren)
	}
	if p.Children != nil {
		out.Children = slices.Clone(*p.Children)
	}
	if p.RepresentativeInfo != nil {
		v := *p.RepresentativeInfo
		out.RepresentativeInfo = &v
	}
	if p.Assets != nil {
		out.Assets = slices.Clone(*p.Assets)
	}
	if p.AssetsInDomicileState != nil {
		out.AssetsInDomicileState = domain.Bool(*p.AssetsInDomicileState)
	}

	out = out.Clone()
	out.RecomputeTotals()
	return out
}

func clearField(d *domain.IntakeFormData, f Field) {
	switch f {
	case FieldContactInfo:
		d.ContactInfo = nil
	case FieldDecedentInfo:
		d.DecedentInfo = nil
	case FieldHasEstatePlan:
		d.HasEstatePlan = nil
	case FieldEstatePlanType:
		d.EstatePlanType = ""
	case FieldTrustDocumentName:
		d.TrustDocumentName = ""
	case FieldHasContestingBeneficiaries:
		d.HasContestingBeneficiaries = nil
	case FieldContestingBeneficiariesInfo:
		d.ContestingBeneficiariesInfo = ""
	case FieldIsMarried:
		d.IsMarried = nil
	case FieldSpouseInfo:
		d.SpouseInfo = nil
	case FieldHasChildren:
		d.HasChildren = nil
	case FieldChildren:
		d.Children = nil
	case FieldRepresentativeInfo:
		d.RepresentativeInfo = nil
	case FieldAssets:
		d.Assets = nil
	case FieldAssetsInDomicileState:
		d.AssetsInDomicileState = nil
	}
}
