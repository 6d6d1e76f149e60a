package referral

import (
	"fmt"

	"estate-intake/internal/domain"
)

// Info is the presentation copy shown on the review screen.
type Info struct {
	Type        domain.ReferralType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
}

var infos = map[domain.ReferralType]Info{
	domain.ReferralAffidavits: {
		Title:       "Small Estate Affidavit",
		Description: "The estate qualifies for simplified probate using affidavits. Assets are below the state threshold and have no complications.",
	},
	domain.ReferralInformalProbate: {
		Title:       "Informal Probate",
		Description: "Standard probate process without court supervision. Suitable for straightforward estates without disputes.",
	},
	domain.ReferralFormalProbate: {
		Title:       "Formal Probate",
		Description: "Court-supervised probate required due to contesting beneficiaries or complex circumstances.",
	},
	domain.ReferralTrustAdministration: {
		Title:       "Trust Administration",
		Description: "Estate includes a trust requiring administration outside of probate court.",
	},
}

// Describe returns the display copy for t.
func Describe(t domain.ReferralType) (Info, error) {
	info, ok := infos[t]
	if !ok {
		return Info{}, fmt.Errorf("referral: unknown type %q", t)
	}
	info.Type = t
	return info, nil
}
