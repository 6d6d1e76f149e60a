package intake

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"estate-intake/internal/domain"
)

const dateLayout = "2006-01-02"

// FieldErrors maps a field path to a user-facing message.
type FieldErrors map[string]string

// ValidationError blocks a step transition.
type ValidationError struct {
	Step   Step
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("intake: %s step invalid: %s", e.Step, strings.Join(keys, ", "))
}

// Validate checks the fields owned by step in d, which should already have the
// step's patch merged in.
func Validate(step Step, d domain.IntakeFormData) FieldErrors {
	v := validator{errs: FieldErrors{}}
	switch step {
	case StepContact:
		v.contact(d)
	case StepDecedent:
		v.decedent(d)
	case StepEstatePlan:
		v.estatePlan(d)
	case StepFamily:
		v.family(d)
	case StepRepresentative:
		v.representative(d)
	case StepAssets:
		v.assets(d)
	}
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// CheckAmounts validates only the asset values of d. Forms that bypass the
// wizard go through it before they are totalled or classified.
func CheckAmounts(d domain.IntakeFormData) FieldErrors {
	v := validator{errs: FieldErrors{}}
	for i, a := range d.Assets {
		v.amount(i, a)
	}
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

type validator struct {
	errs FieldErrors
}

func (v *validator) amount(i int, a domain.AssetInfo) {
	switch {
	case a.EstimatedValue < 0:
		v.add(assetKey(i, "estimatedValue"), "Value cannot be negative")
	case a.EstimatedValue > domain.MaxAmount:
		v.add(assetKey(i, "estimatedValue"), "Value is too large")
	}
}

func (v *validator) add(field, msg string) {
	if _, ok := v.errs[field]; !ok {
		v.errs[field] = msg
	}
}

func (v *validator) text(field, value string, minLen, maxLen int, msg string) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < minLen {
		v.add(field, msg)
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		v.add(field, fmt.Sprintf("Must be at most %d characters", maxLen))
	}
}

func (v *validator) answered(field string, b *bool) {
	if b == nil {
		v.add(field, "Please select an option")
	}
}

func (v *validator) email(field, value string, required bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			v.add(field, "Valid email required")
		}
		return
	}
	if utf8.RuneCountInString(value) > 255 || !validEmail(value) {
		v.add(field, "Valid email required")
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

func (v *validator) date(field, value, msg string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msg)
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		v.add(field, "Use the YYYY-MM-DD format")
		return time.Time{}, false
	}
	return t, true
}

func (v *validator) contact(d domain.IntakeFormData) {
	c := d.ContactInfo
	if c == nil {
		v.add("contactInfo", "Contact information is required")
		return
	}
	v.text("contactInfo.name", c.Name, 1, 100, "Name is required")
	v.text("contactInfo.phone", c.Phone, 10, 20, "Valid phone number required")
	v.email("contactInfo.email", c.Email, true)
	v.text("contactInfo.address", c.Address, 1, 500, "Address is required")
}

func (v *validator) decedent(d domain.IntakeFormData) {
	di := d.DecedentInfo
	if di == nil {
		v.add("decedentInfo", "Decedent information is required")
		return
	}
	v.text("decedentInfo.name", di.Name, 1, 100, "Name is required")
	born, okBorn := v.date("decedentInfo.dateOfBirth", di.DateOfBirth, "Date of birth is required")
	died, okDied := v.date("decedentInfo.dateOfDeath", di.DateOfDeath, "Date of death is required")
	if okBorn && okDied && died.Before(born) {
		v.add("decedentInfo.dateOfDeath", "Date of death cannot be before date of birth")
	}
	v.text("decedentInfo.domicileState", di.DomicileState, 1, 50, "State of domicile is required")
	v.answered("decedentInfo.diedInDomicileState", di.DiedInDomicileState)
	if IsVisible(StepDecedent, ShowStateOfDeath, d) {
		v.text("decedentInfo.stateOfDeath", di.StateOfDeath, 1, 50, "State of death is required")
	}
}

func (v *validator) estatePlan(d domain.IntakeFormData) {
	v.answered("hasEstatePlan", d.HasEstatePlan)
	if IsVisible(StepEstatePlan, ShowEstatePlanType, d) && d.EstatePlanType != "" && !d.EstatePlanType.Valid() {
		v.add("estatePlanType", "Select trust, will or unknown")
	}
	v.answered("hasContestingBeneficiaries", d.HasContestingBeneficiaries)
	if IsVisible(StepEstatePlan, ShowContestingDetails, d) {
		v.text("contestingBeneficiariesInfo", d.ContestingBeneficiariesInfo, 0, 1000, "")
	}
}

func (v *validator) family(d domain.IntakeFormData) {
	v.answered("isMarried", d.IsMarried)
	if IsVisible(StepFamily, ShowSpouseInfo, d) {
		if d.SpouseInfo == nil {
			v.add("spouseInfo", "Spouse information is required")
		} else {
			v.text("spouseInfo.name", d.SpouseInfo.Name, 1, 100, "Spouse name is required")
			v.email("spouseInfo.email", d.SpouseInfo.Email, false)
		}
	}
	v.answered("hasChildren", d.HasChildren)
	if IsVisible(StepFamily, ShowChildren, d) {
		if len(d.Children) == 0 {
			v.add("children", "Add at least one child")
		}
		for i, c := range d.Children {
			v.text(fmt.Sprintf("children[%d].name", i), c.Name, 1, 100, "Child name is required")
			v.email(fmt.Sprintf("children[%d].email", i), c.Email, false)
		}
	}
}

func (v *validator) representative(d domain.IntakeFormData) {
	c := d.ContactInfo
	if c == nil {
		v.add("contactInfo", "Contact information is required")
		return
	}
	v.text("contactInfo.relationshipToDecedent", c.RelationshipToDecedent, 1, 100, "Relationship is required")
	v.answered("contactInfo.isExecutor", c.IsExecutor)
	if !IsVisible(StepRepresentative, ShowRepresentativeInfo, d) {
		return
	}
	r := d.RepresentativeInfo
	if r == nil {
		v.add("representativeInfo", "Representative information is required")
		return
	}
	v.text("representativeInfo.name", r.Name, 1, 100, "Representative name is required")
	v.email("representativeInfo.email", r.Email, false)
	v.text("representativeInfo.phone", r.Phone, 0, 20, "")
	v.text("representativeInfo.address", r.Address, 0, 500, "")
	v.text("representativeInfo.reasonForRepresenting", r.ReasonForRepresenting, 0, 1000, "")
}

func (v *validator) assets(d domain.IntakeFormData) {
	for i, a := range d.Assets {
		if !a.Type.Valid() {
			v.add(assetKey(i, "type"), "Select an asset type")
		}
		v.amount(i, a)
		if !a.Ownership.Valid() {
			v.add(assetKey(i, "ownership"), "Select sole or co-owned")
		}
		if assetVisible(ShowAssetCoOwner, d, a) && strings.TrimSpace(a.CoOwnerInfo) == "" {
			v.add(assetKey(i, ShowAssetCoOwner), "Co-owner information is required")
		}
	}
	if IsVisible(StepAssets, ShowAssetsInDomicileState, d) {
		v.answered("assetsInDomicileState", d.AssetsInDomicileState)
	}
}
