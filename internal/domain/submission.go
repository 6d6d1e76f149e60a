package domain

import "strings"

// SubmissionStatus tracks where a case is in staff review.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusInReview  SubmissionStatus = "in_review"
	StatusAssigned  SubmissionStatus = "assigned"
	StatusClosed    SubmissionStatus = "closed"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusAssigned, StatusClosed:
		return true
	}
	return false
}

// Submission is a persisted, classified intake.
type Submission struct {
	ID           string
	OwnerID      string
	Form         IntakeFormData
	ReferralType ReferralType
	Status       SubmissionStatus
	AttorneyID   string
	Notes        string
	CreatedAt    string
	UpdatedAt    string
}

// SubmissionSummary holds the flat columns staff filter and sort on.
type SubmissionSummary struct {
	ContactEmail           string `json:"contactEmail"`
	ContactPhone           string `json:"contactPhone"`
	RelationshipToDecedent string `json:"relationshipToDecedent"`
	DecedentFirstName      string `json:"decedentFirstName"`
	DecedentLastName       string `json:"decedentLastName"`
	DecedentDateOfDeath    string `json:"decedentDateOfDeath"`
	DecedentState          string `json:"decedentState"`
	EstateValue            Cents  `json:"estateValue"`
	HasTrust               bool   `json:"hasTrust"`
	HasDisputes            bool   `json:"hasDisputes"`
}

// Summary derives the flat columns from the form. The decedent name splits on
// the first space into first and last name.
func (s Submission) Summary() SubmissionSummary {
	out := SubmissionSummary{
		EstateValue: s.Form.TotalNetAssetValue,
		HasTrust:    s.Form.HasTrust(),
		HasDisputes: IsTrue(s.Form.HasContestingBeneficiaries),
	}
	if c := s.Form.ContactInfo; c != nil {
		out.ContactEmail = c.Email
		out.ContactPhone = c.Phone
		out.RelationshipToDecedent = c.RelationshipToDecedent
	}
	if d := s.Form.DecedentInfo; d != nil {
		first, last, _ := strings.Cut(strings.TrimSpace(d.Name), " ")
		out.DecedentFirstName = first
		out.DecedentLastName = strings.TrimSpace(last)
		out.DecedentDateOfDeath = d.DateOfDeath
		out.DecedentState = d.DomicileState
	}
	return out
}
