package domain

// Draft is a wizard session persisted between requests.
type Draft struct {
	ID           string
	Step         int
	SubmissionID string
	Form         IntakeFormData
	UpdatedAt    string
	TTL          int64
}
