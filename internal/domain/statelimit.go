package domain

// StateLimitDefaultKey is the row used when a domicile state has no entry.
const StateLimitDefaultKey = "default"

// StateLimit is the small-estate threshold for one state.
type StateLimit struct {
	ID        string
	State     string
	Amount    Cents
	CreatedAt string
	UpdatedAt string
}
