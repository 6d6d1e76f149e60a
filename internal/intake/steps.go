package intake

import "fmt"

// Step is a 1-based wizard position.
type Step int

const (
	StepContact Step = iota + 1
	StepDecedent
	StepEstatePlan
	StepFamily
	StepRepresentative
	StepAssets
	StepReview
)

// FirstStep and LastStep bound every transition.
const (
	FirstStep = StepContact
	LastStep  = StepReview
)

type StepInfo struct {
	ID          Step   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Steps is the configured wizard, in order.
var Steps = []StepInfo{
	{ID: StepContact, Name: "Contact", Description: "Your information"},
	{ID: StepDecedent, Name: "Decedent", Description: "Deceased information"},
	{ID: StepEstatePlan, Name: "Estate Plan", Description: "Estate planning"},
	{ID: StepFamily, Name: "Family", Description: "Family structure"},
	{ID: StepRepresentative, Name: "Representative", Description: "Estate representative"},
	{ID: StepAssets, Name: "Assets", Description: "Asset details"},
	{ID: StepReview, Name: "Review", Description: "Final review"},
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return Steps[s-1].Name
}
