package intake

import (
	"errors"
	"fmt"
	"strings"

	"estate-intake/internal/domain"
)

var (
	// ErrNotEditing is returned by transitions reserved for editing a saved submission.
	ErrNotEditing = errors.New("intake: only available when editing a submission")
	// ErrInvalidStep is returned for step ids outside 1..LastStep.
	ErrInvalidStep = errors.New("intake: invalid step")
)

// Wizard tracks the current step and the aggregate collected so far. It owns
// no business rules beyond per-step validation.
type Wizard struct {
	step         Step
	data         domain.IntakeFormData
	submissionID string
}

// New starts an empty wizard at the first step.
func New() *Wizard {
	return &Wizard{step: FirstStep}
}

// Edit starts a wizard hydrated from a saved submission. Edit mode unlocks
// SkipToReview and JumpTo.
func Edit(submissionID string, data domain.IntakeFormData) (*Wizard, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return nil, errors.New("intake: submission id is required to edit")
	}
	data.RecomputeTotals()
	return &Wizard{step: FirstStep, data: data, submissionID: submissionID}, nil
}

// Restore rebuilds a wizard from persisted state.
func Restore(step Step, data domain.IntakeFormData, submissionID string) (*Wizard, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	data.RecomputeTotals()
	return &Wizard{step: step, data: data, submissionID: strings.TrimSpace(submissionID)}, nil
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) SubmissionID() string { return w.submissionID }

// Editing reports whether the wizard was loaded from an existing submission.
func (w *Wizard) Editing() bool { return w.submissionID != "" }

// Data returns a deep copy of the aggregate.
func (w *Wizard) Data() domain.IntakeFormData {
	return w.data.Clone()
}

// Visible evaluates the conditional fields of the current step.
func (w *Wizard) Visible() map[string]bool {
	return Visible(w.step, w.data)
}

// Submit validates the current step with p applied. On success the patch is
// merged and the wizard advances; on failure nothing changes and a
// *ValidationError is returned.
func (w *Wizard) Submit(p Patch) error {
	merged := Merge(w.data, p)
	if errs := Validate(w.step, merged); len(errs) > 0 {
		return &ValidationError{Step: w.step, Fields: errs}
	}
	w.data = merged
	w.Next()
	return nil
}

// Next advances one step, stopping at the last.
func (w *Wizard) Next() {
	w.step = min(w.step+1, LastStep)
}

// Back moves one step back, stopping at the first. Data is kept.
func (w *Wizard) Back() {
	w.step = max(w.step-1, FirstStep)
}

// SkipToReview jumps to the review step without walking the remaining steps.
func (w *Wizard) SkipToReview() error {
	if !w.Editing() {
		return ErrNotEditing
	}
	w.step = LastStep
	return nil
}

// JumpTo moves directly to step while editing.
func (w *Wizard) JumpTo(step Step) error {
	if !w.Editing() {
		return ErrNotEditing
	}
	if !step.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	w.step = step
	return nil
}
