package usecase

import (
	"context"
	"errors"
	"strings"

	"estate-intake/internal/domain"
	"estate-intake/internal/intake"
	"estate-intake/internal/referral"
	"estate-intake/internal/repository"
)

type DraftStore interface {
	SaveDraft(ctx context.Context, d domain.Draft) error
	GetDraft(ctx context.Context, id string) (domain.Draft, error)
}

// DraftService runs the intake wizard across requests, persisting the step
// and aggregate after every transition.
type DraftService struct {
	drafts      DraftStore
	submissions *SubmissionService
}

// DraftView is what the client renders for the current step.
type DraftView struct {
	ID           string                `json:"id"`
	Step         intake.Step           `json:"step"`
	StepName     string                `json:"stepName"`
	SubmissionID string                `json:"submissionId,omitempty"`
	Editing      bool                  `json:"editing"`
	Form         domain.IntakeFormData `json:"form"`
	Visible      map[string]bool       `json:"visible"`
}

// ReviewOutput is the review screen: the draft plus its classification.
type ReviewOutput struct {
	Draft    DraftView     `json:"draft"`
	Referral referral.Info `json:"referral"`
}

func NewDraftService(drafts DraftStore, submissions *SubmissionService) (*DraftService, error) {
	if drafts == nil {
		return nil, errors.New("usecase: draft store must not be nil")
	}
	if submissions == nil {
		return nil, errors.New("usecase: submission service must not be nil")
	}
	return &DraftService{drafts: drafts, submissions: submissions}, nil
}

// Start opens a new wizard session. With editSubmissionID set the wizard is
// hydrated from that submission and runs in edit mode.
func (s *DraftService) Start(ctx context.Context, editSubmissionID string) (DraftView, error) {
	w := intake.New()
	if id := strings.TrimSpace(editSubmissionID); id != "" {
		sub, err := s.submissions.Get(ctx, id)
		if err != nil {
			return DraftView{}, err
		}
		w, err = intake.Edit(sub.ID, sub.Form)
		if err != nil {
			return DraftView{}, newError(ErrorInvalidInput, "invalid_edit_target", err)
		}
	}
	return s.save(ctx, newUUID(), w)
}

func (s *DraftService) Get(ctx context.Context, id string) (DraftView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	return view(strings.TrimSpace(id), w), nil
}

// Submit validates the current step with p merged in and advances.
func (s *DraftService) Submit(ctx context.Context, id string, p intake.Patch) (DraftView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	if err := w.Submit(p); err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			e := newError(ErrorValidationFailed, "step_invalid", err)
			e.Fields = verr.Fields
			return DraftView{}, e
		}
		return DraftView{}, newError(ErrorInternal, "wizard_error", err)
	}
	return s.save(ctx, id, w)
}

func (s *DraftService) Back(ctx context.Context, id string) (DraftView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	w.Back()
	return s.save(ctx, id, w)
}

func (s *DraftService) SkipToReview(ctx context.Context, id string) (DraftView, error) {
	return s.transition(ctx, id, func(w *intake.Wizard) error { return w.SkipToReview() })
}

func (s *DraftService) JumpTo(ctx context.Context, id string, step intake.Step) (DraftView, error) {
	return s.transition(ctx, id, func(w *intake.Wizard) error { return w.JumpTo(step) })
}

func (s *DraftService) transition(ctx context.Context, id string, fn func(*intake.Wizard) error) (DraftView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	if err := fn(w); err != nil {
		switch {
		case errors.Is(err, intake.ErrNotEditing):
			return DraftView{}, newError(ErrorConflict, "not_editing", err)
		case errors.Is(err, intake.ErrInvalidStep):
			return DraftView{}, newError(ErrorInvalidInput, "invalid_step", err)
		}
		return DraftView{}, newError(ErrorInternal, "wizard_error", err)
	}
	return s.save(ctx, id, w)
}

// Review classifies the aggregate collected so far.
func (s *DraftService) Review(ctx context.Context, id string) (ReviewOutput, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return ReviewOutput{}, err
	}
	data := w.Data()
	info, err := referral.Describe(s.submissions.classifier.Classify(ctx, data))
	if err != nil {
		return ReviewOutput{}, newError(ErrorInternal, "unknown_referral_type", err)
	}
	return ReviewOutput{Draft: view(strings.TrimSpace(id), w), Referral: info}, nil
}

// Finalize turns a draft at the review step into a submission. A draft in
// edit mode replaces the form of the submission it was opened from; otherwise
// a new submission owned by ownerID is created and the draft switches to
// edit mode for it.
func (s *DraftService) Finalize(ctx context.Context, id, ownerID string) (domain.Submission, error) {
	id = strings.TrimSpace(id)
	w, err := s.load(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if w.Step() != intake.LastStep {
		return domain.Submission{}, newError(ErrorInvalidInput, "not_at_review", nil)
	}

	if w.Editing() {
		return s.submissions.Resubmit(ctx, w.SubmissionID(), w.Data())
	}
	// The submission takes the draft's id. A retry after a failed draft save
	// then hits the stored submission instead of creating a second one.
	sub, err := s.submissions.create(ctx, id, ownerID, w.Data())
	var uerr *Error
	if errors.As(err, &uerr) && uerr.Code == ErrorConflict {
		sub, err = s.submissions.Resubmit(ctx, id, w.Data())
	}
	if err != nil {
		return domain.Submission{}, err
	}
	edited, err := intake.Restore(w.Step(), sub.Form, sub.ID)
	if err != nil {
		return domain.Submission{}, newError(ErrorInternal, "wizard_error", err)
	}
	if _, err := s.save(ctx, id, edited); err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

func (s *DraftService) load(ctx context.Context, id string) (*intake.Wizard, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newError(ErrorInvalidInput, "draft_id_required", nil)
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrorNotFound, "draft_not_found", err)
		}
		return nil, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	w, err := intake.Restore(intake.Step(d.Step), d.Form, d.SubmissionID)
	if err != nil {
		return nil, newError(ErrorInternal, "corrupt_draft", err)
	}
	return w, nil
}

func (s *DraftService) save(ctx context.Context, id string, w *intake.Wizard) (DraftView, error) {
	id = strings.TrimSpace(id)
	d := repository.NewDraft(id, int(w.Step()), w.SubmissionID(), w.Data())
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return DraftView{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	return view(id, w), nil
}

func view(id string, w *intake.Wizard) DraftView {
	return DraftView{
		ID:           id,
		Step:         w.Step(),
		StepName:     w.Step().String(),
		SubmissionID: w.SubmissionID(),
		Editing:      w.Editing(),
		Form:         w.Data(),
		Visible:      w.Visible(),
	}
}
