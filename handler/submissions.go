package handler

import (
	"context"
	"net/http"

	"estate-intake/internal/domain"
	"estate-intake/internal/intake"
	"estate-intake/internal/usecase"
)

type SubmissionUseCase interface {
	Create(ctx context.Context, ownerID string, form domain.IntakeFormData) (domain.Submission, error)
	Get(ctx context.Context, id string) (domain.Submission, error)
	List(ctx context.Context) ([]domain.Submission, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Submission, error)
	Update(ctx context.Context, id string, in usecase.SubmissionUpdate) (domain.Submission, error)
	Classify(ctx context.Context, form domain.IntakeFormData) (usecase.ClassifyOutput, error)
}

type submissionResponse struct {
	ID           string                   `json:"id"`
	OwnerID      string                   `json:"ownerId,omitempty"`
	ReferralType domain.ReferralType      `json:"referralType"`
	Status       domain.SubmissionStatus  `json:"status"`
	AttorneyID   string                   `json:"attorneyId,omitempty"`
	Notes        string                   `json:"notes,omitempty"`
	CreatedAt    string                   `json:"createdAt"`
	UpdatedAt    string                   `json:"updatedAt"`
	Summary      domain.SubmissionSummary `json:"summary"`
	FormData     *domain.IntakeFormData   `json:"formData,omitempty"`
}

type updateSubmissionRequest struct {
	FormData   *intake.Patch            `json:"formData"`
	Status     *domain.SubmissionStatus `json:"status"`
	AttorneyID *string                  `json:"attorneyId"`
	Notes      *string                  `json:"notes"`
}

func toSubmissionResponse(s domain.Submission, withForm bool) submissionResponse {
	out := submissionResponse{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		ReferralType: s.ReferralType,
		Status:       s.Status,
		AttorneyID:   s.AttorneyID,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Summary:      s.Summary(),
	}
	if withForm {
		form := s.Form
		out.FormData = &form
	}
	return out
}

func toSubmissionList(subs []domain.Submission) []submissionResponse {
	out := make([]submissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubmissionResponse(s, false))
	}
	return out
}

func (h *Handler) createSubmission(ctx context.Context, r *request) (int, any, error) {
	var form domain.IntakeFormData
	if err := decodeBody(r, &form, false); err != nil {
		return 0, nil, err
	}
	sub, err := h.submissions.Create(ctx, ownerID(r), form)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toSubmissionResponse(sub, true), nil
}

func (h *Handler) listSubmissions(ctx context.Context, _ *request) (int, any, error) {
	subs, err := h.submissions.List(ctx)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toSubmissionList(subs), nil
}

func (h *Handler) listMySubmissions(ctx context.Context, r *request) (int, any, error) {
	owner := ownerID(r)
	if owner == "" {
		return 0, nil, badRequest("owner_required", nil)
	}
	subs, err := h.submissions.ListByOwner(ctx, owner)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toSubmissionList(subs), nil
}

func (h *Handler) getSubmission(ctx context.Context, r *request) (int, any, error) {
	sub, err := h.submissions.Get(ctx, r.param("id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toSubmissionResponse(sub, true), nil
}

func (h *Handler) updateSubmission(ctx context.Context, r *request) (int, any, error) {
	var body updateSubmissionRequest
	if err := decodeBody(r, &body, false); err != nil {
		return 0, nil, err
	}
	sub, err := h.submissions.Update(ctx, r.param("id"), usecase.SubmissionUpdate{
		Form:       body.FormData,
		Status:     body.Status,
		AttorneyID: body.AttorneyID,
		Notes:      body.Notes,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toSubmissionResponse(sub, true), nil
}

func (h *Handler) classify(ctx context.Context, r *request) (int, any, error) {
	var form domain.IntakeFormData
	if err := decodeBody(r, &form, false); err != nil {
		return 0, nil, err
	}
	out, err := h.submissions.Classify(ctx, form)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, out, nil
}
