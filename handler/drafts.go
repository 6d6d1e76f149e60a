package handler

import (
	"context"
	"net/http"

	"estate-intake/internal/domain"
	"estate-intake/internal/intake"
	"estate-intake/internal/usecase"
)

type DraftUseCase interface {
	Start(ctx context.Context, editSubmissionID string) (usecase.DraftView, error)
	Get(ctx context.Context, id string) (usecase.DraftView, error)
	Submit(ctx context.Context, id string, p intake.Patch) (usecase.DraftView, error)
	Back(ctx context.Context, id string) (usecase.DraftView, error)
	SkipToReview(ctx context.Context, id string) (usecase.DraftView, error)
	JumpTo(ctx context.Context, id string, step intake.Step) (usecase.DraftView, error)
	Review(ctx context.Context, id string) (usecase.ReviewOutput, error)
	Finalize(ctx context.Context, id, ownerID string) (domain.Submission, error)
}

type startDraftRequest struct {
	EditSubmissionID string `json:"editSubmissionId"`
}

type jumpRequest struct {
	Step *intake.Step `json:"step"`
}

func (h *Handler) steps(context.Context, *request) (int, any, error) {
	return http.StatusOK, intake.Steps, nil
}

func (h *Handler) startDraft(ctx context.Context, r *request) (int, any, error) {
	var body startDraftRequest
	if err := decodeBody(r, &body, true); err != nil {
		return 0, nil, err
	}
	v, err := h.drafts.Start(ctx, body.EditSubmissionID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, v, nil
}

func (h *Handler) getDraft(ctx context.Context, r *request) (int, any, error) {
	return draftResult(h.drafts.Get(ctx, r.param("id")))
}

func (h *Handler) submitStep(ctx context.Context, r *request) (int, any, error) {
	var p intake.Patch
	if err := decodeBody(r, &p, true); err != nil {
		return 0, nil, err
	}
	return draftResult(h.drafts.Submit(ctx, r.param("id"), p))
}

func (h *Handler) backStep(ctx context.Context, r *request) (int, any, error) {
	return draftResult(h.drafts.Back(ctx, r.param("id")))
}

func (h *Handler) skipToReview(ctx context.Context, r *request) (int, any, error) {
	return draftResult(h.drafts.SkipToReview(ctx, r.param("id")))
}

func (h *Handler) jumpToStep(ctx context.Context, r *request) (int, any, error) {
	var body jumpRequest
	if err := decodeBody(r, &body, false); err != nil {
		return 0, nil, err
	}
	if body.Step == nil {
		return 0, nil, badRequest("step_required", nil)
	}
	return draftResult(h.drafts.JumpTo(ctx, r.param("id"), *body.Step))
}

func (h *Handler) reviewDraft(ctx context.Context, r *request) (int, any, error) {
	out, err := h.drafts.Review(ctx, r.param("id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, out, nil
}

func (h *Handler) finalizeDraft(ctx context.Context, r *request) (int, any, error) {
	sub, err := h.drafts.Finalize(ctx, r.param("id"), ownerID(r))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toSubmissionResponse(sub, true), nil
}

func draftResult(v usecase.DraftView, err error) (int, any, error) {
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, v, nil
}
