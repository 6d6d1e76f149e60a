package handler

import (
	"context"
	"net/http"

	"estate-intake/internal/domain"
	"estate-intake/internal/usecase"
)

type StateLimitUseCase interface {
	List(ctx context.Context) ([]domain.StateLimit, error)
	Create(ctx context.Context, in usecase.StateLimitInput) (domain.StateLimit, error)
	Update(ctx context.Context, id string, in usecase.StateLimitUpdate) (domain.StateLimit, error)
	Delete(ctx context.Context, id string) error
}

type stateLimitResponse struct {
	ID          string       `json:"id"`
	State       string       `json:"state"`
	LimitAmount domain.Cents `json:"limitAmount"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type stateLimitRequest struct {
	State       *string       `json:"state"`
	LimitAmount *domain.Cents `json:"limitAmount"`
}

func toStateLimitResponse(l domain.StateLimit) stateLimitResponse {
	return stateLimitResponse{
		ID:          l.ID,
		State:       l.State,
		LimitAmount: l.Amount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (h *Handler) listStateLimits(ctx context.Context, _ *request) (int, any, error) {
	rows, err := h.limits.List(ctx)
	if err != nil {
		return 0, nil, err
	}
	out := make([]stateLimitResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, toStateLimitResponse(l))
	}
	return http.StatusOK, out, nil
}

func (h *Handler) createStateLimit(ctx context.Context, r *request) (int, any, error) {
	var body stateLimitRequest
	if err := decodeBody(r, &body, false); err != nil {
		return 0, nil, err
	}
	if body.State == nil {
		return 0, nil, badRequest("state_required", nil)
	}
	if body.LimitAmount == nil {
		return 0, nil, badRequest("limit_amount_required", nil)
	}
	l, err := h.limits.Create(ctx, usecase.StateLimitInput{State: *body.State, Amount: *body.LimitAmount})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, toStateLimitResponse(l), nil
}

func (h *Handler) updateStateLimit(ctx context.Context, r *request) (int, any, error) {
	var body stateLimitRequest
	if err := decodeBody(r, &body, false); err != nil {
		return 0, nil, err
	}
	l, err := h.limits.Update(ctx, r.param("id"), usecase.StateLimitUpdate{State: body.State, Amount: body.LimitAmount})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, toStateLimitResponse(l), nil
}

func (h *Handler) deleteStateLimit(ctx context.Context, r *request) (int, any, error) {
	if err := h.limits.Delete(ctx, r.param("id")); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}
