package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
)

type StateLimitStore interface {
	ListStateLimits(ctx context.Context) ([]domain.StateLimit, error)
	GetStateLimit(ctx context.Context, id string) (domain.StateLimit, error)
	CreateStateLimit(ctx context.Context, l domain.StateLimit) error
	UpdateStateLimit(ctx context.Context, prev, next domain.StateLimit) error
	DeleteStateLimit(ctx context.Context, l domain.StateLimit) error
}

// CacheInvalidator drops any cached copy of the limits table.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type StateLimitService struct {
	store StateLimitStore
	cache CacheInvalidator
}

type StateLimitInput struct {
	State  string
	Amount domain.Cents
}

// StateLimitUpdate changes the non-nil fields of a limit.
type StateLimitUpdate struct {
	State  *string
	Amount *domain.Cents
}

// NewStateLimitService builds the admin service. cache may be nil when no
// limits cache is configured.
func NewStateLimitService(store StateLimitStore, cache CacheInvalidator) (*StateLimitService, error) {
	if store == nil {
		return nil, errors.New("usecase: state limit store must not be nil")
	}
	return &StateLimitService{store: store, cache: cache}, nil
}

// List returns the configured limits ordered by state.
func (s *StateLimitService) List(ctx context.Context) ([]domain.StateLimit, error) {
	rows, err := s.store.ListStateLimits(ctx)
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	return rows, nil
}

func (s *StateLimitService) Create(ctx context.Context, in StateLimitInput) (domain.StateLimit, error) {
	state := strings.TrimSpace(in.State)
	if err := checkLimit(state, in.Amount); err != nil {
		return domain.StateLimit{}, err
	}
	ts := now().Format(time.RFC3339)
	l := domain.StateLimit{
		ID:        newUUID(),
		State:     state,
		Amount:    in.Amount,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.store.CreateStateLimit(ctx, l); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.StateLimit{}, newError(ErrorConflict, "state_limit_exists", err)
		}
		return domain.StateLimit{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	s.invalidate(ctx)
	return l, nil
}

func (s *StateLimitService) Update(ctx context.Context, id string, in StateLimitUpdate) (domain.StateLimit, error) {
	prev, err := s.get(ctx, id)
	if err != nil {
		return domain.StateLimit{}, err
	}
	next := prev
	if in.State != nil {
		next.State = strings.TrimSpace(*in.State)
	}
	if in.Amount != nil {
		next.Amount = *in.Amount
	}
	if err := checkLimit(next.State, next.Amount); err != nil {
		return domain.StateLimit{}, err
	}
	next.UpdatedAt = now().Format(time.RFC3339)

	if err := s.store.UpdateStateLimit(ctx, prev, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return domain.StateLimit{}, newError(ErrorConflict, "state_name_exists", err)
		case errors.Is(err, repository.ErrNotFound):
			return domain.StateLimit{}, newError(ErrorNotFound, "state_limit_not_found", err)
		}
		return domain.StateLimit{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	s.invalidate(ctx)
	return next, nil
}

func (s *StateLimitService) Delete(ctx context.Context, id string) error {
	l, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteStateLimit(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrorNotFound, "state_limit_not_found", err)
		}
		return newError(ErrorInternal, "dynamodb_write_error", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *StateLimitService) get(ctx context.Context, id string) (domain.StateLimit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StateLimit{}, newError(ErrorInvalidInput, "state_limit_id_required", nil)
	}
	l, err := s.store.GetStateLimit(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.StateLimit{}, newError(ErrorNotFound, "state_limit_not_found", err)
		}
		return domain.StateLimit{}, newError(ErrorInternal, "dynamodb_read_error", err)
	}
	return l, nil
}

// invalidate is best effort: the write already succeeded and a stale cache
// expires on its own TTL.
func (s *StateLimitService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "state limit cache invalidation failed", "err", err)
	}
}

func checkLimit(state string, amount domain.Cents) error {
	if state == "" {
		return newError(ErrorInvalidInput, "state_required", nil)
	}
	if amount < 0 {
		return newError(ErrorInvalidInput, "negative_amount", nil)
	}
	return nil
}
