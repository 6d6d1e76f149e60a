package referral

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"estate-intake/internal/domain"
)

// FloorLimit applies when neither the state nor a default row is configured.
var FloorLimit = domain.Dollars(50000)

// Limits maps a state name to its small-estate threshold. The "default" key
// covers states without their own row.
type Limits map[string]domain.Cents

// DefaultLimits returns the built-in table used when no live source answers.
func DefaultLimits() Limits {
	return Limits{
		"California":                domain.Dollars(184500),
		"Texas":                     domain.Dollars(75000),
		"Florida":                   domain.Dollars(75000),
		"New York":                  domain.Dollars(50000),
		domain.StateLimitDefaultKey: domain.Dollars(50000),
	}
}

// Lookup returns the threshold for state, then the default row, then FloorLimit.
func (l Limits) Lookup(state string) domain.Cents {
	if state = strings.TrimSpace(state); state != "" {
		if v, ok := l[state]; ok {
			return v
		}
	}
	if v, ok := l[domain.StateLimitDefaultKey]; ok {
		return v
	}
	return FloorLimit
}

// FromStateLimits builds a Limits table from stored rows.
func FromStateLimits(rows []domain.StateLimit) Limits {
	out := make(Limits, len(rows))
	for _, r := range rows {
		out[r.State] = r.Amount
	}
	return out
}

// LimitSource supplies the current state-limit table.
type LimitSource interface {
	StateLimits(ctx context.Context) (Limits, error)
}

// LimitSourceFunc adapts a function to LimitSource.
type LimitSourceFunc func(ctx context.Context) (Limits, error)

func (f LimitSourceFunc) StateLimits(ctx context.Context) (Limits, error) { return f(ctx) }

// ErrNoLimits is returned by a source that answered with an empty table.
var ErrNoLimits = errors.New("referral: no state limits configured")

// Resolver asks each source in turn and falls back to DefaultLimits when
// every source fails or answers with an empty table.
type Resolver struct {
	sources []LimitSource
	logger  *slog.Logger
}

func NewResolver(logger *slog.Logger, sources ...LimitSource) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]LimitSource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Resolver{sources: kept, logger: logger}
}

// StateLimits never returns an error; the signature matches LimitSource so a
// Resolver can be nested.
func (r *Resolver) StateLimits(ctx context.Context) (Limits, error) {
	return r.Resolve(ctx), nil
}

func (r *Resolver) Resolve(ctx context.Context) Limits {
	for i, src := range r.sources {
		limits, err := src.StateLimits(ctx)
		if err == nil && len(limits) == 0 {
			err = ErrNoLimits
		}
		if err != nil {
			r.logger.WarnContext(ctx, "state limit source failed", "source", i, "err", err)
			continue
		}
		return limits
	}
	r.logger.WarnContext(ctx, "using built-in state limits")
	return DefaultLimits()
}

// Classify resolves the limits and classifies data.
func (r *Resolver) Classify(ctx context.Context, data domain.IntakeFormData) domain.ReferralType {
	return Determine(data, r.Resolve(ctx))
}
