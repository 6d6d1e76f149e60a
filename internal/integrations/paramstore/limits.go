package paramstore

import (
	"context"
	"errors"
	"strings"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

// LimitsName is the parameter under the prefix holding the published table,
// e.g. {"California": 184500, "default": 50000}. Amounts are in dollars.
const LimitsName = "state_limits"

// LimitsParameter serves the limits table published in Parameter Store. It is
// the fallback when the DynamoDB table is unreachable.
type LimitsParameter struct {
	getter Getter
	name   string
}

func NewLimitsParameter(g Getter, prefix string) (*LimitsParameter, error) {
	if g == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: parameter prefix must not be empty")
	}
	return &LimitsParameter{getter: g, name: prefix + "/" + LimitsName}, nil
}

// Name is the full parameter path read by StateLimits.
func (p *LimitsParameter) Name() string { return p.name }

// StateLimits implements referral.LimitSource.
func (p *LimitsParameter) StateLimits(ctx context.Context) (referral.Limits, error) {
	var table map[string]domain.Cents
	if err := GetJSON(ctx, p.getter, p.name, &table); err != nil {
		return nil, err
	}
	out := make(referral.Limits, len(table))
	for state, amount := range table {
		if state = strings.TrimSpace(state); state != "" {
			out[state] = amount
		}
	}
	return out, nil
}
