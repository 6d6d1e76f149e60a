package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

// limitsFile is the seed file layout:
//
//	limits:
//	  California: 184500
//	  default: 50000
type limitsFile struct {
	Limits map[string]domain.Cents `yaml:"limits"`
}

func readLimitsFile(path string) (referral.Limits, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}
	return parseLimits(b)
}

func parseLimits(b []byte) (referral.Limits, error) {
	var f limitsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse limits file: %w", err)
	}
	if len(f.Limits) == 0 {
		return nil, errors.New("limits file has no entries under \"limits\"")
	}
	out := make(referral.Limits, len(f.Limits))
	for state, amount := range f.Limits {
		state = strings.TrimSpace(state)
		if state == "" {
			return nil, errors.New("limits file has a blank state name")
		}
		if amount < 0 {
			return nil, fmt.Errorf("limit for %s is negative", state)
		}
		out[state] = amount
	}
	return out, nil
}

func encodeLimits(l referral.Limits) ([]byte, error) {
	return yaml.Marshal(limitsFile{Limits: l})
}

// sortedStates returns the keys of l with the default row last.
func sortedStates(l referral.Limits) []string {
	states := make([]string, 0, len(l))
	for s := range l {
		if s != domain.StateLimitDefaultKey {
			states = append(states, s)
		}
	}
	sort.Strings(states)
	if _, ok := l[domain.StateLimitDefaultKey]; ok {
		states = append(states, domain.StateLimitDefaultKey)
	}
	return states
}
