package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

type classifyResult struct {
	ReferralType       domain.ReferralType `json:"referralType"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	DomicileState      string              `json:"domicileState,omitempty"`
	Threshold          domain.Cents        `json:"threshold"`
	TotalNetAssetValue domain.Cents        `json:"totalNetAssetValue"`
	EligibleValue      domain.Cents        `json:"eligibleValue"`
}

func classifyCmd(cfg func() Config) *cobra.Command {
	var formPath, limitsPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify an intake form file offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readForm(formPath)
			if err != nil {
				return err
			}
			limits := referral.DefaultLimits()
			if limitsPath != "" {
				if limits, err = readLimitsFile(limitsPath); err != nil {
					return err
				}
			}
			res, err := classify(form, limits)
			if err != nil {
				return err
			}
			return writeClassify(cmd.OutOrStdout(), cfg().Output, res)
		},
	}
	cmd.Flags().StringVarP(&formPath, "form", "f", "", "intake form JSON file (- for stdin)")
	cmd.Flags().StringVar(&limitsPath, "limits", "", "state limits YAML file (default: built-in table)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func readForm(path string) (domain.IntakeFormData, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return domain.IntakeFormData{}, fmt.Errorf("open form: %w", err)
		}
		defer f.Close()
		r = f
	}
	var form domain.IntakeFormData
	if err := json.NewDecoder(r).Decode(&form); err != nil {
		return domain.IntakeFormData{}, fmt.Errorf("decode form: %w", err)
	}
	return form, nil
}

func classify(form domain.IntakeFormData, limits referral.Limits) (classifyResult, error) {
	form.RecomputeTotals()
	t := referral.Determine(form, limits)
	info, err := referral.Describe(t)
	if err != nil {
		return classifyResult{}, err
	}
	state := ""
	if form.DecedentInfo != nil {
		state = form.DecedentInfo.DomicileState
	}
	return classifyResult{
		ReferralType:       t,
		Title:              info.Title,
		Description:        info.Description,
		DomicileState:      state,
		Threshold:          limits.Lookup(state),
		TotalNetAssetValue: form.TotalNetAssetValue,
		EligibleValue:      referral.EligibleAssetValue(form.Assets),
	}, nil
}

func writeClassify(w io.Writer, format string, res classifyResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	state := res.DomicileState
	if state == "" {
		state = "(not given)"
	}
	_, err := fmt.Fprintf(w,
		"Referral:    %s (%s)\n%s\n\nDomicile:    %s\nThreshold:   $%s\nTotal value: $%s\nEligible:    $%s\n",
		res.Title, res.ReferralType, res.Description,
		state, res.Threshold, res.TotalNetAssetValue, res.EligibleValue)
	return err
}
