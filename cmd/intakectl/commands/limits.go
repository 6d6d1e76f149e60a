package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
	"estate-intake/internal/usecase"
)

func limitsCmd(cfg func() Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Manage the small-estate state limits",
	}
	cmd.AddCommand(limitsListCmd(cfg), limitsSeedCmd(cfg), limitsDefaultsCmd())
	return cmd
}

func limitsListCmd(cfg func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the state limits stored in DynamoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := limitService(cmd, cfg())
			if err != nil {
				return err
			}
			rows, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeLimits(cmd.OutOrStdout(), cfg().Output, rows)
		},
	}
}

func limitsSeedCmd(cfg func() Config) *cobra.Command {
	var file string
	var overwrite, dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create state limits from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := readLimitsFile(file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				for _, state := range sortedStates(limits) {
					fmt.Fprintf(out, "would seed %s = %s\n", state, limits[state])
				}
				return nil
			}
			svc, err := limitService(cmd, cfg())
			if err != nil {
				return err
			}
			return seed(cmd, svc, limits, overwrite)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "state limits YAML file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "update amounts for states that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func limitsDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in state limits as a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := encodeLimits(referral.DefaultLimits())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func limitService(cmd *cobra.Command, cfg Config) (*usecase.StateLimitService, error) {
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewStateLimitService(store, nil)
}

// seed creates every state in limits. Existing states are skipped, or updated
// in place when overwrite is set.
func seed(cmd *cobra.Command, svc *usecase.StateLimitService, limits referral.Limits, overwrite bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	byState := make(map[string]domain.StateLimit, len(existing))
	for _, row := range existing {
		byState[row.State] = row
	}

	var created, updated, skipped int
	for _, state := range sortedStates(limits) {
		amount := limits[state]
		row, ok := byState[state]
		switch {
		case !ok:
			if _, err := svc.Create(ctx, usecase.StateLimitInput{State: state, Amount: amount}); err != nil {
				var ue *usecase.Error
				if errors.As(err, &ue) && ue.Code == usecase.ErrorConflict {
					fmt.Fprintf(out, "skipped %s (created concurrently)\n", state)
					skipped++
					continue
				}
				return fmt.Errorf("seed %s: %w", state, err)
			}
			fmt.Fprintf(out, "created %s = %s\n", state, amount)
			created++
		case overwrite && row.Amount != amount:
			if _, err := svc.Update(ctx, row.ID, usecase.StateLimitUpdate{Amount: &amount}); err != nil {
				return fmt.Errorf("update %s: %w", state, err)
			}
			fmt.Fprintf(out, "updated %s %s -> %s\n", state, row.Amount, amount)
			updated++
		default:
			fmt.Fprintf(out, "skipped %s (exists)\n", state)
			skipped++
		}
	}
	fmt.Fprintf(out, "%d created, %d updated, %d skipped\n", created, updated, skipped)
	return nil
}

func writeLimits(w io.Writer, format string, rows []domain.StateLimit) error {
	if format == "json" {
		type row struct {
			ID          string       `json:"id"`
			State       string       `json:"state"`
			LimitAmount domain.Cents `json:"limitAmount"`
			UpdatedAt   string       `json:"updatedAt"`
		}
		out := make([]row, 0, len(rows))
		for _, r := range rows {
			out = append(out, row{ID: r.ID, State: r.State, LimitAmount: r.Amount, UpdatedAt: r.UpdatedAt})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tLIMIT\tUPDATED\tID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.State, r.Amount, r.UpdatedAt, r.ID)
	}
	return tw.Flush()
}
