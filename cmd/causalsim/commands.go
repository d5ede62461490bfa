package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"gocausal/domain/core"
	"gocausal/domain/intervention"
	"gocausal/domain/table"
	"gocausal/internal/errors"
	"gocausal/internal/export"
	"gocausal/internal/profiling"
	"gocausal/internal/replicate"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the stock models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.kit.Models() {
				m, err := a.kit.Model(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, strings.Join(m.DGP().Names(), " -> "))
			}
			return nil
		},
	}
}

func newSampleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a table and write it as CSV or XLSX",
		Long: `Draw one table from the selected model. Network summaries are
materialized as columns. Without --output the table is written to stdout as CSV.

Example: causalsim sample --model network --rows 200 --output draw.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, err := a.kit.Sample(cmd.Context(), a.cfg.Model, a.cfg.Sampling.Rows, a.cfg.Sampling.Seed)
			if err != nil {
				return err
			}
			return export.Write(a.cfg.Output.Path, a.cfg.Output.Format, t, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("output", "", "Output file path (stdout when empty)")
	cmd.Flags().String("format", "", "Output format: csv|xlsx (inferred from --output)")
	return cmd
}

func newTruthCmd(a *app) *cobra.Command {
	var intervene string

	cmd := &cobra.Command{
		Use:   "truth",
		Short: "Report the ground-truth conditional mean and variance of each step",
		Long: `Draw a table, optionally intervene on its treatments, and report the
unit-averaged conditional mean and variance of every step given the
(intervened) values of the preceding steps.

Interventions: none, treat-all, treat-none, set:<v>, shift:<d>, scale:<d>

Example: causalsim truth --model confounded --intervene treat-all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fn, err := parseIntervention(intervene)
			if err != nil {
				return err
			}
			m, t, err := a.kit.Sample(cmd.Context(), a.cfg.Model, a.cfg.Sampling.Rows, a.cfg.Sampling.Seed)
			if err != nil {
				return err
			}
			if fn != nil {
				if t, err = t.Intervene(fn); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "step\tkind\tmean\tvariance")
			for _, step := range m.DGP().Steps() {
				mu, err := m.Conmean(t, step.Name)
				if core.IsUnsupportedError(err) {
					fmt.Fprintf(w, "%s\t%s\t-\t-\n", step.Name, step.Kind)
					continue
				}
				if err != nil {
					return err
				}
				v, err := m.Convar(t, step.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n", step.Name, step.Kind, average(mu), average(v))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&intervene, "intervene", "none", "Intervention applied before computing densities")
	return cmd
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print JSON summary statistics of every column of a draw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, err := a.kit.Sample(cmd.Context(), a.cfg.Model, a.cfg.Sampling.Rows, a.cfg.Sampling.Seed)
			if err != nil {
				return err
			}
			full, err := t.Summarize()
			if err != nil {
				return err
			}
			profiles, err := profiling.Describe(full)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		},
	}
}

func newReplicateCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Draw independent replicate tables in parallel",
		Long: `Draw --count independent tables from the selected model. Each replicate
uses its own named random stream, so results do not depend on --workers.
With --dir every replicate is written as CSV; the per-replicate mean of each
response is always printed.

Example: causalsim replicate --model contagion --count 50 --workers 8 --dir out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.kit.Model(a.cfg.Model)
			if err != nil {
				return err
			}
			reps, err := replicate.Run(cmd.Context(), m, a.kit.RNGAdapter(), replicate.Options{
				Rows:    a.cfg.Sampling.Rows,
				Count:   a.cfg.Replicate.Count,
				Workers: a.cfg.Replicate.Workers,
				Seed:    a.cfg.Sampling.Seed,
			})
			if err != nil {
				return err
			}

			if dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return errors.ExportFailed(dir, err)
				}
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "index\tid\tdigest\t%s\n", strings.Join(m.Response(), "\t"))
			for _, r := range reps {
				if dir != "" {
					path := filepath.Join(dir, fmt.Sprintf("replicate-%03d.csv", r.Index))
					if err := export.WriteCSVFile(path, r.Table); err != nil {
						return err
					}
				}
				means, err := responseMeans(r.Table)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\t%.12s\t%s\n", r.Index, r.ID, r.Digest, strings.Join(means, "\t"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("count", 10, "Number of replicates")
	cmd.Flags().Int("workers", 4, "Maximum concurrent draws")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for per-replicate CSV files")
	return cmd
}

// parseIntervention maps an --intervene value to an intervention; "none"
// yields nil.
func parseIntervention(s string) (table.Intervention, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch name {
	case "", "none":
		return nil, nil
	case "treat-all":
		return intervention.TreatAll, nil
	case "treat-none":
		return intervention.TreatNone, nil
	case "set", "shift", "scale":
		if !hasArg {
			return nil, errors.InvalidInput(fmt.Sprintf("intervention %q needs a value, e.g. %s:1", name, name))
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("intervention %q: bad value %q", name, arg))
		}
		switch name {
		case "set":
			return intervention.Constant(v), nil
		case "shift":
			return intervention.AdditiveShift(v), nil
		default:
			return intervention.MultiplicativeShift(v), nil
		}
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown intervention %q", s))
}

func responseMeans(t *table.Table) ([]string, error) {
	full, err := t.Summarize()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(full.Response()))
	for _, name := range full.Response() {
		col, err := full.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("%.4f", average(col)))
	}
	return out, nil
}

func average(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}
