package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/glesirok/targetpattern/pkg/engine"
	"github.com/glesirok/targetpattern/pkg/path"
	"github.com/glesirok/targetpattern/pkg/pattern"
	"github.com/glesirok/targetpattern/pkg/rule"
)

var errNothingToPlan = errors.New("nothing to plan: pass patterns or --file")

type parseView struct {
	Input   string           `json:"input" yaml:"input"`
	Pattern *pattern.Pattern `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse PATTERN...",
		Short: "Parse target patterns into their canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := opts.newProcessor()
			if err != nil {
				return err
			}

			results, err := proc.ParseAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			failed := 0
			views := make([]parseView, len(results))
			for i, res := range results {
				views[i].Input = res.Raw
				if res.Err != nil {
					failed++
					views[i].Error = res.Err.Error()

					continue
				}
				views[i].Pattern = &res.Pattern
			}

			err = render(cmd.OutOrStdout(), opts.Output, views, func(w io.Writer) error {
				for _, v := range views {
					if v.Pattern == nil {
						fmt.Fprintf(w, "%s\terror: %s\n", v.Input, v.Error)
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", v.Input, v.Pattern.Type, v.Pattern)
				}

				return nil
			})
			if err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d patterns", pattern.ErrMalformedPattern, failed, len(args))
			}

			return nil
		},
	}
}

type normalizeView struct {
	Input      string `json:"input" yaml:"input"`
	Normalized string `json:"normalized" yaml:"normalized"`
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize PATH...",
		Short: "Normalize slash-separated paths",
		Long: `Collapse "." segments, repeated slashes and ".." segments that follow a
named segment. Leading ".." segments are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views := make([]normalizeView, len(args))
			for i, arg := range args {
				views[i] = normalizeView{Input: arg, Normalized: path.Normalize(arg)}
			}

			return render(cmd.OutOrStdout(), opts.Output, views, func(w io.Writer) error {
				for _, v := range views {
					fmt.Fprintln(w, v.Normalized)
				}

				return nil
			})
		},
	}
}

type containsView struct {
	Outer    string           `json:"outer" yaml:"outer"`
	Inner    string           `json:"inner" yaml:"inner"`
	Relation pattern.Relation `json:"relation" yaml:"relation"`
	Contains bool             `json:"contains" yaml:"contains"`
}

func newContainsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contains OUTER INNER",
		Short: "Report whether OUTER's directory strictly contains INNER's",
		Long: `Both patterns must be recursive (ending in "...") and name the same
repository, otherwise the relation is not-applicable.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := opts.newProcessor()
			if err != nil {
				return err
			}

			outer, err := proc.Parse(args[0])
			if err != nil {
				return err
			}
			inner, err := proc.Parse(args[1])
			if err != nil {
				return err
			}

			rel := pattern.Relate(outer, inner)
			view := containsView{
				Outer:    outer.String(),
				Inner:    inner.String(),
				Relation: rel,
				Contains: rel == pattern.Contained,
			}

			return render(cmd.OutOrStdout(), opts.Output, view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%t\t%s\n", view.Contains, view.Relation)
				return err
			})
		},
	}
}

type planView struct {
	Source string       `json:"source" yaml:"source"`
	Plan   *engine.Plan `json:"plan" yaml:"plan"`
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var (
		files       []string
		pendingOnly bool
	)

	cmd := &cobra.Command{
		Use:   "plan [-f FILE]... [-- PATTERN...]",
		Short: "Plan a pattern sequence with exclusions",
		Long: `Patterns prefixed with "-" remove targets matched by earlier patterns.
Exclusions inside an earlier recursive pattern are folded into it as excluded
subdirectories. Put "--" before the patterns so exclusions are not read as flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(files) == 0 {
				return errNothingToPlan
			}

			proc, err := opts.newProcessor()
			if err != nil {
				return err
			}

			var views []planView

			if len(args) > 0 {
				plan, err := proc.Plan(args)
				if err != nil {
					return err
				}
				views = append(views, planView{Source: "args", Plan: plan})
			}

			for _, f := range files {
				fileViews, err := planSource(cmd.Context(), proc, f)
				if err != nil {
					return err
				}
				views = append(views, fileViews...)
			}

			if pendingOnly {
				for _, v := range views {
					v.Plan.Steps = v.Plan.Pending()
				}
			}

			return render(cmd.OutOrStdout(), opts.Output, views, func(w io.Writer) error {
				for _, v := range views {
					fmt.Fprintf(w, "# %s", v.Source)
					if v.Plan.Offset != "" {
						fmt.Fprintf(w, " (offset %s)", v.Plan.Offset)
					}
					fmt.Fprintln(w)

					for _, s := range v.Plan.Steps {
						if err := writeStep(w, s); err != nil {
							return err
						}
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Pattern file or directory of pattern files")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show steps that still need evaluation")

	return cmd
}

type planProcessor interface {
	ProcessFile(ctx context.Context, filePath string) (*engine.Plan, error)
	ProcessDirectory(ctx context.Context, dir string) (map[string]*engine.Plan, error)
}

func planSource(ctx context.Context, proc planProcessor, src string) ([]planView, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.IsDir() {
		plan, err := proc.ProcessFile(ctx, src)
		if err != nil {
			return nil, err
		}

		return []planView{{Source: src, Plan: plan}}, nil
	}

	plans, err := proc.ProcessDirectory(ctx, src)
	if err != nil {
		return nil, err
	}

	views := make([]planView, 0, len(plans))
	for _, rel := range slices.Sorted(maps.Keys(plans)) {
		views = append(views, planView{
			Source: filepath.ToSlash(filepath.Join(src, filepath.FromSlash(rel))),
			Plan:   plans[rel],
		})
	}

	return views, nil
}

func newSchemaCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of pattern files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := rule.Schema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return err
		},
	}
}
