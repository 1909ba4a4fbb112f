package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/glesirok/targetpattern/pkg/path"
	"github.com/glesirok/targetpattern/pkg/pattern"
)

// PatternParser parses one raw pattern. Both *pattern.Parser and the batch
// processor's memoized parser satisfy it.
type PatternParser interface {
	Parse(raw string) (pattern.Pattern, error)
}

// Engine plans ordered include/exclude pattern sequences.
type Engine struct {
	parser PatternParser
}

// NewEngine returns an engine parsing rules with parser. A nil parser means
// the default parser without a working directory.
func NewEngine(parser PatternParser) *Engine {
	if parser == nil {
		parser = &pattern.Parser{}
	}

	return &Engine{parser: parser}
}

// ParseRuleLine turns a command-line style pattern into a rule. A leading "-"
// marks an exclusion.
func ParseRuleLine(line string) *Rule {
	if raw, ok := strings.CutPrefix(line, ExcludePrefix); ok {
		return &Rule{Action: ActionExclude, Pattern: raw}
	}

	return &Rule{Action: ActionInclude, Pattern: line}
}

// ParseRuleLines applies [ParseRuleLine] to every line.
func ParseRuleLines(lines []string) []*Rule {
	rules := make([]*Rule, 0, len(lines))
	for _, line := range lines {
		rules = append(rules, ParseRuleLine(line))
	}

	return rules
}

// Plan parses every rule and works out which exclusions can be pushed into
// earlier recursive inclusions.
//
// For an included TargetsBelowDirectory pattern, a later excluded one that it
// strictly contains becomes an excluded subdirectory. An inclusion whose tree
// is covered by a later exclusion is subsumed. An exclusion is absorbed when
// every earlier inclusion already accounts for it.
func (e *Engine) Plan(rules []*Rule) (*Plan, error) {
	plan := &Plan{Steps: make([]*Step, 0, len(rules))}

	for i, r := range rules {
		p, err := e.parser.Parse(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		step := &Step{Rule: *r, Pattern: p}
		plan.Steps = append(plan.Steps, step)

		if err := e.Apply(plan, step); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}

	return plan, nil
}

// Apply folds the last step of plan into the earlier ones.
func (e *Engine) Apply(plan *Plan, step *Step) error {
	switch step.Rule.Action {
	case ActionInclude:
		return nil
	case ActionExclude:
		return e.exclude(plan, step)
	default:
		return fmt.Errorf("unknown action: %s", step.Rule.Action)
	}
}

// exclude records step against every earlier inclusion.
func (e *Engine) exclude(plan *Plan, excl *Step) error {
	absorbed := true

	for _, incl := range plan.Steps {
		if incl == excl {
			break
		}
		if incl.Rule.Action != ActionInclude {
			continue
		}

		switch {
		case covers(excl.Pattern, incl.Pattern):
			incl.Subsumed = true
			slog.Debug("inclusion subsumed",
				slog.String("include", incl.Pattern.Original),
				slog.String("exclude", excl.Pattern.Original),
			)

		case pattern.DirectoryContains(incl.Pattern, excl.Pattern) && removesAll(excl.Pattern, incl.Pattern):
			if !slices.Contains(incl.ExcludedSubdirectories, excl.Pattern.Directory) {
				incl.ExcludedSubdirectories = append(incl.ExcludedSubdirectories, excl.Pattern.Directory)
			}
			slog.Debug("excluded subdirectory",
				slog.String("include", incl.Pattern.Original),
				slog.String("directory", excl.Pattern.Directory),
			)

		case disjoint(incl.Pattern, excl.Pattern):

		default:
			absorbed = false
		}
	}

	excl.Absorbed = absorbed

	return nil
}

// covers reports whether the recursive exclusion removes everything the
// recursive inclusion matches.
func covers(excl, incl pattern.Pattern) bool {
	if excl.Type != pattern.TargetsBelowDirectory || incl.Type != pattern.TargetsBelowDirectory {
		return false
	}

	if excl.Repository != incl.Repository || !removesAll(excl, incl) {
		return false
	}

	return path.HasDirPrefix(incl.Directory, excl.Directory)
}

// disjoint reports whether two recursive patterns share no directory.
func disjoint(a, b pattern.Pattern) bool {
	if a.Type != pattern.TargetsBelowDirectory || b.Type != pattern.TargetsBelowDirectory {
		return false
	}

	if a.Repository != b.Repository {
		return true
	}

	return !path.HasDirPrefix(a.Directory, b.Directory) && !path.HasDirPrefix(b.Directory, a.Directory)
}

// removesAll reports whether excluding excl removes every kind of target incl
// adds: a rules-only exclusion leaves the files of an all-targets inclusion.
func removesAll(excl, incl pattern.Pattern) bool {
	return !excl.RulesOnly || incl.RulesOnly
}
