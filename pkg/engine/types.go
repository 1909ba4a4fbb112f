package engine

import "github.com/glesirok/targetpattern/pkg/pattern"

// ActionType says whether a rule adds or removes targets.
type ActionType string

const (
	ActionInclude ActionType = "include"
	ActionExclude ActionType = "exclude"
)

// ExcludePrefix marks a negative pattern in a pattern sequence.
const ExcludePrefix = "-"

// Rule is one entry of an ordered pattern sequence.
type Rule struct {
	Action  ActionType `json:"action" yaml:"action"`
	Pattern string     `json:"pattern" yaml:"pattern"`
}

// Step is a parsed rule together with what the planner learned about it.
type Step struct {
	Rule    Rule            `json:"rule" yaml:"rule"`
	Pattern pattern.Pattern `json:"pattern" yaml:"pattern"`

	// ExcludedSubdirectories lists directories of later exclusions that lie
	// strictly inside an included recursive pattern. The package provider can
	// skip them while walking the tree.
	ExcludedSubdirectories []string `json:"excludedSubdirectories,omitempty" yaml:"excludedSubdirectories,omitempty"`
	// Subsumed marks an inclusion whose whole tree is removed again by a later
	// exclusion.
	Subsumed bool `json:"subsumed,omitempty" yaml:"subsumed,omitempty"`
	// Absorbed marks an exclusion fully handled by earlier inclusions, so it
	// does not need to be evaluated on its own.
	Absorbed bool `json:"absorbed,omitempty" yaml:"absorbed,omitempty"`
}

// Plan is the ordered result of planning a pattern sequence.
type Plan struct {
	Offset string  `json:"offset,omitempty" yaml:"offset,omitempty"`
	Steps  []*Step `json:"steps" yaml:"steps"`
}

// Pending returns the steps that still need evaluation by the caller.
func (p *Plan) Pending() []*Step {
	out := make([]*Step, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.Subsumed || s.Absorbed {
			continue
		}
		out = append(out, s)
	}

	return out
}
