package pattern

import (
	"strings"

	"github.com/glesirok/targetpattern/pkg/path"
)

// Type is the shape a pattern was classified into.
type Type int

const (
	TypeUnknown Type = iota
	// SingleTarget names exactly one target, e.g. //foo:bar or //foo.
	SingleTarget
	// PathAsTarget is a bare relative path such as java/com/Bar.java that the
	// caller resolves against the package provider.
	PathAsTarget
	// TargetsInPackage is every target of one package: foo:all, foo:*.
	TargetsInPackage
	// TargetsBelowDirectory is every target in a directory and all packages
	// beneath it: foo/..., foo/...:all.
	TargetsBelowDirectory
)

func (t Type) String() string {
	switch t {
	case SingleTarget:
		return "SingleTarget"
	case PathAsTarget:
		return "PathAsTarget"
	case TargetsInPackage:
		return "TargetsInPackage"
	case TargetsBelowDirectory:
		return "TargetsBelowDirectory"
	case TypeUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// MarshalText renders the type name for JSON and YAML output.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Repository identifies a named source tree. The zero value is the repository
// of the invoking context; names are carried opaquely and never resolved.
type Repository string

// DefaultRepository is the repository of the invoking context.
const DefaultRepository Repository = ""

// IsDefault reports whether no explicit @name was given.
func (r Repository) IsDefault() bool {
	return r == DefaultRepository
}

// Name returns the repository name without the leading "@".
func (r Repository) Name() string {
	return string(r)
}

// String returns "@name", or "" for the default repository.
func (r Repository) String() string {
	if r.IsDefault() {
		return ""
	}

	return "@" + string(r)
}

// Pattern is the canonical value of one parsed target pattern.
// Patterns are only produced by a [Parser] and are never modified afterwards,
// so they can be shared freely between goroutines and compared with ==.
type Pattern struct {
	// Original is the input text, kept verbatim for diagnostics.
	Original string `json:"original" yaml:"original"`
	// Offset is the working directory a relative pattern was resolved
	// against. Empty for absolute patterns.
	Offset string `json:"offset,omitempty" yaml:"offset,omitempty"`
	// Repository is the explicit @name, or the default repository.
	Repository Repository `json:"repository,omitempty" yaml:"repository,omitempty"`
	// Directory is the normalized package path. Empty is the repository root.
	Directory string `json:"directory" yaml:"directory"`
	// TargetName is set for SingleTarget and PathAsTarget only.
	TargetName string `json:"target,omitempty" yaml:"target,omitempty"`
	// Type is the classification.
	Type Type `json:"type" yaml:"type"`
	// Absolute reports whether the pattern started with "//".
	Absolute bool `json:"absolute" yaml:"absolute"`
	// RulesOnly is set for ":all" and suffix-less recursive patterns, and
	// cleared for ":*" and ":all-targets".
	RulesOnly bool `json:"rulesOnly,omitempty" yaml:"rulesOnly,omitempty"`
}

// Equal compares the parsed fields of two patterns, ignoring the original
// text: "//a//b:c" and "//a/b:c" are equal.
func (p Pattern) Equal(o Pattern) bool {
	p.Original, o.Original = "", ""
	return p == o
}

// IsRecursive reports whether the pattern covers a whole directory tree.
func (p Pattern) IsRecursive() bool {
	return p.Type == TargetsBelowDirectory
}

// String renders the canonical form of the pattern. Relative patterns are
// rendered against their offset; PathAsTarget keeps its relative path.
func (p Pattern) String() string {
	var b strings.Builder

	if p.Type != PathAsTarget {
		b.WriteString(p.Repository.String())
		b.WriteString("//")
	}

	switch p.Type {
	case SingleTarget:
		b.WriteString(p.Directory)
		// An implicit name that spells a package suffix would read back as
		// TargetsInPackage.
		if !isAllSuffix(p.TargetName) || p.TargetName != path.Base(p.Directory) {
			b.WriteString(":")
			b.WriteString(p.TargetName)
		}
	case PathAsTarget:
		b.WriteString(p.TargetName)
	case TargetsInPackage:
		b.WriteString(p.Directory)
		b.WriteString(allSuffix(p.RulesOnly))
	case TargetsBelowDirectory:
		if p.Directory != "" {
			b.WriteString(p.Directory)
			b.WriteString(path.Separator)
		}
		b.WriteString(path.Recursive)
		if !p.RulesOnly {
			b.WriteString(":" + suffixAllTargetsShort)
		}
	case TypeUnknown:
		return p.Original
	}

	return b.String()
}

func isAllSuffix(name string) bool {
	switch name {
	case suffixAll, suffixAllTargetsShort, suffixAllTargets:
		return true
	}

	return false
}

func allSuffix(rulesOnly bool) string {
	if rulesOnly {
		return ":" + suffixAll
	}

	return ":" + suffixAllTargetsShort
}
